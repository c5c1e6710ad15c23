package ast

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/lhaig/wabbit/internal/types"
)

// StructuralError reports a node that was built with an invalid field.
// It is raised once, at construction, and is not recoverable: the tree was
// never well formed.
type StructuralError struct {
	Node   string // node variant, e.g. "InfixOp"
	Field  string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("invalid %s.%s: %s", e.Node, e.Field, e.Reason)
}

// IsStructural reports whether err is or wraps a *StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// Must returns node or panics if err is non-nil. It is meant for building
// trees whose shape is known to be valid, such as fixtures and generated code.
func Must[T Node](node T, err error) T {
	if err != nil {
		panic(err)
	}
	return node
}

// Operator symbols per node variant.
var (
	prefixSymbols = []string{"+", "-", "!", "^"}
	infixSymbols  = []string{"+", "-", "*", "/", "<", "<=", ">", ">=", "==", "!=", "&&", "||"}
)

// DefaultImportModule is the host module functions are imported from when
// none is named.
const DefaultImportModule = "env"

func invalid(node, field, format string, args ...any) error {
	return &StructuralError{Node: node, Field: field, Reason: fmt.Sprintf(format, args...)}
}

func checkIdent(node, field, name string) error {
	if name == "" {
		return invalid(node, field, "empty name")
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return invalid(node, field, "%q is not an identifier", name)
	}
	return nil
}

func checkExpr(node, field string, e Expression) error {
	if isNil(e) {
		return invalid(node, field, "missing expression")
	}
	return nil
}

// isNil reports whether n is nil or a nil pointer to a node variant.
func isNil(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *IntLiteral:
		return v == nil
	case *FloatLiteral:
		return v == nil
	case *BoolLiteral:
		return v == nil
	case *CharLiteral:
		return v == nil
	case *PrefixOp:
		return v == nil
	case *InfixOp:
		return v == nil
	case *VarGet:
		return v == nil
	case *MemGet:
		return v == nil
	case *TypeCast:
		return v == nil
	case *FuncCall:
		return v == nil
	case *Parameter:
		return v == nil
	case *VarDef:
		return v == nil
	case *VarSet:
		return v == nil
	case *VarDefSet:
		return v == nil
	case *MemSet:
		return v == nil
	case *Block:
		return v == nil
	case *FuncDef:
		return v == nil
	case *ImportFunc:
		return v == nil
	case *Print:
		return v == nil
	case *If:
		return v == nil
	case *While:
		return v == nil
	case *Break:
		return v == nil
	case *Continue:
		return v == nil
	case *Return:
		return v == nil
	default:
		return false
	}
}

func checkDeclType(node, field string, t *types.Type) error {
	if t == nil {
		return invalid(node, field, "missing type")
	}
	if t.IsSentinel() {
		return invalid(node, field, "%s cannot be declared", t)
	}
	return nil
}

func checkBlock(node, field string, b *Block) error {
	if b == nil {
		return invalid(node, field, "missing block")
	}
	return nil
}

func checkParams(node string, params []*Parameter) error {
	seen := make(map[string]bool, len(params))
	for i, p := range params {
		if p == nil {
			return invalid(node, "Params", "parameter %d is nil", i)
		}
		if seen[p.Name] {
			return invalid(node, "Params", "duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// maxChar is the largest code point a char can hold.
const maxChar = 0xFF

// --- Expressions ---

func (n *IntLiteral) Validate() error {
	if n.Value < math.MinInt32 || n.Value > math.MaxInt32 {
		return invalid("IntLiteral", "Value", "%d does not fit in 32 bits", n.Value)
	}
	return nil
}

func (n *FloatLiteral) Validate() error {
	if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return invalid("FloatLiteral", "Value", "%v is not a finite number", n.Value)
	}
	return nil
}

func (n *BoolLiteral) Validate() error { return nil }

func (n *CharLiteral) Validate() error {
	if !utf8.ValidString(n.Value) || utf8.RuneCountInString(n.Value) != 1 {
		return invalid("CharLiteral", "Value", "expected a single character, got %q", n.Value)
	}
	// Chars are stored and printed as single bytes.
	if r, _ := utf8.DecodeRuneInString(n.Value); r > maxChar {
		return invalid("CharLiteral", "Value", "%q does not fit in one byte", n.Value)
	}
	return nil
}

func (n *PrefixOp) Validate() error {
	if !slices.Contains(prefixSymbols, n.Symbol) {
		return invalid("PrefixOp", "Symbol", "unknown operator %q", n.Symbol)
	}
	return checkExpr("PrefixOp", "Operand", n.Operand)
}

func (n *InfixOp) Validate() error {
	if !slices.Contains(infixSymbols, n.Symbol) {
		return invalid("InfixOp", "Symbol", "unknown operator %q", n.Symbol)
	}
	if err := checkExpr("InfixOp", "Left", n.Left); err != nil {
		return err
	}
	return checkExpr("InfixOp", "Right", n.Right)
}

func (n *VarGet) Validate() error { return checkIdent("VarGet", "Name", n.Name) }

func (n *MemGet) Validate() error { return checkExpr("MemGet", "Addr", n.Addr) }

func (n *TypeCast) Validate() error {
	if err := checkDeclType("TypeCast", "Target", n.Target); err != nil {
		return err
	}
	return checkExpr("TypeCast", "Value", n.Value)
}

func (n *FuncCall) Validate() error {
	if err := checkIdent("FuncCall", "Name", n.Name); err != nil {
		return err
	}
	for i, a := range n.Args {
		if isNil(a) {
			return invalid("FuncCall", "Args", "argument %d is nil", i)
		}
	}
	return nil
}

func (n *Parameter) Validate() error {
	if err := checkIdent("Parameter", "Name", n.Name); err != nil {
		return err
	}
	return checkDeclType("Parameter", "DeclType", n.DeclType)
}

// --- Statements ---

func (n *VarDef) Validate() error {
	if err := checkIdent("VarDef", "Name", n.Name); err != nil {
		return err
	}
	return checkDeclType("VarDef", "DeclType", n.DeclType)
}

func (n *VarSet) Validate() error {
	if err := checkIdent("VarSet", "Name", n.Name); err != nil {
		return err
	}
	return checkExpr("VarSet", "Value", n.Value)
}

func (n *VarDefSet) Validate() error {
	if err := checkIdent("VarDefSet", "Name", n.Name); err != nil {
		return err
	}
	if n.DeclType != nil {
		if err := checkDeclType("VarDefSet", "DeclType", n.DeclType); err != nil {
			return err
		}
	}
	return checkExpr("VarDefSet", "Value", n.Value)
}

func (n *MemSet) Validate() error {
	if err := checkExpr("MemSet", "Addr", n.Addr); err != nil {
		return err
	}
	return checkExpr("MemSet", "Value", n.Value)
}

func (n *Block) Validate() error {
	for i, s := range n.Statements {
		if isNil(s) {
			return invalid("Block", "Statements", "statement %d is nil", i)
		}
	}
	return nil
}

func (n *FuncDef) Validate() error {
	if err := checkIdent("FuncDef", "Name", n.Name); err != nil {
		return err
	}
	if err := checkParams("FuncDef", n.Params); err != nil {
		return err
	}
	if err := checkDeclType("FuncDef", "ReturnType", n.ReturnType); err != nil {
		return err
	}
	return checkBlock("FuncDef", "Body", n.Body)
}

func (n *ImportFunc) Validate() error {
	if n.Module == "" {
		return invalid("ImportFunc", "Module", "empty module name")
	}
	if err := checkIdent("ImportFunc", "Name", n.Name); err != nil {
		return err
	}
	if err := checkParams("ImportFunc", n.Params); err != nil {
		return err
	}
	return checkDeclType("ImportFunc", "ReturnType", n.ReturnType)
}

func (n *Print) Validate() error { return checkExpr("Print", "Value", n.Value) }

func (n *If) Validate() error {
	if err := checkExpr("If", "Test", n.Test); err != nil {
		return err
	}
	return checkBlock("If", "Then", n.Then)
}

func (n *While) Validate() error {
	if err := checkExpr("While", "Test", n.Test); err != nil {
		return err
	}
	return checkBlock("While", "Body", n.Body)
}

func (n *Break) Validate() error    { return nil }
func (n *Continue) Validate() error { return nil }

func (n *Return) Validate() error { return checkExpr("Return", "Value", n.Value) }

// --- Constructors ---

func build[T Node](n T) (T, error) {
	if err := n.Validate(); err != nil {
		var zero T
		return zero, err
	}
	return n, nil
}

func NewIntLiteral(v int64) (*IntLiteral, error)       { return build(&IntLiteral{Value: v}) }
func NewFloatLiteral(v float64) (*FloatLiteral, error) { return build(&FloatLiteral{Value: v}) }
func NewBoolLiteral(v bool) (*BoolLiteral, error)      { return build(&BoolLiteral{Value: v}) }
func NewCharLiteral(v string) (*CharLiteral, error)    { return build(&CharLiteral{Value: v}) }

func NewPrefixOp(symbol string, operand Expression) (*PrefixOp, error) {
	return build(&PrefixOp{Symbol: symbol, Operand: operand})
}

func NewInfixOp(symbol string, left, right Expression) (*InfixOp, error) {
	return build(&InfixOp{Symbol: symbol, Left: left, Right: right})
}

func NewVarGet(name string) (*VarGet, error) { return build(&VarGet{Name: name}) }

func NewMemGet(addr Expression) (*MemGet, error) { return build(&MemGet{Addr: addr}) }

func NewTypeCast(target *types.Type, value Expression) (*TypeCast, error) {
	return build(&TypeCast{Target: target, Value: value})
}

func NewFuncCall(name string, args ...Expression) (*FuncCall, error) {
	return build(&FuncCall{Name: name, Args: args})
}

func NewParameter(name string, t *types.Type) (*Parameter, error) {
	return build(&Parameter{Name: name, DeclType: t})
}

func NewVarDef(name string, t *types.Type) (*VarDef, error) {
	return build(&VarDef{Name: name, DeclType: t})
}

func NewVarSet(name string, value Expression) (*VarSet, error) {
	return build(&VarSet{Name: name, Value: value})
}

// NewVarDefSet builds var name [type] = value; or, with isConst,
// const name [type] = value;
func NewVarDefSet(name string, t *types.Type, value Expression, isConst bool) (*VarDefSet, error) {
	return build(&VarDefSet{Name: name, DeclType: t, Value: value, Const: isConst})
}

func NewMemSet(addr, value Expression) (*MemSet, error) {
	return build(&MemSet{Addr: addr, Value: value})
}

func NewBlock(stmts ...Statement) (*Block, error) {
	return build(&Block{Statements: stmts})
}

func NewFuncDef(name string, params []*Parameter, ret *types.Type, body *Block) (*FuncDef, error) {
	return build(&FuncDef{Name: name, Params: params, ReturnType: ret, Body: body})
}

// NewImportFunc declares a host function. An empty module means
// DefaultImportModule.
func NewImportFunc(module, name string, params []*Parameter, ret *types.Type) (*ImportFunc, error) {
	if module == "" {
		module = DefaultImportModule
	}
	return build(&ImportFunc{Module: module, Name: name, Params: params, ReturnType: ret})
}

func NewPrint(value Expression) (*Print, error) { return build(&Print{Value: value}) }

// NewIf builds an if statement; otherwise may be nil.
func NewIf(test Expression, then, otherwise *Block) (*If, error) {
	return build(&If{Test: test, Then: then, Else: otherwise})
}

func NewWhile(test Expression, body *Block) (*While, error) {
	return build(&While{Test: test, Body: body})
}

func NewBreak() *Break       { return &Break{} }
func NewContinue() *Continue { return &Continue{} }

func NewReturn(value Expression) (*Return, error) { return build(&Return{Value: value}) }
