package ast

import "github.com/lhaig/wabbit/internal/types"

// Node is the base interface for all AST nodes
type Node interface {
	Pos() (line, col int)
	String() string
	// Validate checks the node's own fields. Children validate themselves
	// when they are constructed.
	Validate() error
}

// Statement nodes
type Statement interface {
	Node
	stmtNode()
}

// Expression nodes. The checker stamps every expression with exactly one
// resolved type.
type Expression interface {
	Node
	Type() *types.Type
	SetType(t *types.Type)
	exprNode()
}

// --- Expressions ---

// IntLiteral represents an integer literal such as 23
type IntLiteral struct {
	Value  int64
	typ    *types.Type
	Line   int
	Column int
}

func (n *IntLiteral) Pos() (int, int)       { return n.Line, n.Column }
func (n *IntLiteral) Type() *types.Type     { return n.typ }
func (n *IntLiteral) SetType(t *types.Type) { n.typ = t }
func (n *IntLiteral) exprNode()             {}

// FloatLiteral represents a float literal such as 4.5
type FloatLiteral struct {
	Value  float64
	typ    *types.Type
	Line   int
	Column int
}

func (n *FloatLiteral) Pos() (int, int)       { return n.Line, n.Column }
func (n *FloatLiteral) Type() *types.Type     { return n.typ }
func (n *FloatLiteral) SetType(t *types.Type) { n.typ = t }
func (n *FloatLiteral) exprNode()             {}

// BoolLiteral represents true or false
type BoolLiteral struct {
	Value  bool
	typ    *types.Type
	Line   int
	Column int
}

func (n *BoolLiteral) Pos() (int, int)       { return n.Line, n.Column }
func (n *BoolLiteral) Type() *types.Type     { return n.typ }
func (n *BoolLiteral) SetType(t *types.Type) { n.typ = t }
func (n *BoolLiteral) exprNode()             {}

// CharLiteral represents a single character such as 'c'
type CharLiteral struct {
	Value  string
	typ    *types.Type
	Line   int
	Column int
}

func (n *CharLiteral) Pos() (int, int)       { return n.Line, n.Column }
func (n *CharLiteral) Type() *types.Type     { return n.typ }
func (n *CharLiteral) SetType(t *types.Type) { n.typ = t }
func (n *CharLiteral) exprNode()             {}

// PrefixOp represents a unary operator: +x, -x, !x or ^x (grow memory)
type PrefixOp struct {
	Symbol  string
	Operand Expression
	typ     *types.Type
	Line    int
	Column  int
}

func (n *PrefixOp) Pos() (int, int)       { return n.Line, n.Column }
func (n *PrefixOp) Type() *types.Type     { return n.typ }
func (n *PrefixOp) SetType(t *types.Type) { n.typ = t }
func (n *PrefixOp) exprNode()             {}

// InfixOp represents a binary operator
type InfixOp struct {
	Symbol string
	Left   Expression
	Right  Expression
	typ    *types.Type
	Line   int
	Column int
}

func (n *InfixOp) Pos() (int, int)       { return n.Line, n.Column }
func (n *InfixOp) Type() *types.Type     { return n.typ }
func (n *InfixOp) SetType(t *types.Type) { n.typ = t }
func (n *InfixOp) exprNode()             {}

// VarGet loads the value of a variable
type VarGet struct {
	Name   string
	typ    *types.Type
	Line   int
	Column int
}

func (n *VarGet) Pos() (int, int)       { return n.Line, n.Column }
func (n *VarGet) Type() *types.Type     { return n.typ }
func (n *VarGet) SetType(t *types.Type) { n.typ = t }
func (n *VarGet) exprNode()             {}

// MemGet loads the contents of the memory address Addr (`addr)
type MemGet struct {
	Addr   Expression
	typ    *types.Type
	Line   int
	Column int
}

func (n *MemGet) Pos() (int, int)       { return n.Line, n.Column }
func (n *MemGet) Type() *types.Type     { return n.typ }
func (n *MemGet) SetType(t *types.Type) { n.typ = t }
func (n *MemGet) exprNode()             {}

// TypeCast converts Value to Target, e.g. float(x)
type TypeCast struct {
	Target *types.Type
	Value  Expression
	typ    *types.Type
	Line   int
	Column int
}

func (n *TypeCast) Pos() (int, int)       { return n.Line, n.Column }
func (n *TypeCast) Type() *types.Type     { return n.typ }
func (n *TypeCast) SetType(t *types.Type) { n.typ = t }
func (n *TypeCast) exprNode()             {}

// FuncCall represents name(arg1, ..., argn)
type FuncCall struct {
	Name   string
	Args   []Expression
	typ    *types.Type
	Line   int
	Column int
}

func (n *FuncCall) Pos() (int, int)       { return n.Line, n.Column }
func (n *FuncCall) Type() *types.Type     { return n.typ }
func (n *FuncCall) SetType(t *types.Type) { n.typ = t }
func (n *FuncCall) exprNode()             {}

// Parameter is a function parameter. It behaves like a local variable whose
// type is trusted as declared.
type Parameter struct {
	Name     string
	DeclType *types.Type
	typ      *types.Type
	Line     int
	Column   int
}

func (n *Parameter) Pos() (int, int)       { return n.Line, n.Column }
func (n *Parameter) Type() *types.Type     { return n.typ }
func (n *Parameter) SetType(t *types.Type) { n.typ = t }
func (n *Parameter) exprNode()             {}

// --- Statements ---

// VarDef declares a variable without a value: var name type;
type VarDef struct {
	Name     string
	DeclType *types.Type
	Line     int
	Column   int
}

func (n *VarDef) Pos() (int, int) { return n.Line, n.Column }
func (n *VarDef) stmtNode()       {}

// VarSet assigns to an existing variable: name = value;
type VarSet struct {
	Name   string
	Value  Expression
	Line   int
	Column int
}

func (n *VarSet) Pos() (int, int) { return n.Line, n.Column }
func (n *VarSet) stmtNode()       {}

// VarDefSet declares and assigns in one step. DeclType may be nil, in which
// case the variable takes the type of Value. Const variables are immutable.
type VarDefSet struct {
	Name     string
	DeclType *types.Type
	Value    Expression
	Const    bool
	Line     int
	Column   int
}

func (n *VarDefSet) Pos() (int, int) { return n.Line, n.Column }
func (n *VarDefSet) stmtNode()       {}

// MemSet stores Value at memory address Addr: `addr = value;
type MemSet struct {
	Addr   Expression
	Value  Expression
	Line   int
	Column int
}

func (n *MemSet) Pos() (int, int) { return n.Line, n.Column }
func (n *MemSet) stmtNode()       {}

// Block represents a block of statements
type Block struct {
	Statements []Statement
	Line       int
	Column     int
}

func (n *Block) Pos() (int, int) { return n.Line, n.Column }
func (n *Block) stmtNode()       {}

// FuncDef defines a function: func name(params) return_type { body }
type FuncDef struct {
	Name       string
	Params     []*Parameter
	ReturnType *types.Type
	Body       *Block
	Line       int
	Column     int
}

func (n *FuncDef) Pos() (int, int) { return n.Line, n.Column }
func (n *FuncDef) stmtNode()       {}

// ImportFunc declares a function provided by the host:
// import func name(params) return_type;
type ImportFunc struct {
	Module     string
	Name       string
	Params     []*Parameter
	ReturnType *types.Type
	Line       int
	Column     int
}

func (n *ImportFunc) Pos() (int, int) { return n.Line, n.Column }
func (n *ImportFunc) stmtNode()       {}

// Print writes a value to the host: print value;
type Print struct {
	Value  Expression
	Line   int
	Column int
}

func (n *Print) Pos() (int, int) { return n.Line, n.Column }
func (n *Print) stmtNode()       {}

// If represents if test { then } else { otherwise }. Else may be nil.
type If struct {
	Test   Expression
	Then   *Block
	Else   *Block
	Line   int
	Column int
}

func (n *If) Pos() (int, int) { return n.Line, n.Column }
func (n *If) stmtNode()       {}

// While represents while test { body }
type While struct {
	Test   Expression
	Body   *Block
	Line   int
	Column int
}

func (n *While) Pos() (int, int) { return n.Line, n.Column }
func (n *While) stmtNode()       {}

// Break leaves the innermost loop
type Break struct {
	Line   int
	Column int
}

func (n *Break) Pos() (int, int) { return n.Line, n.Column }
func (n *Break) stmtNode()       {}

// Continue jumps to the start of the innermost loop
type Continue struct {
	Line   int
	Column int
}

func (n *Continue) Pos() (int, int) { return n.Line, n.Column }
func (n *Continue) stmtNode()       {}

// Return leaves the enclosing function with Value
type Return struct {
	Value  Expression
	Line   int
	Column int
}

func (n *Return) Pos() (int, int) { return n.Line, n.Column }
func (n *Return) stmtNode()       {}

// Function is implemented by FuncDef and ImportFunc: anything callable.
type Function interface {
	Statement
	FuncName() string
	FuncParams() []*Parameter
	FuncReturnType() *types.Type
}

func (n *FuncDef) FuncName() string               { return n.Name }
func (n *FuncDef) FuncParams() []*Parameter       { return n.Params }
func (n *FuncDef) FuncReturnType() *types.Type    { return n.ReturnType }
func (n *ImportFunc) FuncName() string            { return n.Name }
func (n *ImportFunc) FuncParams() []*Parameter    { return n.Params }
func (n *ImportFunc) FuncReturnType() *types.Type { return n.ReturnType }
