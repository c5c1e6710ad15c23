// Package checker performs semantic analysis on a wabbit AST. It never stops
// at the first problem: every defect becomes a diagnostic in the Context and
// the offending expression is typed as error so its parents stay quiet.
package checker

import (
	"fmt"

	"github.com/lhaig/wabbit/internal/ast"
	"github.com/lhaig/wabbit/internal/types"
)

// CheckProgram checks a top-level block in a fresh Context and returns it.
func CheckProgram(reg *types.Registry, prog *ast.Block) *Context {
	ctx := NewContext(reg)
	Check(ctx, prog)
	return ctx
}

// Check checks node, recording bindings and diagnostics in ctx and stamping
// a type on every expression it visits.
func Check(ctx *Context, node ast.Node) {
	switch n := node.(type) {
	case ast.Expression:
		ctx.checkExpression(n)
	case ast.Statement:
		ctx.checkStatement(n)
	default:
		panic(fmt.Sprintf("checker: cannot check %T", node))
	}
}

// --- Expressions ---

func (c *Context) checkExpression(expr ast.Expression) *types.Type {
	var t *types.Type
	switch e := expr.(type) {
	case *ast.IntLiteral:
		t = c.Types.Int()
	case *ast.FloatLiteral:
		t = c.Types.Float()
	case *ast.BoolLiteral:
		t = c.Types.Bool()
	case *ast.CharLiteral:
		t = c.Types.Char()
	case *ast.PrefixOp:
		t = c.checkPrefixOp(e)
	case *ast.InfixOp:
		t = c.checkInfixOp(e)
	case *ast.VarGet:
		t = c.checkVarGet(e)
	case *ast.MemGet:
		t = c.checkMemGet(e)
	case *ast.TypeCast:
		t = c.checkTypeCast(e)
	case *ast.FuncCall:
		t = c.checkFuncCall(e)
	case *ast.Parameter:
		t = e.DeclType
	default:
		panic(fmt.Sprintf("checker: unexpected expression %T", expr))
	}
	expr.SetType(t)
	return t
}

// resolveInfer fixes the type of a memory load from the context consuming it.
// want may be nil when the context has no expectation; int is used then.
func (c *Context) resolveInfer(expr ast.Expression, want *types.Type) *types.Type {
	if expr.Type() != c.Types.Infer() {
		return expr.Type()
	}
	if want == nil || want.IsSentinel() {
		want = c.Types.Int()
	}
	expr.SetType(want)
	return want
}

func (c *Context) isError(t *types.Type) bool {
	return t == c.Types.Error()
}

func (c *Context) checkPrefixOp(expr *ast.PrefixOp) *types.Type {
	c.checkExpression(expr.Operand)
	var want *types.Type
	if expr.Symbol == "!" {
		want = c.Types.Bool()
	}
	operand := c.resolveInfer(expr.Operand, want)
	if c.isError(operand) {
		return c.Types.Error()
	}

	if t := c.Types.UnaryOp(expr.Symbol, operand); t != nil {
		return t
	}
	c.errorf(expr, "operator %q not defined for %s", expr.Symbol, operand)
	return c.Types.Error()
}

func (c *Context) checkInfixOp(expr *ast.InfixOp) *types.Type {
	c.checkExpression(expr.Left)
	c.checkExpression(expr.Right)

	// A memory load takes the type of the other operand.
	left := c.resolveInfer(expr.Left, expr.Right.Type())
	right := c.resolveInfer(expr.Right, left)
	if c.isError(left) || c.isError(right) {
		return c.Types.Error()
	}

	if t := c.Types.BinaryOp(expr.Symbol, left, right); t != nil {
		return t
	}
	c.errorf(expr, "operator %q not defined for %s and %s", expr.Symbol, left, right)
	return c.Types.Error()
}

func (c *Context) checkVarGet(expr *ast.VarGet) *types.Type {
	sym, ok := c.Var(expr.Name)
	if !ok {
		c.errorf(expr, "undefined variable %q", expr.Name)
		return c.Types.Error()
	}
	return sym.Type
}

func (c *Context) checkMemGet(expr *ast.MemGet) *types.Type {
	c.checkAddress(expr.Addr)
	return c.Types.Infer()
}

func (c *Context) checkAddress(addr ast.Expression) {
	c.checkExpression(addr)
	t := c.resolveInfer(addr, c.Types.Int())
	if !c.isError(t) && t != c.Types.Int() {
		c.errorf(addr, "memory address must be int, got %s", t)
	}
}

func (c *Context) checkTypeCast(expr *ast.TypeCast) *types.Type {
	c.checkExpression(expr.Value)
	from := c.resolveInfer(expr.Value, expr.Target)
	if c.isError(from) {
		return c.Types.Error()
	}

	if t := c.Types.Cast(from, expr.Target); t != nil {
		return t
	}
	c.errorf(expr, "cannot cast %s to %s", from, expr.Target)
	return c.Types.Error()
}

func (c *Context) checkFuncCall(expr *ast.FuncCall) *types.Type {
	for _, arg := range expr.Args {
		c.checkExpression(arg)
	}

	fn, ok := c.Func(expr.Name)
	if !ok {
		for _, arg := range expr.Args {
			c.resolveInfer(arg, nil)
		}
		c.errorf(expr, "undefined function %q", expr.Name)
		return c.Types.Error()
	}

	params := fn.FuncParams()
	if len(expr.Args) != len(params) {
		c.errorf(expr, "function %q expects %d arguments, got %d", expr.Name, len(params), len(expr.Args))
	}
	for i, arg := range expr.Args {
		var want *types.Type
		if i < len(params) {
			want = params[i].DeclType
		}
		got := c.resolveInfer(arg, want)
		if want == nil || c.isError(got) {
			continue
		}
		if got != want {
			c.errorf(arg, "argument %d to %q: expected %s, got %s", i+1, expr.Name, want, got)
		}
	}
	return fn.FuncReturnType()
}

// --- Statements ---

func (c *Context) checkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarDef:
		c.declare(&Symbol{Name: s.Name, Decl: s, Type: s.DeclType, Kind: SymVariable})
	case *ast.VarSet:
		c.checkVarSet(s)
	case *ast.VarDefSet:
		c.checkVarDefSet(s)
	case *ast.MemSet:
		c.checkMemSet(s)
	case *ast.Block:
		c.checkBlock(s)
	case *ast.FuncDef:
		c.checkFuncDef(s)
	case *ast.ImportFunc:
		c.checkImportFunc(s)
	case *ast.Print:
		c.checkExpression(s.Value)
		c.resolveInfer(s.Value, nil)
	case *ast.If:
		c.checkTest("if", s.Test)
		c.checkStatement(s.Then)
		if s.Else != nil {
			c.checkStatement(s.Else)
		}
	case *ast.While:
		c.checkTest("while", s.Test)
		c.loopDepth++
		c.checkStatement(s.Body)
		c.loopDepth--
	case *ast.Break:
		if c.loopDepth == 0 {
			c.errorf(s, "break outside loop")
		}
	case *ast.Continue:
		if c.loopDepth == 0 {
			c.errorf(s, "continue outside loop")
		}
	case *ast.Return:
		c.checkReturn(s)
	default:
		panic(fmt.Sprintf("checker: unexpected statement %T", stmt))
	}
}

// checkBlock checks each statement in order and warns, once per block, about
// a statement that follows a return, break or continue.
func (c *Context) checkBlock(b *ast.Block) {
	warned := false
	for i, st := range b.Statements {
		c.checkStatement(st)
		switch st.(type) {
		case *ast.Return, *ast.Break, *ast.Continue:
			if !warned && i+1 < len(b.Statements) {
				c.Diagnostics.Warningf(b.Statements[i+1], "unreachable statement")
				warned = true
			}
		}
	}
}

// checkAssign checks that value can be stored in a location of type target.
// No implicit conversion happens between int and float.
func (c *Context) checkAssign(node ast.Node, name string, target *types.Type, value ast.Expression) {
	got := c.resolveInfer(value, target)
	if c.isError(got) || c.isError(target) {
		return
	}
	if got != target {
		c.errorf(node, "cannot assign %s to %q of type %s", got, name, target)
	}
}

func (c *Context) checkVarSet(stmt *ast.VarSet) {
	c.checkExpression(stmt.Value)

	sym, ok := c.Var(stmt.Name)
	if !ok {
		c.resolveInfer(stmt.Value, nil)
		c.errorf(stmt, "undefined variable %q", stmt.Name)
		return
	}
	if sym.Kind == SymConst {
		c.errorf(stmt, "cannot assign to constant %q", stmt.Name)
	}
	c.checkAssign(stmt, stmt.Name, sym.Type, stmt.Value)
}

func (c *Context) checkVarDefSet(stmt *ast.VarDefSet) {
	c.checkExpression(stmt.Value)

	t := stmt.DeclType
	if t != nil {
		c.checkAssign(stmt, stmt.Name, t, stmt.Value)
	} else {
		t = c.resolveInfer(stmt.Value, nil)
	}

	kind := SymVariable
	if stmt.Const {
		kind = SymConst
	}
	c.declare(&Symbol{Name: stmt.Name, Decl: stmt, Type: t, Kind: kind})
}

func (c *Context) checkMemSet(stmt *ast.MemSet) {
	c.checkAddress(stmt.Addr)
	c.checkExpression(stmt.Value)
	c.resolveInfer(stmt.Value, nil)
	c.mems[stmt.Addr] = stmt
}

func (c *Context) checkTest(kind string, test ast.Expression) {
	c.checkExpression(test)
	t := c.resolveInfer(test, c.Types.Bool())
	if !c.isError(t) && t != c.Types.Bool() {
		c.errorf(test, "%s test must be bool, got %s", kind, t)
	}
}

func (c *Context) checkParams(params []*ast.Parameter) {
	for _, p := range params {
		c.checkExpression(p)
	}
}

func (c *Context) checkFuncDef(fn *ast.FuncDef) {
	nested := c.currentFunc != nil
	c.checkParams(fn.Params)
	if nested {
		// Still checked so its body is typed and its own errors surface.
		c.errorf(fn, "function %q must be defined at top level", fn.Name)
	} else {
		// Published before the body so recursive calls resolve.
		c.publish(fn)
	}

	savedScope, savedFunc, savedLoops := c.scope, c.currentFunc, c.loopDepth
	c.scope = NewScope(c.globals)
	for _, p := range fn.Params {
		c.declare(&Symbol{Name: p.Name, Decl: p, Type: p.DeclType, Kind: SymParam})
	}
	c.currentFunc = fn
	c.loopDepth = 0

	c.checkStatement(fn.Body)

	c.scope, c.currentFunc, c.loopDepth = savedScope, savedFunc, savedLoops
}

func (c *Context) checkImportFunc(fn *ast.ImportFunc) {
	c.checkParams(fn.Params)
	if c.currentFunc != nil {
		c.errorf(fn, "function %q must be imported at top level", fn.Name)
		return
	}
	c.publish(fn)
}

func (c *Context) checkReturn(stmt *ast.Return) {
	c.checkExpression(stmt.Value)
	if c.currentFunc == nil {
		c.resolveInfer(stmt.Value, nil)
		c.errorf(stmt, "return outside function")
		return
	}

	want := c.currentFunc.ReturnType
	got := c.resolveInfer(stmt.Value, want)
	if !c.isError(got) && got != want {
		c.errorf(stmt, "function %q returns %s, got %s", c.currentFunc.Name, want, got)
	}
}
