package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/wabbit/internal/ast"
	"github.com/lhaig/wabbit/internal/diagnostic"
	"github.com/lhaig/wabbit/internal/testutil"
	"github.com/lhaig/wabbit/internal/types"
)

func num(v int64) *ast.IntLiteral     { return ast.Must(ast.NewIntLiteral(v)) }
func flt(v float64) *ast.FloatLiteral { return ast.Must(ast.NewFloatLiteral(v)) }
func ref(name string) *ast.VarGet     { return ast.Must(ast.NewVarGet(name)) }

func infix(sym string, l, r ast.Expression) *ast.InfixOp {
	return ast.Must(ast.NewInfixOp(sym, l, r))
}

func program(stmts ...ast.Statement) *ast.Block { return ast.Must(ast.NewBlock(stmts...)) }

func printOf(e ast.Expression) *ast.Print { return ast.Must(ast.NewPrint(e)) }

func call(name string, args ...ast.Expression) *ast.FuncCall {
	return ast.Must(ast.NewFuncCall(name, args...))
}

func ret(e ast.Expression) *ast.Return { return ast.Must(ast.NewReturn(e)) }

func messages(ctx *Context) []string {
	var out []string
	for _, d := range ctx.Diagnostics.All() {
		out = append(out, d.Message)
	}
	return out
}

func TestSampleProgramsCheckCleanly(t *testing.T) {
	reg := types.NewRegistry()
	for _, p := range testutil.Programs(reg) {
		t.Run(p.Name, func(t *testing.T) {
			ctx := CheckProgram(reg, p.Body)
			require.Empty(t, messages(ctx), p.Source)

			for _, e := range ast.Expressions(p.Body) {
				require.NotNil(t, e.Type(), "untyped %s", e)
				assert.True(t, e.Type().IsConcrete(), "%s has type %s", e, e.Type())
			}
		})
	}
}

func TestErrorDoesNotCascade(t *testing.T) {
	reg := types.NewRegistry()
	inner := infix("&&", num(1), num(2))
	outer := infix("+", inner, num(3))

	ctx := CheckProgram(reg, program(printOf(outer)))

	require.Equal(t, []string{`operator "&&" not defined for int and int`}, messages(ctx))
	assert.Len(t, ctx.Diagnostics.For(inner), 1)
	assert.Equal(t, reg.Error(), inner.Type())
	assert.Equal(t, reg.Error(), outer.Type())
}

func TestBinaryOperators(t *testing.T) {
	reg := types.NewRegistry()
	tests := []struct {
		name string
		expr *ast.InfixOp
		want *types.Type
		msg  string
	}{
		{"int arithmetic", infix("*", num(2), num(3)), reg.Int(), ""},
		{"float division", infix("/", flt(1), flt(2)), reg.Float(), ""},
		{"mixed arithmetic", infix("+", num(1), flt(2)), reg.Error(), `operator "+" not defined for int and float`},
		{"char comparison", infix("<", ast.Must(ast.NewCharLiteral("a")), ast.Must(ast.NewCharLiteral("b"))), reg.Bool(), ""},
		{"bool ordering", infix("<", ast.Must(ast.NewBoolLiteral(true)), ast.Must(ast.NewBoolLiteral(false))), reg.Error(), `operator "<" not defined for bool and bool`},
		{"bool equality", infix("==", ast.Must(ast.NewBoolLiteral(true)), ast.Must(ast.NewBoolLiteral(false))), reg.Bool(), ""},
		{"logical or", infix("||", ast.Must(ast.NewBoolLiteral(true)), infix("<", num(1), num(2))), reg.Bool(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := CheckProgram(reg, program(printOf(tt.expr)))
			assert.Equal(t, tt.want, tt.expr.Type())
			if tt.msg == "" {
				assert.Empty(t, messages(ctx))
			} else {
				assert.Equal(t, []string{tt.msg}, messages(ctx))
			}
		})
	}
}

func TestPrefixOperators(t *testing.T) {
	reg := types.NewRegistry()

	neg := ast.Must(ast.NewPrefixOp("-", flt(2)))
	not := ast.Must(ast.NewPrefixOp("!", num(1)))
	grow := ast.Must(ast.NewPrefixOp("^", flt(1)))

	ctx := CheckProgram(reg, program(printOf(neg), printOf(not), printOf(grow)))

	assert.Equal(t, reg.Float(), neg.Type())
	assert.Equal(t, reg.Error(), not.Type())
	assert.Equal(t, reg.Error(), grow.Type())
	assert.Equal(t, []string{
		`operator "!" not defined for int`,
		`operator "^" not defined for float`,
	}, messages(ctx))
}

func TestNoImplicitConversionOnAssignment(t *testing.T) {
	reg := types.NewRegistry()
	ctx := CheckProgram(reg, program(
		ast.Must(ast.NewVarDefSet("x", reg.Int(), num(2), false)),
		ast.Must(ast.NewVarSet("x", flt(1))),
	))

	assert.Equal(t, []string{`cannot assign float to "x" of type int`}, messages(ctx))
}

func TestInferredDeclarationType(t *testing.T) {
	reg := types.NewRegistry()
	ctx := CheckProgram(reg, program(
		ast.Must(ast.NewVarDefSet("pi", nil, flt(3.14), true)),
		ast.Must(ast.NewVarDefSet("tau", reg.Float(), infix("*", flt(2), ref("pi")), false)),
	))

	require.Empty(t, messages(ctx))
	sym, ok := ctx.Global("pi")
	require.True(t, ok)
	assert.Equal(t, reg.Float(), sym.Type)
	assert.Equal(t, SymConst, sym.Kind)
	assert.True(t, sym.Global)
}

func TestFunctionCalls(t *testing.T) {
	reg := types.NewRegistry()
	g := ast.Must(ast.NewFuncDef("g",
		[]*ast.Parameter{
			ast.Must(ast.NewParameter("a", reg.Int())),
			ast.Must(ast.NewParameter("b", reg.Float())),
		},
		reg.Int(),
		program(ret(ref("a")))))

	tests := []struct {
		name string
		call *ast.FuncCall
		want []string
	}{
		{
			name: "ok",
			call: call("g", num(1), flt(2)),
		},
		{
			name: "every argument reported",
			call: call("g", flt(1), num(2)),
			want: []string{
				`argument 1 to "g": expected int, got float`,
				`argument 2 to "g": expected float, got int`,
			},
		},
		{
			name: "arity",
			call: call("g", num(1)),
			want: []string{`function "g" expects 2 arguments, got 1`},
		},
		{
			name: "undefined",
			call: call("h", num(1)),
			want: []string{`undefined function "h"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := CheckProgram(reg, program(g, printOf(tt.call)))
			assert.Equal(t, tt.want, messages(ctx))
		})
	}
}

func TestBothBranchesChecked(t *testing.T) {
	reg := types.NewRegistry()
	stmt := ast.Must(ast.NewIf(num(1),
		program(printOf(num(1))),
		program(printOf(infix("+", num(1), flt(2))))))

	ctx := CheckProgram(reg, program(stmt))

	assert.Equal(t, []string{
		"if test must be bool, got int",
		`operator "+" not defined for int and float`,
	}, messages(ctx))
}

func TestWhileTestMustBeBool(t *testing.T) {
	reg := types.NewRegistry()
	loop := ast.Must(ast.NewWhile(flt(1), program(ast.NewBreak())))

	ctx := CheckProgram(reg, program(loop))

	assert.Equal(t, []string{"while test must be bool, got float"}, messages(ctx))
}

func TestRecursion(t *testing.T) {
	reg := types.NewRegistry()
	fn := ast.Must(ast.NewFuncDef("fact",
		[]*ast.Parameter{ast.Must(ast.NewParameter("n", reg.Int()))},
		reg.Int(),
		program(
			ast.Must(ast.NewIf(infix("<", ref("n"), num(1)), program(ret(num(1))), nil)),
			ret(infix("*", ref("n"), call("fact", infix("-", ref("n"), num(1))))),
		)))

	ctx := CheckProgram(reg, program(fn, printOf(call("fact", num(5)))))

	assert.Empty(t, messages(ctx))
	got, ok := ctx.Func("fact")
	require.True(t, ok)
	assert.Same(t, fn, got)
}

func TestMemoryLoadTakesContextType(t *testing.T) {
	reg := types.NewRegistry()
	load := func() *ast.MemGet { return ast.Must(ast.NewMemGet(num(0))) }

	asFloat := load()
	asInt := load()
	asBool := load()
	cast := load()
	operand := load()

	ctx := CheckProgram(reg, program(
		ast.Must(ast.NewVarDefSet("y", reg.Float(), asFloat, false)),
		printOf(asInt),
		printOf(ast.Must(ast.NewPrefixOp("!", asBool))),
		printOf(ast.Must(ast.NewTypeCast(reg.Float(), cast))),
		printOf(infix("+", flt(1), operand)),
	))

	require.Empty(t, messages(ctx))
	assert.Equal(t, reg.Float(), asFloat.Type())
	assert.Equal(t, reg.Int(), asInt.Type())
	assert.Equal(t, reg.Bool(), asBool.Type())
	assert.Equal(t, reg.Float(), cast.Type())
	assert.Equal(t, reg.Float(), operand.Type())
}

func TestMemoryAddressMustBeInt(t *testing.T) {
	reg := types.NewRegistry()
	addr := flt(8)
	store := ast.Must(ast.NewMemSet(addr, num(1)))

	ctx := CheckProgram(reg, program(store))

	assert.Equal(t, []string{"memory address must be int, got float"}, messages(ctx))
	got, ok := ctx.MemoryStore(addr)
	require.True(t, ok)
	assert.Same(t, store, got)
}

func TestCasts(t *testing.T) {
	reg := types.NewRegistry()
	ok := ast.Must(ast.NewTypeCast(reg.Char(), num(65)))
	bad := ast.Must(ast.NewTypeCast(reg.Bool(), num(1)))

	ctx := CheckProgram(reg, program(printOf(ok), printOf(bad)))

	assert.Equal(t, reg.Char(), ok.Type())
	assert.Equal(t, reg.Error(), bad.Type())
	assert.Equal(t, []string{"cannot cast int to bool"}, messages(ctx))
}

func TestStatementPlacement(t *testing.T) {
	reg := types.NewRegistry()
	nested := ast.Must(ast.NewFuncDef("outer", nil, reg.Int(), program(
		ast.Must(ast.NewFuncDef("inner", nil, reg.Int(), program(ret(num(1))))),
		ret(num(0)),
	)))

	tests := []struct {
		name string
		prog *ast.Block
		want []string
	}{
		{"break outside loop", program(ast.NewBreak()), []string{"break outside loop"}},
		{"continue outside loop", program(ast.NewContinue()), []string{"continue outside loop"}},
		{"return outside function", program(ret(num(0))), []string{"return outside function"}},
		{"nested function", program(nested), []string{`function "inner" must be defined at top level`}},
		{
			name: "loop does not leak into function",
			prog: program(ast.Must(ast.NewWhile(ast.Must(ast.NewBoolLiteral(true)), program(
				ast.Must(ast.NewFuncDef("f", nil, reg.Int(), program(ast.NewBreak()))),
			)))),
			want: []string{"break outside loop"},
		},
		{
			name: "return type mismatch",
			prog: program(ast.Must(ast.NewFuncDef("h", nil, reg.Int(), program(ret(flt(1)))))),
			want: []string{`function "h" returns int, got float`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := CheckProgram(reg, tt.prog)
			assert.Equal(t, tt.want, messages(ctx))
		})
	}
}

func TestNestedFunctionBodyIsChecked(t *testing.T) {
	reg := types.NewRegistry()
	bad := infix("&&", num(1), num(2))
	importParam := ast.Must(ast.NewParameter("c", reg.Char()))
	outer := ast.Must(ast.NewFuncDef("f", nil, reg.Int(), program(
		ast.Must(ast.NewFuncDef("g", nil, reg.Int(), program(
			printOf(bad),
			ret(num(1)),
		))),
		ast.Must(ast.NewImportFunc("env", "putc", []*ast.Parameter{importParam}, reg.Int())),
		ret(num(0)),
	)))

	ctx := CheckProgram(reg, program(outer))

	assert.Equal(t, []string{
		`function "g" must be defined at top level`,
		`operator "&&" not defined for int and int`,
		`function "putc" must be imported at top level`,
	}, messages(ctx))
	assert.Equal(t, reg.Error(), bad.Type())
	assert.Equal(t, reg.Char(), importParam.Type())
	for _, e := range ast.Expressions(outer) {
		assert.NotNil(t, e.Type(), "untyped %s", e)
	}

	_, ok := ctx.Func("g")
	assert.False(t, ok, "nested definitions are not callable")
	_, ok = ctx.Func("f")
	assert.True(t, ok)
}

func TestUnreachableStatementWarning(t *testing.T) {
	reg := types.NewRegistry()
	dead := printOf(num(2))
	fn := ast.Must(ast.NewFuncDef("f", nil, reg.Int(), program(
		ret(num(1)),
		dead,
		ret(num(3)),
	)))
	loop := ast.Must(ast.NewWhile(ast.Must(ast.NewBoolLiteral(true)), program(
		ast.NewBreak(),
		printOf(num(4)),
	)))

	ctx := CheckProgram(reg, program(fn, loop))

	assert.False(t, ctx.HasErrors(), "warnings are not errors")
	assert.Equal(t, []string{"unreachable statement", "unreachable statement"}, messages(ctx))
	require.Len(t, ctx.Diagnostics.For(dead), 1)
	assert.Equal(t, diagnostic.Warning, ctx.Diagnostics.For(dead)[0].Severity)
	assert.Equal(t, reg.Int(), dead.Value.Type(), "unreachable code is still checked")
}

func TestConstantsAreReadOnly(t *testing.T) {
	reg := types.NewRegistry()
	ctx := CheckProgram(reg, program(
		ast.Must(ast.NewVarDefSet("c", nil, num(1), true)),
		ast.Must(ast.NewVarSet("c", num(2))),
	))

	assert.Equal(t, []string{`cannot assign to constant "c"`}, messages(ctx))
}

func TestScopes(t *testing.T) {
	reg := types.NewRegistry()

	t.Run("redeclaration", func(t *testing.T) {
		ctx := CheckProgram(reg, program(
			ast.Must(ast.NewVarDef("x", reg.Int())),
			ast.Must(ast.NewVarDef("x", reg.Float())),
		))
		assert.Equal(t, []string{`"x" already declared in this scope`}, messages(ctx))
	})

	t.Run("duplicate function", func(t *testing.T) {
		body := func() *ast.Block { return program(ret(num(1))) }
		ctx := CheckProgram(reg, program(
			ast.Must(ast.NewFuncDef("f", nil, reg.Int(), body())),
			ast.Must(ast.NewFuncDef("f", nil, reg.Int(), body())),
		))
		assert.Equal(t, []string{`function "f" already defined`}, messages(ctx))
	})

	t.Run("parameter shadows global", func(t *testing.T) {
		ctx := CheckProgram(reg, program(
			ast.Must(ast.NewVarDefSet("x", reg.Float(), flt(1), false)),
			ast.Must(ast.NewFuncDef("f",
				[]*ast.Parameter{ast.Must(ast.NewParameter("x", reg.Int()))},
				reg.Int(),
				program(ret(ref("x"))))),
		))
		assert.Empty(t, messages(ctx))
	})

	t.Run("globals visible in functions", func(t *testing.T) {
		ctx := CheckProgram(reg, program(
			ast.Must(ast.NewVarDefSet("g", reg.Int(), num(1), false)),
			ast.Must(ast.NewFuncDef("f", nil, reg.Int(), program(ret(ref("g"))))),
		))
		assert.Empty(t, messages(ctx))
	})

	t.Run("locals do not escape", func(t *testing.T) {
		ctx := CheckProgram(reg, program(
			ast.Must(ast.NewFuncDef("a", nil, reg.Int(), program(
				ast.Must(ast.NewVarDefSet("t", reg.Int(), num(1), false)),
				ret(ref("t")),
			))),
			ast.Must(ast.NewFuncDef("b", nil, reg.Int(), program(ret(ref("t"))))),
			printOf(ref("t")),
		))
		assert.Equal(t, []string{`undefined variable "t"`, `undefined variable "t"`}, messages(ctx))
		_, ok := ctx.Global("t")
		assert.False(t, ok)
	})
}

func TestDiagnosticsInSourceOrder(t *testing.T) {
	reg := types.NewRegistry()
	ctx := CheckProgram(reg, program(
		printOf(ref("a")),
		ast.Must(ast.NewVarSet("b", num(1))),
		printOf(call("c")),
	))

	assert.Equal(t, []string{
		`undefined variable "a"`,
		`undefined variable "b"`,
		`undefined function "c"`,
	}, messages(ctx))
	assert.Equal(t, 3, ctx.Diagnostics.ErrorCount())
}

func TestFreshContextPerProgram(t *testing.T) {
	reg := types.NewRegistry()
	prog := program(
		ast.Must(ast.NewVarDef("x", reg.Int())),
		ast.Must(ast.NewImportFunc("", "putchar",
			[]*ast.Parameter{ast.Must(ast.NewParameter("c", reg.Char()))}, reg.Int())),
	)

	first := CheckProgram(reg, prog)
	second := CheckProgram(reg, prog)

	assert.Empty(t, messages(first))
	assert.Empty(t, messages(second))
	assert.Len(t, second.Functions(), 1)
}
