package testutil

import (
	"github.com/lhaig/wabbit/internal/ast"
	"github.com/lhaig/wabbit/internal/types"
)

// Program is a named sample program.
type Program struct {
	Name   string
	Source string
	Body   *ast.Block
}

func i(v int64) *ast.IntLiteral     { return ast.Must(ast.NewIntLiteral(v)) }
func f(v float64) *ast.FloatLiteral { return ast.Must(ast.NewFloatLiteral(v)) }
func v(name string) *ast.VarGet     { return ast.Must(ast.NewVarGet(name)) }

func op(sym string, l, r ast.Expression) *ast.InfixOp { return ast.Must(ast.NewInfixOp(sym, l, r)) }

func block(stmts ...ast.Statement) *ast.Block { return ast.Must(ast.NewBlock(stmts...)) }

// Programs returns the sample programs, all of which check cleanly.
func Programs(reg *types.Registry) []Program {
	return []Program{
		{
			Name:   "print",
			Source: "print 2 + 3 * -4; print 2.0 - 3.0 / -4.0;",
			Body: block(
				ast.Must(ast.NewPrint(op("+", i(2), op("*", i(3), ast.Must(ast.NewPrefixOp("-", i(4))))))),
				ast.Must(ast.NewPrint(op("-", f(2.0), op("/", f(3.0), ast.Must(ast.NewPrefixOp("-", f(4.0))))))),
			),
		},
		{
			Name:   "variables",
			Source: "const pi = 3.14159; var tau float; tau = 2.0 * pi; print tau;",
			Body: block(
				ast.Must(ast.NewVarDefSet("pi", nil, f(3.14159), true)),
				ast.Must(ast.NewVarDef("tau", reg.Float())),
				ast.Must(ast.NewVarSet("tau", op("*", f(2.0), v("pi")))),
				ast.Must(ast.NewPrint(v("tau"))),
			),
		},
		{
			Name:   "conditional",
			Source: "var a int = 2; var b int = 3; if a < b { print a; } else { print b; }",
			Body: block(
				ast.Must(ast.NewVarDefSet("a", reg.Int(), i(2), false)),
				ast.Must(ast.NewVarDefSet("b", reg.Int(), i(3), false)),
				ast.Must(ast.NewIf(op("<", v("a"), v("b")),
					block(ast.Must(ast.NewPrint(v("a")))),
					block(ast.Must(ast.NewPrint(v("b")))))),
			),
		},
		{
			Name:   "loop",
			Source: "const n = 10; var x int = 1; var fact int = 1; while x < n { fact = fact * x; print fact; x = x + 1; }",
			Body: block(
				ast.Must(ast.NewVarDefSet("n", reg.Int(), i(10), true)),
				ast.Must(ast.NewVarDefSet("x", reg.Int(), i(1), false)),
				ast.Must(ast.NewVarDefSet("fact", reg.Int(), i(1), false)),
				ast.Must(ast.NewWhile(op("<", v("x"), v("n")), block(
					ast.Must(ast.NewVarSet("fact", op("*", v("fact"), v("x")))),
					ast.Must(ast.NewPrint(v("fact"))),
					ast.Must(ast.NewVarSet("x", op("+", v("x"), i(1)))),
				))),
			),
		},
		{
			Name:   "square",
			Source: "func square(x int) int { return x*x; } print square(4); print square(10);",
			Body: block(
				ast.Must(ast.NewFuncDef("square",
					[]*ast.Parameter{ast.Must(ast.NewParameter("x", reg.Int()))},
					reg.Int(),
					block(ast.Must(ast.NewReturn(op("*", v("x"), v("x"))))))),
				ast.Must(ast.NewPrint(ast.Must(ast.NewFuncCall("square", i(4))))),
				ast.Must(ast.NewPrint(ast.Must(ast.NewFuncCall("square", i(10))))),
			),
		},
		{
			Name: "fact",
			Source: "func fact(n int) int { var x int = 1; var result int = 1; " +
				"while x < n { result = result * x; x = x + 1; } return result; } print fact(10);",
			Body: block(
				ast.Must(ast.NewFuncDef("fact",
					[]*ast.Parameter{ast.Must(ast.NewParameter("n", reg.Int()))},
					reg.Int(),
					block(
						ast.Must(ast.NewVarDefSet("x", reg.Int(), i(1), false)),
						ast.Must(ast.NewVarDefSet("result", reg.Int(), i(1), false)),
						ast.Must(ast.NewWhile(op("<", v("x"), v("n")), block(
							ast.Must(ast.NewVarSet("result", op("*", v("result"), v("x")))),
							ast.Must(ast.NewVarSet("x", op("+", v("x"), i(1)))),
						))),
						ast.Must(ast.NewReturn(v("result"))),
					))),
				ast.Must(ast.NewPrint(ast.Must(ast.NewFuncCall("fact", i(10))))),
			),
		},
		{
			Name:   "memory",
			Source: "var memsize int = ^1; const addr = 500; `addr = 1234; print `addr + 10000;",
			Body: block(
				ast.Must(ast.NewVarDefSet("memsize", reg.Int(), ast.Must(ast.NewPrefixOp("^", i(1))), false)),
				ast.Must(ast.NewVarDefSet("addr", reg.Int(), i(500), true)),
				ast.Must(ast.NewMemSet(v("addr"), i(1234))),
				ast.Must(ast.NewPrint(op("+", ast.Must(ast.NewMemGet(v("addr"))), i(10000)))),
			),
		},
		{
			Name: "loop_control",
			Source: "import func putchar(c char) int; var n int = 0; while true { n = n + 1; " +
				"if n == 3 { continue; } if n > 5 { break; } var r int = putchar('x'); } print float(n) / 2.0;",
			Body: block(
				ast.Must(ast.NewImportFunc("env", "putchar", []*ast.Parameter{ast.Must(ast.NewParameter("c", reg.Char()))}, reg.Int())),
				ast.Must(ast.NewVarDefSet("n", reg.Int(), i(0), false)),
				ast.Must(ast.NewWhile(ast.Must(ast.NewBoolLiteral(true)), block(
					ast.Must(ast.NewVarSet("n", op("+", v("n"), i(1)))),
					ast.Must(ast.NewIf(op("==", v("n"), i(3)), block(ast.NewContinue()), nil)),
					ast.Must(ast.NewIf(op(">", v("n"), i(5)), block(ast.NewBreak()), nil)),
					ast.Must(ast.NewVarDefSet("r", reg.Int(), ast.Must(ast.NewFuncCall("putchar", ast.Must(ast.NewCharLiteral("x")))), false)),
				))),
				ast.Must(ast.NewPrint(op("/", ast.Must(ast.NewTypeCast(reg.Float(), v("n"))), f(2.0)))),
			),
		},
	}
}
