package ir

import (
	"fmt"
	"iter"

	"github.com/lhaig/wabbit/internal/ast"
	"github.com/lhaig/wabbit/internal/types"
)

// Emit returns the instruction stream for a checked node. The sequence is
// produced lazily and may be ranged over any number of times. Variables
// declared by node are emitted as function locals.
//
// Function definitions and imports produce no instructions here; Lower
// turns them into module entries.
//
// Emit panics if it meets an expression without a concrete type: the tree
// must have been checked without errors.
func Emit(node ast.Node) iter.Seq[Instr] {
	return emitter{}.seq(node)
}

// emitter carries the one piece of context emission needs: whether
// declarations create globals (top-level code) or locals (function bodies).
type emitter struct {
	global bool
}

func (e emitter) seq(nodes ...ast.Node) iter.Seq[Instr] {
	return func(yield func(Instr) bool) {
		for _, n := range nodes {
			if !e.gen(n, yield) {
				return
			}
		}
	}
}

// gen yields the instructions for node in order. It returns false as soon as
// yield asks to stop.
func (e emitter) gen(node ast.Node, yield func(Instr) bool) bool {
	switch n := node.(type) {
	// Expressions
	case *ast.IntLiteral:
		return yield(ConstI(n.Value))
	case *ast.FloatLiteral:
		return yield(ConstF(n.Value))
	case *ast.BoolLiteral:
		if n.Value {
			return yield(ConstI(1))
		}
		return yield(ConstI(0))
	case *ast.CharLiteral:
		return yield(ConstI(int64([]rune(n.Value)[0])))
	case *ast.PrefixOp:
		return e.genPrefix(n, yield)
	case *ast.InfixOp:
		return e.gen(n.Left, yield) &&
			e.gen(n.Right, yield) &&
			yield(Simple(infixOp(n.Symbol, valType(n.Left))))
	case *ast.VarGet:
		return yield(Named(LOAD, n.Name))
	case *ast.MemGet:
		return e.gen(n.Addr, yield) && yield(Simple(memOp(PEEKI, PEEKF, PEEKB, n.Type())))
	case *ast.TypeCast:
		if !e.gen(n.Value, yield) {
			return false
		}
		if op, ok := castOp(valType(n.Value), valType(n)); ok {
			return yield(Simple(op))
		}
		return true
	case *ast.FuncCall:
		for _, arg := range n.Args {
			if !e.gen(arg, yield) {
				return false
			}
		}
		return yield(Named(CALL, n.Name))
	case *ast.Parameter:
		return true

	// Statements
	case *ast.VarDef:
		return yield(e.declare(n.Name, n.DeclType))
	case *ast.VarSet:
		return e.gen(n.Value, yield) && yield(Named(STORE, n.Name))
	case *ast.VarDefSet:
		t := n.DeclType
		if t == nil {
			t = n.Value.Type()
		}
		return yield(e.declare(n.Name, t)) &&
			e.gen(n.Value, yield) &&
			yield(Named(STORE, n.Name))
	case *ast.MemSet:
		// Address first, then the value: the encoder's store takes them in
		// that order.
		return e.gen(n.Addr, yield) &&
			e.gen(n.Value, yield) &&
			yield(Simple(memOp(POKEI, POKEF, POKEB, n.Value.Type())))
	case *ast.Block:
		for _, st := range n.Statements {
			if !e.gen(st, yield) {
				return false
			}
		}
		return true
	case *ast.FuncDef, *ast.ImportFunc:
		return true
	case *ast.Print:
		return e.gen(n.Value, yield) && yield(Simple(printOp(n.Value.Type())))
	case *ast.If:
		if !e.gen(n.Test, yield) || !yield(Simple(IF)) || !e.gen(n.Then, yield) {
			return false
		}
		if n.Else != nil {
			if !yield(Simple(ELSE)) || !e.gen(n.Else, yield) {
				return false
			}
		}
		return yield(Simple(ENDIF))
	case *ast.While:
		// CBREAK leaves the loop when the inverted test is true.
		return yield(Simple(LOOP)) &&
			yield(ConstI(1)) &&
			e.gen(n.Test, yield) &&
			yield(Simple(SUBI)) &&
			yield(Simple(CBREAK)) &&
			e.gen(n.Body, yield) &&
			yield(Simple(CONTINUE)) &&
			yield(Simple(ENDLOOP))
	case *ast.Break:
		return yield(ConstI(1)) && yield(Simple(CBREAK))
	case *ast.Continue:
		return yield(Simple(CONTINUE))
	case *ast.Return:
		return e.gen(n.Value, yield) && yield(Simple(RET))
	default:
		panic(fmt.Sprintf("ir: cannot emit %T", node))
	}
}

func (e emitter) genPrefix(n *ast.PrefixOp, yield func(Instr) bool) bool {
	switch n.Symbol {
	case "+":
		return e.gen(n.Operand, yield)
	case "-":
		vt := valType(n.Operand)
		return yield(zero(vt)) &&
			e.gen(n.Operand, yield) &&
			yield(Simple(infixOp("-", vt)))
	case "!":
		return yield(ConstI(1)) && e.gen(n.Operand, yield) && yield(Simple(SUBI))
	case "^":
		return e.gen(n.Operand, yield) && yield(Simple(GROW))
	default:
		panic(fmt.Sprintf("ir: unknown prefix operator %q", n.Symbol))
	}
}

func (e emitter) declare(name string, t *types.Type) Instr {
	vt := typeOf(t)
	switch {
	case e.global && vt == F64:
		return Named(GLOBALF, name)
	case e.global:
		return Named(GLOBALI, name)
	case vt == F64:
		return Named(LOCALF, name)
	default:
		return Named(LOCALI, name)
	}
}

// typeOf maps a checked type to its machine representation.
func typeOf(t *types.Type) ValType {
	if t == nil || !t.IsConcrete() {
		panic(fmt.Sprintf("ir: cannot emit value of type %v", t))
	}
	if t.Name() == types.FloatName {
		return F64
	}
	return I32
}

func valType(e ast.Expression) ValType {
	if e.Type() == nil || !e.Type().IsConcrete() {
		panic(fmt.Sprintf("ir: %s has no concrete type", e))
	}
	return typeOf(e.Type())
}

func zero(vt ValType) Instr {
	if vt == F64 {
		return ConstF(0)
	}
	return ConstI(0)
}

var infixOps = map[string][2]Op{
	"+":  {ADDI, ADDF},
	"-":  {SUBI, SUBF},
	"*":  {MULI, MULF},
	"/":  {DIVI, DIVF},
	"<":  {LTI, LTF},
	"<=": {LEI, LEF},
	">":  {GTI, GTF},
	">=": {GEI, GEF},
	"==": {EQI, EQF},
	"!=": {NEI, NEF},
	"&&": {ANDI, OpInvalid},
	"||": {ORI, OpInvalid},
}

// infixOp picks the opcode for symbol from the operand representation.
func infixOp(symbol string, vt ValType) Op {
	ops, ok := infixOps[symbol]
	op := ops[0]
	if vt == F64 {
		op = ops[1]
	}
	if !ok || op == OpInvalid {
		panic(fmt.Sprintf("ir: operator %q has no %s form", symbol, vt))
	}
	return op
}

// memOp picks the load or store variant for a value of type t. bool and
// char occupy a single byte.
func memOp(i, f, b Op, t *types.Type) Op {
	switch typeOf(t) {
	case F64:
		return f
	default:
		if t.Name() == types.IntName {
			return i
		}
		return b
	}
}

// printOp prints int as a number, float as a float and bool and char as
// bytes.
func printOp(t *types.Type) Op {
	return memOp(PRINTI, PRINTF, PRINTB, t)
}

func castOp(from, to ValType) (Op, bool) {
	switch {
	case from == I32 && to == F64:
		return ITOF, true
	case from == F64 && to == I32:
		return FTOI, true
	default:
		return OpInvalid, false
	}
}
