package ast

import "fmt"

// Inspect traverses the tree rooted at node in depth-first order, calling f
// for each node before its children. Children are skipped when f returns
// false.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *IntLiteral, *FloatLiteral, *BoolLiteral, *CharLiteral, *VarGet, *Parameter,
		*VarDef, *Break, *Continue:
	case *PrefixOp:
		Inspect(n.Operand, f)
	case *InfixOp:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *MemGet:
		Inspect(n.Addr, f)
	case *TypeCast:
		Inspect(n.Value, f)
	case *FuncCall:
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *VarSet:
		Inspect(n.Value, f)
	case *VarDefSet:
		Inspect(n.Value, f)
	case *MemSet:
		Inspect(n.Addr, f)
		Inspect(n.Value, f)
	case *Block:
		for _, s := range n.Statements {
			Inspect(s, f)
		}
	case *FuncDef:
		for _, p := range n.Params {
			Inspect(p, f)
		}
		Inspect(n.Body, f)
	case *ImportFunc:
		for _, p := range n.Params {
			Inspect(p, f)
		}
	case *Print:
		Inspect(n.Value, f)
	case *If:
		Inspect(n.Test, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *While:
		Inspect(n.Test, f)
		Inspect(n.Body, f)
	case *Return:
		Inspect(n.Value, f)
	default:
		panic(fmt.Sprintf("ast: unexpected node %T", node))
	}
}

// Expressions returns every expression in the tree rooted at node.
func Expressions(node Node) []Expression {
	var out []Expression
	Inspect(node, func(n Node) bool {
		if e, ok := n.(Expression); ok {
			out = append(out, e)
		}
		return true
	})
	return out
}
