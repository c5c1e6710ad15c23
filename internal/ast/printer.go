package ast

import (
	"strconv"
	"strings"
)

// String renderings are single-line and source-like. Compound statements
// render only their header; they are used to point at a node in
// diagnostics, not to reproduce the program.

func (n *IntLiteral) String() string { return strconv.FormatInt(n.Value, 10) }

func (n *FloatLiteral) String() string {
	s := strconv.FormatFloat(n.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

func (n *BoolLiteral) String() string { return strconv.FormatBool(n.Value) }

func (n *CharLiteral) String() string { return "'" + n.Value + "'" }

func (n *PrefixOp) String() string { return n.Symbol + operand(n.Operand) }

func (n *InfixOp) String() string {
	return operand(n.Left) + " " + n.Symbol + " " + operand(n.Right)
}

func (n *VarGet) String() string { return n.Name }

func (n *MemGet) String() string { return "`" + operand(n.Addr) }

func (n *TypeCast) String() string { return n.Target.String() + "(" + n.Value.String() + ")" }

func (n *FuncCall) String() string { return n.Name + "(" + joinExprs(n.Args) + ")" }

func (n *Parameter) String() string { return n.Name + " " + n.DeclType.String() }

func (n *VarDef) String() string { return "var " + n.Name + " " + n.DeclType.String() + ";" }

func (n *VarSet) String() string { return n.Name + " = " + n.Value.String() + ";" }

func (n *VarDefSet) String() string {
	var sb strings.Builder
	if n.Const {
		sb.WriteString("const ")
	} else {
		sb.WriteString("var ")
	}
	sb.WriteString(n.Name)
	if n.DeclType != nil {
		sb.WriteString(" " + n.DeclType.String())
	}
	sb.WriteString(" = " + n.Value.String() + ";")
	return sb.String()
}

func (n *MemSet) String() string { return "`" + operand(n.Addr) + " = " + n.Value.String() + ";" }

func (n *Block) String() string {
	switch len(n.Statements) {
	case 0:
		return "{ }"
	case 1:
		return "{ " + n.Statements[0].String() + " }"
	default:
		return "{ " + n.Statements[0].String() + " ... }"
	}
}

func (n *FuncDef) String() string {
	return "func " + signature(n.Name, n.Params) + " " + n.ReturnType.String()
}

func (n *ImportFunc) String() string {
	return "import func " + signature(n.Name, n.Params) + " " + n.ReturnType.String() + ";"
}

func (n *Print) String() string { return "print " + n.Value.String() + ";" }

func (n *If) String() string { return "if " + n.Test.String() }

func (n *While) String() string { return "while " + n.Test.String() }

func (n *Break) String() string    { return "break;" }
func (n *Continue) String() string { return "continue;" }

func (n *Return) String() string { return "return " + n.Value.String() + ";" }

// operand parenthesizes nested operators so the rendering stays unambiguous.
func operand(e Expression) string {
	switch e.(type) {
	case *InfixOp:
		return "(" + e.String() + ")"
	default:
		return e.String()
	}
}

func joinExprs(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func signature(name string, params []*Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}
