package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/wabbit/internal/types"
)

func TestConstructorsRejectMalformedFields(t *testing.T) {
	reg := types.NewRegistry()
	one := Must(NewIntLiteral(1))
	body := Must(NewBlock())

	tests := []struct {
		name  string
		build func() error
		field string
	}{
		{"char literal too long", func() error { _, err := NewCharLiteral("ab"); return err }, "Value"},
		{"char literal empty", func() error { _, err := NewCharLiteral(""); return err }, "Value"},
		{"char literal wider than a byte", func() error { _, err := NewCharLiteral("€"); return err }, "Value"},
		{"int literal overflow", func() error { _, err := NewIntLiteral(1 << 40); return err }, "Value"},
		{"bad prefix symbol", func() error { _, err := NewPrefixOp("?", one); return err }, "Symbol"},
		{"bad infix symbol", func() error { _, err := NewInfixOp("%", one, one); return err }, "Symbol"},
		{"infix missing right", func() error { _, err := NewInfixOp("+", one, nil); return err }, "Right"},
		{"empty var name", func() error { _, err := NewVarGet(""); return err }, "Name"},
		{"non-identifier name", func() error { _, err := NewVarSet("1x", one); return err }, "Name"},
		{"cast to sentinel", func() error { _, err := NewTypeCast(reg.Error(), one); return err }, "Target"},
		{"declared infer", func() error { _, err := NewVarDef("x", reg.Infer()); return err }, "DeclType"},
		{"nil call argument", func() error { _, err := NewFuncCall("f", one, nil); return err }, "Args"},
		{"nil block statement", func() error { _, err := NewBlock(nil); return err }, "Statements"},
		{"typed nil operand", func() error { _, err := NewInfixOp("+", (*IntLiteral)(nil), one); return err }, "Left"},
		{"typed nil call argument", func() error { _, err := NewFuncCall("f", (*VarGet)(nil)); return err }, "Args"},
		{"typed nil statement", func() error { _, err := NewBlock((*Print)(nil)); return err }, "Statements"},
		{"func without body", func() error { _, err := NewFuncDef("f", nil, reg.Int(), nil); return err }, "Body"},
		{"func without return type", func() error { _, err := NewFuncDef("f", nil, nil, body); return err }, "ReturnType"},
		{"duplicate parameter", func() error {
			x := Must(NewParameter("x", reg.Int()))
			_, err := NewFuncDef("f", []*Parameter{x, x}, reg.Int(), body)
			return err
		}, "Params"},
		{"if without test", func() error { _, err := NewIf(nil, body, nil); return err }, "Test"},
		{"return without value", func() error { _, err := NewReturn(nil); return err }, "Value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			require.Error(t, err)
			assert.True(t, IsStructural(err))

			var se *StructuralError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.field, se.Field)
		})
	}
}

func TestConstructorsAcceptWellFormedNodes(t *testing.T) {
	reg := types.NewRegistry()

	c, err := NewCharLiteral("é")
	require.NoError(t, err)
	assert.Equal(t, "'é'", c.String())

	_, err = NewCharLiteral("\u00ff")
	require.NoError(t, err, "largest single-byte char")

	op, err := NewInfixOp("<=", Must(NewFloatLiteral(1)), Must(NewFloatLiteral(2.5)))
	require.NoError(t, err)
	assert.Equal(t, "1.0 <= 2.5", op.String())

	imp, err := NewImportFunc("", "putchar", []*Parameter{Must(NewParameter("c", reg.Char()))}, reg.Int())
	require.NoError(t, err)
	assert.Equal(t, DefaultImportModule, imp.Module)
	assert.Equal(t, "import func putchar(c char) int;", imp.String())

	decl, err := NewVarDefSet("pi", nil, Must(NewFloatLiteral(3.14159)), true)
	require.NoError(t, err)
	assert.Equal(t, "const pi = 3.14159;", decl.String())
}

func TestMustPanicsOnStructuralError(t *testing.T) {
	assert.PanicsWithError(t, `invalid PrefixOp.Symbol: unknown operator "~"`, func() {
		Must(NewPrefixOp("~", Must(NewIntLiteral(0))))
	})
}

func TestStringParenthesizesNestedOperators(t *testing.T) {
	expr := Must(NewInfixOp("+",
		Must(NewIntLiteral(2)),
		Must(NewInfixOp("*", Must(NewIntLiteral(3)), Must(NewPrefixOp("-", Must(NewIntLiteral(4))))))))
	assert.Equal(t, "2 + (3 * -4)", expr.String())

	load := Must(NewMemGet(Must(NewInfixOp("+", Must(NewVarGet("base")), Must(NewIntLiteral(8))))))
	assert.Equal(t, "`(base + 8)", load.String())
}

func TestExpressionTypeIsUnsetUntilChecked(t *testing.T) {
	reg := types.NewRegistry()
	lit := Must(NewBoolLiteral(true))
	assert.Nil(t, lit.Type())

	lit.SetType(reg.Bool())
	assert.Same(t, reg.Bool(), lit.Type())
}
