package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lhaig/wabbit/internal/ast"
)

func TestDiagnosticsKeepOrderAndNodes(t *testing.T) {
	x := ast.Must(ast.NewVarGet("x"))
	x.Line, x.Column = 3, 10
	y := ast.Must(ast.NewVarGet("y"))

	d := New()
	d.Errorf(x, "undefined variable %q", "x")
	d.Warningf(y, "unused")
	d.Errorf(y, "undefined variable %q", "y")

	assert.True(t, d.HasErrors())
	assert.Equal(t, 3, d.Count())
	assert.Equal(t, 2, d.ErrorCount())
	assert.Len(t, d.For(y), 2)
	assert.Same(t, x, d.All()[0].Node)

	want := "error[prog.wb:3:10]: undefined variable \"x\" (at x)\n" +
		"warning[prog.wb:-]: unused (at y)\n" +
		"error[prog.wb:-]: undefined variable \"y\" (at y)"
	assert.Equal(t, want, d.Format("prog.wb"))
}

func TestEmptyDiagnostics(t *testing.T) {
	d := New()
	assert.False(t, d.HasErrors())
	assert.Empty(t, d.Errors())
	assert.Equal(t, "", d.Format("x"))
}
