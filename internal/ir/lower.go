package ir

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/lhaig/wabbit/internal/ast"
	"github.com/lhaig/wabbit/internal/checker"
)

// Host functions that back the PRINT instructions.
const (
	PrintIntFunc   = "_printi"
	PrintFloatFunc = "_printf"
	PrintByteFunc  = "_printb"
)

var (
	// ErrUnchecked is returned when lowering a program that failed checking.
	ErrUnchecked = errors.New("program has semantic errors")
	// ErrNameConflict is returned when a program defines a function whose
	// name is reserved for the entry point or a print import.
	ErrNameConflict = errors.New("function name conflicts with a generated function")
	// ErrInvalidModule is returned when lowering produced malformed code.
	ErrInvalidModule = errors.New("invalid module")
)

// Module is a lowered program: host imports, local functions and globals.
type Module struct {
	Imports   []*Import
	Functions []*Function
	Globals   []*Global
}

// Import is a function supplied by the host.
type Import struct {
	Module  string
	Name    string
	Params  []ValType
	Results []ValType
}

// Function is a locally defined function. Top-level code lives in the entry
// function.
type Function struct {
	Name    string
	Params  []Param
	Results []ValType
	Body    []Instr
	Export  bool
	Entry   bool
}

// Param is a named function parameter.
type Param struct {
	Name string
	Type ValType
}

// Global is a top-level variable.
type Global struct {
	Name string
	Type ValType
}

// Options controls how a program is lowered.
type Options struct {
	// EntryName is the function that holds top-level code. Default "_init".
	EntryName string
	// ImportModule is the host module print functions are imported from.
	// Default "env".
	ImportModule string
	// ExportAll exports every local function, not only the entry.
	ExportAll bool
}

// DefaultEntryName is the entry function used when Options leaves it empty.
const DefaultEntryName = "_init"

func (o Options) withDefaults() Options {
	if o.EntryName == "" {
		o.EntryName = DefaultEntryName
	}
	if o.ImportModule == "" {
		o.ImportModule = ast.DefaultImportModule
	}
	return o
}

// Lower transforms a checked program into a Module. Function definitions and
// imports become module entries in source order; every other top-level
// statement goes into the entry function, which returns 0. Print imports are
// added only when the program prints values of that kind.
func Lower(ctx *checker.Context, prog *ast.Block, opts Options) (*Module, error) {
	if ctx.HasErrors() {
		return nil, fmt.Errorf("%w: %d errors", ErrUnchecked, ctx.Diagnostics.ErrorCount())
	}
	opts = opts.withDefaults()

	mod := &Module{}
	var top []ast.Node
	for _, st := range prog.Statements {
		switch s := st.(type) {
		case *ast.FuncDef:
			mod.Functions = append(mod.Functions, lowerFunction(s, opts))
		case *ast.ImportFunc:
			mod.Imports = append(mod.Imports, lowerImport(s))
		default:
			top = append(top, s)
		}
	}

	entry := &Function{
		Name:    opts.EntryName,
		Results: []ValType{I32},
		Export:  true,
		Entry:   true,
	}
	entry.Body = slices.Collect(emitter{global: true}.seq(top...))
	entry.Body = append(entry.Body, ConstI(0), Simple(RET))
	mod.Functions = append(mod.Functions, entry)
	mod.Globals = collectGlobals(entry.Body)

	if err := mod.addPrintImports(opts.ImportModule); err != nil {
		return nil, err
	}
	if problems := Validate(mod); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidModule, strings.Join(problems, "; "))
	}
	return mod, nil
}

func lowerFunction(fn *ast.FuncDef, opts Options) *Function {
	out := &Function{
		Name:    fn.Name,
		Results: []ValType{typeOf(fn.ReturnType)},
		Export:  opts.ExportAll,
	}
	for _, p := range fn.Params {
		out.Params = append(out.Params, Param{Name: p.Name, Type: typeOf(p.DeclType)})
	}
	out.Body = slices.Collect(Emit(fn.Body))
	// Falling off the end returns the zero value.
	out.Body = append(out.Body, zero(out.Results[0]), Simple(RET))
	return out
}

func lowerImport(fn *ast.ImportFunc) *Import {
	imp := &Import{
		Module:  fn.Module,
		Name:    fn.Name,
		Results: []ValType{typeOf(fn.ReturnType)},
	}
	for _, p := range fn.Params {
		imp.Params = append(imp.Params, typeOf(p.DeclType))
	}
	return imp
}

func collectGlobals(body []Instr) []*Global {
	var globals []*Global
	for _, in := range body {
		switch in.Op {
		case GLOBALI:
			globals = append(globals, &Global{Name: in.Name, Type: I32})
		case GLOBALF:
			globals = append(globals, &Global{Name: in.Name, Type: F64})
		}
	}
	return globals
}

var printImports = []struct {
	op    Op
	name  string
	param ValType
}{
	{PRINTI, PrintIntFunc, I32},
	{PRINTF, PrintFloatFunc, F64},
	{PRINTB, PrintByteFunc, I32},
}

func (m *Module) addPrintImports(module string) error {
	used := make(map[Op]bool)
	for _, fn := range m.Functions {
		for _, in := range fn.Body {
			used[in.Op] = true
		}
	}

	reserved := make(map[string]bool)
	for _, p := range printImports {
		reserved[p.name] = used[p.op]
	}
	for _, fn := range m.Functions {
		if reserved[fn.Name] && !fn.Entry {
			return fmt.Errorf("%w: %q", ErrNameConflict, fn.Name)
		}
	}
	for _, imp := range m.Imports {
		if reserved[imp.Name] {
			return fmt.Errorf("%w: %q", ErrNameConflict, imp.Name)
		}
	}
	for _, fn := range m.Functions[:len(m.Functions)-1] {
		if fn.Name == m.Entry().Name {
			return fmt.Errorf("%w: %q", ErrNameConflict, fn.Name)
		}
	}

	for _, p := range printImports {
		if used[p.op] {
			m.Imports = append(m.Imports, &Import{Module: module, Name: p.name, Params: []ValType{p.param}})
		}
	}
	return nil
}

// Entry returns the entry function, or nil if the module has none.
func (m *Module) Entry() *Function {
	for _, fn := range m.Functions {
		if fn.Entry {
			return fn
		}
	}
	return nil
}

// Function returns the local function called name.
func (m *Module) Function(name string) (*Function, bool) {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return nil, false
}

// String lists imports, then globals, then every function.
func (m *Module) String() string {
	var sb strings.Builder
	for _, imp := range m.Imports {
		fmt.Fprintf(&sb, "import %s.%s(", imp.Module, imp.Name)
		for i, p := range imp.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.String())
		}
		sb.WriteString(")")
		for _, r := range imp.Results {
			fmt.Fprintf(&sb, " %s", r)
		}
		sb.WriteString("\n")
	}
	for _, g := range m.Globals {
		fmt.Fprintf(&sb, "global %s %s\n", g.Name, g.Type)
	}
	for _, fn := range m.Functions {
		sb.WriteString(fn.String())
	}
	return sb.String()
}

// String lists the function's instructions, indented by nesting depth.
func (f *Function) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s(", f.Name)
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s %s", p.Name, p.Type)
	}
	sb.WriteString(")")
	for _, r := range f.Results {
		fmt.Fprintf(&sb, " %s", r)
	}
	sb.WriteString("\n")

	depth := 1
	for _, in := range f.Body {
		switch in.Op {
		case ELSE, ENDIF, ENDLOOP:
			depth--
		}
		sb.WriteString(strings.Repeat("    ", depth))
		sb.WriteString(in.String())
		sb.WriteString("\n")
		switch in.Op {
		case IF, ELSE, LOOP:
			depth++
		}
	}
	return sb.String()
}
