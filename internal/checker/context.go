package checker

import (
	"github.com/lhaig/wabbit/internal/ast"
	"github.com/lhaig/wabbit/internal/diagnostic"
	"github.com/lhaig/wabbit/internal/types"
)

// SymbolKind represents the kind of symbol
type SymbolKind int

const (
	SymVariable SymbolKind = iota
	SymConst
	SymParam
)

// String returns the string representation of the symbol kind
func (sk SymbolKind) String() string {
	switch sk {
	case SymVariable:
		return "variable"
	case SymConst:
		return "constant"
	case SymParam:
		return "parameter"
	default:
		return "unknown"
	}
}

// Symbol is a variable binding: the declaring node and its resolved type.
type Symbol struct {
	Name   string
	Decl   ast.Node // *ast.VarDef, *ast.VarDefSet or *ast.Parameter
	Type   *types.Type
	Kind   SymbolKind
	Global bool
}

// Scope represents a lexical scope with a symbol table
type Scope struct {
	parent  *Scope
	symbols map[string]*Symbol
}

// NewScope creates a new scope with an optional parent
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		symbols: make(map[string]*Symbol),
	}
}

// Define adds a symbol to the current scope. It reports false if the name
// is already defined in this scope.
func (s *Scope) Define(sym *Symbol) bool {
	if _, exists := s.symbols[sym.Name]; exists {
		return false
	}
	s.symbols[sym.Name] = sym
	return true
}

// Resolve looks up a symbol in the current scope and parent scopes
// Returns nil if the symbol is not found
func (s *Scope) Resolve(name string) *Symbol {
	if sym, ok := s.symbols[name]; ok {
		return sym
	}
	if s.parent != nil {
		return s.parent.Resolve(name)
	}
	return nil
}

// Context is the state of one checking pass over one compilation unit: the
// variable, function and memory tables plus the diagnostics found so far.
// A Context must not be reused for another unit.
type Context struct {
	Types       *types.Registry
	Diagnostics *diagnostic.Diagnostics

	globals   *Scope
	scope     *Scope
	funcs     map[string]ast.Function
	funcOrder []ast.Function
	mems      map[ast.Expression]*ast.MemSet

	currentFunc *ast.FuncDef
	loopDepth   int
}

// NewContext creates an empty context backed by reg.
func NewContext(reg *types.Registry) *Context {
	globals := NewScope(nil)
	return &Context{
		Types:       reg,
		Diagnostics: diagnostic.New(),
		globals:     globals,
		scope:       globals,
		funcs:       make(map[string]ast.Function),
		mems:        make(map[ast.Expression]*ast.MemSet),
	}
}

// Var resolves a variable visible from the current scope.
func (c *Context) Var(name string) (*Symbol, bool) {
	sym := c.scope.Resolve(name)
	return sym, sym != nil
}

// Global resolves a top-level variable.
func (c *Context) Global(name string) (*Symbol, bool) {
	sym := c.globals.Resolve(name)
	return sym, sym != nil
}

// Func returns the definition or import registered under name.
func (c *Context) Func(name string) (ast.Function, bool) {
	fn, ok := c.funcs[name]
	return fn, ok
}

// Functions returns the registered functions in registration order.
func (c *Context) Functions() []ast.Function {
	return c.funcOrder
}

// MemoryStore returns the statement that stores through addr.
func (c *Context) MemoryStore(addr ast.Expression) (*ast.MemSet, bool) {
	st, ok := c.mems[addr]
	return st, ok
}

// HasErrors reports whether any error diagnostic was recorded.
func (c *Context) HasErrors() bool {
	return c.Diagnostics.HasErrors()
}

func (c *Context) errorf(node ast.Node, format string, args ...any) {
	c.Diagnostics.Errorf(node, format, args...)
}

func (c *Context) declare(sym *Symbol) {
	sym.Global = c.scope == c.globals
	if !c.scope.Define(sym) {
		c.errorf(sym.Decl, "%q already declared in this scope", sym.Name)
	}
}

func (c *Context) publish(fn ast.Function) bool {
	if _, exists := c.funcs[fn.FuncName()]; exists {
		c.errorf(fn, "function %q already defined", fn.FuncName())
		return false
	}
	c.funcs[fn.FuncName()] = fn
	c.funcOrder = append(c.funcOrder, fn)
	return true
}
