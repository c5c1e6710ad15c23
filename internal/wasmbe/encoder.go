// Package wasmbe encodes lowered IR modules directly into the WebAssembly
// binary format.
package wasmbe

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/lhaig/wabbit/internal/ir"
)

var (
	ErrUnknownFunction     = errors.New("unknown function")
	ErrUnknownVariable     = errors.New("unknown variable")
	ErrUnbalancedControl   = errors.New("unbalanced control flow")
	ErrImportAfterFunction = errors.New("import registered after a local function")
	ErrDuplicateName       = errors.New("duplicate name")
	ErrInvalidType         = errors.New("invalid value type")
)

// Config holds encoder configuration.
type Config struct {
	// MemoryPages is the initial size of linear memory in 64KiB pages when
	// the module uses memory. Zero means one page.
	MemoryPages uint32
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// funcSig represents a WASM function type signature.
type funcSig struct {
	params  []byte // value types
	results []byte // value types
}

type importEntry struct {
	module  string
	name    string
	typeIdx int
}

type localFunc struct {
	name    string
	typeIdx int
	params  []ir.Param
	body    []ir.Instr
}

type globalEntry struct {
	name  string
	vtype byte
}

type wasmExport struct {
	name  string
	kind  byte
	index int
}

// memoryExport is the name linear memory is exported under.
const memoryExport = "memory"

// Encoder accumulates a module's signatures, imports, functions, globals and
// exports as they are registered, then serializes them with Bytes.
//
// Imports must be registered before any local function: they take the
// lowest function indices, and local functions continue the numbering in
// registration order. Function bodies are encoded by Bytes, so a body may
// call a function registered after it.
type Encoder struct {
	cfg    Config
	logger *slog.Logger

	types     []funcSig
	typeCache map[string]int // sig string -> type index

	imports   []importEntry
	funcs     []localFunc
	funcIndex map[string]int // function name -> function index

	globals     []globalEntry
	globalIndex map[string]int

	exports     []wasmExport
	exportNames map[string]bool
}

// NewEncoder creates an empty encoder.
func NewEncoder(cfg Config) *Encoder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Encoder{
		cfg:         cfg,
		logger:      logger,
		typeCache:   make(map[string]int),
		funcIndex:   make(map[string]int),
		globalIndex: make(map[string]int),
		exportNames: make(map[string]bool),
	}
}

// typeIndex returns the type section index for a given signature, adding it if new.
func (e *Encoder) typeIndex(params, results []byte) int {
	key := sigKey(params, results)
	if idx, ok := e.typeCache[key]; ok {
		return idx
	}
	idx := len(e.types)
	e.types = append(e.types, funcSig{params: params, results: results})
	e.typeCache[key] = idx
	return idx
}

func sigKey(params, results []byte) string {
	return string(params) + "|" + string(results)
}

// valueType maps an IR value type to a WASM value type.
func valueType(t ir.ValType) (byte, error) {
	switch t {
	case ir.I32:
		return valI32, nil
	case ir.F64:
		return valF64, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidType, t)
	}
}

func valueTypes(ts []ir.ValType) ([]byte, error) {
	out := make([]byte, 0, len(ts))
	for _, t := range ts {
		vt, err := valueType(t)
		if err != nil {
			return nil, err
		}
		out = append(out, vt)
	}
	return out, nil
}

func (e *Encoder) signature(params, results []ir.ValType) (int, error) {
	p, err := valueTypes(params)
	if err != nil {
		return 0, err
	}
	r, err := valueTypes(results)
	if err != nil {
		return 0, err
	}
	return e.typeIndex(p, r), nil
}

func (e *Encoder) claimFuncName(name string) error {
	if _, exists := e.funcIndex[name]; exists {
		return fmt.Errorf("%w: function %s", ErrDuplicateName, name)
	}
	return nil
}

// AddImport registers a host function and returns its function index.
func (e *Encoder) AddImport(module, name string, params, results []ir.ValType) (int, error) {
	if len(e.funcs) > 0 {
		return 0, fmt.Errorf("%w: %s.%s", ErrImportAfterFunction, module, name)
	}
	if err := e.claimFuncName(name); err != nil {
		return 0, err
	}
	tidx, err := e.signature(params, results)
	if err != nil {
		return 0, fmt.Errorf("import %s.%s: %w", module, name, err)
	}

	fidx := len(e.imports)
	e.imports = append(e.imports, importEntry{module: module, name: name, typeIdx: tidx})
	e.funcIndex[name] = fidx
	e.logger.Debug("registered import", "module", module, "name", name, "funcidx", fidx, "typeidx", tidx)
	return fidx, nil
}

// AddFunction registers a local function and returns its function index.
// The body is encoded later by Bytes.
func (e *Encoder) AddFunction(name string, params []ir.Param, results []ir.ValType, body []ir.Instr) (int, error) {
	if err := e.claimFuncName(name); err != nil {
		return 0, err
	}
	paramTypes := make([]ir.ValType, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type
	}
	tidx, err := e.signature(paramTypes, results)
	if err != nil {
		return 0, fmt.Errorf("function %s: %w", name, err)
	}

	fidx := len(e.imports) + len(e.funcs)
	e.funcs = append(e.funcs, localFunc{name: name, typeIdx: tidx, params: params, body: body})
	e.funcIndex[name] = fidx
	e.logger.Debug("registered function", "name", name, "funcidx", fidx, "typeidx", tidx)
	return fidx, nil
}

// AddGlobal registers a mutable global initialized to zero and returns its
// global index.
func (e *Encoder) AddGlobal(name string, t ir.ValType) (int, error) {
	if _, exists := e.globalIndex[name]; exists {
		return 0, fmt.Errorf("%w: global %s", ErrDuplicateName, name)
	}
	vt, err := valueType(t)
	if err != nil {
		return 0, fmt.Errorf("global %s: %w", name, err)
	}
	idx := len(e.globals)
	e.globals = append(e.globals, globalEntry{name: name, vtype: vt})
	e.globalIndex[name] = idx
	return idx, nil
}

// Export makes the function registered as funcName visible to the host
// under name.
func (e *Encoder) Export(name, funcName string) error {
	fidx, ok := e.funcIndex[funcName]
	if !ok {
		return fmt.Errorf("export %s: %w: %s", name, ErrUnknownFunction, funcName)
	}
	if e.exportNames[name] {
		return fmt.Errorf("%w: export %s", ErrDuplicateName, name)
	}
	e.exportNames[name] = true
	e.exports = append(e.exports, wasmExport{name: name, kind: kindFunc, index: fidx})
	return nil
}

// FuncIndex returns the function index registered for name.
func (e *Encoder) FuncIndex(name string) (int, bool) {
	idx, ok := e.funcIndex[name]
	return idx, ok
}

// NumTypes returns the number of distinct signatures registered so far.
func (e *Encoder) NumTypes() int {
	return len(e.types)
}

// Bytes encodes every registered function body and returns the complete
// module. Memory is declared, and exported as "memory", only when some body
// reads, writes or grows it.
func (e *Encoder) Bytes() ([]byte, error) {
	codes := make([][]byte, len(e.funcs))
	usesMemory := false
	for i, fn := range e.funcs {
		fc := newFuncCompiler(e, fn)
		code, err := fc.compile()
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.name, err)
		}
		codes[i] = code
		usesMemory = usesMemory || fc.usesMemory
	}
	if usesMemory && e.exportNames[memoryExport] {
		return nil, fmt.Errorf("%w: export %s is reserved for linear memory", ErrDuplicateName, memoryExport)
	}

	var wasm []byte
	wasm = append(wasm, wasmMagic...)
	wasm = append(wasm, wasmVersion...)

	add := func(id byte, section []byte) {
		e.logger.Debug("encoded section", "id", id, "size", len(section))
		wasm = append(wasm, section...)
	}

	add(sectionType, e.emitTypeSection())
	if len(e.imports) > 0 {
		add(sectionImport, e.emitImportSection())
	}
	add(sectionFunction, e.emitFunctionSection())
	if usesMemory {
		add(sectionMemory, e.emitMemorySection())
	}
	if len(e.globals) > 0 {
		add(sectionGlobal, e.emitGlobalSection())
	}
	add(sectionExport, e.emitExportSection(usesMemory))
	add(sectionCode, emitCodeSection(codes))

	return wasm, nil
}

func (e *Encoder) emitTypeSection() []byte {
	var contents []byte
	for _, sig := range e.types {
		// Function type tag
		contents = append(contents, funcTypeForm)
		// Parameter types
		contents = append(contents, encodeVector(len(sig.params), sig.params)...)
		// Result types
		contents = append(contents, encodeVector(len(sig.results), sig.results)...)
	}
	body := encodeVector(len(e.types), contents)
	return encodeSection(sectionType, body)
}

func (e *Encoder) emitImportSection() []byte {
	var contents []byte
	for _, imp := range e.imports {
		contents = append(contents, encodeName(imp.module)...)
		contents = append(contents, encodeName(imp.name)...)
		contents = append(contents, kindFunc)
		contents = append(contents, EncodeUnsigned(uint64(imp.typeIdx))...)
	}
	body := encodeVector(len(e.imports), contents)
	return encodeSection(sectionImport, body)
}

func (e *Encoder) emitFunctionSection() []byte {
	var contents []byte
	for _, fn := range e.funcs {
		contents = append(contents, EncodeUnsigned(uint64(fn.typeIdx))...)
	}
	body := encodeVector(len(e.funcs), contents)
	return encodeSection(sectionFunction, body)
}

func (e *Encoder) emitMemorySection() []byte {
	pages := e.cfg.MemoryPages
	if pages == 0 {
		pages = 1
	}
	// limits: flags=0 (no max), min=pages
	contents := []byte{limitsMin}
	contents = append(contents, EncodeUnsigned(uint64(pages))...)
	body := encodeVector(1, contents)
	return encodeSection(sectionMemory, body)
}

func (e *Encoder) emitGlobalSection() []byte {
	var contents []byte
	for _, g := range e.globals {
		contents = append(contents, g.vtype, globalVar)
		// init expression: zero of the global's type
		if g.vtype == valF64 {
			contents = append(contents, opF64Const)
			contents = append(contents, encodeF64(0)...)
		} else {
			contents = append(contents, opI32Const, 0x00)
		}
		contents = append(contents, opEnd)
	}
	body := encodeVector(len(e.globals), contents)
	return encodeSection(sectionGlobal, body)
}

func (e *Encoder) emitExportSection(memory bool) []byte {
	var contents []byte
	count := len(e.exports)
	for _, exp := range e.exports {
		contents = append(contents, encodeName(exp.name)...)
		contents = append(contents, exp.kind)
		contents = append(contents, EncodeUnsigned(uint64(exp.index))...)
	}
	if memory {
		contents = append(contents, encodeName(memoryExport)...)
		contents = append(contents, kindMemory)
		contents = append(contents, EncodeUnsigned(0)...) // memory index 0
		count++
	}
	body := encodeVector(count, contents)
	return encodeSection(sectionExport, body)
}

func emitCodeSection(codes [][]byte) []byte {
	var contents []byte
	for _, code := range codes {
		// Each function body is prefixed with its byte length
		contents = append(contents, EncodeUnsigned(uint64(len(code)))...)
		contents = append(contents, code...)
	}
	body := encodeVector(len(codes), contents)
	return encodeSection(sectionCode, body)
}
