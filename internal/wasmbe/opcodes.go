package wasmbe

import "github.com/lhaig/wabbit/internal/ir"

// WASM binary format constants
var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6D} // \0asm
var wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}

// Section IDs
const (
	sectionType     byte = 1
	sectionImport   byte = 2
	sectionFunction byte = 3
	sectionMemory   byte = 5
	sectionGlobal   byte = 6
	sectionExport   byte = 7
	sectionCode     byte = 10
)

// Value types
const (
	valI32 byte = 0x7F
	valF64 byte = 0x7C
)

// Import and export kinds
const (
	kindFunc   byte = 0x00
	kindMemory byte = 0x02
)

const (
	funcTypeForm byte = 0x60
	blockVoid    byte = 0x40
	globalVar    byte = 0x01
	limitsMin    byte = 0x00
)

// WASM opcodes
const (
	// Control
	opBlock  byte = 0x02
	opLoop   byte = 0x03
	opIf     byte = 0x04
	opElse   byte = 0x05
	opEnd    byte = 0x0B
	opBr     byte = 0x0C
	opBrIf   byte = 0x0D
	opReturn byte = 0x0F
	opCall   byte = 0x10
	opDrop   byte = 0x1A

	// Variables
	opLocalGet  byte = 0x20
	opLocalSet  byte = 0x21
	opGlobalGet byte = 0x23
	opGlobalSet byte = 0x24

	// Memory
	opI32Load    byte = 0x28
	opF64Load    byte = 0x2B
	opI32Load8U  byte = 0x2D
	opI32Store   byte = 0x36
	opF64Store   byte = 0x39
	opI32Store8  byte = 0x3A
	opMemorySize byte = 0x3F
	opMemoryGrow byte = 0x40

	// Constants
	opI32Const byte = 0x41
	opF64Const byte = 0x44

	// i32 operations
	opI32Eq   byte = 0x46
	opI32Ne   byte = 0x47
	opI32LtS  byte = 0x48
	opI32GtS  byte = 0x4A
	opI32LeS  byte = 0x4C
	opI32GeS  byte = 0x4E
	opI32Add  byte = 0x6A
	opI32Sub  byte = 0x6B
	opI32Mul  byte = 0x6C
	opI32DivS byte = 0x6D
	opI32And  byte = 0x71
	opI32Or   byte = 0x72

	// f64 operations
	opF64Eq  byte = 0x61
	opF64Ne  byte = 0x62
	opF64Lt  byte = 0x63
	opF64Gt  byte = 0x64
	opF64Le  byte = 0x65
	opF64Ge  byte = 0x66
	opF64Add byte = 0xA0
	opF64Sub byte = 0xA1
	opF64Mul byte = 0xA2
	opF64Div byte = 0xA3

	// Conversions
	opI32TruncF64S   byte = 0xAA
	opF64ConvertI32S byte = 0xB7
)

// simpleOps maps IR instructions that need no operand or bookkeeping to
// their encoding.
var simpleOps = map[ir.Op][]byte{
	ir.ADDI: {opI32Add},
	ir.SUBI: {opI32Sub},
	ir.MULI: {opI32Mul},
	ir.DIVI: {opI32DivS},
	ir.ANDI: {opI32And},
	ir.ORI:  {opI32Or},
	ir.LTI:  {opI32LtS},
	ir.LEI:  {opI32LeS},
	ir.GTI:  {opI32GtS},
	ir.GEI:  {opI32GeS},
	ir.EQI:  {opI32Eq},
	ir.NEI:  {opI32Ne},

	ir.ADDF: {opF64Add},
	ir.SUBF: {opF64Sub},
	ir.MULF: {opF64Mul},
	ir.DIVF: {opF64Div},
	ir.LTF:  {opF64Lt},
	ir.LEF:  {opF64Le},
	ir.GTF:  {opF64Gt},
	ir.GEF:  {opF64Ge},
	ir.EQF:  {opF64Eq},
	ir.NEF:  {opF64Ne},

	ir.ITOF: {opF64ConvertI32S},
	ir.FTOI: {opI32TruncF64S},
	ir.RET:  {opReturn},
}

// memoryOps maps loads and stores to their opcode and memarg (alignment
// exponent, offset 0).
var memoryOps = map[ir.Op][]byte{
	ir.PEEKI: {opI32Load, 2, 0},
	ir.PEEKF: {opF64Load, 3, 0},
	ir.PEEKB: {opI32Load8U, 0, 0},
	ir.POKEI: {opI32Store, 2, 0},
	ir.POKEF: {opF64Store, 3, 0},
	ir.POKEB: {opI32Store8, 0, 0},
	// memory.grow returns the old size; the new size is read back.
	ir.GROW: {opMemoryGrow, 0, opDrop, opMemorySize, 0},
}

// printFuncs names the host function behind each print instruction.
var printFuncs = map[ir.Op]string{
	ir.PRINTI: ir.PrintIntFunc,
	ir.PRINTF: ir.PrintFloatFunc,
	ir.PRINTB: ir.PrintByteFunc,
}
