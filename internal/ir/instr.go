// Package ir defines the stack-machine instruction set that sits between the
// checked AST and the binary encoder, the emitter that flattens nodes into
// instruction streams, and the lowering of a whole program into a Module.
package ir

import (
	"fmt"
	"strconv"
)

// Op is a stack-machine opcode.
type Op uint8

const (
	OpInvalid Op = iota

	// Integer operations. bool and char values are integers.
	CONSTI
	GLOBALI
	LOCALI
	ADDI
	SUBI
	MULI
	DIVI
	ANDI
	ORI
	LTI
	LEI
	GTI
	GEI
	EQI
	NEI
	PRINTI
	PEEKI
	POKEI
	ITOF

	// Floating point operations.
	CONSTF
	GLOBALF
	LOCALF
	ADDF
	SUBF
	MULF
	DIVF
	LTF
	LEF
	GTF
	GEF
	EQF
	NEF
	PRINTF
	PEEKF
	POKEF
	FTOI

	// Byte-oriented operations; values are presented as integers.
	PRINTB
	PEEKB
	POKEB

	// Variables.
	LOAD
	STORE

	// Functions.
	CALL
	RET

	// Structured control flow.
	IF
	ELSE
	ENDIF
	LOOP
	CBREAK
	CONTINUE
	ENDLOOP

	// Memory.
	GROW

	numOps
)

var opNames = [numOps]string{
	OpInvalid: "INVALID",
	CONSTI:    "CONSTI", GLOBALI: "GLOBALI", LOCALI: "LOCALI",
	ADDI: "ADDI", SUBI: "SUBI", MULI: "MULI", DIVI: "DIVI", ANDI: "ANDI", ORI: "ORI",
	LTI: "LTI", LEI: "LEI", GTI: "GTI", GEI: "GEI", EQI: "EQI", NEI: "NEI",
	PRINTI: "PRINTI", PEEKI: "PEEKI", POKEI: "POKEI", ITOF: "ITOF",
	CONSTF: "CONSTF", GLOBALF: "GLOBALF", LOCALF: "LOCALF",
	ADDF: "ADDF", SUBF: "SUBF", MULF: "MULF", DIVF: "DIVF",
	LTF: "LTF", LEF: "LEF", GTF: "GTF", GEF: "GEF", EQF: "EQF", NEF: "NEF",
	PRINTF: "PRINTF", PEEKF: "PEEKF", POKEF: "POKEF", FTOI: "FTOI",
	PRINTB: "PRINTB", PEEKB: "PEEKB", POKEB: "POKEB",
	LOAD: "LOAD", STORE: "STORE",
	CALL: "CALL", RET: "RET",
	IF: "IF", ELSE: "ELSE", ENDIF: "ENDIF",
	LOOP: "LOOP", CBREAK: "CBREAK", CONTINUE: "CONTINUE", ENDLOOP: "ENDLOOP",
	GROW: "GROW",
}

func (op Op) String() string {
	if op < numOps && opNames[op] != "" {
		return opNames[op]
	}
	return "Op(" + strconv.Itoa(int(op)) + ")"
}

// operand describes which field of an Instr an opcode reads.
type operand uint8

const (
	noOperand operand = iota
	intOperand
	floatOperand
	nameOperand
)

func (op Op) operand() operand {
	switch op {
	case CONSTI:
		return intOperand
	case CONSTF:
		return floatOperand
	case GLOBALI, GLOBALF, LOCALI, LOCALF, LOAD, STORE, CALL:
		return nameOperand
	default:
		return noOperand
	}
}

// Instr is one stack-machine instruction. Only the operand field the opcode
// uses is meaningful: I for CONSTI, F for CONSTF and Name for declarations,
// variable access and calls.
type Instr struct {
	Op   Op
	I    int64
	F    float64
	Name string
}

func (in Instr) String() string {
	switch in.Op.operand() {
	case intOperand:
		return fmt.Sprintf("%s %d", in.Op, in.I)
	case floatOperand:
		return fmt.Sprintf("%s %s", in.Op, strconv.FormatFloat(in.F, 'g', -1, 64))
	case nameOperand:
		return fmt.Sprintf("%s %s", in.Op, in.Name)
	default:
		return in.Op.String()
	}
}

// ConstI pushes an integer.
func ConstI(v int64) Instr { return Instr{Op: CONSTI, I: v} }

// ConstF pushes a float.
func ConstF(v float64) Instr { return Instr{Op: CONSTF, F: v} }

// Named builds an instruction whose operand is a variable or function name.
func Named(op Op, name string) Instr { return Instr{Op: op, Name: name} }

// Simple builds an instruction with no operand.
func Simple(op Op) Instr { return Instr{Op: op} }

// ValType is the machine representation of a value.
type ValType uint8

const (
	I32 ValType = iota + 1 // int, bool, char
	F64                    // float
)

func (v ValType) String() string {
	switch v {
	case I32:
		return "i32"
	case F64:
		return "f64"
	default:
		return "ValType(" + strconv.Itoa(int(v)) + ")"
	}
}
