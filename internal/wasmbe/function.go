package wasmbe

import (
	"fmt"

	"github.com/lhaig/wabbit/internal/ir"
)

// control is an open structured block in a function body.
type control uint8

const (
	ctlIf control = iota
	ctlElse
	ctlLoop
)

// funcCompiler encodes one function body.
type funcCompiler struct {
	enc        *Encoder
	fn         localFunc
	localCount int
	localMap   map[string]int
	extraTypes []byte // additional local types beyond parameters
	body       []byte
	controls   []control
	usesMemory bool
}

func newFuncCompiler(enc *Encoder, fn localFunc) *funcCompiler {
	fc := &funcCompiler{
		enc:        enc,
		fn:         fn,
		localCount: len(fn.params),
		localMap:   make(map[string]int),
	}
	// Map parameters to local indices
	for i, p := range fn.params {
		fc.localMap[p.Name] = i
	}
	return fc
}

// allocLocal allocates a new local variable and returns its index.
func (fc *funcCompiler) allocLocal(name string, vtype byte) (int, error) {
	if _, exists := fc.localMap[name]; exists {
		return 0, fmt.Errorf("%w: local %s", ErrDuplicateName, name)
	}
	idx := fc.localCount
	fc.localCount++
	fc.localMap[name] = idx
	fc.extraTypes = append(fc.extraTypes, vtype)
	return idx, nil
}

// compile encodes the function body: the run-length encoded locals, the
// instructions and the end opcode.
func (fc *funcCompiler) compile() ([]byte, error) {
	for i, in := range fc.fn.body {
		if err := fc.instr(in); err != nil {
			return nil, fmt.Errorf("instruction %d (%s): %w", i, in, err)
		}
	}
	if len(fc.controls) > 0 {
		return nil, fmt.Errorf("%w: %d blocks left open", ErrUnbalancedControl, len(fc.controls))
	}

	// Ensure body ends with end opcode
	fc.body = append(fc.body, opEnd)

	// Encode locals declaration
	groups := compactLocals(fc.extraTypes)
	result := EncodeUnsigned(uint64(len(groups)))
	for _, g := range groups {
		result = append(result, EncodeUnsigned(uint64(g.count))...)
		result = append(result, g.vtype)
	}
	result = append(result, fc.body...)
	return result, nil
}

type localGroup struct {
	count int
	vtype byte
}

// compactLocals collapses runs of same-typed locals into (count, type)
// groups, keeping declaration order.
func compactLocals(types []byte) []localGroup {
	if len(types) == 0 {
		return nil
	}
	var groups []localGroup
	current := localGroup{count: 1, vtype: types[0]}
	for i := 1; i < len(types); i++ {
		if types[i] == current.vtype {
			current.count++
		} else {
			groups = append(groups, current)
			current = localGroup{count: 1, vtype: types[i]}
		}
	}
	groups = append(groups, current)
	return groups
}

func (fc *funcCompiler) emit(b ...byte) {
	fc.body = append(fc.body, b...)
}

func (fc *funcCompiler) emitIndex(op byte, idx int) {
	fc.body = append(fc.body, op)
	fc.body = append(fc.body, EncodeUnsigned(uint64(idx))...)
}

func (fc *funcCompiler) instr(in ir.Instr) error {
	if code, ok := simpleOps[in.Op]; ok {
		fc.emit(code...)
		return nil
	}
	if code, ok := memoryOps[in.Op]; ok {
		fc.usesMemory = true
		fc.emit(code...)
		return nil
	}
	if name, ok := printFuncs[in.Op]; ok {
		return fc.call(name)
	}

	switch in.Op {
	case ir.CONSTI:
		fc.emit(opI32Const)
		fc.emit(EncodeSigned(in.I)...)
	case ir.CONSTF:
		fc.emit(opF64Const)
		fc.emit(encodeF64(in.F)...)

	case ir.LOCALI:
		_, err := fc.allocLocal(in.Name, valI32)
		return err
	case ir.LOCALF:
		_, err := fc.allocLocal(in.Name, valF64)
		return err
	case ir.GLOBALI, ir.GLOBALF:
		// Globals are registered with the encoder up front.
		if _, ok := fc.enc.globalIndex[in.Name]; !ok {
			return fmt.Errorf("%w: global %s not registered", ErrUnknownVariable, in.Name)
		}
	case ir.LOAD:
		return fc.variable(in.Name, opLocalGet, opGlobalGet)
	case ir.STORE:
		return fc.variable(in.Name, opLocalSet, opGlobalSet)

	case ir.CALL:
		return fc.call(in.Name)

	case ir.IF:
		fc.controls = append(fc.controls, ctlIf)
		fc.emit(opIf, blockVoid)
	case ir.ELSE:
		if err := fc.replace(ctlIf, ctlElse); err != nil {
			return err
		}
		fc.emit(opElse)
	case ir.ENDIF:
		if err := fc.pop(ctlIf, ctlElse); err != nil {
			return err
		}
		fc.emit(opEnd)
	case ir.LOOP:
		// An outer block to break out of, and the loop to continue.
		fc.controls = append(fc.controls, ctlLoop)
		fc.emit(opBlock, blockVoid, opLoop, blockVoid)
	case ir.CBREAK:
		depth, err := fc.loopDepth()
		if err != nil {
			return err
		}
		fc.emitIndex(opBrIf, depth+1)
	case ir.CONTINUE:
		depth, err := fc.loopDepth()
		if err != nil {
			return err
		}
		fc.emitIndex(opBr, depth)
	case ir.ENDLOOP:
		if err := fc.pop(ctlLoop); err != nil {
			return err
		}
		fc.emit(opEnd, opEnd)

	default:
		return fmt.Errorf("unsupported instruction %s", in.Op)
	}
	return nil
}

func (fc *funcCompiler) variable(name string, localOp, globalOp byte) error {
	if idx, ok := fc.localMap[name]; ok {
		fc.emitIndex(localOp, idx)
		return nil
	}
	if idx, ok := fc.enc.globalIndex[name]; ok {
		fc.emitIndex(globalOp, idx)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownVariable, name)
}

func (fc *funcCompiler) call(name string) error {
	idx, ok := fc.enc.funcIndex[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	fc.emitIndex(opCall, idx)
	return nil
}

// loopDepth returns the number of if blocks between the innermost loop and
// the current position. The loop label sits at that depth and the block
// wrapping it one further out.
func (fc *funcCompiler) loopDepth() (int, error) {
	depth := 0
	for i := len(fc.controls) - 1; i >= 0; i-- {
		if fc.controls[i] == ctlLoop {
			return depth, nil
		}
		depth++
	}
	return 0, fmt.Errorf("%w: not inside a loop", ErrUnbalancedControl)
}

func (fc *funcCompiler) top() (control, bool) {
	if len(fc.controls) == 0 {
		return 0, false
	}
	return fc.controls[len(fc.controls)-1], true
}

func (fc *funcCompiler) replace(want, with control) error {
	if c, ok := fc.top(); !ok || c != want {
		return fmt.Errorf("%w: misplaced else", ErrUnbalancedControl)
	}
	fc.controls[len(fc.controls)-1] = with
	return nil
}

func (fc *funcCompiler) pop(allowed ...control) error {
	c, ok := fc.top()
	if ok {
		for _, a := range allowed {
			if c == a {
				fc.controls = fc.controls[:len(fc.controls)-1]
				return nil
			}
		}
	}
	return fmt.Errorf("%w: block closed out of order", ErrUnbalancedControl)
}
