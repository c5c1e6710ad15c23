package compiler

import (
	"errors"
	"fmt"
)

// Target is an output format.
type Target string

const (
	TargetWasm Target = "wasm"
	TargetIR   Target = "ir"
)

// ErrNoOutput is returned when asking for output from a compilation that
// stopped at checking.
var ErrNoOutput = errors.New("compilation produced no output")

// ParseTarget returns the target named s.
func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case TargetWasm, TargetIR:
		return t, nil
	default:
		return "", fmt.Errorf("unknown target: %s", s)
	}
}

// Extension returns the file extension for the target's output.
func (t Target) Extension() string {
	switch t {
	case TargetWasm:
		return ".wasm"
	case TargetIR:
		return ".ir"
	default:
		return ""
	}
}

// Output returns the result rendered for target: the binary module, or the
// IR listing.
func (r *Result) Output(target Target) ([]byte, error) {
	if r.Module == nil {
		if r.Diagnostics != nil && r.Diagnostics.HasErrors() {
			return nil, fmt.Errorf("%w: compilation errors:\n%s", ErrNoOutput, r.Diagnostics.Format("input"))
		}
		return nil, ErrNoOutput
	}
	switch target {
	case TargetWasm:
		if r.Wasm == nil {
			return nil, ErrNoOutput
		}
		return r.Wasm, nil
	case TargetIR:
		return []byte(r.Module.String()), nil
	default:
		return nil, fmt.Errorf("unknown target: %s", target)
	}
}
