package ir

import (
	"fmt"
)

// Validate checks a module for correctness and returns a list of error
// messages. An empty slice indicates the module is valid.
func Validate(mod *Module) []string {
	var errors []string

	funcs := make(map[string]bool)
	for _, imp := range mod.Imports {
		funcs[imp.Name] = true
	}
	for _, fn := range mod.Functions {
		funcs[fn.Name] = true
	}
	globals := make(map[string]bool)
	for _, g := range mod.Globals {
		if globals[g.Name] {
			errors = append(errors, fmt.Sprintf("global %s declared twice", g.Name))
		}
		globals[g.Name] = true
	}

	entries := 0
	for _, fn := range mod.Functions {
		if fn.Entry {
			entries++
		}
		if len(fn.Results) != 1 {
			errors = append(errors, fmt.Sprintf("function %s must return exactly one value", fn.Name))
		}
		errors = append(errors, ValidateFunction(fn)...)
		errors = append(errors, validateNames(fn, funcs, globals)...)
	}
	if entries > 1 {
		errors = append(errors, fmt.Sprintf("module has %d entry functions", entries))
	}

	return errors
}

// ValidateFunction checks that the structured control markers in a
// function body nest properly and that every CBREAK and CONTINUE sits
// inside a loop.
func ValidateFunction(fn *Function) []string {
	var errors []string
	var open []Op // IF, ELSE or LOOP
	loops := 0

	for i, in := range fn.Body {
		where := fmt.Sprintf("function %s: instruction %d (%s)", fn.Name, i, in)
		if in.Op == OpInvalid || in.Op >= numOps {
			errors = append(errors, where+": invalid opcode")
			continue
		}
		if in.Op.operand() == nameOperand && in.Name == "" {
			errors = append(errors, where+": missing name")
		}

		switch in.Op {
		case IF:
			open = append(open, IF)
		case ELSE:
			if len(open) == 0 || open[len(open)-1] != IF {
				errors = append(errors, where+": ELSE without IF")
				continue
			}
			open[len(open)-1] = ELSE
		case ENDIF:
			if len(open) == 0 || open[len(open)-1] == LOOP {
				errors = append(errors, where+": ENDIF without IF")
				continue
			}
			open = open[:len(open)-1]
		case LOOP:
			open = append(open, LOOP)
			loops++
		case ENDLOOP:
			if len(open) == 0 || open[len(open)-1] != LOOP {
				errors = append(errors, where+": ENDLOOP without LOOP")
				continue
			}
			open = open[:len(open)-1]
			loops--
		case CBREAK, CONTINUE:
			if loops == 0 {
				errors = append(errors, where+": outside loop")
			}
		}
	}

	if len(open) > 0 {
		errors = append(errors, fmt.Sprintf("function %s: %d unclosed blocks", fn.Name, len(open)))
	}
	return errors
}

// validateNames checks that every variable is declared before use and that
// every call names a known function.
func validateNames(fn *Function, funcs, globals map[string]bool) []string {
	var errors []string
	locals := make(map[string]bool)
	for _, p := range fn.Params {
		locals[p.Name] = true
	}

	for i, in := range fn.Body {
		switch in.Op {
		case LOCALI, LOCALF:
			if locals[in.Name] {
				errors = append(errors, fmt.Sprintf("function %s: instruction %d: local %s declared twice", fn.Name, i, in.Name))
			}
			locals[in.Name] = true
		case GLOBALI, GLOBALF:
			if !globals[in.Name] {
				errors = append(errors, fmt.Sprintf("function %s: instruction %d: global %s not in module", fn.Name, i, in.Name))
			}
		case LOAD, STORE:
			if !locals[in.Name] && !globals[in.Name] {
				errors = append(errors, fmt.Sprintf("function %s: instruction %d: unknown variable %s", fn.Name, i, in.Name))
			}
		case CALL:
			if !funcs[in.Name] {
				errors = append(errors, fmt.Sprintf("function %s: instruction %d: unknown function %s", fn.Name, i, in.Name))
			}
		}
	}
	return errors
}
