// Package diagnostic collects semantic errors found while checking a program.
// Diagnostics are data: the compiler never prints them or stops on them.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/lhaig/wabbit/internal/ast"
)

// Severity represents the severity level of a diagnostic message
type Severity int

const (
	Error Severity = iota
	Warning
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is a single message attached to the node that caused it
type Diagnostic struct {
	Severity Severity
	Node     ast.Node
	Message  string
}

// Pos returns the source position of the offending node, if known.
func (d Diagnostic) Pos() (line, col int) {
	if d.Node == nil {
		return 0, 0
	}
	return d.Node.Pos()
}

// String formats the diagnostic as "error: message (at node)".
func (d Diagnostic) String() string {
	if d.Node == nil {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s (at %s)", d.Severity, d.Message, d.Node)
}

// Diagnostics is an ordered collection of diagnostic messages
type Diagnostics struct {
	items []Diagnostic
}

// New creates a new empty Diagnostics collection
func New() *Diagnostics {
	return &Diagnostics{
		items: make([]Diagnostic, 0),
	}
}

// Errorf adds an error diagnostic with formatted message
func (d *Diagnostics) Errorf(node ast.Node, format string, args ...any) {
	d.items = append(d.items, Diagnostic{
		Severity: Error,
		Node:     node,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warningf adds a warning diagnostic with formatted message
func (d *Diagnostics) Warningf(node ast.Node, format string, args ...any) {
	d.items = append(d.items, Diagnostic{
		Severity: Warning,
		Node:     node,
		Message:  fmt.Sprintf(format, args...),
	})
}

// HasErrors returns true if there are any error-level diagnostics
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the error-level diagnostics
func (d *Diagnostics) Errors() []Diagnostic {
	errors := make([]Diagnostic, 0)
	for _, item := range d.items {
		if item.Severity == Error {
			errors = append(errors, item)
		}
	}
	return errors
}

// All returns all diagnostics in the order they were reported
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// For returns the diagnostics reported against node.
func (d *Diagnostics) For(node ast.Node) []Diagnostic {
	var out []Diagnostic
	for _, item := range d.items {
		if item.Node == node {
			out = append(out, item)
		}
	}
	return out
}

// Count returns the total number of diagnostics
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// ErrorCount returns the number of error-level diagnostics
func (d *Diagnostics) ErrorCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Error {
			count++
		}
	}
	return count
}

// Format returns human-readable messages, one per line:
//
//	error[prog.wb:3:10]: undefined variable "x" (at x)
//	error[prog.wb:-]: operator "&&" not defined for int and int (at a && b)
func (d *Diagnostics) Format(filename string) string {
	if len(d.items) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, item := range d.items {
		loc := "-"
		if line, col := item.Pos(); line > 0 {
			loc = fmt.Sprintf("%d:%d", line, col)
		}
		fmt.Fprintf(&builder, "%s[%s:%s]: %s", item.Severity, filename, loc, item.Message)
		if item.Node != nil {
			fmt.Fprintf(&builder, " (at %s)", item.Node)
		}
		if i < len(d.items)-1 {
			builder.WriteString("\n")
		}
	}
	return builder.String()
}
