package hcl

import "fmt"

// CompileError is returned by Compile for any static defect in an HCL
// program: an undefined signal, a cyclic (non-stateful) dependency, or
// an unwired unit input. It names the offending signal, per spec.md §7;
// an unwired-input error has no signal and names the unit and port in
// Reason instead. A priority-cased signal missing its default arm is
// rejected earlier, by Parse, with a plain error.
type CompileError struct {
	Signal string
	Reason string
}

func (e *CompileError) Error() string {
	if e.Signal == "" {
		return fmt.Sprintf("hcl: compile error: %s", e.Reason)
	}
	return fmt.Sprintf("hcl: compile error in signal %q: %s", e.Signal, e.Reason)
}
