// Package engine drives the cycle-by-cycle evaluation of a compiled
// HCL program (spec.md §4.D "Cycle evaluation"): each Tick runs exactly
// one EvalCycle/CommitCycle pair and then consults the architecture's
// designated terminal-status probe to decide whether the machine has
// halted. The engine has no opinion about what the signals mean —
// branch prediction, forwarding and stalls are entirely the compiled
// program's business (package hcl, package arch); this package only
// supplies the clock.
package engine

import (
	"fmt"

	"github.com/y86pipe/y86pipe-go/hcl"
	"github.com/y86pipe/y86pipe-go/signal"
	"github.com/y86pipe/y86pipe-go/stage"
)

// TerminalStatus inspects the signal environment EvalCycle just
// produced (after CommitCycle has applied it) and returns the status
// that should decide whether to halt: for a non-pipelined architecture,
// this is usually the current cycle's combined "stat" signal; for a
// pipelined one, it is the Writeback stage register's Status() read
// after commit.
type TerminalStatus func(sig map[string]signal.Value) stage.Status

// RunawayError reports that a machine ran past its configured cycle
// budget without halting, per spec.md §5's "no fixed cycle budget is
// assumed, but callers may impose one".
type RunawayError struct {
	CycleLimit uint64
}

func (e *RunawayError) Error() string {
	return fmt.Sprintf("engine: exceeded %d-cycle limit without halting", e.CycleLimit)
}

// Engine wraps one Compiled program with cycle-counting and halt
// detection.
type Engine struct {
	compiled *hcl.Compiled
	terminal TerminalStatus

	cycle      uint64
	halted     bool
	haltStatus stage.Status

	lastSignals map[string]signal.Value
	lastUnits   map[string]map[string]signal.Value
}

// New returns an Engine ready to run compiled from cycle 0.
func New(compiled *hcl.Compiled, terminal TerminalStatus) *Engine {
	return &Engine{compiled: compiled, terminal: terminal}
}

// Cycle returns the number of cycles committed so far.
func (e *Engine) Cycle() uint64 { return e.cycle }

// Halted reports whether the machine has reached a terminal status.
func (e *Engine) Halted() bool { return e.halted }

// HaltStatus returns the status that caused the halt; valid only once
// Halted() is true.
func (e *Engine) HaltStatus() stage.Status { return e.haltStatus }

// Signals returns the named-signal environment computed by the most
// recent Tick, for trace export.
func (e *Engine) Signals() map[string]signal.Value { return e.lastSignals }

// SignalNames exposes the compiled program's signal list in source
// order, so trace output is deterministic.
func (e *Engine) SignalNames() []string { return e.compiled.SignalNames() }

// Tick runs exactly one EvalCycle/CommitCycle pair, per spec.md §4.D's
// four-step cycle: evaluate the signal graph, commit every stateful
// unit's next state, advance the cycle counter, then check for
// termination. It is a no-op once the machine has halted, matching
// spec.md §8's "ticking a halted machine is a no-op, not an error".
func (e *Engine) Tick() error {
	if e.halted {
		return nil
	}
	sig, units, err := e.compiled.EvalCycle()
	if err != nil {
		return err
	}
	if err := e.compiled.CommitCycle(sig); err != nil {
		return err
	}
	e.lastSignals, e.lastUnits = sig, units
	e.cycle++

	st := e.terminal(sig)
	if st.Terminal() {
		e.halted = true
		e.haltStatus = st
	}
	return nil
}

// Run ticks until the machine halts or cycleLimit cycles have elapsed
// (0 means unlimited), returning a *RunawayError in the latter case.
func (e *Engine) Run(cycleLimit uint64) error {
	for !e.halted {
		if cycleLimit > 0 && e.cycle >= cycleLimit {
			return &RunawayError{CycleLimit: cycleLimit}
		}
		if err := e.Tick(); err != nil {
			return err
		}
	}
	return nil
}
