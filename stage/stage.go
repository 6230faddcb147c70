// Package stage defines the instruction-stage status variant and the
// stage register: the edge-triggered latch between two pipeline stages
// (or, in the non-pipelined architectures, the single program-counter
// register). See spec.md §3 "Stage status" and "Stage register".
package stage

import "fmt"

// Status is the per-instruction stage status variant.
type Status int

const (
	// Bub marks a bubble: no-op, produces no observable side effect.
	Bub Status = iota
	// Aok marks a normally running instruction.
	Aok
	// Hlt marks a halt instruction having reached this stage.
	Hlt
	// Adr marks an out-of-range memory access.
	Adr
	// Ins marks an unrecognized opcode/ifun.
	Ins
)

func (s Status) String() string {
	switch s {
	case Bub:
		return "BUB"
	case Aok:
		return "AOK"
	case Hlt:
		return "HLT"
	case Adr:
		return "ADR"
	case Ins:
		return "INS"
	default:
		return "???"
	}
}

// Terminal reports whether s, once committed to writeback, should halt
// the machine (spec.md §4.D termination condition).
func (s Status) Terminal() bool {
	return s == Hlt || s == Adr || s == Ins
}

// Fields is one stage register's latched content: a name-indexed set of
// uint64 payloads. Using a map keeps the stage register generic across
// architectures with different field sets (spec.md §4.B: "an ordered set
// of named fields") without the engine needing per-architecture structs.
type Fields map[string]uint64

// Clone returns an independent copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Command is the two-bit (stall, bubble) control input to a Register's
// commit, per spec.md §3.
type Command struct {
	Stall  bool
	Bubble bool
}

// Register is a stateful pipeline latch: an ordered set of named fields
// plus a Status, committed atomically at the cycle boundary according to
// its Command for the cycle.
type Register struct {
	name   string
	status Status
	fields Fields
}

// NewRegister creates a stage register initialized to the bubble
// pattern (spec.md §3 lifecycle: "stage registers = bubble pattern").
func NewRegister(name string) *Register {
	return &Register{name: name, status: Bub, fields: Fields{}}
}

// Name returns the stage register's identifier (e.g. "D" for the
// Fetch→Decode latch), used in trace output.
func (r *Register) Name() string { return r.name }

// Status returns the currently latched status (pre-cycle read).
func (r *Register) Status() Status { return r.status }

// Field returns the currently latched value of a named field, or 0 if
// the field was never set (bubble pattern zeroes all dependent fields).
func (r *Register) Field(name string) uint64 { return r.fields[name] }

// Snapshot returns a copy of the currently latched fields, for trace
// export.
func (r *Register) Snapshot() Fields { return r.fields.Clone() }

// Commit applies cmd for this cycle. next is the proposed new content
// (ignored unless cmd is (0,0)); bubbleStatus/bubbleFields describe this
// register's NOP-equivalent pattern, supplied by the architecture wiring
// since the field set differs per stage register.
func (r *Register) Commit(cmd Command, nextStatus Status, next Fields, bubbleStatus Status, bubbleFields Fields) error {
	switch {
	case cmd.Stall && cmd.Bubble:
		return fmt.Errorf("stage: register %q: illegal command (stall=1, bubble=1)", r.name)
	case cmd.Stall:
		// keep current values
	case cmd.Bubble:
		r.status = bubbleStatus
		r.fields = bubbleFields.Clone()
	default:
		r.status = nextStatus
		r.fields = next.Clone()
	}
	return nil
}
