// Package register implements the Y86-64 register file (spec.md §4.B
// RegisterFile): 15 architectural registers, combinational reads of
// pre-cycle values, edge-triggered commit of up to two writes per
// cycle (the ALU-path write via dstE and the memory-path write via
// dstM). Register isa.RNONE (15) is never a writable sink.
//
// Reads and writes are split the way every other stateful unit in this
// simulator is split (see condcode.Bank, stage.Register): Read always
// observes the last *committed* state, and Propose/Commit defer the
// write until the engine's cycle-boundary commit step, so that within a
// single cycle a Decode-stage read of a register never observes a
// Writeback-stage write proposed earlier in topological order during
// the very same cycle (spec.md §5: "no intra-cycle read-your-own-write").
package register

import "github.com/y86pipe/y86pipe-go/isa"

// NumRegisters is the count of addressable registers (0..14); index 15
// is the RNONE sentinel and has no backing storage.
const NumRegisters = 15

// write is one queued write proposal.
type write struct {
	id  uint8
	val uint64
}

// File is the stateful 15-register bank.
type File struct {
	regs    [NumRegisters]uint64
	pending []write
}

// New returns a File with all registers initialized to zero (spec.md §3
// lifecycle).
func New() *File {
	return &File{}
}

// Read returns the pre-cycle (last committed) value of register id.
// Reading RNONE (or any id >= NumRegisters) returns 0, per spec.md §3.
func (f *File) Read(id uint8) uint64 {
	if id >= NumRegisters {
		return 0
	}
	return f.regs[id]
}

// Propose queues a write for the next Commit. Writes to RNONE are
// silently dropped, per spec.md §4.D commit step. Multiple proposals to
// distinct registers in the same cycle are independent; the HCL
// generator is responsible for never proposing two writes to the same
// register in one cycle (spec.md §4.D).
func (f *File) Propose(id uint8, val uint64) {
	if id >= NumRegisters {
		return
	}
	f.pending = append(f.pending, write{id: id, val: val})
}

// Commit atomically applies all writes proposed since the last Commit,
// then clears the queue. Called once per cycle, at the cycle boundary.
func (f *File) Commit() {
	for _, w := range f.pending {
		f.regs[w.id] = w.val
	}
	f.pending = f.pending[:0]
}

// Snapshot returns a copy of all 15 register values, for trace export.
func (f *File) Snapshot() [NumRegisters]uint64 {
	return f.regs
}

var _ = isa.RNONE // documents the sentinel this package honors
