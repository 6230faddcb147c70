// Package condcode implements the condition-code register (spec.md
// §4.B ConditionCodes): three Booleans (ZF, SF, OF), read combinationally,
// written edge-triggered only by ALU operations in the flag-setting
// group (spec.md §3, isa.SetsCC).
package condcode

import "github.com/y86pipe/y86pipe-go/signal"

// Bank is the stateful condition-code register.
type Bank struct {
	committed signal.CC
	pending   signal.CC
	dirty     bool
}

// New returns a Bank with all flags clear (spec.md §3 lifecycle).
func New() *Bank {
	return &Bank{}
}

// Read returns the last-committed condition codes.
func (b *Bank) Read() signal.CC { return b.committed }

// Propose queues a new condition-code bundle for the next Commit. Only
// called when the owning ALU operation asserts set_cc; if Propose is
// never called in a cycle, Commit leaves the bundle unchanged.
func (b *Bank) Propose(cc signal.CC) {
	b.pending = cc
	b.dirty = true
}

// Commit applies the queued bundle, if any, then resets for the next
// cycle.
func (b *Bank) Commit() {
	if b.dirty {
		b.committed = b.pending
	}
	b.dirty = false
}

// Cond evaluates the six Y86-64 jump/cmov conditions against cc: the
// priority order and the Boolean formulas are the textbook CS:APP ones,
// shared between the JXX and CMovXX instruction classes (spec.md §4.E
// references this as the Execute-stage `cnd` signal).
func Cond(ifun byte, cc signal.CC) bool {
	switch ifun {
	case 0: // always / rrmovq
		return true
	case 1: // le
		return (cc.SF != cc.OF) || cc.ZF
	case 2: // l
		return cc.SF != cc.OF
	case 3: // e
		return cc.ZF
	case 4: // ne
		return !cc.ZF
	case 5: // ge
		return cc.SF == cc.OF
	case 6: // g
		return (cc.SF == cc.OF) && !cc.ZF
	default:
		return false
	}
}
