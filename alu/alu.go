// Package alu implements the combinational ALU unit (spec.md §4.B ALU):
// aluA, aluB, alufun, set_cc in; valE and (when set_cc) a new condition
// code bundle out. Purity: identical inputs always produce identical
// outputs, no hidden state (spec.md §4.B "Unit purity").
package alu

import "github.com/y86pipe/y86pipe-go/isa"
import "github.com/y86pipe/y86pipe-go/signal"

// Eval computes valE = aluA <alufun> aluB and, when setCC is true, the
// resulting condition codes. When setCC is false the returned CC is the
// zero bundle and must be ignored by the caller (condcode.Bank.Propose
// is simply not called in that case).
func Eval(aluA, aluB uint64, alufun byte, setCC bool) (valE uint64, cc signal.CC) {
	var result uint64
	switch alufun {
	case isa.AluAdd:
		result = aluA + aluB
	case isa.AluSub:
		result = aluB - aluA
	case isa.AluAnd:
		result = aluA & aluB
	case isa.AluXor:
		result = aluA ^ aluB
	default:
		result = 0
	}
	if !setCC {
		return result, signal.CC{}
	}
	cc = signal.CC{
		ZF: result == 0,
		SF: int64(result) < 0,
	}
	cc.OF = overflow(alufun, aluA, aluB, result)
	return result, cc
}

// overflow computes the OF flag for add/sub the way the CS:APP reference
// ALU does: signed overflow for two's-complement add and subtract. AND
// and XOR never set OF.
func overflow(alufun byte, a, b, result uint64) bool {
	switch alufun {
	case isa.AluAdd:
		// aluA + aluB overflows iff operands share a sign and the
		// result's sign differs from theirs.
		sa, sb, sr := int64(a) < 0, int64(b) < 0, int64(result) < 0
		return sa == sb && sr != sa
	case isa.AluSub:
		// valE = aluB - aluA; overflow iff the operands' signs differ
		// and the result's sign differs from aluB's.
		sa, sb, sr := int64(a) < 0, int64(b) < 0, int64(result) < 0
		return sa != sb && sr != sb
	default:
		return false
	}
}
