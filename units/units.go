// Package units implements the combinational hardware units built on top
// of memory.Bank and isa: InstructionMemory (fetch-time decode of
// icode/ifun/rA/rB/valC/valP) and DataMemory (the Memory-stage
// read/write path). See spec.md §4.B.
//
// Each unit here is a pure function over its typed input port set
// (spec.md §4.B "Unit purity"): no unit keeps its own state, including
// DataMemory, whose backing store is a *memory.Bank owned by the
// machine, not the unit itself — the unit only describes how addr,
// data_in, mem_read and mem_write combine into valM/dmem_error and, when
// mem_write is asserted, a write applied to the bank at once, matching
// memory.Bank's Propose/Commit-free design
// (writes there are immediate, gated by mem_write being asserted by the
// caller only after all same-cycle reads have already happened, exactly
// as register.File's comment describes for its own Propose/Commit split
// applied to a plain byte array instead of a register index).
package units

import (
	"github.com/y86pipe/y86pipe-go/isa"
	"github.com/y86pipe/y86pipe-go/memory"
	"github.com/y86pipe/y86pipe-go/signal"
	"github.com/y86pipe/y86pipe-go/stage"
)

// FetchOutputs is the InstructionMemory unit's output port set.
type FetchOutputs struct {
	Icode, Ifun byte
	RA, RB      byte // register ids, isa.RNONE if the instruction has none
	ValC        uint64
	ValP        uint64 // pc + instruction length
	Status      stage.Status
}

// Fetch implements the InstructionMemory unit: input port pc, output
// ports icode/ifun/rA/rB/valC/valP/imem_error (folded into Status).
func Fetch(mem *memory.Bank, pc uint64) FetchOutputs {
	b0, err := mem.ReadByte(pc)
	if err != nil {
		return FetchOutputs{RA: isa.RNONE, RB: isa.RNONE, ValP: pc + 1, Status: stage.Adr}
	}
	icode, ifun := b0>>4, b0&0xF
	if !isa.Valid(icode) {
		return FetchOutputs{Icode: icode, Ifun: ifun, RA: isa.RNONE, RB: isa.RNONE, ValP: pc + 1, Status: stage.Ins}
	}

	out := FetchOutputs{Icode: icode, Ifun: ifun, RA: isa.RNONE, RB: isa.RNONE, Status: stage.Aok}
	off := pc + 1

	if isa.HasRegIds(icode) {
		rb, err := mem.ReadByte(off)
		if err != nil {
			out.Status = stage.Adr
			out.ValP = off
			return out
		}
		out.RA, out.RB = rb>>4, rb&0xF
		off++
	}
	if isa.HasValC(icode) {
		v, err := mem.ReadWord(off)
		if err != nil {
			out.Status = stage.Adr
			out.ValP = off
			return out
		}
		out.ValC = v
		off += 8
	}
	out.ValP = off
	return out
}

// MemOutputs is the DataMemory unit's output port set.
type MemOutputs struct {
	ValM   uint64
	Status stage.Status
}

// DataMem implements the DataMemory unit: input ports addr, data_in,
// mem_read, mem_write; output ports valM/dmem_error (folded into
// Status). A read and a write at the same address in the same cycle
// never both occur for a single Y86-64 instruction, so ordering between
// them is unspecified and irrelevant.
func DataMem(mem *memory.Bank, addr, dataIn uint64, memRead, memWrite bool) MemOutputs {
	out := MemOutputs{Status: stage.Aok}
	if memRead {
		v, err := mem.ReadWord(addr)
		if err != nil {
			out.Status = stage.Adr
			return out
		}
		out.ValM = v
	}
	if memWrite {
		if err := mem.WriteWord(addr, dataIn); err != nil {
			out.Status = stage.Adr
			return out
		}
	}
	return out
}

// StatusSignal wraps a stage.Status as a tagged signal.Value, for use as
// an HCL unit-output binding.
func StatusSignal(s stage.Status) signal.Value {
	return signal.Value{Kind: signal.KindStatus, Word: uint64(s)}
}
