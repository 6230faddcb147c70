package arch

import (
	"github.com/y86pipe/y86pipe-go/alu"
	"github.com/y86pipe/y86pipe-go/condcode"
	"github.com/y86pipe/y86pipe-go/hcl"
	"github.com/y86pipe/y86pipe-go/memory"
	"github.com/y86pipe/y86pipe-go/register"
	"github.com/y86pipe/y86pipe-go/signal"
	"github.com/y86pipe/y86pipe-go/units"
)

// fetchUnit wraps units.Fetch as the "imem" unit: input port pc, output
// ports icode/ifun/rA/rB/valC/valP/status.
func fetchUnit(mem *memory.Bank) *hcl.UnitSpec {
	return &hcl.UnitSpec{
		Name:    "imem",
		Inputs:  []hcl.Port{{Name: "pc", Kind: signal.KindWord}},
		Outputs: []hcl.Port{
			{Name: "icode", Kind: signal.KindByte},
			{Name: "ifun", Kind: signal.KindByte},
			{Name: "rA", Kind: signal.KindReg},
			{Name: "rB", Kind: signal.KindReg},
			{Name: "valC", Kind: signal.KindWord},
			{Name: "valP", Kind: signal.KindWord},
			{Name: "status", Kind: signal.KindStatus},
		},
		Eval: func(in map[string]signal.Value) map[string]signal.Value {
			out := units.Fetch(mem, in["pc"].AsWord())
			return map[string]signal.Value{
				"icode":  signal.Byte(out.Icode),
				"ifun":   signal.Byte(out.Ifun),
				"rA":     signal.Reg(out.RA),
				"rB":     signal.Reg(out.RB),
				"valC":   signal.Word(out.ValC),
				"valP":   signal.Word(out.ValP),
				"status": units.StatusSignal(out.Status),
			}
		},
	}
}

// dataMemUnit wraps units.DataMem as the "dmem" unit.
func dataMemUnit(mem *memory.Bank) *hcl.UnitSpec {
	return &hcl.UnitSpec{
		Name: "dmem",
		Inputs: []hcl.Port{
			{Name: "addr", Kind: signal.KindWord},
			{Name: "datain", Kind: signal.KindWord},
			{Name: "memread", Kind: signal.KindBool},
			{Name: "memwrite", Kind: signal.KindBool},
		},
		Outputs: []hcl.Port{
			{Name: "valm", Kind: signal.KindWord},
			{Name: "status", Kind: signal.KindStatus},
		},
		Eval: func(in map[string]signal.Value) map[string]signal.Value {
			out := units.DataMem(mem, in["addr"].AsWord(), in["datain"].AsWord(), in["memread"].AsBool(), in["memwrite"].AsBool())
			return map[string]signal.Value{
				"valm":   signal.Word(out.ValM),
				"status": units.StatusSignal(out.Status),
			}
		},
	}
}

// aluUnit wraps alu.Eval. The three flag outputs are exposed as
// individual Bool ports rather than a single CC-kind port, so that
// .hcl programs can wire them straight into the condcode commit inputs
// without needing a CC literal syntax.
func aluUnit() *hcl.UnitSpec {
	return &hcl.UnitSpec{
		Name: "alu",
		Inputs: []hcl.Port{
			{Name: "aluA", Kind: signal.KindWord},
			{Name: "aluB", Kind: signal.KindWord},
			{Name: "alufun", Kind: signal.KindByte},
			{Name: "setcc", Kind: signal.KindBool},
		},
		Outputs: []hcl.Port{
			{Name: "valE", Kind: signal.KindWord},
			{Name: "zf", Kind: signal.KindBool},
			{Name: "sf", Kind: signal.KindBool},
			{Name: "of", Kind: signal.KindBool},
		},
		Eval: func(in map[string]signal.Value) map[string]signal.Value {
			valE, cc := alu.Eval(in["aluA"].AsWord(), in["aluB"].AsWord(), byte(in["alufun"].AsWord()), in["setcc"].AsBool())
			return map[string]signal.Value{
				"valE": signal.Word(valE),
				"zf":   signal.Bool(cc.ZF),
				"sf":   signal.Bool(cc.SF),
				"of":   signal.Bool(cc.OF),
			}
		},
	}
}

// condCodeUnit wraps a *condcode.Bank as the "cc" unit: no Eval inputs
// (it is a pure pre-cycle state source, like every other stateful unit
// here), committed from the ALU's flag outputs whenever setcc is
// asserted.
func condCodeUnit(cc *condcode.Bank) *hcl.UnitSpec {
	return &hcl.UnitSpec{
		Name: "cc",
		Outputs: []hcl.Port{
			{Name: "zf", Kind: signal.KindBool},
			{Name: "sf", Kind: signal.KindBool},
			{Name: "of", Kind: signal.KindBool},
		},
		Eval: func(map[string]signal.Value) map[string]signal.Value {
			v := cc.Read()
			return map[string]signal.Value{
				"zf": signal.Bool(v.ZF),
				"sf": signal.Bool(v.SF),
				"of": signal.Bool(v.OF),
			}
		},
		CommitInputs: []hcl.Port{
			{Name: "setcc", Kind: signal.KindBool},
			{Name: "zf_in", Kind: signal.KindBool},
			{Name: "sf_in", Kind: signal.KindBool},
			{Name: "of_in", Kind: signal.KindBool},
		},
		Commit: func(in map[string]signal.Value) error {
			if in["setcc"].AsBool() {
				cc.Propose(signal.CC{ZF: in["zf_in"].AsBool(), SF: in["sf_in"].AsBool(), OF: in["of_in"].AsBool()})
			}
			cc.Commit()
			return nil
		},
	}
}

// registerFileUnit wraps a *register.File as the "rf" unit: two
// combinational reads (srcA/srcB) and two deferred writes (the ALU path
// dstE/valE and the memory path dstM/valM), applied in that order so a
// simultaneous write to the same register (the "popq %rsp" edge case)
// resolves the way spec.md §4.E documents: the memory-path write wins.
func registerFileUnit(f *register.File) *hcl.UnitSpec {
	return &hcl.UnitSpec{
		Name: "rf",
		Inputs: []hcl.Port{
			{Name: "srcA", Kind: signal.KindReg},
			{Name: "srcB", Kind: signal.KindReg},
		},
		Outputs: []hcl.Port{
			{Name: "valA", Kind: signal.KindWord},
			{Name: "valB", Kind: signal.KindWord},
		},
		Eval: func(in map[string]signal.Value) map[string]signal.Value {
			return map[string]signal.Value{
				"valA": signal.Word(f.Read(uint8(in["srcA"].AsWord()))),
				"valB": signal.Word(f.Read(uint8(in["srcB"].AsWord()))),
			}
		},
		CommitInputs: []hcl.Port{
			{Name: "dstE", Kind: signal.KindReg},
			{Name: "valE", Kind: signal.KindWord},
			{Name: "dstM", Kind: signal.KindReg},
			{Name: "valM", Kind: signal.KindWord},
		},
		Commit: func(in map[string]signal.Value) error {
			f.Propose(uint8(in["dstE"].AsWord()), in["valE"].AsWord())
			f.Propose(uint8(in["dstM"].AsWord()), in["valM"].AsWord())
			f.Commit()
			return nil
		},
	}
}
