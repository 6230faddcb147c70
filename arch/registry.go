package arch

import (
	_ "embed"
	"fmt"

	"github.com/y86pipe/y86pipe-go/condcode"
	"github.com/y86pipe/y86pipe-go/engine"
	"github.com/y86pipe/y86pipe-go/hcl"
	"github.com/y86pipe/y86pipe-go/memory"
	"github.com/y86pipe/y86pipe-go/register"
	"github.com/y86pipe/y86pipe-go/signal"
	"github.com/y86pipe/y86pipe-go/stage"
)

//go:embed programs/seq_std.hcl
var seqStdSource string

//go:embed programs/seq_plus_std.hcl
var seqPlusStdSource string

//go:embed programs/pipe_std.hcl
var pipeStdSource string

// Instance is one running architecture bound to a concrete memory
// image: the compiled net-list plus every stateful component a trace
// needs to read back (spec.md §4.F "Trace").
type Instance struct {
	Name      string
	Engine    *engine.Engine
	Memory    *memory.Bank
	Registers *register.File
	CondCodes *condcode.Bank
	Stages    map[string]*stage.Register // e.g. "pcreg", and for pipe_std "D","E","M","W"
}

// buildFunc compiles one architecture's .hcl program against mem and
// returns the running Instance.
type buildFunc func(mem *memory.Bank) (*Instance, error)

// registry maps architecture name to its builder. Populated by init so
// every name is available before any caller touches the package.
var registry = map[string]buildFunc{}

func init() {
	registry["seq_std"] = buildSeq("seq_std", seqStdSource)
	registry["seq_plus_std"] = buildSeq("seq_plus_std", seqPlusStdSource)
	registry["pipe_std"] = buildPipe
}

// Names returns every registered architecture name, sorted for stable
// CLI listing.
func Names() []string {
	return []string{"pipe_std", "seq_plus_std", "seq_std"}
}

// Build compiles the named architecture against mem.
func Build(name string, mem *memory.Bank) (*Instance, error) {
	b, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("arch: unknown architecture %q", name)
	}
	return b(mem)
}

// buildSeq shares the non-pipelined wiring between seq_std and
// seq_plus_std: both use a single "pcreg" stage register (standing in
// for the edge-triggered PC) and the same five hardware units, and
// differ only in the .hcl program text.
func buildSeq(name, source string) buildFunc {
	return func(mem *memory.Bank) (*Instance, error) {
		pc := stage.NewRegister("pcreg")
		regs := register.New()
		cc := condcode.New()

		units := map[string]*hcl.UnitSpec{
			"imem":   fetchUnit(mem),
			"dmem":   dataMemUnit(mem),
			"alu":    aluUnit(),
			"rf":     registerFileUnit(regs),
			"cc":     condCodeUnit(cc),
			"pcreg":  stageRegisterUnit(pc, []fieldSpec{{Name: "pc", Kind: signal.KindWord}}, map[string]string{"pc_new": "pc"}),
		}

		prog, err := hcl.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("arch: %s: parse: %w", name, err)
		}
		compiled, err := hcl.Compile(prog, units)
		if err != nil {
			return nil, fmt.Errorf("arch: %s: compile: %w", name, err)
		}

		terminal := func(sig map[string]signal.Value) stage.Status {
			return stage.Status(sig["stat"].AsWord())
		}

		return &Instance{
			Name:      name,
			Engine:    engine.New(compiled, terminal),
			Memory:    mem,
			Registers: regs,
			CondCodes: cc,
			Stages:    map[string]*stage.Register{"pcreg": pc},
		}, nil
	}
}

// buildPipe wires the 5-stage pipeline: one stage register per
// Fetch->Decode->Execute->Memory->Writeback latch, plus the same five
// hardware units as the non-pipelined architectures.
func buildPipe(mem *memory.Bank) (*Instance, error) {
	pc := stage.NewRegister("pcreg")
	dReg := stage.NewRegister("D")
	eReg := stage.NewRegister("E")
	mReg := stage.NewRegister("M")
	wReg := stage.NewRegister("W")
	regs := register.New()
	cc := condcode.New()

	byteF := signal.KindByte
	regF := signal.KindReg
	wordF := signal.KindWord
	boolF := signal.KindBool

	dFields := []fieldSpec{
		{Name: "icode", Kind: byteF}, {Name: "ifun", Kind: byteF},
		{Name: "rA", Kind: regF}, {Name: "rB", Kind: regF},
		{Name: "valC", Kind: wordF}, {Name: "valP", Kind: wordF},
	}
	eFields := []fieldSpec{
		{Name: "icode", Kind: byteF}, {Name: "ifun", Kind: byteF},
		{Name: "valC", Kind: wordF}, {Name: "valP", Kind: wordF},
		{Name: "valA", Kind: wordF}, {Name: "valB", Kind: wordF},
		{Name: "dstE", Kind: regF}, {Name: "dstM", Kind: regF},
	}
	mFields := []fieldSpec{
		{Name: "icode", Kind: byteF}, {Name: "valE", Kind: wordF},
		{Name: "valA", Kind: wordF}, {Name: "valP", Kind: wordF},
		{Name: "dstE", Kind: regF}, {Name: "dstM", Kind: regF},
		{Name: "cnd", Kind: boolF},
	}
	wFields := []fieldSpec{
		{Name: "icode", Kind: byteF}, {Name: "valE", Kind: wordF},
		{Name: "valM", Kind: wordF},
		{Name: "dstE", Kind: regF}, {Name: "dstM", Kind: regF},
	}

	units := map[string]*hcl.UnitSpec{
		"imem":  fetchUnit(mem),
		"dmem":  dataMemUnit(mem),
		"alu":   aluUnit(),
		"rf":    registerFileUnit(regs),
		"cc":    condCodeUnit(cc),
		"pcreg": stageRegisterUnit(pc, []fieldSpec{{Name: "pc", Kind: wordF}}, map[string]string{"pc_new": "pc"}),
		"D":     stageRegisterUnit(dReg, dFields, nil),
		"E":     stageRegisterUnit(eReg, eFields, nil),
		"M":     stageRegisterUnit(mReg, mFields, nil),
		"W":     stageRegisterUnit(wReg, wFields, nil),
	}

	prog, err := hcl.Parse(pipeStdSource)
	if err != nil {
		return nil, fmt.Errorf("arch: pipe_std: parse: %w", err)
	}
	compiled, err := hcl.Compile(prog, units)
	if err != nil {
		return nil, fmt.Errorf("arch: pipe_std: compile: %w", err)
	}

	terminal := func(map[string]signal.Value) stage.Status {
		return wReg.Status()
	}

	return &Instance{
		Name:      "pipe_std",
		Engine:    engine.New(compiled, terminal),
		Memory:    mem,
		Registers: regs,
		CondCodes: cc,
		Stages: map[string]*stage.Register{
			"pcreg": pc, "D": dReg, "E": eReg, "M": mReg, "W": wReg,
		},
	}, nil
}
