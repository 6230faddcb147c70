// Package arch wires the pure hardware units (package alu, units,
// register, condcode, memory) and the stage registers (package stage)
// into the three fixed HCL programs (package hcl) that make up the
// architecture registry: seq_std, seq_plus_std and pipe_std. Nothing in
// this package decides pipeline behavior itself — every branch/forward/
// stall decision lives in arch/programs/*.hcl; this package only
// supplies the typed port lists and the Eval/Commit closures the HCL
// compiler schedules.
package arch

import (
	"github.com/y86pipe/y86pipe-go/hcl"
	"github.com/y86pipe/y86pipe-go/isa"
	"github.com/y86pipe/y86pipe-go/signal"
	"github.com/y86pipe/y86pipe-go/stage"
)

// fieldSpec names one stage-register field and its signal kind.
type fieldSpec struct {
	Name string
	Kind signal.Kind
}

// stageRegisterUnit adapts a *stage.Register into an hcl.UnitSpec:
// Outputs expose the register's pre-cycle field values plus its
// pre-cycle status; CommitInputs are stall, bubble, a next-status and
// one port per field (commitPort defaults to the field name, overridden
// by commitPortAlias for the rare port whose wired name differs from
// its field, e.g. pcreg's single field "pc" committed via port
// "pc_new").
func stageRegisterUnit(reg *stage.Register, fields []fieldSpec, commitPortAlias map[string]string) *hcl.UnitSpec {
	// The NOP-equivalent bubble pattern: every register-id field reads
	// as RNONE, not the zero value a bare map miss would give (0 is
	// %rax, a perfectly valid write target). Seeded onto reg immediately
	// so even the pre-first-cycle state matches, and reused as the
	// pattern every subsequent bubble commit restores.
	bubble := bubbleFields(fields)
	reg.Commit(stage.Command{Bubble: true}, stage.Bub, nil, stage.Bub, bubble)

	outputs := make([]hcl.Port, 0, len(fields)+1)
	for _, f := range fields {
		outputs = append(outputs, hcl.Port{Name: f.Name, Kind: f.Kind})
	}
	outputs = append(outputs, hcl.Port{Name: "status", Kind: signal.KindStatus})

	commitInputs := []hcl.Port{
		{Name: "stall", Kind: signal.KindBool},
		{Name: "bubble", Kind: signal.KindBool},
		{Name: "status", Kind: signal.KindStatus},
	}
	portForField := make(map[string]string, len(fields))
	for _, f := range fields {
		port := f.Name
		for alias, field := range commitPortAlias {
			if field == f.Name {
				port = alias
			}
		}
		portForField[f.Name] = port
		commitInputs = append(commitInputs, hcl.Port{Name: port, Kind: f.Kind})
	}

	return &hcl.UnitSpec{
		Name:    reg.Name(),
		Outputs: outputs,
		Eval: func(map[string]signal.Value) map[string]signal.Value {
			out := make(map[string]signal.Value, len(fields)+1)
			for _, f := range fields {
				out[f.Name] = tagField(f.Kind, reg.Field(f.Name))
			}
			out["status"] = signal.Value{Kind: signal.KindStatus, Word: uint64(reg.Status())}
			return out
		},
		CommitInputs: commitInputs,
		Commit: func(in map[string]signal.Value) error {
			cmd := stage.Command{Stall: in["stall"].AsBool(), Bubble: in["bubble"].AsBool()}
			next := stage.Fields{}
			for _, f := range fields {
				next[f.Name] = untagField(f.Kind, in[portForField[f.Name]])
			}
			nextStatus := stage.Status(in["status"].AsWord())
			return reg.Commit(cmd, nextStatus, next, stage.Bub, bubble)
		},
	}
}

// bubbleFields is the NOP pattern for one stage register's field set:
// register-id fields read RNONE, everything else reads zero.
func bubbleFields(fields []fieldSpec) stage.Fields {
	f := make(stage.Fields, len(fields))
	for _, fs := range fields {
		if fs.Kind == signal.KindReg {
			f[fs.Name] = isa.RNONE
		}
	}
	return f
}

func tagField(k signal.Kind, word uint64) signal.Value {
	switch k {
	case signal.KindBool:
		return signal.Bool(word != 0)
	case signal.KindByte:
		return signal.Byte(uint8(word))
	case signal.KindReg:
		return signal.Reg(uint8(word))
	default:
		return signal.Word(word)
	}
}

func untagField(k signal.Kind, v signal.Value) uint64 {
	if k == signal.KindBool {
		if v.AsBool() {
			return 1
		}
		return 0
	}
	return v.AsWord()
}
