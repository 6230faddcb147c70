package hcl

import "github.com/y86pipe/y86pipe-go/signal"

// Port is one named, typed port on a Unit (spec.md §4.B: "a list of
// named typed input ports, a list of named typed output ports").
type Port struct {
	Name string
	Kind signal.Kind
}

// UnitSpec is the HCL-visible description of one hardware unit: its
// typed port sets and the pure function(s) that drive it. Architectures
// (package arch) register one UnitSpec per unit named in their .hcl
// program, closing the Eval/Commit functions over the concrete Go
// hardware-unit value (memory.Bank, register.File, condcode.Bank,
// stage.Register, or a stateless function like alu.Eval/units.Fetch).
//
// Inputs are consumed by Eval and participate in the dependency graph:
// every name in Inputs must be wired exactly once via a `wire` statement,
// and that wiring becomes a topological-order dependency (spec.md §4.C).
//
// CommitInputs are consumed only by Commit, once per cycle, after the
// entire signal graph has been evaluated — they do not participate in
// topological ordering, since a stateful unit's latched next-state is
// never itself read until a subsequent cycle (this is precisely how
// stateful units "break" dependency cycles by construction, per spec.md
// §4.C/§9). A unit with a non-nil Commit must have every CommitInputs
// port wired exactly once, same as Inputs.
type UnitSpec struct {
	Name string

	Inputs  []Port
	Outputs []Port
	Eval    func(inputs map[string]signal.Value) map[string]signal.Value

	CommitInputs []Port
	Commit       func(inputs map[string]signal.Value) error
}

func (u *UnitSpec) outputKind(port string) (signal.Kind, bool) {
	for _, p := range u.Outputs {
		if p.Name == port {
			return p.Kind, true
		}
	}
	return 0, false
}

func (u *UnitSpec) inputPort(port string) (Port, bool) {
	for _, p := range u.Inputs {
		if p.Name == port {
			return p, true
		}
	}
	return Port{}, false
}

func (u *UnitSpec) commitPort(port string) (Port, bool) {
	for _, p := range u.CommitInputs {
		if p.Name == port {
			return p, true
		}
	}
	return Port{}, false
}
