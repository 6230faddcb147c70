package hcl

import (
	"fmt"

	"github.com/y86pipe/y86pipe-go/signal"
)

// node identifies one vertex of the dependency graph: either a named
// signal or a unit (whose vertex represents "this unit's Eval has run").
type node struct {
	unit bool
	name string
}

func sigNode(name string) node { return node{unit: false, name: name} }
func unitNode(name string) node { return node{unit: true, name: name} }

// Compiled is the dependency-ordered evaluation schedule produced by
// Compile: the topological Order over signals and units, the resolved
// input wiring for each unit, and each signal's inferred Kind. See
// spec.md §4.C "Compilation".
type Compiled struct {
	Program *Program
	Units   map[string]*UnitSpec

	order []node

	// inputWire[unit][port] = signal name feeding that Eval input.
	inputWire map[string]map[string]string
	// commitWire[unit][port] = signal name feeding that Commit input.
	commitWire map[string]map[string]string

	exprByName map[string]Expr
	kindByName map[string]signal.Kind
}

// Compile type-checks and schedules prog against the given units. units
// keys must match every unit name referenced by prog's wire statements
// and unit.port expressions.
func Compile(prog *Program, units map[string]*UnitSpec) (*Compiled, error) {
	c := &Compiled{
		Program:    prog,
		Units:      units,
		inputWire:  map[string]map[string]string{},
		commitWire: map[string]map[string]string{},
		exprByName: map[string]Expr{},
		kindByName: map[string]signal.Kind{},
	}

	seen := map[string]bool{}
	for _, s := range prog.Signals {
		if seen[s.Name] {
			return nil, &CompileError{Signal: s.Name, Reason: "defined more than once"}
		}
		seen[s.Name] = true
		c.exprByName[s.Name] = s.Expr
	}

	if err := c.resolveWires(prog); err != nil {
		return nil, err
	}
	if err := c.checkInputsFullyWired(); err != nil {
		return nil, err
	}
	order, err := c.topoSort(prog)
	if err != nil {
		return nil, err
	}
	c.order = order
	if err := c.inferKinds(); err != nil {
		return nil, err
	}
	return c, nil
}

// resolveWires partitions prog's wire statements into Eval-input wiring
// and Commit-input wiring per unit, validating unit/port existence and
// rejecting duplicate wires to the same port.
func (c *Compiled) resolveWires(prog *Program) error {
	for _, w := range prog.Wires {
		u, ok := c.Units[w.Unit]
		if !ok {
			return &CompileError{Signal: w.Signal, Reason: fmt.Sprintf("wire references undefined unit %q", w.Unit)}
		}
		if _, ok := c.exprByName[w.Signal]; !ok {
			return &CompileError{Signal: w.Signal, Reason: "wire references undefined signal"}
		}
		if _, ok := u.inputPort(w.Port); ok {
			if c.inputWire[w.Unit] == nil {
				c.inputWire[w.Unit] = map[string]string{}
			}
			if _, dup := c.inputWire[w.Unit][w.Port]; dup {
				return &CompileError{Signal: w.Signal, Reason: fmt.Sprintf("input %s.%s wired more than once", w.Unit, w.Port)}
			}
			c.inputWire[w.Unit][w.Port] = w.Signal
			continue
		}
		if _, ok := u.commitPort(w.Port); ok {
			if c.commitWire[w.Unit] == nil {
				c.commitWire[w.Unit] = map[string]string{}
			}
			if _, dup := c.commitWire[w.Unit][w.Port]; dup {
				return &CompileError{Signal: w.Signal, Reason: fmt.Sprintf("commit input %s.%s wired more than once", w.Unit, w.Port)}
			}
			c.commitWire[w.Unit][w.Port] = w.Signal
			continue
		}
		return &CompileError{Signal: w.Signal, Reason: fmt.Sprintf("unit %q has no input or commit port %q", w.Unit, w.Port)}
	}
	return nil
}

// checkInputsFullyWired enforces "every unit input must be wired exactly
// once" (spec.md §4.C) for both Eval inputs and Commit inputs.
func (c *Compiled) checkInputsFullyWired() error {
	for name, u := range c.Units {
		for _, p := range u.Inputs {
			if _, ok := c.inputWire[name][p.Name]; !ok {
				return &CompileError{Reason: fmt.Sprintf("unit %q input %q is never wired", name, p.Name)}
			}
		}
		for _, p := range u.CommitInputs {
			if _, ok := c.commitWire[name][p.Name]; !ok {
				return &CompileError{Reason: fmt.Sprintf("unit %q commit input %q is never wired", name, p.Name)}
			}
		}
	}
	return nil
}

// deps returns the set of nodes e directly references: other signals
// (Ident), and units (UnitPort) — the unit node itself is the
// dependency, not its individual output port.
func exprDeps(e Expr) []node {
	switch n := e.(type) {
	case *Ident:
		return []node{sigNode(n.Name)}
	case *UnitPort:
		return []node{unitNode(n.Unit)}
	case *IntLit, *BoolLit:
		return nil
	case *Unary:
		return exprDeps(n.X)
	case *Binary:
		return append(exprDeps(n.L), exprDeps(n.R)...)
	case *InSet:
		out := exprDeps(n.X)
		for _, s := range n.Set {
			out = append(out, exprDeps(s)...)
		}
		return out
	case *Case:
		var out []node
		for _, arm := range n.Arms {
			out = append(out, exprDeps(arm.Cond)...)
			out = append(out, exprDeps(arm.Value)...)
		}
		return out
	default:
		return nil
	}
}

// topoSort builds the combined signal+unit dependency graph and returns
// a valid evaluation order, or a CompileError naming a signal on the
// first cycle found. Unit nodes whose Inputs list is empty (stage
// registers, and any other unit that only exposes pre-cycle state) have
// no incoming edges and so can never participate in a cycle — this is
// exactly the "stateful units break cycles by construction" rule from
// spec.md §4.C/§9.
func (c *Compiled) topoSort(prog *Program) ([]node, error) {
	type color int
	const (
		white color = iota
		gray
		black
	)

	colors := map[node]color{}
	var order []node

	var visit func(n node, path []node) error
	visit = func(n node, path []node) error {
		switch colors[n] {
		case black:
			return nil
		case gray:
			return &CompileError{Signal: firstSignalName(path), Reason: "cyclic dependency among signals"}
		}
		colors[n] = gray
		path = append(path, n)

		var deps []node
		if n.unit {
			u := c.Units[n.name]
			for _, p := range u.Inputs {
				sig := c.inputWire[n.name][p.Name]
				deps = append(deps, sigNode(sig))
			}
		} else {
			e, ok := c.exprByName[n.name]
			if !ok {
				return &CompileError{Signal: n.name, Reason: "undefined signal"}
			}
			deps = exprDeps(e)
		}
		for _, d := range deps {
			if d.unit {
				if _, ok := c.Units[d.name]; !ok {
					return &CompileError{Signal: n.name, Reason: fmt.Sprintf("references undefined unit %q", d.name)}
				}
			} else if _, ok := c.exprByName[d.name]; !ok {
				return &CompileError{Signal: n.name, Reason: fmt.Sprintf("references undefined signal %q", d.name)}
			}
			if err := visit(d, path); err != nil {
				return err
			}
		}
		colors[n] = black
		order = append(order, n)
		return nil
	}

	for _, s := range prog.Signals {
		if err := visit(sigNode(s.Name), nil); err != nil {
			return nil, err
		}
	}
	for name := range c.Units {
		if err := visit(unitNode(name), nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func firstSignalName(path []node) string {
	for _, n := range path {
		if !n.unit {
			return n.name
		}
	}
	if len(path) > 0 {
		return path[0].name
	}
	return ""
}

// inferKinds performs a single pass over the topological order computing
// each signal's Kind, so that by the time a signal is referenced its
// Kind is already known (spec.md §4.A: "an expression that mixes tags
// fails at HCL compile time").
func (c *Compiled) inferKinds() error {
	for _, n := range c.order {
		if n.unit {
			continue
		}
		e := c.exprByName[n.name]
		k, err := c.kindOf(e)
		if err != nil {
			return &CompileError{Signal: n.name, Reason: err.Error()}
		}
		c.kindByName[n.name] = k
	}
	return nil
}

func (c *Compiled) kindOf(e Expr) (signal.Kind, error) {
	switch n := e.(type) {
	case *IntLit:
		return signal.KindUnknown, nil
	case *BoolLit:
		return signal.KindBool, nil
	case *Ident:
		k, ok := c.kindByName[n.Name]
		if !ok {
			return 0, fmt.Errorf("line %d: signal %q used before its kind is known", n.Line, n.Name)
		}
		return k, nil
	case *UnitPort:
		u, ok := c.Units[n.Unit]
		if !ok {
			return 0, fmt.Errorf("line %d: undefined unit %q", n.Line, n.Unit)
		}
		k, ok := u.outputKind(n.Port)
		if !ok {
			return 0, fmt.Errorf("line %d: unit %q has no output port %q", n.Line, n.Unit, n.Port)
		}
		return k, nil
	case *Unary:
		k, err := c.kindOf(n.X)
		if err != nil {
			return 0, err
		}
		if n.Op == "!" && k != signal.KindBool && k != signal.KindUnknown {
			return 0, fmt.Errorf("line %d: '!' requires a bool operand, got %s", n.Line, k)
		}
		return k, nil
	case *Binary:
		lk, err := c.kindOf(n.L)
		if err != nil {
			return 0, err
		}
		rk, err := c.kindOf(n.R)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case "&&", "||":
			if err := requireBoolish(lk, rk, n.Line); err != nil {
				return 0, err
			}
			return signal.KindBool, nil
		case "==", "!=", "<", "<=", ">", ">=":
			if _, err := unify(lk, rk, n.Line); err != nil {
				return 0, err
			}
			return signal.KindBool, nil
		default: // + - & | ^
			rk2, err := unify(lk, rk, n.Line)
			if err != nil {
				return 0, err
			}
			if rk2 == signal.KindBool || rk2 == signal.KindCC {
				return 0, fmt.Errorf("line %d: operator %q requires a numeric operand, got %s", n.Line, n.Op, rk2)
			}
			return rk2, nil
		}
	case *InSet:
		xk, err := c.kindOf(n.X)
		if err != nil {
			return 0, err
		}
		for _, s := range n.Set {
			sk, err := c.kindOf(s)
			if err != nil {
				return 0, err
			}
			if xk, err = unify(xk, sk, n.Line); err != nil {
				return 0, err
			}
		}
		return signal.KindBool, nil
	case *Case:
		var result signal.Kind = signal.KindUnknown
		for _, arm := range n.Arms {
			condK, err := c.kindOf(arm.Cond)
			if err != nil {
				return 0, err
			}
			if condK != signal.KindBool && condK != signal.KindUnknown {
				return 0, fmt.Errorf("line %d: case condition must be bool, got %s", n.Line, condK)
			}
			valK, err := c.kindOf(arm.Value)
			if err != nil {
				return 0, err
			}
			if result, err = unify(result, valK, n.Line); err != nil {
				return 0, err
			}
		}
		return result, nil
	default:
		return 0, fmt.Errorf("unknown expression node %T", e)
	}
}

func requireBoolish(lk, rk signal.Kind, line int) error {
	ok := func(k signal.Kind) bool { return k == signal.KindBool || k == signal.KindUnknown }
	if !ok(lk) || !ok(rk) {
		return fmt.Errorf("line %d: '&&'/'||' require bool operands, got %s and %s", line, lk, rk)
	}
	return nil
}

func unify(a, b signal.Kind, line int) (signal.Kind, error) {
	if a == signal.KindUnknown {
		return b, nil
	}
	if b == signal.KindUnknown {
		return a, nil
	}
	if a != b {
		return 0, fmt.Errorf("line %d: mismatched signal kinds: %s vs %s", line, a, b)
	}
	return a, nil
}
