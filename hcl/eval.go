package hcl

import (
	"fmt"

	"github.com/y86pipe/y86pipe-go/signal"
)

// EvalCycle evaluates every signal and unit in topological order against
// empty per-cycle state, implementing spec.md §4.D steps 1-2: "In
// topological order, compute each named signal from its definition. When
// a unit output is needed, evaluate the unit's pure function... unit
// outputs are memoized within the cycle." Memoization is automatic here
// since each unit node is visited exactly once per call.
//
// It performs no commits: stateful units' Eval functions must return
// their pre-cycle snapshot regardless of input (see hcl.UnitSpec docs);
// applying next-state belongs to CommitCycle, called once EvalCycle has
// produced the full signal environment.
func (c *Compiled) EvalCycle() (sigVals map[string]signal.Value, unitOut map[string]map[string]signal.Value, err error) {
	sigVals = make(map[string]signal.Value, len(c.exprByName))
	unitOut = make(map[string]map[string]signal.Value, len(c.Units))

	for _, n := range c.order {
		if n.unit {
			u := c.Units[n.name]
			in := make(map[string]signal.Value, len(u.Inputs))
			for _, p := range u.Inputs {
				sigName := c.inputWire[n.name][p.Name]
				in[p.Name] = sigVals[sigName]
			}
			unitOut[n.name] = u.Eval(in)
			continue
		}
		v, everr := evalExpr(c.exprByName[n.name], sigVals, unitOut)
		if everr != nil {
			return nil, nil, fmt.Errorf("hcl: signal %q: %w", n.name, everr)
		}
		sigVals[n.name] = retagToKind(c.kindByName[n.name], v)
	}
	return sigVals, unitOut, nil
}

// retagToKind stamps a statically-inferred Kind onto a value that came
// back from evalExpr still carrying KindUnknown (a case arm or bare
// signal definition that is, syntactically, just an integer literal).
// Everything else is left alone: once a value is concretely typed it
// keeps the tag that produced it.
func retagToKind(k signal.Kind, v signal.Value) signal.Value {
	if v.Kind != signal.KindUnknown || k == signal.KindUnknown {
		return v
	}
	switch k {
	case signal.KindByte:
		return signal.Byte(uint8(v.Word))
	case signal.KindReg:
		return signal.Reg(uint8(v.Word))
	case signal.KindStatus:
		return signal.Value{Kind: signal.KindStatus, Word: v.Word}
	default:
		return signal.Word(v.Word)
	}
}

// CommitCycle applies every stateful unit's next-state, using the
// signal environment EvalCycle just produced, implementing spec.md §4.D
// steps 3-4 ("Collect next-state proposals... Commit: apply all
// proposals atomically").
func (c *Compiled) CommitCycle(sigVals map[string]signal.Value) error {
	for name, u := range c.Units {
		if u.Commit == nil {
			continue
		}
		in := make(map[string]signal.Value, len(u.CommitInputs))
		for _, p := range u.CommitInputs {
			sigName := c.commitWire[name][p.Name]
			in[p.Name] = sigVals[sigName]
		}
		if err := u.Commit(in); err != nil {
			return fmt.Errorf("hcl: unit %q commit: %w", name, err)
		}
	}
	return nil
}

// SignalNames returns every named signal in source order, for stable
// trace output.
func (c *Compiled) SignalNames() []string {
	names := make([]string, 0, len(c.Program.Signals))
	for _, s := range c.Program.Signals {
		names = append(names, s.Name)
	}
	return names
}

// SignalKind returns a signal's statically inferred Kind.
func (c *Compiled) SignalKind(name string) signal.Kind { return c.kindByName[name] }

func evalExpr(e Expr, sig map[string]signal.Value, units map[string]map[string]signal.Value) (signal.Value, error) {
	switch n := e.(type) {
	case *IntLit:
		return signal.Value{Kind: signal.KindUnknown, Word: n.Value}, nil
	case *BoolLit:
		return signal.Bool(n.Value), nil
	case *Ident:
		v, ok := sig[n.Name]
		if !ok {
			return signal.Value{}, fmt.Errorf("line %d: signal %q not yet evaluated", n.Line, n.Name)
		}
		return v, nil
	case *UnitPort:
		outs, ok := units[n.Unit]
		if !ok {
			return signal.Value{}, fmt.Errorf("line %d: unit %q not yet evaluated", n.Line, n.Unit)
		}
		v, ok := outs[n.Port]
		if !ok {
			return signal.Value{}, fmt.Errorf("line %d: unit %q produced no port %q", n.Line, n.Unit, n.Port)
		}
		return v, nil
	case *Unary:
		x, err := evalExpr(n.X, sig, units)
		if err != nil {
			return signal.Value{}, err
		}
		if n.Op == "!" {
			return signal.Bool(!x.AsBool()), nil
		}
		return tagNumeric(x.Kind, -x.AsWord()), nil
	case *Binary:
		l, err := evalExpr(n.L, sig, units)
		if err != nil {
			return signal.Value{}, err
		}
		r, err := evalExpr(n.R, sig, units)
		if err != nil {
			return signal.Value{}, err
		}
		return evalBinary(n.Op, l, r)
	case *InSet:
		x, err := evalExpr(n.X, sig, units)
		if err != nil {
			return signal.Value{}, err
		}
		for _, s := range n.Set {
			sv, err := evalExpr(s, sig, units)
			if err != nil {
				return signal.Value{}, err
			}
			if valuesEqual(x, sv) {
				return signal.Bool(true), nil
			}
		}
		return signal.Bool(false), nil
	case *Case:
		for _, arm := range n.Arms {
			if lit, ok := arm.Cond.(*IntLit); ok && lit.Value == 1 {
				return evalExpr(arm.Value, sig, units)
			}
			cv, err := evalExpr(arm.Cond, sig, units)
			if err != nil {
				return signal.Value{}, err
			}
			if cv.AsBool() {
				return evalExpr(arm.Value, sig, units)
			}
		}
		return signal.Value{}, fmt.Errorf("case expression matched no arm")
	default:
		return signal.Value{}, fmt.Errorf("unsupported expression node %T", e)
	}
}

func evalBinary(op string, l, r signal.Value) (signal.Value, error) {
	switch op {
	case "&&":
		return signal.Bool(l.AsBool() && r.AsBool()), nil
	case "||":
		return signal.Bool(l.AsBool() || r.AsBool()), nil
	case "==":
		return signal.Bool(valuesEqual(l, r)), nil
	case "!=":
		return signal.Bool(!valuesEqual(l, r)), nil
	case "<":
		return signal.Bool(l.AsWord() < r.AsWord()), nil
	case "<=":
		return signal.Bool(l.AsWord() <= r.AsWord()), nil
	case ">":
		return signal.Bool(l.AsWord() > r.AsWord()), nil
	case ">=":
		return signal.Bool(l.AsWord() >= r.AsWord()), nil
	case "+":
		return tagNumeric(resultKind(l.Kind, r.Kind), l.AsWord()+r.AsWord()), nil
	case "-":
		return tagNumeric(resultKind(l.Kind, r.Kind), l.AsWord()-r.AsWord()), nil
	case "&":
		return tagNumeric(resultKind(l.Kind, r.Kind), l.AsWord()&r.AsWord()), nil
	case "|":
		return tagNumeric(resultKind(l.Kind, r.Kind), l.AsWord()|r.AsWord()), nil
	case "^":
		return tagNumeric(resultKind(l.Kind, r.Kind), l.AsWord()^r.AsWord()), nil
	default:
		return signal.Value{}, fmt.Errorf("unsupported operator %q", op)
	}
}

func resultKind(a, b signal.Kind) signal.Kind {
	if a != signal.KindUnknown {
		return a
	}
	return b
}

func tagNumeric(k signal.Kind, w uint64) signal.Value {
	switch k {
	case signal.KindByte:
		return signal.Byte(uint8(w))
	case signal.KindReg:
		return signal.Reg(uint8(w))
	case signal.KindStatus:
		return signal.Value{Kind: signal.KindStatus, Word: w}
	default:
		return signal.Word(w)
	}
}

func valuesEqual(a, b signal.Value) bool {
	if a.Kind == signal.KindBool || b.Kind == signal.KindBool {
		return a.AsBool() == b.AsBool()
	}
	return a.AsWord() == b.AsWord()
}
