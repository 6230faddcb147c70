package hcl

// Expr is one node of an HCL signal expression (spec.md §4.C). Kinds
// implementing Expr: *Ident, *UnitPort, *IntLit, *BoolLit, *Unary,
// *Binary, *InSet, *Case.
type Expr interface {
	exprNode()
}

// Ident is a reference to another named signal.
type Ident struct {
	Name string
	Line int
}

// UnitPort is a reference to a named unit's output port ("unit.port").
type UnitPort struct {
	Unit, Port string
	Line       int
}

// IntLit is an integer constant. Untyped until the compiler's type
// inference pass assigns it the Kind its context requires.
type IntLit struct {
	Value uint64
	Line  int
}

// BoolLit is a `true`/`false` constant.
type BoolLit struct {
	Value bool
	Line  int
}

// Unary is a prefix operator: "!" (logical not) or "-" (negation).
type Unary struct {
	Op   string
	X    Expr
	Line int
}

// Binary is an infix operator: arithmetic (+ - & | ^), comparison
// (== != < <= > >=), or Boolean (&& ||).
type Binary struct {
	Op   string
	L, R Expr
	Line int
}

// InSet is a membership test: `x in { a, b, c }`.
type InSet struct {
	X    Expr
	Set  []Expr
	Line int
}

// CaseArm is one arm of a priority-cased signal definition: `Cond : Value`.
// The final arm's Cond is always the literal constant `1` (see Parser);
// a definition missing that final unconditional arm is rejected by Parse.
type CaseArm struct {
	Cond  Expr
	Value Expr
}

// Case is a priority-cased expression: `[ c1 : e1 ; c2 : e2 ; ... ; 1 : eN ]`,
// evaluated top-down, taking the first arm whose Cond holds.
type Case struct {
	Arms []CaseArm
	Line int
}

func (*Ident) exprNode()    {}
func (*UnitPort) exprNode() {}
func (*IntLit) exprNode()   {}
func (*BoolLit) exprNode()  {}
func (*Unary) exprNode()    {}
func (*Binary) exprNode()   {}
func (*InSet) exprNode()    {}
func (*Case) exprNode()     {}

// SignalDef is one `name = <expr>` or `name = [ ... ]` statement.
type SignalDef struct {
	Name string
	Expr Expr
	Line int
}

// WireDef is one `wire unit.port = signal;` statement: it binds a named
// signal to a unit's input port (spec.md §4.C "Wiring").
type WireDef struct {
	Unit, Port, Signal string
	Line               int
}

// Program is a fully parsed HCL net-list: the signal definitions and the
// unit wirings, in source order (source order does not affect semantics
// — spec.md §8's reordering-invariance property — but is preserved for
// error messages and for reproducing parse errors deterministically).
type Program struct {
	Signals []SignalDef
	Wires   []WireDef
}
