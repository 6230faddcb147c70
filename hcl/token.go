package hcl

import "fmt"

// tokenKind enumerates the lexical token classes recognized by the HCL
// lexer (spec.md §4.C: named signals, constants, unit output references,
// operators, membership tests, Boolean connectives, priority-case
// syntax).
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokAssign    // =
	tokSemi      // ;
	tokColon     // :
	tokDot       // .
	tokComma     // ,
	tokLBracket  // [
	tokRBracket  // ]
	tokLBrace    // {
	tokRBrace    // }
	tokLParen    // (
	tokRParen    // )
	tokPlus      // +
	tokMinus     // -
	tokAmp       // &
	tokPipe      // |
	tokCaret     // ^
	tokBang      // !
	tokEq        // ==
	tokNe        // !=
	tokLt        // <
	tokLe        // <=
	tokGt        // >
	tokGe        // >=
	tokAndAnd    // &&
	tokOrOr      // ||
	tokKwIn      // in
	tokKwTrue    // true
	tokKwFalse   // false
	tokKwWire    // wire
)

type token struct {
	kind tokenKind
	text string
	ival uint64
	line int
}

func (t token) String() string {
	return fmt.Sprintf("%v(%q)@%d", t.kind, t.text, t.line)
}

var keywords = map[string]tokenKind{
	"in":    tokKwIn,
	"true":  tokKwTrue,
	"false": tokKwFalse,
	"wire":  tokKwWire,
}
