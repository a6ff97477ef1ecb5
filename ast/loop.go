package ast

// LoopKind is the tag of a loop header.
type LoopKind int

// Enumeration of the recognized loop headers.
const (
	LoopClause   LoopKind = iota // for init; cond; post { }
	LoopCond                     // for cond { }
	LoopRange                    // for k, v := range x { }
	LoopInfinite                 // for { }
)

func (lk LoopKind) String() string {
	switch lk {
	case LoopClause:
		return "clause"
	case LoopCond:
		return "cond"
	case LoopRange:
		return "range"
	case LoopInfinite:
		return "infinite"
	}

	return "unknown"
}

// ElseForm indicates which surface syntax introduced an else clause.
type ElseForm int

// Enumeration of the else clause forms.
const (
	ElseCombined ElseForm = iota // for ... { } else { }
	ElseSplit                    // for ... { } followed by nobreak { }
)

func (ef ElseForm) String() string {
	if ef == ElseSplit {
		return "split"
	}

	return "combined"
}

// LoopSpec represents the loop part of a loop-else construct.
type LoopSpec struct {
	ASTBase

	Kind LoopKind

	// The label of the loop.  This is nil if the loop is unlabeled.
	Label *Identifier

	// The byte offset of the `for` keyword.
	For int

	// The source text between the `for` keyword and the body.
	Header string

	// The names bound by a range loop.  Blank and omitted bindings are not
	// included.
	Bindings []*Identifier

	// The iterable of a range loop or the condition of any other loop.  This
	// is empty for infinite loops and clause loops without a condition.
	Subject string

	Body *Block
}

// ElseSpec represents the else clause of a loop-else construct.
type ElseSpec struct {
	ASTBase

	Form ElseForm

	// The byte offsets delimiting the keyword introducing the clause: `else`
	// or the split keyword.
	Keyword, KeywordEnd int

	Body *Block
}

// LoopElse represents a loop with an optional attached else clause.
type LoopElse struct {
	ASTBase

	// The byte offset at which the whole statement starts: the label if there
	// is one and the `for` keyword otherwise.
	Start int

	Loop *LoopSpec

	// The else clause.  This may be nil in which case the loop is emitted
	// unchanged.
	Else *ElseSpec
}

// End returns the byte offset one past the end of the construct.
func (le *LoopElse) End() int {
	if le.Else == nil {
		return le.Loop.Body.Rbrace + 1
	}

	return le.Else.Body.Rbrace + 1
}
