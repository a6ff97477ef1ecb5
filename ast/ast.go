package ast

import "github.com/sanchopanca/for-else/report"

// The abstract interface for all AST nodes.
type ASTNode interface {
	// The text span of the AST.
	Span() *report.TextSpan
}

// A utility base struct for all AST nodes.
type ASTBase struct {
	// The span over which the AST node occurs.
	span *report.TextSpan
}

// NewASTBaseOn creates a new AST base with the given span.
func NewASTBaseOn(span *report.TextSpan) ASTBase {
	return ASTBase{span: span}
}

// NewASTBaseOver creates a new AST base spanning over two spans.
func NewASTBaseOver(start, end *report.TextSpan) ASTBase {
	return ASTBase{span: report.NewSpanOver(start, end)}
}

func (ab ASTBase) Span() *report.TextSpan {
	return ab.span
}

// -----------------------------------------------------------------------------

// Identifier represents a named value: a label or a loop binding.
type Identifier struct {
	ASTBase

	Name string

	// The byte offset of the identifier in the source file.
	Offset int
}

// Block represents a brace-delimited block of statements.  Only the offsets of
// its braces are stored: the statements themselves are plain Go and are left to
// the Go parser.
type Block struct {
	ASTBase

	// The byte offsets of the opening and closing braces.
	Lbrace, Rbrace int
}

// File represents a single source file written in the extended dialect.
type File struct {
	// The name of the file as it is displayed to the user.
	Name string

	// The loop-else constructs of the file in source order: an outer construct
	// always comes before the constructs nested within it.
	Loops []*LoopElse

	// The set of every identifier appearing in the file.
	Idents map[string]struct{}
}
