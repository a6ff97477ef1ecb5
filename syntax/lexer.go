package syntax

import (
	"go/scanner"
	"go/token"

	"github.com/sanchopanca/for-else/report"
)

// Token represents a token read in by the lexer.
type Token struct {
	Kind token.Token

	// Value is the literal text of the token.  It is empty for operators and
	// "\n" for semicolons inserted automatically at line ends.
	Value string

	// The byte offsets at which the token begins and ends.
	Offset, End int
}

// IsAutoSemicolon returns whether the token is a semicolon inserted by the
// scanner rather than written in the source.
func (t *Token) IsAutoSemicolon() bool {
	return t.Kind == token.SEMICOLON && t.Value == "\n"
}

// Lexer tokenizes an extended Go source file.  The extended dialect has the
// exact lexical grammar of Go (`else` is already a keyword and the split
// keyword lexes as an identifier), so the standard Go scanner does all the
// work; the lexer only records offsets and scanning errors.
type Lexer struct {
	file *token.File
	sc   scanner.Scanner
	errs report.ErrorList
}

// NewLexer creates a new lexer for the given source, registering the file in
// the file set.
func NewLexer(fset *token.FileSet, name string, src []byte) *Lexer {
	l := &Lexer{file: fset.AddFile(name, fset.Base(), len(src))}

	l.sc.Init(l.file, src, func(pos token.Position, msg string) {
		l.errs.Add(SpanOf(l.file, pos.Offset, pos.Offset+1), "%s", msg)
	}, 0)

	return l
}

// File returns the token file of the source being lexed.
func (l *Lexer) File() *token.File {
	return l.file
}

// Lex reads every token of the source, including the final automatic
// semicolon but excluding EOF.
func (l *Lexer) Lex() ([]Token, report.ErrorList) {
	var toks []Token

	for {
		pos, tok, lit := l.sc.Scan()
		if tok == token.EOF {
			break
		}

		offset := l.file.Offset(pos)
		end := offset
		switch {
		case tok == token.SEMICOLON && lit == "\n":
			// automatic semicolons have no width
		case lit != "":
			end += len(lit)
		default:
			end += len(tok.String())
		}

		toks = append(toks, Token{Kind: tok, Value: lit, Offset: offset, End: end})
	}

	return toks, l.errs
}

// -----------------------------------------------------------------------------

// SpanOf converts a range of byte offsets of the given file into a text span.
func SpanOf(file *token.File, start, end int) *report.TextSpan {
	start = clampOffset(file, start)
	end = clampOffset(file, end)
	if end < start {
		end = start
	}

	sp := file.Position(file.Pos(start))
	ep := file.Position(file.Pos(end))

	return &report.TextSpan{
		StartLine: sp.Line - 1,
		StartCol:  sp.Column - 1,
		EndLine:   ep.Line - 1,
		EndCol:    ep.Column - 1,
	}
}

func clampOffset(file *token.File, offset int) int {
	if offset < 0 {
		return 0
	}

	if offset > file.Size() {
		return file.Size()
	}

	return offset
}
