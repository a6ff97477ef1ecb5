package syntax

import (
	"go/token"
	"sort"
	"strings"

	"github.com/sanchopanca/for-else/ast"
	"github.com/sanchopanca/for-else/report"
)

// Parser finds the loop-else constructs of an extended Go source file.  It
// does not parse Go itself: the statements inside loop bodies and else bodies
// are plain Go and are validated by the Go parser after expansion.  The parser
// only needs to decide, for each `else` keyword (and each split keyword), which
// statement owns the block preceding it.
type Parser struct {
	file *token.File
	src  []byte
	toks []Token

	// match maps the index of each brace token to the index of its partner.
	match map[int]int

	// splitKeyword is the identifier introducing a split else block.  If it is
	// empty, the split form is disabled.
	splitKeyword string

	// clauses is the set of token indices of keywords already consumed as the
	// else clause of a loop.
	clauses map[int]struct{}

	loops []*ast.LoopElse
	errs  report.ErrorList
}

// Parse parses the given source and returns the AST of its loop-else
// constructs along with any errors encountered.
func Parse(fset *token.FileSet, name string, src []byte, splitKeyword string) (*ast.File, report.ErrorList) {
	lexer := NewLexer(fset, name, src)
	toks, errs := lexer.Lex()

	file := &ast.File{Name: name, Idents: make(map[string]struct{})}
	for _, tok := range toks {
		if tok.Kind == token.IDENT {
			file.Idents[tok.Value] = struct{}{}
		}
	}

	if len(errs) > 0 {
		return file, errs
	}

	p := &Parser{
		file:         lexer.File(),
		src:          src,
		toks:         toks,
		match:        make(map[int]int),
		splitKeyword: splitKeyword,
		clauses:      make(map[int]struct{}),
	}

	if p.matchBraces() {
		p.parseClauses()
	}

	sort.SliceStable(p.loops, func(i, j int) bool {
		return p.loops[i].Start < p.loops[j].Start
	})
	file.Loops = p.loops

	p.errs.Sort()
	return file, p.errs
}

// matchBraces pairs up every brace token.  It returns false if the braces of
// the file are unbalanced.
func (p *Parser) matchBraces() bool {
	var stack []int

	for i, tok := range p.toks {
		switch tok.Kind {
		case token.LBRACE:
			stack = append(stack, i)
		case token.RBRACE:
			if len(stack) == 0 {
				p.errs.Add(p.spanOfToken(i), "unexpected `}`: no matching `{`")
				return false
			}

			lb := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p.match[lb] = i
			p.match[i] = lb
		}
	}

	if len(stack) > 0 {
		p.errs.Add(p.spanOfToken(stack[len(stack)-1]), "unclosed `{`")
		return false
	}

	return true
}

// parseClauses visits every else keyword and split keyword in source order.
func (p *Parser) parseClauses() {
	for i, tok := range p.toks {
		switch {
		case tok.Kind == token.ELSE:
			p.parseElse(i)
		case tok.Kind == token.IDENT && p.isSplitKeyword(i):
			p.parseSplit(i)
		}
	}
}

// parseElse handles an `else` keyword.  Else clauses belonging to if
// statements are left alone.
func (p *Parser) parseElse(i int) {
	if i == 0 || p.toks[i-1].Kind != token.RBRACE {
		// not preceded by a block: this is a Go syntax error that the Go parser
		// will report after expansion
		return
	}

	owner, ownerNdx := p.blockOwner(p.match[i-1])
	switch owner {
	case token.IF, token.ELSE:
		if _, ok := p.clauses[ownerNdx]; ok {
			p.errs.Add(p.spanOfToken(i), "unexpected `else`: the for loop already has an else clause")
		}
	case token.FOR:
		if i+1 >= len(p.toks) || p.toks[i+1].Kind != token.LBRACE {
			p.errs.Add(p.spanOfToken(i), "the else clause of a for loop must be a block")
			return
		}

		p.addLoop(ownerNdx, p.match[i-1], i, ast.ElseCombined)
	default:
		p.errs.Add(p.spanOfToken(i), "else clause is not attached to an if statement or a for loop")
	}
}

// parseSplit handles a split keyword: a separate block statement that must
// immediately follow a for loop.
func (p *Parser) parseSplit(i int) {
	kw := p.toks[i].Value

	if i >= 2 && p.toks[i-1].Kind == token.SEMICOLON && p.toks[i-2].Kind == token.RBRACE {
		owner, ownerNdx := p.blockOwner(p.match[i-2])
		switch owner {
		case token.FOR:
			p.addLoop(ownerNdx, p.match[i-2], i, ast.ElseSplit)
			return
		case token.IF, token.ELSE:
			if _, ok := p.clauses[ownerNdx]; ok {
				p.errs.Add(p.spanOfToken(i), "unexpected `%s`: the for loop already has an else clause", kw)
				return
			}
		}
	}

	p.errs.Add(p.spanOfToken(i), "`%s` block does not immediately follow a for loop", kw)
}

// isSplitKeyword returns whether the identifier at the given index is the split
// keyword used as a statement: ie. at the start of a statement and followed by
// a block.
func (p *Parser) isSplitKeyword(i int) bool {
	if p.splitKeyword == "" || p.toks[i].Value != p.splitKeyword {
		return false
	}

	if i+1 >= len(p.toks) || p.toks[i+1].Kind != token.LBRACE {
		return false
	}

	if i == 0 {
		return true
	}

	switch p.toks[i-1].Kind {
	case token.SEMICOLON, token.LBRACE, token.COLON:
		return true
	}

	return false
}

// blockOwner determines which statement owns the block opened by the brace at
// the given index.  It walks backwards over the tokens at the same brace and
// parenthesis depth as the brace until it finds a statement keyword.  The walk
// fails when it leaves the enclosing block, reaches an automatic semicolon
// (the end of the previous statement) or passes more semicolons than a for
// clause can hold.  It returns the owning keyword and its index, or ILLEGAL.
func (p *Parser) blockOwner(lb int) (token.Token, int) {
	depth, pdepth, semis := 0, 0, 0

	for j := lb - 1; j >= 0; j-- {
		tok := &p.toks[j]

		switch tok.Kind {
		case token.RBRACE:
			depth++
			continue
		case token.LBRACE:
			if depth == 0 {
				return token.ILLEGAL, -1
			}

			depth--
			continue
		}

		if depth > 0 {
			continue
		}

		switch tok.Kind {
		case token.RPAREN, token.RBRACK:
			pdepth++
		case token.LPAREN, token.LBRACK:
			if pdepth == 0 {
				return token.ILLEGAL, -1
			}

			pdepth--
		case token.FOR, token.IF, token.ELSE, token.SWITCH, token.SELECT:
			if pdepth == 0 {
				return tok.Kind, j
			}
		case token.SEMICOLON:
			if pdepth == 0 {
				if tok.IsAutoSemicolon() {
					return token.ILLEGAL, -1
				}

				semis++
				if semis > 2 {
					return token.ILLEGAL, -1
				}
			}
		}
	}

	return token.ILLEGAL, -1
}

// -----------------------------------------------------------------------------

// addLoop builds a loop-else node.  forNdx is the index of the `for` keyword,
// lb is the index of the opening brace of the loop body and kwNdx is the index
// of the keyword introducing the else clause (which is always followed by its
// block).
func (p *Parser) addLoop(forNdx, lb, kwNdx int, form ast.ElseForm) {
	forTok := p.toks[forNdx]
	rb := p.match[lb]
	elseLb := kwNdx + 1
	elseRb := p.match[elseLb]

	loop := &ast.LoopSpec{
		For: forTok.Offset,
		Body: &ast.Block{
			ASTBase: ast.NewASTBaseOn(p.spanOf(p.toks[lb].Offset, p.toks[rb].End)),
			Lbrace:  p.toks[lb].Offset,
			Rbrace:  p.toks[rb].Offset,
		},
	}

	start := forTok.Offset
	if label := p.labelOf(forNdx); label != nil {
		loop.Label = label
		start = label.Offset
	}

	headerStart := forTok.End
	header := string(p.src[headerStart:p.toks[lb].Offset])
	if err := p.classifyHeader(loop, header, headerStart); err != nil {
		p.errs = append(p.errs, err)
		return
	}

	loop.ASTBase = ast.NewASTBaseOn(p.spanOf(start, p.toks[rb].End))

	kwTok := p.toks[kwNdx]
	elseSpec := &ast.ElseSpec{
		ASTBase:    ast.NewASTBaseOn(p.spanOf(kwTok.Offset, p.toks[elseRb].End)),
		Form:       form,
		Keyword:    kwTok.Offset,
		KeywordEnd: kwTok.End,
		Body: &ast.Block{
			ASTBase: ast.NewASTBaseOn(p.spanOf(p.toks[elseLb].Offset, p.toks[elseRb].End)),
			Lbrace:  p.toks[elseLb].Offset,
			Rbrace:  p.toks[elseRb].Offset,
		},
	}

	p.clauses[kwNdx] = struct{}{}
	p.loops = append(p.loops, &ast.LoopElse{
		ASTBase: ast.NewASTBaseOver(loop.Span(), elseSpec.Span()),
		Start:   start,
		Loop:    loop,
		Else:    elseSpec,
	})
}

// labelOf returns the label of the for loop whose keyword is at the given
// index, or nil if it is unlabeled.  `case x: for` is not a label: the token
// before a label must end a statement.
func (p *Parser) labelOf(forNdx int) *ast.Identifier {
	if forNdx < 2 || p.toks[forNdx-1].Kind != token.COLON || p.toks[forNdx-2].Kind != token.IDENT {
		return nil
	}

	if forNdx > 2 {
		switch p.toks[forNdx-3].Kind {
		case token.SEMICOLON, token.LBRACE, token.COLON:
		default:
			return nil
		}
	}

	tok := p.toks[forNdx-2]
	return &ast.Identifier{
		ASTBase: ast.NewASTBaseOn(p.spanOf(tok.Offset, tok.End)),
		Name:    tok.Value,
		Offset:  tok.Offset,
	}
}

// -----------------------------------------------------------------------------

func (p *Parser) spanOf(start, end int) *report.TextSpan {
	return SpanOf(p.file, start, end)
}

func (p *Parser) spanOfToken(i int) *report.TextSpan {
	tok := p.toks[i]
	return SpanOf(p.file, tok.Offset, max(tok.End, tok.Offset+1))
}

// trimmedSpan returns the offsets of the given text with surrounding
// whitespace removed, relative to the offset at which the text starts.
func trimmedSpan(text string, offset int) (int, int) {
	start := offset + len(text) - len(strings.TrimLeft(text, " \t\r\n"))
	end := offset + len(strings.TrimRight(text, " \t\r\n"))
	if end < start {
		end = start
	}

	return start, end
}
