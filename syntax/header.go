package syntax

import (
	goast "go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"

	"github.com/sanchopanca/for-else/ast"
	"github.com/sanchopanca/for-else/report"
)

// headerPrefix is the text placed before a loop header so that it can be parsed
// as a complete Go file.
const headerPrefix = "package p;func _(){for "

// classifyHeader parses the header of a loop (the text between `for` and the
// body) and fills in the kind, bindings and subject of the loop.  The offset is
// the byte offset of the header in the source file.
func (p *Parser) classifyHeader(loop *ast.LoopSpec, header string, offset int) *report.LocalCompileError {
	hs, he := trimmedSpan(header, offset)
	loop.Header = strings.TrimSpace(header)

	synth := headerPrefix + header + "{}}"
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "", synth, parser.SkipObjectResolution)
	if err != nil {
		msg := err.Error()
		if el, ok := err.(scanner.ErrorList); ok && len(el) > 0 {
			msg = el[0].Msg
		}

		return report.Raise(p.spanOf(hs, max(he, hs+1)), "invalid for loop header: %s", msg)
	}

	fn, ok := f.Decls[0].(*goast.FuncDecl)
	if !ok || len(fn.Body.List) != 1 {
		return report.Raise(p.spanOf(hs, max(he, hs+1)), "invalid for loop header")
	}

	// converts a synthetic offset back to a source offset
	toSource := func(pos token.Pos) int {
		return fset.Position(pos).Offset - len(headerPrefix) + offset
	}

	exprText := func(e goast.Expr) string {
		return string(p.src[toSource(e.Pos()):toSource(e.End())])
	}

	switch s := fn.Body.List[0].(type) {
	case *goast.ForStmt:
		switch {
		case s.Init == nil && s.Post == nil && s.Cond == nil:
			loop.Kind = ast.LoopInfinite
		case s.Init == nil && s.Post == nil:
			loop.Kind = ast.LoopCond
		default:
			loop.Kind = ast.LoopClause
		}

		if s.Cond != nil {
			loop.Subject = exprText(s.Cond)
		}
	case *goast.RangeStmt:
		loop.Kind = ast.LoopRange
		loop.Subject = exprText(s.X)

		for _, e := range []goast.Expr{s.Key, s.Value} {
			if id, ok := e.(*goast.Ident); ok && id.Name != "_" {
				start := toSource(id.Pos())
				loop.Bindings = append(loop.Bindings, &ast.Identifier{
					ASTBase: ast.NewASTBaseOn(p.spanOf(start, start+len(id.Name))),
					Name:    id.Name,
					Offset:  start,
				})
			}
		}
	default:
		return report.Raise(p.spanOf(hs, max(he, hs+1)), "invalid for loop header")
	}

	return nil
}
