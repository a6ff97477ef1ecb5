// Package expand rewrites loop-else constructs into plain Go.
//
// A construct such as
//
//	for _, x := range xs {
//		if x == want {
//			break
//		}
//	} else {
//		notFound()
//	}
//
// is expanded to
//
//	{ _forelse0 := true; for _, x := range xs {
//		if x == want {
//			{ _forelse0 = false; break }
//		}
//	} ; if _forelse0 {
//		notFound()
//	} }
//
// No newline is ever inserted, so the expanded source keeps the line numbers
// of the original.
package expand

import (
	"bytes"
	"fmt"
	"go/format"
	"go/parser"
	"go/scanner"
	"go/token"
	"path/filepath"

	"github.com/sanchopanca/for-else/ast"
	"github.com/sanchopanca/for-else/common"
	"github.com/sanchopanca/for-else/report"
	"github.com/sanchopanca/for-else/syntax"
)

// Options configures an expansion.
type Options struct {
	// FlagPrefix is the prefix of generated completion flags.
	FlagPrefix string

	// SplitKeyword is the identifier introducing a split else block.  It is
	// only used by ExpandSource.
	SplitKeyword string

	// Format indicates whether the output should be run through gofmt.  If it
	// is not, a line directive maps the output back to the source file.
	Format bool

	// WarnUseless enables the warning for else clauses on loops that no break
	// statement leaves.
	WarnUseless bool

	// Reserved is a list of additional identifiers flags must not collide
	// with: typically every identifier of the other files of the package.
	Reserved []string

	// SourceName is the name of the source file used in the generated header
	// and line directive.  It defaults to the base name of the file.
	SourceName string
}

// DefaultOptions returns the options used in the absence of configuration.
func DefaultOptions() Options {
	return Options{
		FlagPrefix:   common.DefaultFlagPrefix,
		SplitKeyword: common.DefaultSplitKeyword,
		Format:       true,
		WarnUseless:  true,
	}
}

// Result is the expanded form of a file.
type Result struct {
	// Source is the complete expanded Go source.
	Source []byte

	// Flags holds the completion flag generated for each loop of the file,
	// in the order of the file's loops.
	Flags []string

	// Breaks is the number of break statements rewritten.
	Breaks int

	// Warnings holds the non-fatal problems found in the file.
	Warnings report.ErrorList
}

// loopState tracks a single loop through expansion.
type loopState struct {
	loop *ast.LoopElse
	flag string

	// The staged offsets of the `for` keyword and the opening brace of the
	// loop body.
	forOffset, lbraceOffset int

	matched bool
	breaks  int
}

// ExpandSource parses and expands a source file.
func ExpandSource(name string, src []byte, opts Options) (*Result, report.ErrorList) {
	file, errs := syntax.Parse(token.NewFileSet(), name, src, opts.SplitKeyword)
	if len(errs) > 0 {
		return nil, errs
	}

	return Expand(file, src, opts)
}

// Expand rewrites every loop-else construct of a parsed file.  Expansion runs
// in two stages.  The first stage wraps each construct in a block declaring its
// flag and turns the else clause into an if statement: the result is valid Go
// and is parsed with the Go parser.  The second stage uses the Go AST to find
// the break statements that leave each loop and makes them clear the flag.
func Expand(file *ast.File, src []byte, opts Options) (*Result, report.ErrorList) {
	if opts.FlagPrefix == "" {
		opts.FlagPrefix = common.DefaultFlagPrefix
	}

	if opts.SourceName == "" {
		opts.SourceName = filepath.Base(file.Name)
	}

	srcFile := token.NewFileSet().AddFile(file.Name, -1, len(src))
	srcFile.SetLinesForContent(src)

	// stage one: flag declarations and else clauses
	names := newGensym(opts.FlagPrefix, file.Idents, opts.Reserved)
	var stage editList
	var states []*loopState
	for _, le := range file.Loops {
		if le.Else == nil {
			continue
		}

		st := &loopState{loop: le, flag: names.next()}
		states = append(states, st)

		stage.insert(le.Start, "{ "+st.flag+" := true; ")
		if le.Else.Form == ast.ElseSplit {
			stage.replace(le.Else.Keyword, le.Else.KeywordEnd, "if "+st.flag)
		} else {
			stage.replace(le.Else.Keyword, le.Else.KeywordEnd, "; if "+st.flag)
		}
		stage.insert(le.Else.Body.Rbrace+1, " }")
	}

	staged := stage.apply(src)
	for _, st := range states {
		st.forOffset = stage.mapOffset(st.loop.Loop.For)
		st.lbraceOffset = stage.mapOffset(st.loop.Loop.Body.Lbrace)
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, file.Name, staged, parser.AllErrors|parser.SkipObjectResolution)
	if err != nil {
		return nil, stagedErrors(srcFile, &stage, err)
	}

	// stage two: breaks
	br := newBreakResolver(fset.File(f.Pos()), states)
	br.resolve(f)

	var errs report.ErrorList
	result := &Result{}
	for _, st := range states {
		le := st.loop
		result.Flags = append(result.Flags, st.flag)
		result.Breaks += st.breaks

		if !st.matched {
			errs.Add(le.Else.Span(), "else clause is not attached to a for loop")
			continue
		}

		kwSpan := syntax.SpanOf(srcFile, le.Else.Keyword, le.Else.KeywordEnd)
		switch {
		case le.Loop.Kind == ast.LoopInfinite:
			result.Warnings.Add(kwSpan, "else clause of a for loop without a condition never runs")
		case opts.WarnUseless && st.breaks == 0:
			result.Warnings.Add(kwSpan, "else clause always runs: no break statement leaves this loop")
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	out, err := assemble(br.edits.apply(staged), opts)
	if err != nil {
		errs.Add(nil, "failed to format expanded source: %s", err)
		return nil, errs
	}

	result.Source = out
	return result, nil
}

// assemble prepends the generated header to the expanded source and formats it
// or adds a line directive.
func assemble(expanded []byte, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, common.GeneratedHeader+"\n\n", opts.SourceName)

	if !opts.Format {
		fmt.Fprintf(&buf, "//line %s:1\n", opts.SourceName)
		buf.Write(expanded)
		return buf.Bytes(), nil
	}

	buf.Write(expanded)
	return format.Source(buf.Bytes())
}

// stagedErrors converts the errors of parsing the staged source into errors
// positioned in the original source.
func stagedErrors(srcFile *token.File, stage *editList, err error) report.ErrorList {
	var errs report.ErrorList

	el, ok := err.(scanner.ErrorList)
	if !ok {
		errs.Add(nil, "%s", err)
		return errs
	}

	el.RemoveMultiples()
	for _, e := range el {
		offset := stage.unmapOffset(e.Pos.Offset)
		errs.Add(syntax.SpanOf(srcFile, offset, offset+1), "%s", e.Msg)
	}

	return errs
}
