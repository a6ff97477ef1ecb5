package syntax

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanchopanca/for-else/ast"
)

func parseString(t *testing.T, src string) (*ast.File, []string) {
	t.Helper()

	file, errs := Parse(token.NewFileSet(), "test.goe", []byte(src), "nobreak")
	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Message)
	}

	return file, msgs
}

func TestParseLoopShapes(t *testing.T) {
	src := `package main

func f(xs []int, n int) {
	for _, x := range xs {
	} else {
	}
	for i := 0; i < n; i++ {
	} else {
	}
	for n > 0 {
		n--
	} else {
	}
	for {
		break
	} else {
	}
}
`
	file, errs := parseString(t, src)
	require.Empty(t, errs)
	require.Len(t, file.Loops, 4)

	rng := file.Loops[0].Loop
	assert.Equal(t, ast.LoopRange, rng.Kind)
	assert.Equal(t, "_, x := range xs", rng.Header)
	assert.Equal(t, "xs", rng.Subject)
	require.Len(t, rng.Bindings, 1)
	assert.Equal(t, "x", rng.Bindings[0].Name)
	assert.Equal(t, "x", src[rng.Bindings[0].Offset:rng.Bindings[0].Offset+1])

	clause := file.Loops[1].Loop
	assert.Equal(t, ast.LoopClause, clause.Kind)
	assert.Equal(t, "i < n", clause.Subject)

	cond := file.Loops[2].Loop
	assert.Equal(t, ast.LoopCond, cond.Kind)
	assert.Equal(t, "n > 0", cond.Subject)

	inf := file.Loops[3].Loop
	assert.Equal(t, ast.LoopInfinite, inf.Kind)
	assert.Empty(t, inf.Subject)

	for _, le := range file.Loops {
		assert.Equal(t, ast.ElseCombined, le.Else.Form)
		assert.Equal(t, "else", src[le.Else.Keyword:le.Else.KeywordEnd])
		assert.Equal(t, byte('{'), src[le.Else.Body.Lbrace])
		assert.Equal(t, byte('}'), src[le.Else.Body.Rbrace])
		assert.Equal(t, "for", src[le.Start:le.Start+3])
	}
}

func TestParseIgnoresIfElse(t *testing.T) {
	src := `package main

func f(x int) int {
	if x > 0 {
		return 1
	} else if x < 0 {
		return -1
	} else {
		return 0
	}
}
`
	file, errs := parseString(t, src)
	assert.Empty(t, errs)
	assert.Empty(t, file.Loops)
	assert.Contains(t, file.Idents, "x")
}

func TestParseLabelAndNesting(t *testing.T) {
	src := `package main

func f(grid [][]int) {
outer:
	for _, row := range grid {
		for _, v := range row {
			if v < 0 {
				break outer
			}
		} else {
			continue
		}
	} else {
		println("clean")
	}
}
`
	file, errs := parseString(t, src)
	require.Empty(t, errs)
	require.Len(t, file.Loops, 2)

	outer, inner := file.Loops[0], file.Loops[1]
	require.NotNil(t, outer.Loop.Label)
	assert.Equal(t, "outer", outer.Loop.Label.Name)
	assert.Equal(t, "outer", src[outer.Start:outer.Start+5])
	assert.Nil(t, inner.Loop.Label)
	assert.Less(t, outer.Start, inner.Start)
	assert.Greater(t, outer.End(), inner.End())
}

func TestParseCaseIsNotALabel(t *testing.T) {
	src := `package main

func f(x int, xs []int) {
	switch x {
	case x:
		for range xs {
		} else {
		}
	}
}
`
	file, errs := parseString(t, src)
	require.Empty(t, errs)
	require.Len(t, file.Loops, 1)
	assert.Nil(t, file.Loops[0].Loop.Label)
}

func TestParseHeaderWithLiterals(t *testing.T) {
	src := `package main

func f() {
	for _, g := range []func() bool{func() bool { if true { return true }; return false }} {
		_ = g
	} else {
	}
}
`
	file, errs := parseString(t, src)
	require.Empty(t, errs)
	require.Len(t, file.Loops, 1)
	assert.Equal(t, ast.LoopRange, file.Loops[0].Loop.Kind)
}

func TestParseSplitForm(t *testing.T) {
	src := `package main

func f(xs []int) {
	for _, x := range xs {
		_ = x
	}
	nobreak {
		println("none")
	}
}
`
	file, errs := parseString(t, src)
	require.Empty(t, errs)
	require.Len(t, file.Loops, 1)

	le := file.Loops[0]
	assert.Equal(t, ast.ElseSplit, le.Else.Form)
	assert.Equal(t, "nobreak", src[le.Else.Keyword:le.Else.KeywordEnd])
}

func TestParseSplitKeywordDisabled(t *testing.T) {
	src := `package main

func f(xs []int) {
	for range xs {
	}
	nobreak {
	}
}
`
	file, errs := Parse(token.NewFileSet(), "test.goe", []byte(src), "")
	assert.Empty(t, errs)
	assert.Empty(t, file.Loops)
}

func TestParseDiagnostics(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "disconnected split block",
			body: "x := 1\n\t_ = x\n\tnobreak {\n\t}",
			want: "`nobreak` block does not immediately follow a for loop",
		},
		{
			name: "else after switch",
			body: "switch {\n\t} else {\n\t}",
			want: "else clause is not attached to an if statement or a for loop",
		},
		{
			name: "else after bare block",
			body: "for {\n\t}\n\tx := 1\n\t{\n\t} else {\n\t}",
			want: "else clause is not attached to an if statement or a for loop",
		},
		{
			name: "double else",
			body: "for {\n\t} else {\n\t} else {\n\t}",
			want: "unexpected `else`: the for loop already has an else clause",
		},
		{
			name: "else if on a loop",
			body: "for {\n\t} else if true {\n\t}",
			want: "the else clause of a for loop must be a block",
		},
		{
			name: "bad header",
			body: "for x := range {\n\t} else {\n\t}",
			want: "invalid for loop header",
		},
		{
			name: "unbalanced braces",
			body: "for {\n\t} else {\n",
			want: "unclosed `{`",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := "package main\n\nfunc f() {\n\t" + tc.body + "\n}\n"
			_, errs := parseString(t, src)
			require.NotEmpty(t, errs)

			found := false
			for _, msg := range errs {
				if len(msg) >= len(tc.want) && msg[:len(tc.want)] == tc.want {
					found = true
				}
			}
			assert.True(t, found, "got %v", errs)
		})
	}
}

func TestSpanOf(t *testing.T) {
	fset := token.NewFileSet()
	src := []byte("ab\ncd")
	file := fset.AddFile("x", fset.Base(), len(src))
	file.SetLinesForContent(src)

	span := SpanOf(file, 3, 5)
	assert.Equal(t, 1, span.StartLine)
	assert.Equal(t, 0, span.StartCol)
	assert.Equal(t, 1, span.EndLine)
	assert.Equal(t, 2, span.EndCol)
}
