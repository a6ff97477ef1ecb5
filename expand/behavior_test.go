package expand_test

import (
	"bytes"
	"context"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanchopanca/for-else/expand"
	"github.com/sanchopanca/for-else/runner"
)

const programSource = `package main

func Find(xs []int, want int) string {
	for _, x := range xs {
		if x == want {
			break
		}
	} else {
		return "missing"
	}
	return "found"
}

func Countdown(n int) (steps int, done bool) {
	for n > 0 {
		if n == 3 {
			break
		}
		n--
		steps++
	} else {
		done = true
	}
	return
}

func Grid(grid [][]int) []string {
	var trace []string
outer:
	for _, row := range grid {
		for _, v := range row {
			if v < 0 {
				break outer
			}
			if v == 0 {
				break
			}
		} else {
			trace = append(trace, "row clean")
		}
		trace = append(trace, "row done")
	} else {
		trace = append(trace, "grid clean")
	}
	return trace
}

func Switches(xs []int) bool {
	for _, x := range xs {
		switch x {
		case 0:
			break
		}
	} else {
		return true
	}
	return false
}

func Split(n int) (hits int) {
	for i := 0; i < n; i++ {
		hits++
	}
	nobreak {
		hits = -hits
	}
	return
}

func Hygiene(xs []int) string {
	_forelse0 := "user"
	for _, x := range xs {
		if x < 0 {
			break
		}
	} else {
		_forelse0 += " completed"
	}
	return _forelse0
}
`

func loadProgram(t *testing.T, src string) *runner.Program {
	t.Helper()

	res, errs := expand.ExpandSource("program.goe", []byte(src), expand.DefaultOptions())
	require.Empty(t, errs)

	prog, err := runner.Load(context.Background(), "program.goe", res.Source, runner.Options{})
	require.NoError(t, err)

	return prog
}

func TestElseRunsOnCompletion(t *testing.T) {
	prog := loadProgram(t, programSource)

	find, err := runner.Func[func([]int, int) string](prog, "main.Find")
	require.NoError(t, err)

	assert.Equal(t, "found", find([]int{1, 2, 3}, 2))
	assert.Equal(t, "found", find([]int{2}, 2))
	assert.Equal(t, "missing", find([]int{1, 2, 3}, 5))
	assert.Equal(t, "missing", find(nil, 1))

	countdown, err := runner.Func[func(int) (int, bool)](prog, "main.Countdown")
	require.NoError(t, err)

	steps, done := countdown(2)
	assert.Equal(t, 2, steps)
	assert.True(t, done)

	steps, done = countdown(0)
	assert.Equal(t, 0, steps)
	assert.True(t, done)

	steps, done = countdown(5)
	assert.Equal(t, 2, steps)
	assert.False(t, done)
}

func TestNestedLoopsAreIndependent(t *testing.T) {
	prog := loadProgram(t, programSource)

	grid, err := runner.Func[func([][]int) []string](prog, "main.Grid")
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"row clean", "row done", "row clean", "row done", "grid clean"},
		grid([][]int{{1, 2}, {3}}),
	)
	assert.Equal(t,
		[]string{"row done", "row clean", "row done", "grid clean"},
		grid([][]int{{1, 0}, {2}}),
	)
	assert.Equal(t,
		[]string{"row clean", "row done"},
		grid([][]int{{1}, {-1}, {2}}),
	)
}

func TestSwitchBreakDoesNotLeaveLoop(t *testing.T) {
	prog := loadProgram(t, programSource)

	switches, err := runner.Func[func([]int) bool](prog, "main.Switches")
	require.NoError(t, err)
	assert.True(t, switches([]int{0, 1, 0}))
}

func TestSplitForm(t *testing.T) {
	prog := loadProgram(t, programSource)

	split, err := runner.Func[func(int) int](prog, "main.Split")
	require.NoError(t, err)
	assert.Equal(t, -3, split(3))
	assert.Equal(t, 0, split(0))
}

func TestFlagHygiene(t *testing.T) {
	prog := loadProgram(t, programSource)

	hygiene, err := runner.Func[func([]int) string](prog, "main.Hygiene")
	require.NoError(t, err)
	assert.Equal(t, "user completed", hygiene([]int{1, 2}))
	assert.Equal(t, "user", hygiene([]int{1, -1}))
}

func TestExpandFormatted(t *testing.T) {
	res, errs := expand.ExpandSource("program.goe", []byte(programSource), expand.DefaultOptions())
	require.Empty(t, errs)

	src := string(res.Source)
	assert.True(t, strings.HasPrefix(src, "// Code generated by forelse from program.goe. DO NOT EDIT.\n\n"))
	assert.NotContains(t, src, "//line")
	assert.NotContains(t, src, "nobreak")

	_, err := parser.ParseFile(token.NewFileSet(), "program.go", res.Source, 0)
	assert.NoError(t, err)

	// the file declares `_forelse0` itself
	assert.Equal(t, []string{"_forelse1", "_forelse2", "_forelse3", "_forelse4", "_forelse5", "_forelse6", "_forelse7"}, res.Flags)
	assert.Equal(t, 5, res.Breaks)
}

func TestExpandReservedNames(t *testing.T) {
	src := "package main\n\nfunc f(xs []int) {\n\tfor range xs {\n\t\tbreak\n\t} else {\n\t}\n}\n"

	opts := expand.DefaultOptions()
	opts.Reserved = []string{"_forelse0", "_forelse1"}

	res, errs := expand.ExpandSource("f.goe", []byte(src), opts)
	require.Empty(t, errs)
	assert.Equal(t, []string{"_forelse2"}, res.Flags)
	assert.Contains(t, string(res.Source), "_forelse2 = false")
}

func TestExpandLinesPreserved(t *testing.T) {
	opts := expand.DefaultOptions()
	opts.Format = false

	res, errs := expand.ExpandSource("program.goe", []byte(programSource), opts)
	require.Empty(t, errs)

	lines := strings.Split(string(res.Source), "\n")
	require.Greater(t, len(lines), 3)
	assert.Equal(t, "//line program.goe:1", lines[2])
	assert.Equal(t, strings.Count(programSource, "\n"), len(lines)-4)
}

func TestExpandReportsBodyErrors(t *testing.T) {
	src := "package main\n\nfunc f(xs []int) {\n\tfor _, x := range xs {\n\t\tx +\n\t} else {\n\t}\n}\n"

	_, errs := expand.ExpandSource("bad.goe", []byte(src), expand.DefaultOptions())
	require.NotEmpty(t, errs)
	require.NotNil(t, errs[0].Span)
	assert.GreaterOrEqual(t, errs[0].Span.StartLine, 4)
	assert.LessOrEqual(t, errs[0].Span.StartLine, 5)
}

func TestExpandNoWarningWhenDisabled(t *testing.T) {
	src := "package main\n\nfunc f(xs []int) {\n\tfor range xs {\n\t} else {\n\t}\n}\n"

	res, errs := expand.ExpandSource("f.goe", []byte(src), expand.DefaultOptions())
	require.Empty(t, errs)
	assert.Len(t, res.Warnings, 1)

	opts := expand.DefaultOptions()
	opts.WarnUseless = false
	res, errs = expand.ExpandSource("f.goe", []byte(src), opts)
	require.Empty(t, errs)
	assert.Empty(t, res.Warnings)
}

const printSource = `package main

import "fmt"

func main() {
	for i := 0; i < 0; i++ {
		fmt.Println("body", i)
	} else {
		fmt.Println("done")
	}

	for i := 0; i < 10; i++ {
		if i == 3 {
			break
		}
	} else {
		fmt.Println("after early exit")
	}

	for i := 0; i < 1; i++ {
		break
	} else {
		fmt.Println("after first iteration exit")
	}
}
`

func TestRunPrintsOnlyCompletedElse(t *testing.T) {
	res, errs := expand.ExpandSource("print.goe", []byte(printSource), expand.DefaultOptions())
	require.Empty(t, errs)

	var stdout bytes.Buffer
	err := runner.Run(context.Background(), "print.goe", res.Source, runner.Options{Stdout: &stdout})
	require.NoError(t, err)
	assert.Equal(t, "done\n", stdout.String())
}
