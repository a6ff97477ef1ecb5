package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sumSource = `package main

func Sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
`

func TestLoadAndCall(t *testing.T) {
	prog, err := Load(context.Background(), "sum.go", []byte(sumSource), Options{})
	require.NoError(t, err)

	sum, err := Func[func([]int) int](prog, "main.Sum")
	require.NoError(t, err)
	assert.Equal(t, 6, sum([]int{1, 2, 3}))
}

func TestFuncWrongType(t *testing.T) {
	prog, err := Load(context.Background(), "sum.go", []byte(sumSource), Options{})
	require.NoError(t, err)

	_, err = Func[func() string](prog, "main.Sum")
	assert.Error(t, err)

	_, err = prog.Lookup("main.Missing")
	assert.Error(t, err)
}

func TestLoadReportsCompileErrors(t *testing.T) {
	_, err := Load(context.Background(), "bad.go", []byte("package main\n\nfunc f() { undefined() }\n"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.go")
}
