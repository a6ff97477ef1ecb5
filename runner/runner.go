// Package runner executes expanded Go source in an embedded interpreter.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Options configures the interpreter a program is loaded into.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Program is a Go program loaded into an interpreter.
type Program struct {
	name   string
	interp *interp.Interpreter
}

// Load creates an interpreter with the standard library available and
// evaluates src in it.  Evaluating a main package that defines `main` runs it.
func Load(ctx context.Context, name string, src []byte, opts Options) (*Program, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	i := interp.New(interp.Options{Stdout: opts.Stdout, Stderr: opts.Stderr})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("load stdlib: %w", err)
	}

	if _, err := i.EvalWithContext(ctx, string(src)); err != nil {
		return nil, fmt.Errorf("eval %s: %w", name, err)
	}

	return &Program{name: name, interp: i}, nil
}

// Run loads and runs a main package.
func Run(ctx context.Context, name string, src []byte, opts Options) error {
	_, err := Load(ctx, name, src, opts)
	return err
}

// Lookup returns the value of a package-qualified symbol: eg. `main.Run`.
func (p *Program) Lookup(symbol string) (reflect.Value, error) {
	v, err := p.interp.Eval(symbol)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("lookup %s in %s: %w", symbol, p.name, err)
	}

	return v, nil
}

// Func looks up a function symbol and converts it to the type F.
func Func[F any](p *Program, symbol string) (F, error) {
	var zero F

	v, err := p.Lookup(symbol)
	if err != nil {
		return zero, err
	}

	f, ok := v.Interface().(F)
	if !ok {
		return zero, fmt.Errorf("%s in %s has type %s, not %T", symbol, p.name, v.Type(), zero)
	}

	return f, nil
}
