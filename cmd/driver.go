// Package cmd is the top-level driver of forelse: it parses command-line
// arguments, loads configuration and runs expansion over source files.
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/kr/pretty"
	"golang.org/x/sync/errgroup"

	"github.com/sanchopanca/for-else/expand"
	"github.com/sanchopanca/for-else/mods"
	"github.com/sanchopanca/for-else/report"
	"github.com/sanchopanca/for-else/syntax"
)

// Enumeration of driver modes.
const (
	ModeWrite = iota // Write each expanded file next to its source (default).
	ModeCheck        // Report diagnostics only.
	ModePrint        // Write expanded files to the driver's output.
)

// Driver expands a set of source files.  Files are expanded concurrently and
// independently: an error in one file does not stop the others.
type Driver struct {
	cfg  *mods.Config
	mode int

	// Debug indicates whether the AST of each file is dumped before expansion.
	Debug bool

	// The writer expanded files and debug dumps are written to.
	out io.Writer
	mu  sync.Mutex

	// idents caches the identifiers of each package directory.
	idents   map[string][]string
	identsMu sync.Mutex
}

// NewDriver creates a new driver.
func NewDriver(cfg *mods.Config, mode int, out io.Writer) *Driver {
	return &Driver{
		cfg:    cfg,
		mode:   mode,
		out:    out,
		idents: make(map[string][]string),
	}
}

// Run expands every given source file and returns the number of files
// written.  It stops early only if the context is cancelled.
func (d *Driver) Run(ctx context.Context, sources []*mods.SourceFile) (int, error) {
	var written atomic.Int32
	outputs := make([][]byte, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, sf := range sources {
		i, sf := i, sf
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			defer report.CatchErrors(sf.AbsPath, sf.ReprPath)

			res, ok := d.ExpandFile(sf)
			if !ok {
				return nil
			}

			switch d.mode {
			case ModePrint:
				outputs[i] = res.Source
			case ModeWrite:
				changed, err := writeIfChanged(sf.OutPath, res.Source)
				if err != nil {
					report.ReportStdError(sf.ReprPath, err)
				} else if changed {
					written.Add(1)
				}
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(written.Load()), err
	}

	// printed files appear in source order
	for _, out := range outputs {
		if out != nil {
			d.write(out)
		}
	}

	return int(written.Load()), nil
}

// ExpandFile expands a single source file, reporting its diagnostics.  It
// returns false if the file could not be expanded.
func (d *Driver) ExpandFile(sf *mods.SourceFile) (*expand.Result, bool) {
	src, err := os.ReadFile(sf.AbsPath)
	if err != nil {
		report.ReportStdError(sf.ReprPath, err)
		return nil, false
	}

	reserved, err := d.packageIdents(sf.Dir)
	if err != nil {
		report.ReportStdError(sf.ReprPath, err)
		return nil, false
	}

	file, errs := syntax.Parse(token.NewFileSet(), sf.AbsPath, src, d.cfg.SplitKeyword)
	if len(errs) > 0 {
		report.ReportErrorList(sf.AbsPath, sf.ReprPath, errs)
		return nil, false
	}

	if d.Debug {
		d.write([]byte(fmt.Sprintf("%s:\n%# v\n", sf.ReprPath, pretty.Formatter(file.Loops))))
	}

	opts := d.cfg.ExpandOptions()
	opts.Reserved = reserved
	opts.SourceName = filepath.Base(sf.AbsPath)

	res, errs := expand.Expand(file, src, opts)
	if len(errs) > 0 {
		report.ReportErrorList(sf.AbsPath, sf.ReprPath, errs)
		return nil, false
	}

	for _, w := range res.Warnings {
		report.ReportCompileWarning(sf.AbsPath, sf.ReprPath, w.Span, "%s", w.Message)
	}

	return res, true
}

func (d *Driver) packageIdents(dir string) ([]string, error) {
	d.identsMu.Lock()
	defer d.identsMu.Unlock()

	if idents, ok := d.idents[dir]; ok {
		return idents, nil
	}

	idents, err := mods.PackageIdents(dir, d.cfg)
	if err != nil {
		return nil, err
	}

	d.idents[dir] = idents
	return idents, nil
}

func (d *Driver) write(b []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.out.Write(b)
}

// writeIfChanged writes an expanded file unless it already holds the given
// content.  It returns whether the file was written.
func writeIfChanged(path string, content []byte) (bool, error) {
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, content) {
		return false, nil
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, err
	}

	return true, nil
}
