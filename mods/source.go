package mods

import (
	"fmt"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sanchopanca/for-else/syntax"
	"github.com/sanchopanca/for-else/util"
)

// SourceFile is a source file to expand.
type SourceFile struct {
	// AbsPath is the absolute path of the source file.
	AbsPath string

	// ReprPath is the path of the file as it is displayed to the user.
	ReprPath string

	// OutPath is the absolute path of the expanded file.
	OutPath string

	// Dir is the absolute path of the package directory of the file.
	Dir string
}

// skippedDirs are the directory names the Go tool ignores.
var skippedDirs = []string{"testdata", "vendor"}

// CollectSources returns the source files at the given path, which may be a
// single file or a directory tree.  Directories the Go tool ignores are
// skipped.  The files are returned in lexical order.
func CollectSources(root string, cfg *Config) ([]*SourceFile, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	finfo, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	var gomod *GoModule
	if finfo.IsDir() {
		gomod, err = FindGoModule(root)
	} else {
		gomod, err = FindGoModule(filepath.Dir(root))
	}

	if err != nil {
		return nil, err
	}

	newSource := func(path string) *SourceFile {
		sf := &SourceFile{
			AbsPath:  path,
			ReprPath: path,
			OutPath:  strings.TrimSuffix(path, cfg.SourceExt) + cfg.OutputSuffix,
			Dir:      filepath.Dir(path),
		}

		if gomod != nil {
			sf.ReprPath = gomod.ReprPath(path)
		}

		return sf
	}

	if !finfo.IsDir() {
		if filepath.Ext(root) != cfg.SourceExt {
			return nil, fmt.Errorf("%s is not a %s file", root, cfg.SourceExt)
		}

		return []*SourceFile{newSource(root)}, nil
	}

	var sources []*SourceFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || util.Contains(skippedDirs, name)) {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(name) == cfg.SourceExt && d.Type().IsRegular() {
			sources = append(sources, newSource(path))
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return sources, nil
}

// PackageIdents returns every identifier used by the Go and source files of a
// package directory, in sorted order.  Files produced by expansion are skipped
// so that the flags they contain do not affect the names chosen next time.
func PackageIdents(dir string, cfg *Config) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := util.Filter(entries, func(e fs.DirEntry) bool {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, cfg.OutputSuffix) {
			return false
		}

		return filepath.Ext(name) == ".go" || filepath.Ext(name) == cfg.SourceExt
	})

	idents := make(map[string]struct{})
	fset := token.NewFileSet()
	for _, path := range util.Map(files, func(e fs.DirEntry) string { return filepath.Join(dir, e.Name()) }) {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		// scanning errors are reported when the file itself is expanded or
		// compiled
		toks, _ := syntax.NewLexer(fset, path, src).Lex()
		for _, tok := range toks {
			if tok.Kind == token.IDENT {
				idents[tok.Value] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(idents))
	for name := range idents {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}
