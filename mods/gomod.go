package mods

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// GoModule is the Go module enclosing a set of source files.
type GoModule struct {
	// Path is the module path declared in the `go.mod` file.
	Path string

	// Root is the absolute path of the directory holding the `go.mod` file.
	Root string
}

// FindGoModule locates the `go.mod` file enclosing the given directory.  It
// returns nil if the directory is not inside a Go module.
func FindGoModule(dir string) (*GoModule, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	for {
		gomodPath := filepath.Join(dir, "go.mod")

		data, err := os.ReadFile(gomodPath)
		if err == nil {
			f, err := modfile.ParseLax(gomodPath, data, nil)
			if err != nil {
				return nil, fmt.Errorf("error parsing %s: %w", gomodPath, err)
			}

			if f.Module == nil {
				return nil, fmt.Errorf("%s declares no module path", gomodPath)
			}

			return &GoModule{Path: f.Module.Mod.Path, Root: dir}, nil
		} else if !os.IsNotExist(err) {
			return nil, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}

		dir = parent
	}
}

// ReprPath returns the display path of a file in the module: the module path
// joined with the slash-separated path of the file relative to the module
// root.  Files outside the module keep their absolute path.
func (gm *GoModule) ReprPath(abspath string) string {
	rel, err := filepath.Rel(gm.Root, abspath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return abspath
	}

	return gm.Path + "/" + filepath.ToSlash(rel)
}
