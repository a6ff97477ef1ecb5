package mods

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/sanchopanca/for-else/common"
	"github.com/sanchopanca/for-else/expand"
)

// Config is the expansion configuration of a project.
type Config struct {
	// Path is the path to the configuration file it was loaded from.  It is
	// empty if no file was found and the defaults are used.
	Path string

	// SourceExt is the extension of source files: eg. `.goe`.
	SourceExt string

	// OutputSuffix replaces the source extension to form the name of the
	// expanded file: eg. `main.goe` becomes `main_goe.go`.
	OutputSuffix string

	// FlagPrefix is the prefix of generated completion flags.
	FlagPrefix string

	// SplitKeyword introduces a split else block.  If it is empty, the split
	// form is disabled.
	SplitKeyword string

	// Format indicates whether expanded files are run through gofmt.
	Format bool

	// WarnUseless enables the warning for else clauses no break can skip.
	WarnUseless bool
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		SourceExt:    common.DefaultSourceExt,
		OutputSuffix: common.DefaultOutputSuffix,
		FlagPrefix:   common.DefaultFlagPrefix,
		SplitKeyword: common.DefaultSplitKeyword,
		Format:       true,
		WarnUseless:  true,
	}
}

// ExpandOptions converts the configuration into expander options.
func (c *Config) ExpandOptions() expand.Options {
	return expand.Options{
		FlagPrefix:   c.FlagPrefix,
		SplitKeyword: c.SplitKeyword,
		Format:       c.Format,
		WarnUseless:  c.WarnUseless,
	}
}

// -----------------------------------------------------------------------------

// tomlConfigFile represents the configuration file as it is encoded in TOML
type tomlConfigFile struct {
	Expand *tomlExpand `toml:"expand"`
}

// tomlExpand represents the `[expand]` table
type tomlExpand struct {
	SourceExt    string `toml:"source-ext"`
	OutputSuffix string `toml:"output-suffix"`
	FlagPrefix   string `toml:"flag-prefix"`
	SplitKeyword string `toml:"split-keyword"`
	Format       bool   `toml:"format"`
	WarnUseless  bool   `toml:"warn-useless-else"`
}

// LoadConfig finds and loads the configuration file for the given directory.
// The directory and its parents are searched up to the root of the enclosing
// Go module.  If no file is found, the default configuration is returned.
func LoadConfig(dir string) (*Config, error) {
	path, ok := findConfig(dir)
	if !ok {
		return DefaultConfig(), nil
	}

	return LoadConfigFile(path)
}

// LoadConfigFile loads the configuration file at the given path.  Keys missing
// from the file take their default values.
func LoadConfigFile(path string) (*Config, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", path, err)
	}

	cfg := DefaultConfig()
	cfg.Path = path

	if tree.Has("expand") {
		table, ok := tree.Get("expand").(*toml.Tree)
		if !ok {
			return nil, fmt.Errorf("%s: `expand` must be a table", path)
		}

		if err := cfg.loadExpand(table); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	for _, key := range tree.Keys() {
		if key != "expand" {
			return nil, fmt.Errorf("%s: unknown table `%s`", path, key)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// loadExpand reads the keys of the `[expand]` table into the configuration.
func (c *Config) loadExpand(table *toml.Tree) error {
	strs := map[string]*string{
		"source-ext":    &c.SourceExt,
		"output-suffix": &c.OutputSuffix,
		"flag-prefix":   &c.FlagPrefix,
		"split-keyword": &c.SplitKeyword,
	}

	bools := map[string]*bool{
		"format":            &c.Format,
		"warn-useless-else": &c.WarnUseless,
	}

	for _, key := range table.Keys() {
		value := table.Get(key)

		if dest, ok := strs[key]; ok {
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("`expand.%s` must be a string", key)
			}

			*dest = s
		} else if dest, ok := bools[key]; ok {
			b, ok := value.(bool)
			if !ok {
				return fmt.Errorf("`expand.%s` must be a boolean", key)
			}

			*dest = b
		} else {
			return fmt.Errorf("unknown key `expand.%s`", key)
		}
	}

	return nil
}

// validate checks that the configuration can produce valid Go.
func (c *Config) validate() error {
	if !IsValidIdentifier(c.FlagPrefix) || token.IsKeyword(c.FlagPrefix) {
		return fmt.Errorf("flag prefix `%s` must be a valid identifier", c.FlagPrefix)
	}

	if c.SplitKeyword != "" && (!IsValidIdentifier(c.SplitKeyword) || token.IsKeyword(c.SplitKeyword)) {
		return fmt.Errorf("split keyword `%s` must be a valid identifier that is not a Go keyword", c.SplitKeyword)
	}

	if !strings.HasPrefix(c.SourceExt, ".") || len(c.SourceExt) < 2 || c.SourceExt == ".go" {
		return fmt.Errorf("source extension `%s` must start with `.` and must not be `.go`", c.SourceExt)
	}

	if !strings.HasSuffix(c.OutputSuffix, ".go") {
		return fmt.Errorf("output suffix `%s` must end with `.go`", c.OutputSuffix)
	}

	return nil
}

// findConfig searches for a configuration file in the given directory and its
// parents, stopping at the first directory holding a `go.mod` file.
func findConfig(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}

	for {
		path := filepath.Join(dir, common.ConfigFileName)
		if finfo, err := os.Stat(path); err == nil && !finfo.IsDir() {
			return path, true
		}

		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return "", false
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}

		dir = parent
	}
}

// InitConfig writes a configuration file holding the defaults to the given
// directory.  It fails if the directory already has one.
func InitConfig(dir string) (string, error) {
	path := filepath.Join(dir, common.ConfigFileName)

	_, err := os.Stat(path)
	if err == nil {
		return "", errors.New("configuration file already exists")
	}

	if !os.IsNotExist(err) {
		return "", fmt.Errorf("configuration file error: %w", err)
	}

	def := DefaultConfig()
	file := &tomlConfigFile{
		Expand: &tomlExpand{
			SourceExt:    def.SourceExt,
			OutputSuffix: def.OutputSuffix,
			FlagPrefix:   def.FlagPrefix,
			SplitKeyword: def.SplitKeyword,
			Format:       def.Format,
			WarnUseless:  def.WarnUseless,
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating configuration file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(file); err != nil {
		return "", fmt.Errorf("error encoding TOML: %w", err)
	}

	return path, nil
}

// IsValidIdentifier returns whether the given string is a valid identifier.
func IsValidIdentifier(idstr string) bool {
	if idstr == "" {
		return false
	}

	if idstr[0] == '_' || ('a' <= idstr[0] && idstr[0] <= 'z') || ('A' <= idstr[0] && idstr[0] <= 'Z') {
		for _, c := range idstr[1:] {
			if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
				continue
			}

			return false
		}

		return true
	}

	return false
}
