package expand

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rogpeppe/go-internal/txtar"
	"github.com/stretchr/testify/require"
)

// Each archive in testdata holds an `input.goe` file, the expected
// `output.go` and optionally the expected `warnings`, one per line.
func TestGolden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".txtar")
		t.Run(name, func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			require.NoError(t, err)

			files := make(map[string]string)
			for _, f := range ar.Files {
				files[f.Name] = string(f.Data)
			}

			input, ok := files["input.goe"]
			require.True(t, ok, "missing input.goe")

			opts := DefaultOptions()
			opts.Format = false

			res, errs := ExpandSource("input.goe", []byte(input), opts)
			require.Empty(t, errs)

			if diff := cmp.Diff(files["output.go"], string(res.Source)); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}

			var warnings []string
			for _, w := range res.Warnings {
				warnings = append(warnings, w.Error())
			}

			var want []string
			if text := strings.TrimSpace(files["warnings"]); text != "" {
				want = strings.Split(text, "\n")
			}

			if diff := cmp.Diff(want, warnings); diff != "" {
				t.Errorf("warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
