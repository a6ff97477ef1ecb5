package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherReportsSourceChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	batches := make(chan []string, 16)

	w, err := New([]string{dir}, ".goe", 50*time.Millisecond, func(paths []string) {
		batches <- paths
	})
	require.NoError(t, err)
	w.Start(context.Background())

	a := filepath.Join(dir, "a.goe")
	b := filepath.Join(dir, "b.goe")
	require.NoError(t, os.WriteFile(a, []byte("package a\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("package b\n"), 0o644))
	require.NoError(t, os.WriteFile(a, []byte("package a // again\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("x"), 0o644))

	seen := make(map[string]int)
	timeout := time.After(5 * time.Second)
	for len(seen) < 2 {
		select {
		case batch := <-batches:
			for _, path := range batch {
				seen[path]++
			}
		case <-timeout:
			t.Fatalf("timed out waiting for changes: saw %v", seen)
		}
	}

	require.NoError(t, w.Close())

	assert.Len(t, seen, 2)
	assert.Contains(t, seen, a)
	assert.Contains(t, seen, b)
}

func TestWatcherStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())

	w, err := New([]string{t.TempDir()}, ".goe", 0, func([]string) {})
	require.NoError(t, err)
	w.Start(ctx)

	cancel()
	assert.NoError(t, w.Close())
}

func TestNewFailsOnMissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing")}, ".goe", 0, func([]string) {})
	assert.Error(t, err)
}
