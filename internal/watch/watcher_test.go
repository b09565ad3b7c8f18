package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidPattern(t *testing.T) {
	t.Parallel()
	_, err := New(t.TempDir(), Config{Patterns: []string{"[unclosed"}}, nil)
	require.Error(t, err)
}

func TestMatches(t *testing.T) {
	t.Parallel()
	w, err := New(t.TempDir(), Config{Patterns: []string{"*.json", "maps/**/*.yaml"}}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	tests := []struct {
		path string
		want bool
	}{
		{"task_models.json", true},
		{"nested/task_models.json", false},
		{"notes.txt", false},
		{"maps/a/b/tree.yaml", true},
		{filepath.Join("maps", "tree.yaml"), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.Matches(tt.path), tt.path)
	}
}

func TestMatches_DefaultPattern(t *testing.T) {
	t.Parallel()
	w, err := New(t.TempDir(), Config{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	assert.True(t, w.Matches("item_bank_map.json"))
	assert.False(t, w.Matches("README.md"))
}

func TestWatcher_EmitsDebouncedBatch(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, Config{Debounce: 50 * time.Millisecond}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		w.Stop()
	})
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "task_models.json"), []byte("[]"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "task_model_map.json"), []byte("{}"), 0644))

	seen := map[string]bool{}
	deadline := time.After(5 * time.Second)
	for !seen["task_models.json"] || !seen["task_model_map.json"] {
		select {
		case batch := <-w.Batches():
			for _, p := range batch {
				seen[p] = true
			}
		case <-deadline:
			t.Fatalf("timed out waiting for batches, saw %v", seen)
		}
	}
	assert.False(t, seen["notes.txt"])
}

func TestWatcher_ClosesOnCancel(t *testing.T) {
	w, err := New(t.TempDir(), Config{Debounce: 10 * time.Millisecond}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case _, ok := <-w.Batches():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("batches channel not closed")
	}
}
