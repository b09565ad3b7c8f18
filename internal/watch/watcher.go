// Package watch reports batches of changed reference-data files in a
// directory, debounced so a multi-file edit triggers one reload.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	defaultDebounce = 500 * time.Millisecond
	batchBuffer     = 16
)

// Config selects which files are reported and how long changes are collected.
type Config struct {
	// Patterns are doublestar globs matched against slash-separated paths
	// relative to the watched directory.
	Patterns []string
	Debounce time.Duration
}

// Watcher emits the sorted relative paths of files that changed since the
// previous batch.
type Watcher struct {
	dir      string
	patterns []string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *zap.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	batches chan []string
	dropped atomic.Int64
}

// New creates a Watcher for dir. Every pattern must be a valid doublestar
// pattern; an empty list matches "*.json".
func New(dir string, cfg Config, logger *zap.Logger) (*Watcher, error) {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{"*.json"}
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("watch: invalid pattern %q", p)
		}
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	return &Watcher{
		dir:      dir,
		patterns: patterns,
		debounce: debounce,
		fsw:      fsw,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
		batches:  make(chan []string, batchBuffer),
	}, nil
}

// Batches returns the channel of changed-file batches. It is closed when the
// watcher stops.
func (w *Watcher) Batches() <-chan []string {
	return w.batches
}

// Matches reports whether rel, a path relative to the watched directory,
// matches any configured pattern.
func (w *Watcher) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Start adds watches for dir and its non-hidden subdirectories and begins
// processing events until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	err := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watch: add %s: %w", w.dir, err)
	}

	go w.processEvents(ctx)

	w.logger.Info("Watching reference data",
		zap.String("dir", w.dir),
		zap.Strings("patterns", w.patterns),
		zap.Duration("debounce", w.debounce))
	return nil
}

// Stop closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	return w.fsw.Close()
}

// Dropped returns how many batches were discarded because nobody was reading.
func (w *Watcher) Dropped() int64 {
	return w.dropped.Load()
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.batches)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", zap.Error(err))

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(event.Name), ".") {
				if err := w.fsw.Add(event.Name); err != nil {
					w.logger.Warn("Failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
				}
			}
			return
		}
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}

	rel, err := filepath.Rel(w.dir, event.Name)
	if err != nil || !w.Matches(rel) {
		return
	}

	w.pendingMu.Lock()
	w.pending[filepath.ToSlash(rel)] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Reference data changed", zap.String("path", rel), zap.String("op", event.Op.String()))
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	batch := make([]string, 0, len(w.pending))
	for path := range w.pending {
		batch = append(batch, path)
	}
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	slices.Sort(batch)
	select {
	case w.batches <- batch:
	default:
		dropped := w.dropped.Add(1)
		w.logger.Warn("Batch channel full, dropping batch",
			zap.Strings("paths", batch),
			zap.Int64("total_dropped", dropped))
	}
}
