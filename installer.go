package itembank

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jward/itembank/data"
	"github.com/jward/itembank/internal/importer"
	"github.com/jward/itembank/internal/metrics"
	"github.com/jward/itembank/internal/runtime"
	"github.com/jward/itembank/internal/source"
	"github.com/jward/itembank/internal/store"
	"github.com/jward/itembank/scripts"
)

// Metadata keys written by the installer.
const (
	MetaLastGeneration = "last_generation"
	MetaLastUp         = "last_up_at"
	MetaSourceHash     = "source_hash"
)

// Installer orchestrates the item-bank lifecycle: import, teardown, reload,
// migrations, the metadata guardian, and audits.
type Installer struct {
	store     *store.Store
	importer  *importer.Importer
	loader    *source.Loader
	runtime   *runtime.Runtime
	metrics   *metrics.Recorder
	logger    *zap.Logger
	dataFS    fs.FS
	scriptsFS fs.FS
	generator string
	namespace string
}

// Option configures an Installer.
type Option func(*Installer)

// WithDataFS reads the reference documents from fsys instead of the embedded
// dataset.
func WithDataFS(fsys fs.FS) Option {
	return func(in *Installer) {
		in.dataFS = fsys
	}
}

// WithDataDir reads the reference documents from a directory on disk.
func WithDataDir(dir string) Option {
	return func(in *Installer) {
		in.dataFS = os.DirFS(dir)
	}
}

// WithScriptsFS loads audit scripts from fsys instead of the bundled ones.
func WithScriptsFS(fsys fs.FS) Option {
	return func(in *Installer) {
		in.scriptsFS = fsys
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(in *Installer) {
		in.logger = l
	}
}

// WithGenerator overrides the provenance tag stamped on created resources.
func WithGenerator(generator string) Option {
	return func(in *Installer) {
		in.generator = generator
	}
}

// WithNamespace sets the URI namespace minted resources live under.
func WithNamespace(ns string) Option {
	return func(in *Installer) {
		in.namespace = ns
	}
}

// WithMetrics records run counters in r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(in *Installer) {
		in.metrics = r
	}
}

// New opens (creating if needed) the repository at dbPath and returns an
// Installer over it.
func New(dbPath string, opts ...Option) (*Installer, error) {
	in := &Installer{
		logger:    zap.NewNop(),
		dataFS:    data.FS,
		scriptsFS: scripts.FS,
		generator: importer.DefaultGenerator,
		namespace: store.DefaultNamespace,
	}
	for _, opt := range opts {
		opt(in)
	}

	s, err := store.NewStore(dbPath, store.WithNamespace(in.namespace))
	if err != nil {
		return nil, fmt.Errorf("itembank: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("itembank: migrate schema: %w", err)
	}
	in.store = s

	in.loader = source.NewLoader(in.dataFS)
	in.importer = importer.New(s, in.loader,
		importer.WithLogger(in.logger.Named("importer")),
		importer.WithGenerator(in.generator))
	in.runtime = runtime.NewRuntime(s, "",
		runtime.WithRuntimeFS(in.scriptsFS),
		runtime.WithRuntimeLogger(in.logger),
		runtime.WithGenerator(in.generator))
	return in, nil
}

// Close releases the Installer's database resources.
func (in *Installer) Close() error {
	return in.store.Close()
}

// Store returns the underlying Store for direct access.
func (in *Installer) Store() *Store {
	return in.store
}

// Generator returns the provenance tag this Installer stamps and sweeps.
func (in *Installer) Generator() string {
	return in.generator
}

// Up imports the reference data and records the run's generation, time, and
// source hash as repository metadata.
func (in *Installer) Up(ctx context.Context) (run *Run, err error) {
	started := time.Now()
	defer func() { in.observe("up", started, err) }()

	run, err = in.importer.Up(ctx)
	if err != nil {
		return run, fmt.Errorf("itembank: up: %w", err)
	}
	if in.metrics != nil {
		in.metrics.ObserveImport(run.Stats)
	}

	hash, err := in.SourceHash()
	if err != nil {
		return run, err
	}
	for key, value := range map[string]string{
		MetaLastGeneration: run.Generation,
		MetaLastUp:         started.UTC().Format(time.RFC3339),
		MetaSourceHash:     hash,
	} {
		if err := in.store.SetMetadata(key, value); err != nil {
			return run, fmt.Errorf("itembank: up: %w", err)
		}
	}
	return run, nil
}

// Down removes every resource carrying this Installer's provenance tag.
func (in *Installer) Down(ctx context.Context) (sw Sweep, err error) {
	started := time.Now()
	defer func() { in.observe("down", started, err) }()

	sw, err = in.importer.Down(ctx)
	if in.metrics != nil {
		in.metrics.ObserveTeardown(sw)
	}
	if err != nil {
		return sw, fmt.Errorf("itembank: down: %w", err)
	}
	return sw, nil
}

// Reload tears down generated data and imports it again from freshly read
// source documents.
func (in *Installer) Reload(ctx context.Context) (*Run, error) {
	if _, err := in.Down(ctx); err != nil {
		return nil, err
	}
	in.loader.Reset()
	return in.Up(ctx)
}

// SourceHash returns a SHA-256 over the names and contents of every source
// document, in name order.
func (in *Installer) SourceHash() (string, error) {
	names := append([]string(nil), source.AllSources...)
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		content, err := fs.ReadFile(in.dataFS, name)
		if err != nil {
			return "", fmt.Errorf("itembank: hash %s: %w", name, err)
		}
		h.Write([]byte(name))
		h.Write(content)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// SourcesChanged reports whether the source documents differ from those the
// last Up imported. It is true when no import has been recorded.
func (in *Installer) SourcesChanged() (bool, error) {
	current, err := in.SourceHash()
	if err != nil {
		return false, err
	}
	stored, err := in.store.GetMetadata(MetaSourceHash)
	if err != nil {
		return false, fmt.Errorf("itembank: %w", err)
	}
	return stored == "" || stored != current, nil
}

func (in *Installer) observe(operation string, started time.Time, err error) {
	if err != nil {
		in.logger.Error("Operation failed", zap.String("operation", operation), zap.Error(err))
	} else {
		in.logger.Info("Operation complete", zap.String("operation", operation), zap.Duration("took", time.Since(started)))
	}
	if in.metrics != nil {
		in.metrics.ObserveOperation(operation, started, err)
	}
}
