package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jward/itembank"
	"github.com/jward/itembank/internal/config"
	"github.com/jward/itembank/internal/metrics"
)

var (
	flagConfig          string
	flagDB              string
	flagDataDir         string
	flagVerbose         bool
	flagMetricsTextfile string
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "itembank",
	Short: "Install and maintain the item-bank ontology",
	Long: `itembank imports curriculum-standard trees, evidence-statement and
task-model lists, and the item class hierarchy into a resource repository,
and removes exactly what it created.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, path, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		applyFlags(loaded)
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		logger, err = newLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if path != "" {
			logger.Debug("Loaded config", zap.String("path", path))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./itembank.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "repository database path")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "read reference documents from this directory instead of the embedded set")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&flagMetricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after each run")

	rootCmd.AddCommand(upCmd, downCmd, reloadCmd)
	rootCmd.AddCommand(migrateCmd, rollbackCmd, statusCmd)
	rootCmd.AddCommand(auditCmd, scriptCmd)
	rootCmd.AddCommand(guardianCmd, installCmd)
	rootCmd.AddCommand(watchCmd)
}

// applyFlags overrides config values with any flags given on the command line.
func applyFlags(c *config.Config) {
	c.Merge(&config.Config{
		Store:   config.StoreConfig{Path: flagDB},
		Import:  config.ImportConfig{DataDir: flagDataDir},
		Log:     config.LogConfig{Verbose: flagVerbose},
		Metrics: config.MetricsConfig{Textfile: flagMetricsTextfile},
	})
}

func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	level, err := lc.ZapLevel()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// installerOptions translates the active config into Installer options.
func installerOptions(c *config.Config, l *zap.Logger, rec *metrics.Recorder) []itembank.Option {
	opts := []itembank.Option{
		itembank.WithLogger(l),
		itembank.WithGenerator(c.Import.Generator),
		itembank.WithNamespace(c.Store.Namespace),
	}
	if c.Import.DataDir != "" {
		opts = append(opts, itembank.WithDataDir(c.Import.DataDir))
	}
	if rec != nil {
		opts = append(opts, itembank.WithMetrics(rec))
	}
	return opts
}

// withInstaller opens the repository, runs fn, and writes the metrics
// textfile when one is configured.
func withInstaller(ctx context.Context, fn func(context.Context, *itembank.Installer) error) error {
	var rec *metrics.Recorder
	if cfg.Metrics.Textfile != "" {
		rec = metrics.New()
	}

	in, err := itembank.New(cfg.Store.Path, installerOptions(cfg, logger, rec)...)
	if err != nil {
		return err
	}
	defer in.Close()

	err = fn(ctx, in)
	if rec != nil {
		if werr := rec.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			err = errors.Join(err, werr)
		}
	}
	return err
}
