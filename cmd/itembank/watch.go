package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jward/itembank"
	"github.com/jward/itembank/internal/metrics"
	"github.com/jward/itembank/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the item bank whenever the reference data directory changes",
	Long: `Watches --data-dir (or import.data_dir) for changes to files matching
watch.patterns. After each debounced batch the source hash is compared with
the one recorded by the last import and a reload runs only when it differs.
An out-of-date repository is reloaded once at startup.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if cfg.Import.DataDir == "" {
		return fmt.Errorf("watch needs a data directory: pass --data-dir or set import.data_dir")
	}
	ctx := cmd.Context()

	var rec *metrics.Recorder
	if cfg.Metrics.Textfile != "" {
		rec = metrics.New()
	}
	in, err := itembank.New(cfg.Store.Path, installerOptions(cfg, logger, rec)...)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := watch.New(cfg.Import.DataDir, watch.Config{
		Patterns: cfg.Watch.Patterns,
		Debounce: cfg.Watch.Debounce,
	}, logger.Named("watch"))
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := reloadIfChanged(ctx, in, rec); err != nil {
		logger.Error("Initial reload failed", zap.Error(err))
	}
	if err := w.Start(ctx); err != nil {
		return err
	}

	for batch := range w.Batches() {
		logger.Debug("Reference data changed", zap.Strings("files", batch))
		if err := reloadIfChanged(ctx, in, rec); err != nil {
			logger.Error("Reload failed", zap.Error(err))
		}
	}
	if dropped := w.Dropped(); dropped > 0 {
		logger.Warn("Change batches dropped", zap.Int64("count", dropped))
	}
	return nil
}

// reloadIfChanged reloads when the source hash differs from the recorded one.
func reloadIfChanged(ctx context.Context, in *itembank.Installer, rec *metrics.Recorder) error {
	changed, err := in.SourcesChanged()
	if err != nil {
		return err
	}
	if !changed {
		logger.Debug("Reference data unchanged, skipping reload")
		return nil
	}
	run, err := in.Reload(ctx)
	if rec != nil {
		if werr := rec.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			logger.Warn("Writing metrics failed", zap.Error(werr))
		}
	}
	if err != nil {
		return err
	}
	logger.Info("Item bank reloaded",
		zap.String("generation", run.Generation),
		zap.Int("trees", run.Stats.Trees),
		zap.Int("lists", run.Stats.Lists),
		zap.Int("subclasses", run.Stats.Subclasses))
	return nil
}
