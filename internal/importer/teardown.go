package importer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jward/itembank/internal/ontology"
)

// Sweep counts what a teardown removed.
type Sweep struct {
	Instances int
	Classes   int
}

// Down deletes every instance and class carrying this importer's provenance
// tag under the property, tree, item, and list roots, in that order. A
// failure on one root does not stop the others; deletions already made are
// not rolled back.
func (im *Importer) Down(ctx context.Context) (Sweep, error) {
	var (
		total Sweep
		errs  []error
	)
	for _, root := range ontology.RootClasses {
		sw, err := im.sweep(ctx, root.URI)
		total.Instances += sw.Instances
		total.Classes += sw.Classes
		if err != nil {
			im.logger.Warn("Teardown failed for root", zap.String("root", root.Label), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", root.Label, err))
			continue
		}
		im.logger.Debug("Swept root",
			zap.String("root", root.Label),
			zap.Int("instances", sw.Instances),
			zap.Int("classes", sw.Classes))
	}
	im.logger.Info("Teardown complete",
		zap.String("generator", im.generator),
		zap.Int("instances", total.Instances),
		zap.Int("classes", total.Classes))

	if len(errs) > 0 {
		return total, fmt.Errorf("importer: teardown had %d error(s): %w", len(errs), errors.Join(errs...))
	}
	return total, nil
}

func (im *Importer) sweep(ctx context.Context, root string) (Sweep, error) {
	var sw Sweep

	tagged, err := im.repo.SearchInstances(ctx, root, ontology.PropertyGeneratedBy, im.generator, true)
	if err != nil {
		return sw, fmt.Errorf("search tagged instances: %w", err)
	}
	if len(tagged) > 0 {
		if err := im.repo.DeleteInstances(ctx, tagged); err != nil {
			return sw, fmt.Errorf("delete instances: %w", err)
		}
		sw.Instances = len(tagged)
	}

	subs, err := im.repo.Subclasses(ctx, root, true)
	if err != nil {
		return sw, fmt.Errorf("list subclasses: %w", err)
	}
	for _, sub := range subs {
		generated, err := im.isGenerated(ctx, sub.URI)
		if err != nil {
			return sw, fmt.Errorf("read provenance of %s: %w", sub.URI, err)
		}
		if !generated {
			continue
		}
		if err := im.repo.DeleteClass(ctx, sub.URI); err != nil {
			return sw, fmt.Errorf("delete class %s: %w", sub.URI, err)
		}
		sw.Classes++
	}
	return sw, nil
}
