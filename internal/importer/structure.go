package importer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jward/itembank/internal/ontology"
	"github.com/jward/itembank/internal/source"
)

// Labels of the properties attached to item-bank classes.
const (
	LabelEvidenceStatement = "Evidence Statement"
	LabelTaskModel         = "Task Model"
	LabelStandardID        = "Common Core State Standard ID"
)

// SubjectELA is the list subject whose evidence statements are multi-select.
const SubjectELA source.Field = "ELA"

// RegisterStructure builds the item-bank class hierarchy under the item root,
// attaching list and tree properties resolved through run's URI maps.
func (im *Importer) RegisterStructure(ctx context.Context, run *Run) error {
	nodes, err := im.source.ItemBankStructure()
	if err != nil {
		return fmt.Errorf("importer: %w", err)
	}
	return im.BuildStructure(ctx, run, nodes)
}

// BuildStructure creates or reuses a subclass per node, rooted at the item
// class. Re-running it with the same nodes creates no new subclasses.
func (im *Importer) BuildStructure(ctx context.Context, run *Run, nodes []*source.StructureNode) error {
	for _, node := range nodes {
		if err := im.walkItemBank(ctx, run, node, ontology.ClassItem); err != nil {
			return fmt.Errorf("importer: structure %s: %w", node.ID, err)
		}
	}
	return nil
}

func (im *Importer) walkItemBank(ctx context.Context, run *Run, node *source.StructureNode, parent string) error {
	class, err := im.findOrCreateSubclass(ctx, run, parent, node.ID)
	if err != nil {
		return err
	}

	if key := node.EvidenceStatementListKey; key != "" {
		if ref, ok := run.EvidenceLists[key]; ok {
			multiple := ref.Spec.Subject == SubjectELA
			if err := im.attachListProperty(ctx, run, class, LabelEvidenceStatement, ref.URI, multiple); err != nil {
				return err
			}
		} else {
			im.logger.Debug("No evidence statement list for key", zap.String("class", node.ID), zap.String("key", key))
		}
	}

	if key := node.TaskModelListKey; key != "" {
		if ref, ok := run.TaskLists[key]; ok {
			if err := im.attachListProperty(ctx, run, class, LabelTaskModel, ref.URI, false); err != nil {
				return err
			}
		} else {
			im.logger.Debug("No task model list for key", zap.String("class", node.ID), zap.String("key", key))
		}
	}

	if key := node.IMSTreeKey; key != "" {
		if ref, ok := run.Trees[key]; ok {
			if err := im.attachTreeProperty(ctx, run, class, ref.URI); err != nil {
				return err
			}
		} else {
			im.logger.Debug("No standard tree for key", zap.String("class", node.ID), zap.String("key", key))
		}
	}

	for _, child := range node.Children {
		if err := im.walkItemBank(ctx, run, child, class); err != nil {
			return err
		}
	}
	return nil
}

// findOrCreateSubclass returns the direct subclass of parent labelled label,
// creating and stamping it when none exists.
func (im *Importer) findOrCreateSubclass(ctx context.Context, run *Run, parent, label string) (string, error) {
	subs, err := im.repo.Subclasses(ctx, parent, false)
	if err != nil {
		return "", fmt.Errorf("subclasses of %s: %w", parent, err)
	}
	for _, sub := range subs {
		if sub.Label == label {
			run.Stats.ReusedSubclasses++
			return sub.URI, nil
		}
	}

	class, err := im.repo.CreateSubclass(ctx, parent, label)
	if err != nil {
		return "", fmt.Errorf("create subclass %q: %w", label, err)
	}
	if err := im.stamp(ctx, run, class); err != nil {
		return "", err
	}
	run.Stats.Subclasses++
	return class, nil
}

// findOrCreateProperty returns the generated property labelled label on
// class, creating it when none exists. Properties not stamped by this
// importer are never reused.
func (im *Importer) findOrCreateProperty(ctx context.Context, run *Run, class, label string) (string, error) {
	props, err := im.repo.Properties(ctx, class)
	if err != nil {
		return "", fmt.Errorf("properties of %s: %w", class, err)
	}
	for _, p := range props {
		if p.Label != label {
			continue
		}
		generated, err := im.isGenerated(ctx, p.URI)
		if err != nil {
			return "", err
		}
		if generated {
			return p.URI, nil
		}
	}

	prop, err := im.repo.CreateProperty(ctx, class, label)
	if err != nil {
		return "", fmt.Errorf("create property %q: %w", label, err)
	}
	run.Stats.Properties++
	return prop, nil
}

func (im *Importer) attachListProperty(ctx context.Context, run *Run, class, label, list string, multiple bool) error {
	widget := ontology.WidgetRadioBox
	if multiple {
		widget = ontology.WidgetCheckBox
	}
	return im.attachProperty(ctx, run, class, label, list, multiple, widget)
}

func (im *Importer) attachTreeProperty(ctx context.Context, run *Run, class, tree string) error {
	return im.attachProperty(ctx, run, class, LabelStandardID, tree, true, ontology.WidgetTreeBox)
}

func (im *Importer) attachProperty(ctx context.Context, run *Run, class, label, rangeClass string, multiple bool, widget string) error {
	prop, err := im.findOrCreateProperty(ctx, run, class, label)
	if err != nil {
		return err
	}
	if err := ontology.SetRange(ctx, im.repo, prop, rangeClass); err != nil {
		return fmt.Errorf("set range of %q: %w", label, err)
	}
	if err := ontology.SetMultiple(ctx, im.repo, prop, multiple); err != nil {
		return fmt.Errorf("set multiple of %q: %w", label, err)
	}
	if err := ontology.SetWidget(ctx, im.repo, prop, widget); err != nil {
		return fmt.Errorf("set widget of %q: %w", label, err)
	}
	return im.stamp(ctx, run, prop)
}
