package importer

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/jward/itembank/internal/ontology"
	"github.com/jward/itembank/internal/source"
)

// treeDocuments maps TreeSpec.Tree values to their source documents.
var treeDocuments = map[string]string{
	source.TreeELA:  source.ELATreeSource,
	source.TreeMath: source.MathTreeSource,
}

// ImportTrees imports every subtree selection of the tree map and records
// the resulting tree classes in run.Trees.
func (im *Importer) ImportTrees(ctx context.Context, run *Run) error {
	specs, err := im.source.TreeMap()
	if err != nil {
		return fmt.Errorf("importer: %w", err)
	}
	for _, e := range specs {
		doc, ok := treeDocuments[e.Value.Tree]
		if !ok {
			im.logger.Warn("Skipping tree with unknown source",
				zap.String("key", e.Key), zap.String("tree", e.Value.Tree))
			continue
		}
		root, err := im.source.StandardTree(doc)
		if err != nil {
			return fmt.Errorf("importer: %w", err)
		}
		uri, err := im.ImportSubtree(ctx, run, root, e.Value.Label, e.Value.Subtrees)
		if err != nil {
			return fmt.Errorf("importer: tree %s: %w", e.Key, err)
		}
		run.Trees[e.Key] = TreeRef{Spec: e.Value, URI: uri}
		im.logger.Debug("Imported tree", zap.String("key", e.Key), zap.String("uri", uri))
	}
	return nil
}

// ImportSubtree creates a tree class labelled label holding every node of
// root whose name is in subtrees at depth 1 or 2, plus all their descendants.
// It returns the tree class URI.
func (im *Importer) ImportSubtree(ctx context.Context, run *Run, root *source.TreeNode, label string, subtrees []string) (string, error) {
	tree, err := im.trees.CreateTree(ctx, label)
	if err != nil {
		return "", err
	}
	if err := im.stamp(ctx, run, tree); err != nil {
		return "", err
	}
	run.Stats.Trees++

	if err := im.walkTree(ctx, run, root, subtrees, 0, tree, ""); err != nil {
		return "", err
	}
	return tree, nil
}

// walkTree materialises node when it is a selected label at depth 1 or 2 or
// when an ancestor was materialised (parentID non-empty). Traversal always
// continues so independent matches deeper in unselected branches are found.
func (im *Importer) walkTree(ctx context.Context, run *Run, node *source.TreeNode, subtrees []string, level int, tree, parentID string) error {
	selected := (level == 1 || level == 2) && slices.Contains(subtrees, node.Name)
	if selected || parentID != "" {
		uri, err := im.trees.CreateNode(ctx, tree, node.Name, parentID)
		if err != nil {
			return err
		}
		if err := im.repo.SetValue(ctx, uri, ontology.PropertyNodeOriginID, node.Identifier); err != nil {
			return fmt.Errorf("importer: set origin id: %w", err)
		}
		if err := im.stamp(ctx, run, uri); err != nil {
			return err
		}
		run.Stats.TreeNodes++
		parentID = uri
	}

	for _, child := range node.Children {
		if err := im.walkTree(ctx, run, child, subtrees, level+1, tree, parentID); err != nil {
			return err
		}
	}
	return nil
}
