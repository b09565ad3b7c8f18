package ontology

import (
	"context"
	"fmt"
	"sort"
	"strconv"
)

// ListService manages ordered lists: a list is a subclass of ClassList and
// its elements are instances carrying a 1-based level.
type ListService struct {
	repo Repository
}

// NewListService returns a ListService writing to repo.
func NewListService(repo Repository) *ListService {
	return &ListService{repo: repo}
}

// CreateList creates an empty list labelled label.
func (s *ListService) CreateList(ctx context.Context, label string) (string, error) {
	uri, err := s.repo.CreateSubclass(ctx, ClassList, label)
	if err != nil {
		return "", fmt.Errorf("ontology: create list %q: %w", label, err)
	}
	return uri, nil
}

// CreateListElement appends an element to list.
func (s *ListService) CreateListElement(ctx context.Context, list, label string) (string, error) {
	existing, err := s.repo.Instances(ctx, list, false)
	if err != nil {
		return "", fmt.Errorf("ontology: list elements: %w", err)
	}
	uri, err := s.repo.CreateInstance(ctx, list, label)
	if err != nil {
		return "", fmt.Errorf("ontology: create list element: %w", err)
	}
	if err := s.repo.SetValue(ctx, uri, PropertyLevel, strconv.Itoa(len(existing)+1)); err != nil {
		return "", fmt.Errorf("ontology: set list level: %w", err)
	}
	return uri, nil
}

// Elements returns the elements of list ordered by level.
func (s *ListService) Elements(ctx context.Context, list string) ([]Resource, error) {
	elems, err := s.repo.Instances(ctx, list, false)
	if err != nil {
		return nil, fmt.Errorf("ontology: list elements: %w", err)
	}
	levels := make(map[string]int, len(elems))
	for _, e := range elems {
		v, err := FirstValue(ctx, s.repo, e.URI, PropertyLevel)
		if err != nil {
			return nil, err
		}
		levels[e.URI], _ = strconv.Atoi(v)
	}
	sort.SliceStable(elems, func(i, j int) bool {
		return levels[elems[i].URI] < levels[elems[j].URI]
	})
	return elems, nil
}

// TreeService manages trees: a tree is a subclass of ClassTree and its nodes
// are instances linked to their parent node by PropertyChildOf.
type TreeService struct {
	repo Repository
}

// NewTreeService returns a TreeService writing to repo.
func NewTreeService(repo Repository) *TreeService {
	return &TreeService{repo: repo}
}

// RootClass returns the class every tree is created under.
func (s *TreeService) RootClass() string {
	return ClassTree
}

// CreateTree creates an empty tree class labelled label.
func (s *TreeService) CreateTree(ctx context.Context, label string) (string, error) {
	uri, err := s.repo.CreateSubclass(ctx, ClassTree, label)
	if err != nil {
		return "", fmt.Errorf("ontology: create tree %q: %w", label, err)
	}
	return uri, nil
}

// CreateNode adds a node to tree. An empty parent creates a top-level node.
func (s *TreeService) CreateNode(ctx context.Context, tree, label, parent string) (string, error) {
	uri, err := s.repo.CreateInstance(ctx, tree, label)
	if err != nil {
		return "", fmt.Errorf("ontology: create tree node: %w", err)
	}
	if parent != "" {
		if err := s.repo.SetValue(ctx, uri, PropertyChildOf, parent); err != nil {
			return "", fmt.Errorf("ontology: link tree node: %w", err)
		}
	}
	return uri, nil
}

// Children returns the nodes of tree whose parent is parent.
func (s *TreeService) Children(ctx context.Context, tree, parent string) ([]string, error) {
	return s.repo.SearchInstances(ctx, tree, PropertyChildOf, parent, false)
}

// TopNodes returns the nodes of tree that have no parent.
func (s *TreeService) TopNodes(ctx context.Context, tree string) ([]Resource, error) {
	nodes, err := s.repo.Instances(ctx, tree, false)
	if err != nil {
		return nil, fmt.Errorf("ontology: tree nodes: %w", err)
	}
	var top []Resource
	for _, n := range nodes {
		parent, err := FirstValue(ctx, s.repo, n.URI, PropertyChildOf)
		if err != nil {
			return nil, err
		}
		if parent == "" {
			top = append(top, n)
		}
	}
	return top, nil
}
