// Package ontology defines the vocabulary and the capability interface the
// importer uses to write classes, instances, and properties into a
// resource repository. Implementations live elsewhere (internal/store).
package ontology

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a resource URI is unknown to the repository.
var ErrNotFound = errors.New("ontology: resource not found")

// Resource is a URI with its human-readable label.
type Resource struct {
	URI   string
	Label string
}

// Repository is the narrow set of operations needed to build and tear down
// generated ontology data. Values are stored as strings; resource references
// are stored as their URI.
type Repository interface {
	// CreateSubclass creates a new class under parent and returns its URI.
	CreateSubclass(ctx context.Context, parent, label string) (string, error)
	// CreateInstance creates a new instance of class and returns its URI.
	CreateInstance(ctx context.Context, class, label string) (string, error)
	// CreateProperty creates a property whose domain is class.
	CreateProperty(ctx context.Context, class, label string) (string, error)

	// SetValue replaces every value of predicate on subject with value.
	SetValue(ctx context.Context, subject, predicate, value string) error
	// Values returns the values of predicate on subject in insertion order.
	Values(ctx context.Context, subject, predicate string) ([]string, error)
	// Label returns the label of uri, or ErrNotFound.
	Label(ctx context.Context, uri string) (string, error)

	// Subclasses returns the direct (or, when recursive, all) subclasses of class.
	Subclasses(ctx context.Context, class string, recursive bool) ([]Resource, error)
	// Instances returns instances of class (and of its subclasses when recursive).
	Instances(ctx context.Context, class string, recursive bool) ([]Resource, error)
	// Properties returns the properties whose domain is class.
	Properties(ctx context.Context, class string) ([]Resource, error)
	// SearchInstances returns instances of class carrying predicate=value.
	SearchInstances(ctx context.Context, class, predicate, value string, recursive bool) ([]string, error)

	// DeleteInstances removes the given instances and every statement about them.
	DeleteInstances(ctx context.Context, uris []string) error
	// DeleteClass removes a class, its statements, and its hierarchy edges.
	DeleteClass(ctx context.Context, uri string) error
}

// SetRange sets the rdfs:range of property to class.
func SetRange(ctx context.Context, repo Repository, property, class string) error {
	return repo.SetValue(ctx, property, PropertyRange, class)
}

// SetMultiple marks property as multiple- or single-valued.
func SetMultiple(ctx context.Context, repo Repository, property string, multiple bool) error {
	v := False
	if multiple {
		v = True
	}
	return repo.SetValue(ctx, property, PropertyMultiple, v)
}

// SetWidget sets the form widget used to edit property.
func SetWidget(ctx context.Context, repo Repository, property, widget string) error {
	return repo.SetValue(ctx, property, PropertyWidget, widget)
}

// IsMultiple reports whether property is flagged multiple-valued.
func IsMultiple(ctx context.Context, repo Repository, property string) (bool, error) {
	v, err := FirstValue(ctx, repo, property, PropertyMultiple)
	if err != nil {
		return false, err
	}
	return v == True, nil
}

// FirstValue returns the first value of predicate on subject, or "".
func FirstValue(ctx context.Context, repo Repository, subject, predicate string) (string, error) {
	vals, err := repo.Values(ctx, subject, predicate)
	if err != nil {
		return "", fmt.Errorf("ontology: values of %s: %w", predicate, err)
	}
	if len(vals) == 0 {
		return "", nil
	}
	return vals[0], nil
}
