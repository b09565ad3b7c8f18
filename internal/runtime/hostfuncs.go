package runtime

import (
	"context"

	"github.com/risor-io/risor/object"
	"go.uber.org/zap"

	"github.com/jward/itembank/internal/ontology"
	"github.com/jward/itembank/internal/store"
)

// vocabulary returns the "vocab" global: short names for the ontology URIs
// scripts need.
func vocabulary() *object.Map {
	return object.NewMap(map[string]object.Object{
		"property": object.NewString(ontology.ClassProperty),
		"tree":     object.NewString(ontology.ClassTree),
		"item":     object.NewString(ontology.ClassItem),
		"list":     object.NewString(ontology.ClassList),

		"label":          object.NewString(ontology.PropertyLabel),
		"range":          object.NewString(ontology.PropertyRange),
		"domain":         object.NewString(ontology.PropertyDomain),
		"multiple":       object.NewString(ontology.PropertyMultiple),
		"widget":         object.NewString(ontology.PropertyWidget),
		"child_of":       object.NewString(ontology.PropertyChildOf),
		"level":          object.NewString(ontology.PropertyLevel),
		"node_origin_id": object.NewString(ontology.PropertyNodeOriginID),
		"generated_by":   object.NewString(ontology.PropertyGeneratedBy),
		"generation":     object.NewString(ontology.PropertyGeneration),

		"true":  object.NewString(ontology.True),
		"false": object.NewString(ontology.False),
	})
}

// makeLabelFn creates the "label" host function.
//
// label(uri) → string
func makeLabelFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("label", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("label", 1, len(args))
		}
		uri, err := toString(args[0])
		if err != nil {
			return object.Errorf("label: %v", err)
		}
		label, err := s.Label(ctx, uri)
		if err != nil {
			return object.Errorf("label: %v", err)
		}
		return object.NewString(label)
	})
}

// makeValuesFn creates the "values" host function.
//
// values(uri, predicate) → [string]
func makeValuesFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("values", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("values", 2, len(args))
		}
		uri, err := toString(args[0])
		if err != nil {
			return object.Errorf("values: uri %v", err)
		}
		predicate, err := toString(args[1])
		if err != nil {
			return object.Errorf("values: predicate %v", err)
		}
		vals, err := s.Values(ctx, uri, predicate)
		if err != nil {
			return object.Errorf("values: %v", err)
		}
		return stringsToList(vals)
	})
}

// makeSubclassesFn creates the "subclasses" host function.
//
// subclasses(class, recursive=false) → [{uri, label}]
func makeSubclassesFn(s *store.Store) *object.Builtin {
	return makeResourceListFn("subclasses", s.Subclasses)
}

// makeInstancesFn creates the "instances" host function.
//
// instances(class, recursive=false) → [{uri, label}]
func makeInstancesFn(s *store.Store) *object.Builtin {
	return makeResourceListFn("instances", s.Instances)
}

func makeResourceListFn(name string, list func(context.Context, string, bool) ([]ontology.Resource, error)) *object.Builtin {
	return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 2 {
			return object.Errorf("%s: expected 1 or 2 arguments, got %d", name, len(args))
		}
		class, err := toString(args[0])
		if err != nil {
			return object.Errorf("%s: class %v", name, err)
		}
		recursive := false
		if len(args) == 2 {
			if recursive, err = toBool(args[1]); err != nil {
				return object.Errorf("%s: recursive %v", name, err)
			}
		}
		found, err := list(ctx, class, recursive)
		if err != nil {
			return object.Errorf("%s: %v", name, err)
		}
		return resourcesToList(found)
	})
}

// makePropertiesFn creates the "properties" host function.
//
// properties(class) → [{uri, label}]
func makePropertiesFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("properties", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("properties", 1, len(args))
		}
		class, err := toString(args[0])
		if err != nil {
			return object.Errorf("properties: %v", err)
		}
		props, err := s.Properties(ctx, class)
		if err != nil {
			return object.Errorf("properties: %v", err)
		}
		return resourcesToList(props)
	})
}

// makeSearchFn creates the "search" host function.
//
// search(class, predicate, value, recursive=true) → [uri]
func makeSearchFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("search", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 3 || len(args) > 4 {
			return object.Errorf("search: expected 3 or 4 arguments, got %d", len(args))
		}
		var strs [3]string
		for i := range strs {
			v, err := toString(args[i])
			if err != nil {
				return object.Errorf("search: argument %d %v", i+1, err)
			}
			strs[i] = v
		}
		recursive := true
		if len(args) == 4 {
			var err error
			if recursive, err = toBool(args[3]); err != nil {
				return object.Errorf("search: recursive %v", err)
			}
		}
		uris, err := s.SearchInstances(ctx, strs[0], strs[1], strs[2], recursive)
		if err != nil {
			return object.Errorf("search: %v", err)
		}
		return stringsToList(uris)
	})
}

// makeMetadataFn creates the "metadata" host function.
//
// metadata(key) → string
func makeMetadataFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("metadata", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("metadata", 1, len(args))
		}
		key, err := toString(args[0])
		if err != nil {
			return object.Errorf("metadata: %v", err)
		}
		v, err := s.GetMetadata(key)
		if err != nil {
			return object.Errorf("metadata: %v", err)
		}
		return object.NewString(v)
	})
}

// logObject provides log.Info/Warn/Error methods for Risor scripts.
type logObject struct {
	logger *zap.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg)
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg)
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg)
}
