// Package source loads the static JSON reference documents an import reads:
// standard trees, the lists of evidence statements and task models, and the
// maps describing what to build from them. Each document is parsed once per
// Loader and cached.
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
)

// Loader reads and caches reference documents from a filesystem.
type Loader struct {
	fsys  fs.FS
	cache map[string]any
}

// NewLoader returns a Loader reading from fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys, cache: make(map[string]any)}
}

// NewDirLoader returns a Loader reading from a directory on disk.
func NewDirLoader(dir string) *Loader {
	return NewLoader(os.DirFS(dir))
}

// Reset drops every cached document so the next access re-reads it.
func (l *Loader) Reset() {
	l.cache = make(map[string]any)
}

// Preload parses every source document, returning the first failure.
func (l *Loader) Preload() error {
	steps := []func() error{
		func() error { _, err := l.StandardTree(ELATreeSource); return err },
		func() error { _, err := l.StandardTree(MathTreeSource); return err },
		func() error { _, err := l.TreeMap(); return err },
		func() error { _, err := l.EvidenceStatements(); return err },
		func() error { _, err := l.EvidenceStatementMap(); return err },
		func() error { _, err := l.TaskModels(); return err },
		func() error { _, err := l.TaskModelMap(); return err },
		func() error { _, err := l.ItemBankStructure(); return err },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// StandardTree returns the root node of the named standard-tree document.
func (l *Loader) StandardTree(name string) (*TreeNode, error) {
	return load(l, name, func(data []byte) (*TreeNode, error) {
		var root TreeNode
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, err
		}
		return &root, nil
	})
}

// TreeMap returns the subtree selections keyed by logical tree key.
func (l *Loader) TreeMap() ([]Entry[TreeSpec], error) {
	return load(l, IMSTreeMapSource, decodeObject[TreeSpec])
}

// EvidenceStatements returns the evidence statement records in document order.
func (l *Loader) EvidenceStatements() ([]EvidenceStatement, error) {
	return load(l, EvidenceStatementSource, decodeArray[EvidenceStatement])
}

// EvidenceStatementMap returns the evidence list selections keyed by list key.
func (l *Loader) EvidenceStatementMap() ([]Entry[ListSpec], error) {
	return load(l, EvidenceStatementMapSource, decodeObject[ListSpec])
}

// TaskModels returns the task model records in document order.
func (l *Loader) TaskModels() ([]TaskModel, error) {
	return load(l, TaskModelSource, decodeArray[TaskModel])
}

// TaskModelMap returns the task model list selections keyed by list key.
func (l *Loader) TaskModelMap() ([]Entry[ListSpec], error) {
	return load(l, TaskModelMapSource, decodeObject[ListSpec])
}

// ItemBankStructure returns the top-level structure nodes. The document may
// be an array of nodes or an object whose values are nodes.
func (l *Loader) ItemBankStructure() ([]*StructureNode, error) {
	return load(l, ItemBankMapSource, func(data []byte) ([]*StructureNode, error) {
		if first := firstByte(data); first == '{' {
			entries, err := decodeObject[*StructureNode](data)
			if err != nil {
				return nil, err
			}
			nodes := make([]*StructureNode, len(entries))
			for i, e := range entries {
				nodes[i] = e.Value
			}
			return nodes, nil
		}
		return decodeArray[*StructureNode](data)
	})
}

// load returns the cached value for name or reads and decodes it.
func load[T any](l *Loader, name string, decode func([]byte) (T, error)) (T, error) {
	if v, ok := l.cache[name]; ok {
		return v.(T), nil
	}
	var zero T
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return zero, fmt.Errorf("source: load %s: %w", name, err)
	}
	v, err := decode(data)
	if err != nil {
		return zero, fmt.Errorf("source: parse %s: %w", name, err)
	}
	l.cache[name] = v
	return v, nil
}

func decodeArray[T any](data []byte) ([]T, error) {
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeObject decodes a JSON object into entries, keeping key order.
func decodeObject[T any](data []byte) ([]Entry[T], error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	var entries []Entry[T]
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var v T
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		entries = append(entries, Entry[T]{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}

func firstByte(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}
