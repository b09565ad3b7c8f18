package itembank

import (
	"github.com/jward/itembank/internal/importer"
	"github.com/jward/itembank/internal/store"
)

// Public type aliases for internal types returned by the Installer API.

type Store = store.Store
type Run = importer.Run
type Stats = importer.Stats
type Sweep = importer.Sweep
type TreeRef = importer.TreeRef
type ListRef = importer.ListRef

// DefaultGenerator is the provenance tag used unless WithGenerator is given.
const DefaultGenerator = importer.DefaultGenerator
