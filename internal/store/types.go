package store

import "time"

// Resource kinds stored in resources.kind.
const (
	KindClass    = "class"
	KindInstance = "instance"
	KindProperty = "property"
)

// Statement is one subject/predicate/object row.
type Statement struct {
	ID        int64
	Subject   string
	Predicate string
	Object    string
}

// MigrationRecord is one applied migration in the ledger.
type MigrationRecord struct {
	Version     string
	Description string
	AppliedAt   time.Time
}
