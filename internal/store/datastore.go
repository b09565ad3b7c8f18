package store

import "github.com/jward/itembank/internal/ontology"

// Compile-time check: *Store satisfies ontology.Repository.
var _ ontology.Repository = (*Store)(nil)
