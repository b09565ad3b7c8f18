package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/jward/itembank/internal/ontology"
)

// DefaultNamespace prefixes the URIs minted for new resources.
const DefaultNamespace = "http://www.tao.lu/Ontologies/itembank.rdf"

// Store is the SQLite resource repository: resources, the class hierarchy,
// class membership, and subject/predicate/object statements.
type Store struct {
	db        *sql.DB
	namespace string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithNamespace sets the namespace used when minting resource URIs.
func WithNamespace(ns string) StoreOption {
	return func(s *Store) {
		s.namespace = ns
	}
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string, opts ...StoreOption) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db, namespace: DefaultNamespace}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReadOnly runs fn on a dedicated connection with PRAGMA query_only enabled,
// so any statement that would modify the database fails. The pragma is
// cleared before the connection returns to the pool; if that fails the
// connection is discarded.
func (s *Store) ReadOnly(ctx context.Context, fn func(*sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("read-only connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return fmt.Errorf("read-only connection: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), "PRAGMA query_only = OFF"); err != nil {
			_ = conn.Raw(func(any) error { return driver.ErrBadConn })
		}
	}()
	return fn(conn)
}

// IsReadOnlyViolation reports whether err came from a write attempted inside
// ReadOnly.
func IsReadOnlyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrReadonly
}

// Namespace returns the namespace used for minted URIs.
func (s *Store) Namespace() string {
	return s.namespace
}

// Migrate creates all tables and indexes and seeds the root classes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	now := time.Now().UTC()
	for _, root := range ontology.RootClasses {
		_, err := s.db.Exec(
			"INSERT OR IGNORE INTO resources (uri, label, kind, created_at) VALUES (?, ?, ?, ?)",
			root.URI, root.Label, KindClass, now,
		)
		if err != nil {
			return fmt.Errorf("migrate: seed %s: %w", root.URI, err)
		}
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS resources (
  id              INTEGER PRIMARY KEY,
  uri             TEXT NOT NULL UNIQUE,
  label           TEXT NOT NULL DEFAULT '',
  kind            TEXT NOT NULL,
  created_at      TIMESTAMP
);

CREATE TABLE IF NOT EXISTS subclasses (
  child           TEXT NOT NULL REFERENCES resources(uri),
  parent          TEXT NOT NULL REFERENCES resources(uri),
  PRIMARY KEY (child, parent)
);

CREATE TABLE IF NOT EXISTS instances (
  resource        TEXT NOT NULL REFERENCES resources(uri),
  class           TEXT NOT NULL REFERENCES resources(uri),
  PRIMARY KEY (resource, class)
);

CREATE TABLE IF NOT EXISTS statements (
  id              INTEGER PRIMARY KEY,
  subject         TEXT NOT NULL REFERENCES resources(uri),
  predicate       TEXT NOT NULL,
  object          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS migrations (
  version         TEXT PRIMARY KEY,
  description     TEXT,
  applied_at      TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_resources_kind ON resources(kind);
CREATE INDEX IF NOT EXISTS idx_subclasses_parent ON subclasses(parent);
CREATE INDEX IF NOT EXISTS idx_instances_class ON instances(class);
CREATE INDEX IF NOT EXISTS idx_statements_subject ON statements(subject, predicate);
CREATE INDEX IF NOT EXISTS idx_statements_predicate ON statements(predicate, object);
CREATE INDEX IF NOT EXISTS idx_statements_object ON statements(object);
`
