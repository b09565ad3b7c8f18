package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jward/itembank/internal/ontology"
)

// ErrRootClass is returned when a caller tries to delete a built-in root class.
var ErrRootClass = errors.New("store: root classes cannot be deleted")

// --- Creation ---

// CreateSubclass mints a class under parent and returns its URI.
func (s *Store) CreateSubclass(ctx context.Context, parent, label string) (string, error) {
	return s.create(ctx, KindClass, parent, label, func(tx *sql.Tx, uri string) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO subclasses (child, parent) VALUES (?, ?)", uri, parent)
		return err
	})
}

// CreateInstance mints an instance of class and returns its URI.
func (s *Store) CreateInstance(ctx context.Context, class, label string) (string, error) {
	return s.create(ctx, KindInstance, class, label, func(tx *sql.Tx, uri string) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO instances (resource, class) VALUES (?, ?)", uri, class)
		return err
	})
}

// CreateProperty mints a property whose domain is class.
func (s *Store) CreateProperty(ctx context.Context, class, label string) (string, error) {
	return s.create(ctx, KindProperty, class, label, func(tx *sql.Tx, uri string) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO instances (resource, class) VALUES (?, ?)", uri, ontology.ClassProperty,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO statements (subject, predicate, object) VALUES (?, ?, ?)",
			uri, ontology.PropertyDomain, class,
		)
		return err
	})
}

// create inserts a resource of kind attached to owner (a class) and runs link
// inside the same transaction.
func (s *Store) create(ctx context.Context, kind, owner, label string, link func(*sql.Tx, string) error) (string, error) {
	ownerKind, err := s.kindOf(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("create %s %q: %w", kind, label, err)
	}
	if ownerKind != KindClass {
		return "", fmt.Errorf("create %s %q: %s is a %s, not a class", kind, label, owner, ownerKind)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	uri := s.mintURI()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO resources (uri, label, kind, created_at) VALUES (?, ?, ?, ?)",
		uri, label, kind, time.Now().UTC(),
	); err != nil {
		return "", fmt.Errorf("insert %s: %w", kind, err)
	}
	if err := link(tx, uri); err != nil {
		return "", fmt.Errorf("link %s: %w", kind, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit %s: %w", kind, err)
	}
	return uri, nil
}

func (s *Store) kindOf(ctx context.Context, uri string) (string, error) {
	var kind string
	err := s.db.QueryRowContext(ctx, "SELECT kind FROM resources WHERE uri = ?", uri).Scan(&kind)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%s: %w", uri, ontology.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("kind of %s: %w", uri, err)
	}
	return kind, nil
}

// --- Statements ---

// SetValue replaces every value of predicate on subject with value.
func (s *Store) SetValue(ctx context.Context, subject, predicate, value string) error {
	if _, err := s.kindOf(ctx, subject); err != nil {
		return fmt.Errorf("set value: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM statements WHERE subject = ? AND predicate = ?", subject, predicate,
	); err != nil {
		return fmt.Errorf("clear values: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO statements (subject, predicate, object) VALUES (?, ?, ?)",
		subject, predicate, value,
	); err != nil {
		return fmt.Errorf("insert statement: %w", err)
	}
	return tx.Commit()
}

// Values returns the values of predicate on subject in insertion order.
func (s *Store) Values(ctx context.Context, subject, predicate string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT object FROM statements WHERE subject = ? AND predicate = ? ORDER BY id",
		subject, predicate,
	)
	if err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}
	defer rows.Close()
	var vals []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		vals = append(vals, v)
	}
	return vals, rows.Err()
}

// StatementsAbout returns every statement whose subject is uri.
func (s *Store) StatementsAbout(ctx context.Context, uri string) ([]*Statement, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, subject, predicate, object FROM statements WHERE subject = ? ORDER BY id", uri,
	)
	if err != nil {
		return nil, fmt.Errorf("statements about %s: %w", uri, err)
	}
	defer rows.Close()
	var stmts []*Statement
	for rows.Next() {
		st := &Statement{}
		if err := rows.Scan(&st.ID, &st.Subject, &st.Predicate, &st.Object); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		stmts = append(stmts, st)
	}
	return stmts, rows.Err()
}

// Label returns the label of uri, or ontology.ErrNotFound.
func (s *Store) Label(ctx context.Context, uri string) (string, error) {
	var label string
	err := s.db.QueryRowContext(ctx, "SELECT label FROM resources WHERE uri = ?", uri).Scan(&label)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%s: %w", uri, ontology.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("label of %s: %w", uri, err)
	}
	return label, nil
}

// --- Hierarchy queries ---

// classScope returns a CTE naming the set of classes "scope(uri)" rooted at
// the first bound parameter, optionally including every descendant.
func classScope(recursive bool) string {
	if recursive {
		return `WITH RECURSIVE scope(uri) AS (
  SELECT ?
  UNION
  SELECT s.child FROM subclasses s JOIN scope c ON s.parent = c.uri
) `
	}
	return "WITH scope(uri) AS (SELECT ?) "
}

// Subclasses returns the direct subclasses of class, or all descendants when recursive.
func (s *Store) Subclasses(ctx context.Context, class string, recursive bool) ([]ontology.Resource, error) {
	query := `SELECT r.uri, r.label FROM resources r
		WHERE r.uri IN (SELECT s.child FROM subclasses s JOIN scope c ON s.parent = c.uri)
		ORDER BY r.id`
	return s.queryResources(ctx, classScope(recursive)+query, class)
}

// Instances returns the instances of class, including those of its subclasses when recursive.
func (s *Store) Instances(ctx context.Context, class string, recursive bool) ([]ontology.Resource, error) {
	query := `SELECT r.uri, r.label FROM resources r
		WHERE r.uri IN (SELECT i.resource FROM instances i JOIN scope c ON i.class = c.uri)
		ORDER BY r.id`
	return s.queryResources(ctx, classScope(recursive)+query, class)
}

// Properties returns the properties whose domain is class.
func (s *Store) Properties(ctx context.Context, class string) ([]ontology.Resource, error) {
	return s.queryResources(ctx,
		`SELECT r.uri, r.label FROM resources r
		 JOIN statements st ON st.subject = r.uri
		 WHERE r.kind = ? AND st.predicate = ? AND st.object = ?
		 ORDER BY r.id`,
		KindProperty, ontology.PropertyDomain, class,
	)
}

// SearchInstances returns the URIs of instances of class carrying predicate=value.
func (s *Store) SearchInstances(ctx context.Context, class, predicate, value string, recursive bool) ([]string, error) {
	query := `SELECT r.uri, r.label FROM resources r
		WHERE r.uri IN (SELECT i.resource FROM instances i JOIN scope c ON i.class = c.uri)
		  AND r.uri IN (SELECT subject FROM statements WHERE predicate = ? AND object = ?)
		ORDER BY r.id`
	found, err := s.queryResources(ctx, classScope(recursive)+query, class, predicate, value)
	if err != nil {
		return nil, err
	}
	uris := make([]string, len(found))
	for i, r := range found {
		uris[i] = r.URI
	}
	return uris, nil
}

func (s *Store) queryResources(ctx context.Context, query string, args ...any) ([]ontology.Resource, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()
	var out []ontology.Resource
	for rows.Next() {
		var r ontology.Resource
		if err := rows.Scan(&r.URI, &r.Label); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- Deletion ---

// DeleteInstances removes the given instances, their class memberships, and
// the statements about them. Statements on other resources that reference a
// deleted instance are kept. Class URIs in uris are left untouched.
func (s *Store) DeleteInstances(ctx context.Context, uris []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, batch := range chunks(uris, maxBatch) {
		placeholders := placeholderList(len(batch))
		args := append(stringsToArgs(batch), KindClass)
		in := "(SELECT uri FROM resources WHERE uri IN (" + placeholders + ") AND kind != ?)"
		for _, q := range []string{
			"DELETE FROM statements WHERE subject IN " + in,
			"DELETE FROM instances WHERE resource IN " + in,
		} {
			if _, err := tx.ExecContext(ctx, q, args...); err != nil {
				return fmt.Errorf("delete instance data: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM resources WHERE uri IN ("+placeholders+") AND kind != ?", args...,
		); err != nil {
			return fmt.Errorf("delete instances: %w", err)
		}
	}
	return tx.Commit()
}

// DeleteClass removes a class together with the statements about it, its
// subclass edges, and its membership rows. Instances of the class are not
// deleted, and statements on other resources that reference it are kept.
func (s *Store) DeleteClass(ctx context.Context, uri string) error {
	for _, root := range ontology.RootClasses {
		if root.URI == uri {
			return fmt.Errorf("delete class %s: %w", uri, ErrRootClass)
		}
	}
	kind, err := s.kindOf(ctx, uri)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	if kind != KindClass {
		return fmt.Errorf("delete class: %s is a %s", uri, kind)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM statements WHERE subject = ?1",
		"DELETE FROM subclasses WHERE child = ?1 OR parent = ?1",
		"DELETE FROM instances WHERE class = ?1 OR resource = ?1",
		"DELETE FROM resources WHERE uri = ?1",
	} {
		if _, err := tx.ExecContext(ctx, q, uri); err != nil {
			return fmt.Errorf("delete class %s: %w", uri, err)
		}
	}
	return tx.Commit()
}

// ResourceCount returns the number of resources of the given kind.
func (s *Store) ResourceCount(ctx context.Context, kind string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM resources WHERE kind = ?", kind).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return n, nil
}
