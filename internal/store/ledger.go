package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// --- Metadata ---

// GetMetadata returns the value stored under key, or "" when absent.
func (s *Store) GetMetadata(key string) (string, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata %s: %w", key, err)
	}
	return v, nil
}

// SetMetadata upserts key=value.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}

// --- Migration ledger ---

// AppliedMigrations returns every recorded migration ordered by version.
func (s *Store) AppliedMigrations(ctx context.Context) ([]*MigrationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT version, COALESCE(description, ''), applied_at FROM migrations ORDER BY version",
	)
	if err != nil {
		return nil, fmt.Errorf("applied migrations: %w", err)
	}
	defer rows.Close()
	var recs []*MigrationRecord
	for rows.Next() {
		r := &MigrationRecord{}
		if err := rows.Scan(&r.Version, &r.Description, &r.AppliedAt); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// RecordMigration marks version as applied.
func (s *Store) RecordMigration(ctx context.Context, version, description string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO migrations (version, description, applied_at) VALUES (?, ?, ?)",
		version, description, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record migration %s: %w", version, err)
	}
	return nil
}

// ForgetMigration removes version from the ledger.
func (s *Store) ForgetMigration(ctx context.Context, version string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM migrations WHERE version = ?", version); err != nil {
		return fmt.Errorf("forget migration %s: %w", version, err)
	}
	return nil
}
