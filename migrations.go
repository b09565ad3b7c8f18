package itembank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrIrreversibleMigration is returned when rolling back a migration that
// cannot be undone.
var ErrIrreversibleMigration = errors.New("itembank: irreversible migration")

// Migration is one versioned step of the item-bank ledger.
type Migration struct {
	Version     string
	Description string
	Up          func(ctx context.Context, in *Installer) error
	Down        func(ctx context.Context, in *Installer) error
}

// MigrationState is a Migration with its ledger status.
type MigrationState struct {
	Version     string
	Description string
	Applied     bool
	AppliedAt   time.Time
}

// Migrations lists the ledger in application order.
var Migrations = []Migration{
	{
		Version:     "202010161304_setup_item_bank",
		Description: "Import the item bank",
		Up: func(ctx context.Context, in *Installer) error {
			_, err := in.Up(ctx)
			return err
		},
		Down: func(ctx context.Context, in *Installer) error {
			_, err := in.Down(ctx)
			return err
		},
	},
	{
		Version:     "202011111448_reload_item_bank",
		Description: "Reload the item bank from updated reference data",
		Up: func(ctx context.Context, in *Installer) error {
			_, err := in.Reload(ctx)
			return err
		},
		Down: func(ctx context.Context, in *Installer) error {
			return fmt.Errorf("%w: edits to tree and list records made after the reload cannot be told apart from imported data", ErrIrreversibleMigration)
		},
	},
}

// Migrate applies every pending migration in order and returns the versions
// it applied. It stops at the first failure; migrations applied before it
// stay recorded.
func (in *Installer) Migrate(ctx context.Context) ([]string, error) {
	applied, err := in.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, m := range Migrations {
		if _, ok := applied[m.Version]; ok {
			continue
		}
		in.logger.Info("Applying migration", zap.String("version", m.Version))
		if err := m.Up(ctx, in); err != nil {
			return done, fmt.Errorf("itembank: migration %s: %w", m.Version, err)
		}
		if err := in.store.RecordMigration(ctx, m.Version, m.Description, time.Now()); err != nil {
			return done, fmt.Errorf("itembank: %w", err)
		}
		done = append(done, m.Version)
	}
	return done, nil
}

// Rollback reverts the most recently applied migration and returns its
// version, or "" when nothing is applied. Reverting an irreversible migration
// returns ErrIrreversibleMigration and leaves the ledger unchanged.
func (in *Installer) Rollback(ctx context.Context) (string, error) {
	applied, err := in.appliedVersions(ctx)
	if err != nil {
		return "", err
	}

	for i := len(Migrations) - 1; i >= 0; i-- {
		m := Migrations[i]
		if _, ok := applied[m.Version]; !ok {
			continue
		}
		in.logger.Info("Reverting migration", zap.String("version", m.Version))
		if err := m.Down(ctx, in); err != nil {
			return m.Version, fmt.Errorf("itembank: rollback %s: %w", m.Version, err)
		}
		if err := in.store.ForgetMigration(ctx, m.Version); err != nil {
			return m.Version, fmt.Errorf("itembank: %w", err)
		}
		return m.Version, nil
	}
	return "", nil
}

// MigrationStatus reports every known migration with its ledger status.
func (in *Installer) MigrationStatus(ctx context.Context) ([]MigrationState, error) {
	applied, err := in.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	states := make([]MigrationState, len(Migrations))
	for i, m := range Migrations {
		at, ok := applied[m.Version]
		states[i] = MigrationState{
			Version:     m.Version,
			Description: m.Description,
			Applied:     ok,
			AppliedAt:   at,
		}
	}
	return states, nil
}

func (in *Installer) appliedVersions(ctx context.Context) (map[string]time.Time, error) {
	recs, err := in.store.AppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("itembank: %w", err)
	}
	applied := make(map[string]time.Time, len(recs))
	for _, r := range recs {
		applied[r.Version] = r.AppliedAt
	}
	return applied, nil
}
