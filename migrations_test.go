package itembank

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	setupVersion  = Migrations[0].Version
	reloadVersion = Migrations[1].Version
)

func TestMigrations_Ordered(t *testing.T) {
	require.Len(t, Migrations, 2)
	assert.Less(t, setupVersion, reloadVersion)
}

func TestMigrate_AppliesPendingOnce(t *testing.T) {
	in := newTestInstaller(t)
	ctx := context.Background()

	applied, err := in.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{setupVersion, reloadVersion}, applied)
	assert.Equal(t, []string{"ELA", "Math"}, topLevelItems(t, in))

	applied, err = in.Migrate(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.Equal(t, []string{"ELA", "Math"}, topLevelItems(t, in))
}

func TestMigrationStatus(t *testing.T) {
	in := newTestInstaller(t)
	ctx := context.Background()

	states, err := in.MigrationStatus(ctx)
	require.NoError(t, err)
	require.Len(t, states, 2)
	for _, st := range states {
		assert.False(t, st.Applied, st.Version)
		assert.True(t, st.AppliedAt.IsZero())
	}

	_, err = in.Migrate(ctx)
	require.NoError(t, err)

	states, err = in.MigrationStatus(ctx)
	require.NoError(t, err)
	for _, st := range states {
		assert.True(t, st.Applied, st.Version)
		assert.False(t, st.AppliedAt.IsZero())
	}
	assert.Equal(t, Migrations[0].Description, states[0].Description)
}

func TestRollback_IrreversibleLeavesLedger(t *testing.T) {
	in := newTestInstaller(t)
	ctx := context.Background()

	_, err := in.Migrate(ctx)
	require.NoError(t, err)

	version, err := in.Rollback(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIrreversibleMigration))
	assert.Equal(t, reloadVersion, version)

	states, err := in.MigrationStatus(ctx)
	require.NoError(t, err)
	assert.True(t, states[1].Applied, "failed rollback keeps the migration recorded")
	assert.Equal(t, []string{"ELA", "Math"}, topLevelItems(t, in), "data untouched")
}

func TestRollback_RevertsSetup(t *testing.T) {
	in := newTestInstaller(t)
	ctx := context.Background()

	_, err := in.Migrate(ctx)
	require.NoError(t, err)
	require.NoError(t, in.Store().ForgetMigration(ctx, reloadVersion))

	version, err := in.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, setupVersion, version)
	assert.Empty(t, topLevelItems(t, in))

	version, err = in.Rollback(ctx)
	require.NoError(t, err)
	assert.Empty(t, version, "nothing left to roll back")
}

func TestRollback_NothingApplied(t *testing.T) {
	in := newTestInstaller(t)

	version, err := in.Rollback(context.Background())
	require.NoError(t, err)
	assert.Empty(t, version)
}
