package itembank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureMetadataGuardian(t *testing.T) {
	in := newTestInstaller(t)
	ctx := context.Background()

	_, ok, err := in.MetadataGuardian(ctx, "guardian")
	require.NoError(t, err)
	assert.False(t, ok, "nothing registered yet")

	opts := DefaultGuardianOptions()
	require.NoError(t, in.ConfigureMetadataGuardian(ctx, opts))

	got, ok, err := in.MetadataGuardian(ctx, opts.Key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, opts, got)

	_, ok, err = in.MetadataGuardian(ctx, "other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfigureMetadataGuardian_Overwrites(t *testing.T) {
	in := newTestInstaller(t)
	ctx := context.Background()

	require.NoError(t, in.ConfigureMetadataGuardian(ctx, DefaultGuardianOptions()))
	custom := GuardianOptions{
		Key:          "guardian",
		ExpectedPath: []string{"urn:a", "urn:b"},
		PropertyURI:  "urn:prop",
	}
	require.NoError(t, in.ConfigureMetadataGuardian(ctx, custom))

	got, ok, err := in.MetadataGuardian(ctx, "guardian")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, custom, got)
}

func TestConfigureMetadataGuardian_Validation(t *testing.T) {
	in := newTestInstaller(t)

	tests := []struct {
		name   string
		modify func(*GuardianOptions)
	}{
		{"no key", func(o *GuardianOptions) { o.Key = "" }},
		{"no property", func(o *GuardianOptions) { o.PropertyURI = "" }},
		{"no path", func(o *GuardianOptions) { o.ExpectedPath = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultGuardianOptions()
			tt.modify(&opts)
			require.Error(t, in.ConfigureMetadataGuardian(context.Background(), opts))
		})
	}
}

func TestInstall(t *testing.T) {
	in := newTestInstaller(t)
	ctx := context.Background()

	applied, err := in.Install(ctx, DefaultGuardianOptions())
	require.NoError(t, err)
	assert.Len(t, applied, 2)

	_, ok, err := in.MetadataGuardian(ctx, "guardian")
	require.NoError(t, err)
	assert.True(t, ok)

	applied, err = in.Install(ctx, DefaultGuardianOptions())
	require.NoError(t, err)
	assert.Empty(t, applied, "second install only refreshes the guardian")
}
