package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/jward/itembank"
	"github.com/jward/itembank/internal/config"
)

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(func() {
		resetFlags()
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags() {
	flagConfig, flagDB, flagDataDir, flagMetricsTextfile = "", "", "", ""
	flagVerbose = false
}

func TestParseGlobals(t *testing.T) {
	t.Parallel()

	got, err := parseGlobals([]string{"subject=Math", "grade=5", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"subject": "Math", "grade": "5", "empty": ""}, got)

	for _, bad := range []string{"novalue", "=x"} {
		_, err := parseGlobals([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestApplyFlags_OverridesConfig(t *testing.T) {
	t.Cleanup(resetFlags)
	flagDB = "other.db"
	flagVerbose = true

	c := config.DefaultConfig()
	c.Import.DataDir = "/from/file"
	applyFlags(c)

	assert.Equal(t, "other.db", c.Store.Path)
	assert.Equal(t, "/from/file", c.Import.DataDir, "unset flags keep file values")
	assert.True(t, c.Log.Verbose)
}

func TestNewLogger_Level(t *testing.T) {
	t.Parallel()

	l, err := newLogger(config.LogConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = newLogger(config.LogConfig{Level: "warn", Verbose: true})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = newLogger(config.LogConfig{Level: "loud"})
	require.Error(t, err)
}

func TestGuardianOptions_FromDefaults(t *testing.T) {
	t.Parallel()
	assert.Equal(t, itembank.DefaultGuardianOptions(), guardianOptions(config.DefaultConfig().Guardian))
}

func TestFormatStatusText(t *testing.T) {
	t.Parallel()
	at := time.Date(2020, 10, 16, 13, 4, 0, 0, time.UTC)

	var buf bytes.Buffer
	formatStatusText(&buf, []itembank.MigrationState{
		{Version: "v1", Description: "first", Applied: true, AppliedAt: at},
		{Version: "v2", Description: "second"},
	}, true)

	lines := strings.Split(buf.String(), "\n")
	assert.Contains(t, lines[1], "applied")
	assert.Contains(t, lines[1], "2020-10-16T13:04:00Z")
	assert.Contains(t, lines[2], "pending")
	assert.Contains(t, buf.String(), "differs from the last import")
}

func TestCLI_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "bank.db")
	prom := filepath.Join(dir, "itembank.prom")

	out, err := execute(t, "--db", db, "--metrics-textfile", prom, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "applied "+itembank.Migrations[0].Version)
	assert.Contains(t, out, "applied "+itembank.Migrations[1].Version)

	content, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(content), "itembank_operations_total")

	out, err = execute(t, "--db", db, "status")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "applied"))
	assert.NotContains(t, out, "differs")

	out, err = execute(t, "--db", db, "audit")
	require.NoError(t, err)
	assert.Contains(t, out, "Audit passed")

	_, err = execute(t, "--db", db, "rollback")
	require.ErrorIs(t, err, itembank.ErrIrreversibleMigration)

	out, err = execute(t, "--db", db, "down")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted")
}

func TestCLI_Script(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "hello.risor")
	require.NoError(t, os.WriteFile(script, []byte(`
out := {"greeting": "hello " + name, "tree": vocab["tree"]}
out
`), 0o644))

	out, err := execute(t, "--db", filepath.Join(dir, "bank.db"), "script", script, "name=bank")
	require.NoError(t, err)
	assert.Contains(t, out, `"greeting": "hello bank"`)
}

func TestCLI_GuardianFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "itembank.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
store:
  path: `+filepath.Join(dir, "bank.db")+`
guardian:
  key: custom
`), 0o644))

	out, err := execute(t, "--config", cfgPath, "guardian")
	require.NoError(t, err)
	assert.Contains(t, out, `under "custom"`)
}

func TestCLI_WatchNeedsDataDir(t *testing.T) {
	_, err := execute(t, "--db", filepath.Join(t.TempDir(), "bank.db"), "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory")
}

func TestCLI_InvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: loud\n"), 0o644))

	_, err := execute(t, "--config", cfgPath, "status")
	require.Error(t, err)
}
