package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/itembank/internal/importer"
)

func TestObserveOperation(t *testing.T) {
	t.Parallel()
	r := New()
	start := time.Now()

	r.ObserveOperation("up", start, nil)
	r.ObserveOperation("up", start, nil)
	r.ObserveOperation("down", start, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.operations.WithLabelValues("up", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("down", OutcomeError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.operations.WithLabelValues("down", OutcomeSuccess)))
	assert.Greater(t, testutil.ToFloat64(r.lastRun.WithLabelValues("up")), 0.0)
}

func TestObserveImportAndTeardown(t *testing.T) {
	t.Parallel()
	r := New()

	r.ObserveImport(importer.Stats{Trees: 2, TreeNodes: 40, Lists: 4, ListElements: 12, Subclasses: 5, Properties: 6})
	r.ObserveTeardown(importer.Sweep{Instances: 58, Classes: 11})

	assert.Equal(t, 40.0, testutil.ToFloat64(r.created.WithLabelValues("tree_node")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.created.WithLabelValues("reused_subclass")))
	assert.Equal(t, 11.0, testutil.ToFloat64(r.swept.WithLabelValues("class")))
	assert.Equal(t, 7, testutil.CollectAndCount(r.created))
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()
	r := New()
	r.ObserveOperation("reload", time.Now(), nil)

	path := filepath.Join(t.TempDir(), "itembank.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `itembank_operations_total{operation="reload",outcome="success"} 1`)
	assert.Contains(t, string(data), "# TYPE itembank_operation_duration_seconds gauge")
}

func TestWriteTextfile_BadPath(t *testing.T) {
	t.Parallel()
	err := New().WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.Error(t, err)
}
