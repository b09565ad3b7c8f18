// Package metrics records installer run counters in a Prometheus registry
// and exports them for the node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jward/itembank/internal/importer"
)

const namespace = "itembank"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder holds the installer's metrics in a private registry.
type Recorder struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	duration   *prometheus.GaugeVec
	created    *prometheus.GaugeVec
	swept      *prometheus.GaugeVec
	lastRun    *prometheus.GaugeVec
}

// New returns a Recorder with every collector registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Installer operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Wall time of the most recent run of each operation.",
		}, []string{"operation"}),
		created: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "import_created",
			Help:      "Resources created or reused by the most recent import, by kind.",
		}, []string{"kind"}),
		swept: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "teardown_deleted",
			Help:      "Resources deleted by the most recent teardown, by kind.",
		}, []string{"kind"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the most recent run of each operation.",
		}, []string{"operation"}),
	}
	r.registry.MustRegister(r.operations, r.duration, r.created, r.swept, r.lastRun)
	return r
}

// Registry returns the registry holding the installer's collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveOperation records one run of operation.
func (r *Recorder) ObserveOperation(operation string, started time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	r.operations.WithLabelValues(operation, outcome).Inc()
	r.duration.WithLabelValues(operation).Set(time.Since(started).Seconds())
	r.lastRun.WithLabelValues(operation).Set(float64(time.Now().Unix()))
}

// ObserveImport records what an import created.
func (r *Recorder) ObserveImport(stats importer.Stats) {
	r.created.WithLabelValues("tree").Set(float64(stats.Trees))
	r.created.WithLabelValues("tree_node").Set(float64(stats.TreeNodes))
	r.created.WithLabelValues("list").Set(float64(stats.Lists))
	r.created.WithLabelValues("list_element").Set(float64(stats.ListElements))
	r.created.WithLabelValues("subclass").Set(float64(stats.Subclasses))
	r.created.WithLabelValues("reused_subclass").Set(float64(stats.ReusedSubclasses))
	r.created.WithLabelValues("property").Set(float64(stats.Properties))
}

// ObserveTeardown records what a teardown removed.
func (r *Recorder) ObserveTeardown(sw importer.Sweep) {
	r.swept.WithLabelValues("instance").Set(float64(sw.Instances))
	r.swept.WithLabelValues("class").Set(float64(sw.Classes))
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: write textfile: %w", err)
	}
	return nil
}
