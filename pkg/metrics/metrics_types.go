package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline phases recorded by RecordPhase
const (
	PhaseLoad      = "load"
	PhasePartition = "partition"
	PhaseMatch     = "match"
	PhasePropagate = "propagate"
	PhaseAggregate = "aggregate"
	PhaseExport    = "export"
)

// Registry holds all metrics for one evolution run
type Registry struct {
	// Pipeline Metrics
	RunsTotal              *prometheus.CounterVec
	PhaseDuration          *prometheus.HistogramVec
	SnapshotsTotal         prometheus.Gauge
	SnapshotsEmptyTotal    prometheus.Gauge
	VerticesPerSnapshot    prometheus.Histogram
	CommunitiesPerSnapshot prometheus.Histogram
	CommunitySize          prometheus.Histogram

	// Matching Metrics
	MatchedPairsTotal  prometheus.Counter
	DisjointPairsTotal prometheus.Counter
	MatchDistance      prometheus.Histogram

	// Identity Metrics
	PlainIdentitiesTotal  prometheus.Gauge
	StableIdentitiesTotal prometheus.Gauge
	StableBreaksTotal     prometheus.Gauge

	// System Metrics
	RunStartTimestamp prometheus.Gauge
	GoRoutines        prometheus.Gauge
	MemoryAllocBytes  prometheus.Gauge
	MemorySysBytes    prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initPipelineMetrics()
	r.initMatchingMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
