package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPipelineMetrics() {
	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "evolution_runs_total",
			Help: "Total number of evolution runs",
		},
		[]string{"status"}, // success, error
	)

	r.PhaseDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evolution_phase_duration_seconds",
			Help:    "Duration of pipeline phases in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"phase", "status"},
	)

	r.SnapshotsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "evolution_snapshots_total",
			Help: "Number of snapshots in the run",
		},
	)

	r.SnapshotsEmptyTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "evolution_snapshots_empty_total",
			Help: "Number of snapshots built from graphs with no vertices",
		},
	)

	r.VerticesPerSnapshot = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evolution_snapshot_vertices",
			Help:    "Number of vertices per snapshot",
			Buckets: prometheus.ExponentialBuckets(1, 10, 8),
		},
	)

	r.CommunitiesPerSnapshot = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evolution_snapshot_communities",
			Help:    "Number of communities per snapshot",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	r.CommunitySize = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evolution_community_size",
			Help:    "Number of members per community",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
}
