package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initMatchingMetrics() {
	r.MatchedPairsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "evolution_matched_pairs_total",
			Help: "Total number of community pairs produced by the optimal matcher",
		},
	)

	r.DisjointPairsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "evolution_disjoint_pairs_total",
			Help: "Assigned pairs whose communities share no member",
		},
	)

	r.MatchDistance = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evolution_match_distance",
			Help:    "Jaccard distance of matched community pairs",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	r.PlainIdentitiesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "evolution_plain_identities_total",
			Help: "Number of plain identities issued",
		},
	)

	r.StableIdentitiesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "evolution_stable_identities_total",
			Help: "Number of stable identities issued",
		},
	)

	r.StableBreaksTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "evolution_stable_breaks_total",
			Help: "Matched pairs whose distance reached the stability threshold",
		},
	)
}
