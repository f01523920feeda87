package metrics

import (
	"fmt"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordRun records the outcome of a whole run
func (r *Registry) RecordRun(status string) {
	r.RunsTotal.WithLabelValues(status).Inc()
}

// RecordPhase records the duration of one pipeline phase
func (r *Registry) RecordPhase(phase, status string, duration time.Duration) {
	r.PhaseDuration.WithLabelValues(phase, status).Observe(duration.Seconds())
}

// RecordSnapshot records the shape of one partitioned snapshot
func (r *Registry) RecordSnapshot(vertices int, communitySizes []int) {
	r.VerticesPerSnapshot.Observe(float64(vertices))
	r.CommunitiesPerSnapshot.Observe(float64(len(communitySizes)))
	for _, size := range communitySizes {
		r.CommunitySize.Observe(float64(size))
	}
}

// RecordSnapshotCounts sets the number of snapshots and how many of them
// came from empty graphs
func (r *Registry) RecordSnapshotCounts(total, empty int) {
	r.SnapshotsTotal.Set(float64(total))
	r.SnapshotsEmptyTotal.Set(float64(empty))
}

// RecordMatching records the distances of the pairs matched between two
// consecutive snapshots
func (r *Registry) RecordMatching(distances []float64) {
	r.MatchedPairsTotal.Add(float64(len(distances)))
	for _, d := range distances {
		r.MatchDistance.Observe(d)
	}
}

// RecordIdentities sets the identity totals of a finished propagation
func (r *Registry) RecordIdentities(plain, stable, stableBreaks, disjointPairs int) {
	r.PlainIdentitiesTotal.Set(float64(plain))
	r.StableIdentitiesTotal.Set(float64(stable))
	r.StableBreaksTotal.Set(float64(stableBreaks))
	r.DisjointPairsTotal.Add(float64(disjointPairs))
}

// MarkRunStart stamps the run start time
func (r *Registry) MarkRunStart(t time.Time) {
	r.RunStartTimestamp.Set(float64(t.Unix()))
}

// UpdateSystemMetrics samples goroutine and memory statistics
func (r *Registry) UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}

// WriteToTextfile writes every metric in the Prometheus text format, for
// pickup by a node_exporter textfile collector.
func (r *Registry) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
