package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-evolution/pkg/algorithms"
	"github.com/dd0wney/cluso-evolution/pkg/config"
	"github.com/dd0wney/cluso-evolution/pkg/edgelist"
	"github.com/dd0wney/cluso-evolution/pkg/evolution"
	"github.com/dd0wney/cluso-evolution/pkg/export"
	"github.com/dd0wney/cluso-evolution/pkg/logging"
	"github.com/dd0wney/cluso-evolution/pkg/metrics"
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
	"github.com/dd0wney/cluso-evolution/pkg/timeline"
)

func month(m int) time.Time {
	return time.Date(2020, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
}

func graph(date time.Time, pairs ...string) *snapshot.Graph {
	var edges []snapshot.Edge
	for i := 0; i+1 < len(pairs); i += 2 {
		edges = append(edges, snapshot.Edge{From: pairs[i], To: pairs[i+1]})
	}
	return snapshot.NewGraph(date, edges)
}

// threeMonths yields the components {a,b},{c,d} -> {a,b,e},{c} -> {f,g}
func threeMonths() *edgelist.Set {
	return &edgelist.Set{Graphs: []*snapshot.Graph{
		graph(month(1), "a", "b", "c", "d"),
		graph(month(2), "a", "b", "b", "e", "c", "c"),
		graph(month(3), "f", "g"),
	}}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Algorithm = algorithms.AlgorithmComponents
	cfg.Workers = 2
	return cfg
}

func TestRun_ThreeMonths(t *testing.T) {
	reg := metrics.NewRegistry()
	out, err := Run(context.Background(), testConfig(), threeMonths(), nil, logging.NewNopLogger(), reg)
	require.NoError(t, err)

	assert.NotEmpty(t, out.RunID)
	require.Equal(t, 3, out.Store.Len())

	r := out.Result
	plain, _ := r.PlainID(month(2), 1)
	stable, _ := r.StableID(month(2), 1)
	assert.Equal(t, 1, plain)
	assert.Equal(t, 2, stable)

	plain, _ = r.PlainID(month(3), 0)
	stable, _ = r.StableID(month(3), 0)
	assert.Equal(t, 2, plain)
	assert.Equal(t, 3, stable)

	require.Len(t, out.Timelines, 7)
	assert.Equal(t, []int{0, 0, timeline.Absent}, out.Timelines[0].PlainIDs)
	assert.Equal(t, []int{timeline.Absent, timeline.Absent, 2}, out.Timelines[5].PlainIDs)

	require.Len(t, out.Sizes, 3)
	assert.Equal(t, []int{2, 3, 0}, out.Sizes[0].Sizes)

	require.Len(t, out.Counts, 3)
	assert.Equal(t, 1, out.Counts[2].Communities)
	assert.Empty(t, out.Centrality)

	var m dto.Metric
	counter, err := reg.RunsTotal.GetMetricWithLabelValues("success")
	require.NoError(t, err)
	require.NoError(t, counter.Write(&m))
	assert.Equal(t, 1.0, m.Counter.GetValue())

	require.NoError(t, reg.MatchedPairsTotal.Write(&m))
	assert.Equal(t, 3.0, m.Counter.GetValue())
}

func TestRun_Deterministic(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 4

	first, err := Run(context.Background(), cfg, threeMonths(), nil, nil, nil)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := Run(context.Background(), cfg, threeMonths(), nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, first.Result.Plain, again.Result.Plain)
		assert.Equal(t, first.Result.Stable, again.Result.Stable)
	}
}

func TestRun_SkippedMonthIsGap(t *testing.T) {
	set := &edgelist.Set{Graphs: []*snapshot.Graph{
		graph(month(1), "a", "b"),
		graph(month(3), "a", "b"),
	}}

	_, err := Run(context.Background(), testConfig(), set, nil, nil, nil)

	var gap *snapshot.SequenceGapError
	require.True(t, errors.As(err, &gap), "got %v", err)
	assert.Equal(t, month(1), gap.Prev)
	assert.Equal(t, month(3), gap.Next)
}

func TestRun_EmptyMonth(t *testing.T) {
	reg := metrics.NewRegistry()
	set := &edgelist.Set{
		Graphs: []*snapshot.Graph{
			graph(month(1), "a", "b"),
			graph(month(2)),
			graph(month(3), "a", "b"),
		},
		Empty: []time.Time{month(2)},
	}

	out, err := Run(context.Background(), testConfig(), set, nil, nil, reg)
	require.NoError(t, err)

	require.Equal(t, 3, out.Store.Len())
	feb, err := out.Store.Get(month(2))
	require.NoError(t, err)
	assert.True(t, feb.Degenerate())

	// no predecessor survives the empty month
	plain, ok := out.Result.PlainID(month(3), 0)
	require.True(t, ok)
	assert.Equal(t, 1, plain)
	assert.Equal(t, 2, out.Result.PlainCount)
	assert.Equal(t, 2, out.Result.StableCount)
	require.Len(t, out.Result.Matchings, 2)
	assert.Empty(t, out.Result.Matchings[0].Pairs)
	assert.Empty(t, out.Result.Matchings[1].Pairs)

	require.Len(t, out.Timelines, 2)
	assert.Equal(t, []int{0, timeline.Absent, 1}, out.Timelines[0].PlainIDs)

	assert.Equal(t, []timeline.CommunityCount{
		{Date: month(1), Communities: 1},
		{Date: month(2), Communities: 0},
		{Date: month(3), Communities: 1},
	}, out.Counts)

	var m dto.Metric
	require.NoError(t, reg.SnapshotsEmptyTotal.Write(&m))
	assert.Equal(t, 1.0, m.Gauge.GetValue())
}

func TestRun_AllEmpty(t *testing.T) {
	set := &edgelist.Set{
		Graphs: []*snapshot.Graph{graph(month(1)), graph(month(2))},
		Empty:  []time.Time{month(1), month(2)},
	}

	out, err := Run(context.Background(), testConfig(), set, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Result.PlainCount)
	assert.Equal(t, 0, out.Index.Len())
	require.Len(t, out.Counts, 2)
}

func TestRun_NoSnapshots(t *testing.T) {
	_, err := Run(context.Background(), testConfig(), &edgelist.Set{}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoSnapshots)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.StabilityThreshold = 2

	_, err := New(cfg, nil, nil, nil)

	var cfgErr *evolution.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "stability_threshold", cfgErr.Field)
}

func TestRun_Centrality(t *testing.T) {
	cfg := testConfig()
	cfg.Centrality = true

	out, err := Run(context.Background(), cfg, threeMonths(), nil, nil, nil)
	require.NoError(t, err)

	// one row per vertex per snapshot
	require.Len(t, out.Centrality, 4+4+2)
	for _, row := range out.Centrality {
		if row.Date.Equal(month(1)) && row.Vertex == "a" {
			assert.Equal(t, 1.0, row.Closeness, "a-b is a component of its own")
		}
	}
}

func TestPipeline_Write(t *testing.T) {
	p, err := New(testConfig(), nil, nil, nil)
	require.NoError(t, err)

	out, err := p.Run(context.Background(), threeMonths())
	require.NoError(t, err)

	dir := t.TempDir()
	sink, err := export.NewFileSink(dir, false, nil)
	require.NoError(t, err)
	require.NoError(t, p.Write(context.Background(), out, sink))

	for _, name := range []string{"partitions.tsv", "communities.tsv", "node_timelines.tsv", "node_stats.csv", export.EvolutionFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}
