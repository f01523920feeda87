package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-evolution/pkg/evolution"
	"github.com/dd0wney/cluso-evolution/pkg/logging"
	"github.com/dd0wney/cluso-evolution/pkg/matching"
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
	"github.com/dd0wney/cluso-evolution/pkg/timeline"
)

func month(m int) time.Time {
	return time.Date(2020, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
}

// threeMonthReport builds the report for
// {a,b},{c,d} -> {a,b,e},{c} -> {f,g}
func threeMonthReport(t *testing.T) *Report {
	t.Helper()

	partitions := map[int][][]string{
		1: {{"a", "b"}, {"c", "d"}},
		2: {{"a", "b", "e"}, {"c"}},
		3: {{"f", "g"}},
	}

	store := snapshot.NewStore()
	for m := 1; m <= 3; m++ {
		var vertices []string
		for _, c := range partitions[m] {
			vertices = append(vertices, c...)
		}
		s, err := snapshot.NewSnapshot(month(m), vertices, partitions[m])
		require.NoError(t, err)
		require.NoError(t, store.Add(s))
	}

	var matchings []*matching.Matching
	for _, p := range store.Pairs() {
		m, _, err := matching.Match(context.Background(), p.Prev, p.Next, matching.Options{})
		require.NoError(t, err)
		matchings = append(matchings, m)
	}

	result, err := evolution.Propagate(store, matchings, evolution.DefaultConfig(), logging.NewNopLogger())
	require.NoError(t, err)

	index := snapshot.BuildVertexIndex(store)
	timelines := timeline.NodeTimelines(store, result, index)

	return &Report{
		RunID:     "test-run",
		Store:     store,
		Index:     index,
		Result:    result,
		Timelines: timelines,
		Sizes:     timeline.SizeSeries(store, result),
		Stats:     timeline.ComputeAllNodeStats(timelines, timeline.DefaultStableWindow),
		Counts:    timeline.CommunityCounts(store),
		Centrality: []CentralityRow{
			{Date: month(1), Vertex: "b", Degree: 1, Closeness: 1, PageRank: 0.5},
			{Date: month(1), Vertex: "a", Degree: 1, Closeness: 1, PageRank: 0.5},
		},
	}
}

func findTable(t *testing.T, tables []Table, name string) Table {
	t.Helper()
	for _, tb := range tables {
		if tb.Name == name {
			return tb
		}
	}
	t.Fatalf("table %s not found", name)
	return Table{}
}

func TestTables(t *testing.T) {
	tables, err := Tables(threeMonthReport(t))
	require.NoError(t, err)

	partitions := findTable(t, tables, "partitions")
	assert.Equal(t, []string{"date", "n_partitions"}, partitions.Header())
	require.Len(t, partitions.Rows, 3)
	assert.Equal(t, []any{month(3), 1}, partitions.Rows[2])

	communities := findTable(t, tables, "communities")
	require.Len(t, communities.Rows, 5)
	// {f,g}: plain 2, stable 3, size 2
	assert.Equal(t, []any{month(3), 0, 2, 3, 2}, communities.Rows[4])

	members := findTable(t, tables, "members")
	assert.Len(t, members.Rows, 4+4+2)

	matchings := findTable(t, tables, "matchings")
	require.Len(t, matchings.Rows, 2+1)
	// {c,d} -> {c}
	assert.Equal(t, []any{month(1), month(2), 1, 1, 2, 1, 0.5, true}, matchings.Rows[1])
	// {f,g} shares nothing with its assigned predecessor
	last := matchings.Rows[2]
	assert.Equal(t, 1.0, last[6])
	assert.Equal(t, false, last[7])
	assert.Equal(t, 2, last[5])

	timelines := findTable(t, tables, "node_timelines")
	assert.Len(t, timelines.Rows, 7*3)
	assert.Equal(t, []any{"f", month(3), 2}, timelines.Rows[5*3+2])

	centrality := findTable(t, tables, "centrality")
	assert.Equal(t, []string{"date", "vertex", "degree", "closeness", "pagerank"}, centrality.Header())
	require.Len(t, centrality.Rows, 2)
	assert.Equal(t, "a", centrality.Rows[0][1], "rows sorted by date then vertex")
}

func TestTables_NoCentrality(t *testing.T) {
	r := threeMonthReport(t)
	r.Centrality = nil

	tables, err := Tables(r)
	require.NoError(t, err)
	for _, tb := range tables {
		assert.NotEqual(t, "centrality", tb.Name)
	}
}

func TestTables_MatchingOutsideStore(t *testing.T) {
	r := threeMonthReport(t)
	r.Result.Matchings = append(r.Result.Matchings, matching.NewMatching(month(3), month(4), nil))

	_, err := Tables(r)
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
}

func TestFileSink_Write(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir, false, nil)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Write(context.Background(), threeMonthReport(t)))

	rows, err := ReadTable(filepath.Join(dir, "partitions.tsv"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"date", "n_partitions"},
		{"2020-01-01", "2"},
		{"2020-02-01", "2"},
		{"2020-03-01", "1"},
	}, rows)

	stats, err := ReadTable(filepath.Join(dir, "node_stats.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{"page", "different_clusters", "changes_of_cluster", "stable_changes_of_cluster"}, stats[0])
	assert.Equal(t, []string{"a", "1", "0", "0"}, stats[1])

	raw, err := os.ReadFile(filepath.Join(dir, "node_stats.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "page,different_clusters"))

	data, err := os.ReadFile(filepath.Join(dir, EvolutionFile))
	require.NoError(t, err)

	var doc evolutionDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "test-run", doc.RunID)
	assert.Equal(t, 2, doc.Plain["2020-03-01_0"])
	assert.Equal(t, 3, doc.Stable["2020-03-01_0"])
	assert.Equal(t, 1, doc.Matchings["2020-01-01_2020-02-01"]["1"])
	assert.InDelta(t, 0.5, doc.Distances["2020-01-01_2020-02-01"]["1"], 1e-9)
}

func TestFileSink_Compressed(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir, true, nil)
	require.NoError(t, err)

	require.NoError(t, sink.Write(context.Background(), threeMonthReport(t)))

	_, err = os.Stat(filepath.Join(dir, "partitions.tsv"))
	assert.True(t, os.IsNotExist(err), "uncompressed file must not be written")

	rows, err := ReadTable(filepath.Join(dir, "partitions.tsv"+CompressedExt))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"2020-03-01", "1"}, rows[3])

	f, err := os.Open(filepath.Join(dir, EvolutionFile+CompressedExt))
	require.NoError(t, err)
	defer f.Close()

	var doc evolutionDocument
	require.NoError(t, json.NewDecoder(snappy.NewReader(f)).Decode(&doc))
	assert.Equal(t, 3, doc.PlainCount)
	assert.Equal(t, 4, doc.StableCount)
}

func TestFileSink_CancelledContext(t *testing.T) {
	sink, err := NewFileSink(t.TempDir(), false, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sink.Write(ctx, threeMonthReport(t)), context.Canceled)
}

func TestCreateTableSQL(t *testing.T) {
	sql := createTableSQL(Table{
		Name: "partitions",
		Columns: []Column{
			{"date", "DATE"},
			{"n_partitions", "INTEGER"},
		},
	})

	assert.Equal(t, "CREATE TABLE IF NOT EXISTS \"evolution_partitions\" (\n"+
		"\trun_id TEXT NOT NULL,\n"+
		"\t\"date\" DATE,\n"+
		"\t\"n_partitions\" INTEGER\n)", sql)
}

func TestCopyColumns(t *testing.T) {
	cols := copyColumns(Table{Columns: []Column{{"vertex_id", "INTEGER"}, {"vertex", "TEXT"}}})
	assert.Equal(t, []string{"run_id", "vertex_id", "vertex"}, cols)
}

type recordingSink struct {
	writes int
	closed bool
}

func (s *recordingSink) Write(context.Context, *Report) error { s.writes++; return nil }
func (s *recordingSink) Close() error                         { s.closed = true; return nil }

func TestMultiSink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := MultiSink{a, b}

	require.NoError(t, m.Write(context.Background(), &Report{}))
	require.NoError(t, m.Close())

	assert.Equal(t, 1, a.writes)
	assert.Equal(t, 1, b.writes)
	assert.True(t, a.closed && b.closed)
}
