package export

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dd0wney/cluso-evolution/pkg/evolution"
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// Column is one typed column of an exported table
type Column struct {
	Name    string
	SQLType string
}

// Table is one exported relation. File is the base file name used by the
// file sink; its extension picks the delimiter.
type Table struct {
	Name    string
	File    string
	Columns []Column
	Rows    [][]any
}

// Header returns the column names
func (t Table) Header() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Tables flattens a report into its exported relations, in a fixed order.
// It fails when a matching refers to a date missing from the store.
func Tables(r *Report) ([]Table, error) {
	matchings, err := matchingsTable(r)
	if err != nil {
		return nil, err
	}

	tables := []Table{
		partitionsTable(r),
		communitiesTable(r),
		membersTable(r),
		matchings,
		verticesTable(r),
		nodeTimelinesTable(r),
		identitySizesTable(r),
		nodeStatsTable(r),
	}
	if len(r.Centrality) > 0 {
		tables = append(tables, centralityTable(r))
	}
	return tables, nil
}

func partitionsTable(r *Report) Table {
	t := Table{
		Name: "partitions",
		File: "partitions.tsv",
		Columns: []Column{
			{"date", "DATE"},
			{"n_partitions", "INTEGER"},
		},
	}
	for _, c := range r.Counts {
		t.Rows = append(t.Rows, []any{c.Date, c.Communities})
	}
	return t
}

func communitiesTable(r *Report) Table {
	t := Table{
		Name: "communities",
		File: "communities.tsv",
		Columns: []Column{
			{"date", "DATE"},
			{"community", "INTEGER"},
			{"plain_id", "INTEGER"},
			{"stable_id", "INTEGER"},
			{"size", "INTEGER"},
		},
	}
	for _, snap := range r.Store.Snapshots() {
		for _, c := range snap.Communities() {
			plain, _ := r.Result.PlainID(snap.Date(), c.Index())
			stable, _ := r.Result.StableID(snap.Date(), c.Index())
			t.Rows = append(t.Rows, []any{snap.Date(), c.Index(), plain, stable, c.Size()})
		}
	}
	return t
}

func membersTable(r *Report) Table {
	t := Table{
		Name: "members",
		File: "members.tsv",
		Columns: []Column{
			{"date", "DATE"},
			{"community", "INTEGER"},
			{"vertex", "TEXT"},
		},
	}
	for _, snap := range r.Store.Snapshots() {
		for _, c := range snap.Communities() {
			for _, v := range c.Members().Sorted() {
				t.Rows = append(t.Rows, []any{snap.Date(), c.Index(), v})
			}
		}
	}
	return t
}

// matchingsTable lists every assigned pair, walking the earlier snapshot's
// communities in index order. continues is false for pairs that share no
// member and so pass no identity on.
func matchingsTable(r *Report) (Table, error) {
	t := Table{
		Name: "matchings",
		File: "matchings.tsv",
		Columns: []Column{
			{"from_date", "DATE"},
			{"to_date", "DATE"},
			{"prev_community", "INTEGER"},
			{"next_community", "INTEGER"},
			{"prev_size", "INTEGER"},
			{"next_size", "INTEGER"},
			{"distance", "DOUBLE PRECISION"},
			{"continues", "BOOLEAN"},
		},
	}
	for _, m := range r.Result.Matchings {
		prev, err := r.Store.Get(m.From)
		if err != nil {
			return Table{}, fmt.Errorf("matching %s: %w", m.Key(), err)
		}
		next, err := r.Store.Get(m.To)
		if err != nil {
			return Table{}, fmt.Errorf("matching %s: %w", m.Key(), err)
		}

		for _, c := range prev.Communities() {
			p, ok := m.Successor(c.Index())
			if !ok {
				continue
			}
			succ, _ := next.Community(p.Col)
			t.Rows = append(t.Rows, []any{
				m.From, m.To, p.Row, p.Col, c.Size(), succ.Size(),
				p.Cost, p.Cost < evolution.DisjointDistance,
			})
		}
	}
	return t, nil
}

func verticesTable(r *Report) Table {
	t := Table{
		Name: "vertices",
		File: "vertices.tsv",
		Columns: []Column{
			{"vertex_id", "INTEGER"},
			{"vertex", "TEXT"},
		},
	}
	for id, v := range r.Index.Names() {
		t.Rows = append(t.Rows, []any{id, v})
	}
	return t
}

func nodeTimelinesTable(r *Report) Table {
	t := Table{
		Name: "node_timelines",
		File: "node_timelines.tsv",
		Columns: []Column{
			{"vertex", "TEXT"},
			{"date", "DATE"},
			{"cluster_id", "INTEGER"},
		},
	}
	dates := r.Result.Dates
	for _, tl := range r.Timelines {
		for i, id := range tl.PlainIDs {
			t.Rows = append(t.Rows, []any{tl.Vertex, dates[i], id})
		}
	}
	return t
}

func identitySizesTable(r *Report) Table {
	t := Table{
		Name: "identity_sizes",
		File: "identity_sizes.tsv",
		Columns: []Column{
			{"plain_id", "INTEGER"},
			{"date", "DATE"},
			{"size", "INTEGER"},
		},
	}
	dates := r.Result.Dates
	for _, s := range r.Sizes {
		for i, size := range s.Sizes {
			t.Rows = append(t.Rows, []any{s.PlainID, dates[i], size})
		}
	}
	return t
}

func nodeStatsTable(r *Report) Table {
	t := Table{
		Name: "node_stats",
		File: "node_stats.csv",
		Columns: []Column{
			{"page", "TEXT"},
			{"different_clusters", "INTEGER"},
			{"changes_of_cluster", "INTEGER"},
			{"stable_changes_of_cluster", "INTEGER"},
		},
	}
	for _, s := range r.Stats {
		t.Rows = append(t.Rows, []any{s.Vertex, s.DifferentClusters, s.ChangesOfCluster, s.StableChangesOfCluster})
	}
	return t
}

func centralityTable(r *Report) Table {
	t := Table{
		Name: "centrality",
		File: "centrality.tsv",
		Columns: []Column{
			{"date", "DATE"},
			{"vertex", "TEXT"},
			{"degree", "DOUBLE PRECISION"},
			{"closeness", "DOUBLE PRECISION"},
			{"pagerank", "DOUBLE PRECISION"},
		},
	}

	rows := append([]CentralityRow(nil), r.Centrality...)
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Vertex < rows[j].Vertex
	})
	for _, c := range rows {
		t.Rows = append(t.Rows, []any{c.Date, c.Vertex, c.Degree, c.Closeness, c.PageRank})
	}
	return t
}

// formatValue renders a cell for delimited output
func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(snapshot.DateLayout)
	default:
		return ""
	}
}
