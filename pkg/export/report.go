// Package export writes the outcome of an evolution run to a sink: a
// directory of delimited files or a PostgreSQL database.
package export

import (
	"context"
	"time"

	"github.com/dd0wney/cluso-evolution/pkg/evolution"
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
	"github.com/dd0wney/cluso-evolution/pkg/timeline"
)

// Report is everything a sink persists for one run
type Report struct {
	RunID      string
	Store      *snapshot.Store
	Index      *snapshot.VertexIndex
	Result     *evolution.Result
	Timelines  []timeline.NodeTimeline
	Sizes      []timeline.IdentitySeries
	Stats      []timeline.NodeStats
	Counts     []timeline.CommunityCount
	Centrality []CentralityRow
}

// CentralityRow holds the centrality scores of one vertex in one snapshot
type CentralityRow struct {
	Date      time.Time
	Vertex    snapshot.VertexName
	Degree    float64
	Closeness float64
	PageRank  float64
}

// Sink persists reports
type Sink interface {
	Write(ctx context.Context, r *Report) error
	Close() error
}
