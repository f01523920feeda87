package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-evolution/pkg/similarity"
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// Matching is the optimal correspondence between the communities of the
// snapshot at From and the one at To. Pair.Row indexes From's communities,
// Pair.Col indexes To's, Pair.Cost is their Jaccard distance.
type Matching struct {
	From  time.Time
	To    time.Time
	Pairs []Pair

	forward map[int]Pair
	inverse map[int]Pair
}

// NewMatching wraps solved pairs for the given dates
func NewMatching(from, to time.Time, pairs []Pair) *Matching {
	fwd := make(map[int]Pair, len(pairs))
	inv := make(map[int]Pair, len(pairs))
	for _, p := range pairs {
		fwd[p.Row] = p
		inv[p.Col] = p
	}
	return &Matching{From: from, To: to, Pairs: pairs, forward: fwd, inverse: inv}
}

// Predecessor returns the pair whose column is the later snapshot's
// community col, if any.
func (m *Matching) Predecessor(col int) (Pair, bool) {
	p, ok := m.inverse[col]
	return p, ok
}

// Successor returns the pair whose row is the earlier snapshot's community
// row, if any.
func (m *Matching) Successor(row int) (Pair, bool) {
	p, ok := m.forward[row]
	return p, ok
}

// Connects reports whether the matching links the two given dates
func (m *Matching) Connects(from, to time.Time) bool {
	return m.From.Equal(from) && m.To.Equal(to)
}

// Key renders the date pair as "from_to"
func (m *Matching) Key() string {
	return m.From.Format(snapshot.DateLayout) + "_" + m.To.Format(snapshot.DateLayout)
}

// Options configures Match
type Options struct {
	Workers int
}

// Match builds the distance matrix between two consecutive snapshots and
// solves the assignment on it. It also returns the matrix for export.
func Match(ctx context.Context, prev, next *snapshot.Snapshot, opts Options) (*Matching, *similarity.Matrix, error) {
	m, err := similarity.BuildMatrix(ctx, prev.Communities(), next.Communities(),
		similarity.BuildOptions{Workers: opts.Workers})
	if err != nil {
		return nil, nil, fmt.Errorf("similarity %s_%s: %w", prev.Label(), next.Label(), err)
	}

	pairs, err := Solve(m)
	if err != nil {
		return nil, nil, fmt.Errorf("assignment %s_%s: %w", prev.Label(), next.Label(), err)
	}

	return NewMatching(prev.Date(), next.Date(), pairs), m, nil
}
