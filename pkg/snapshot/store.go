package snapshot

import (
	"fmt"
	"time"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
)

// Store holds the snapshots of one run in a date-ordered map
type Store struct {
	byDate *treemap.Map
}

// Pair is two chronologically consecutive snapshots
type Pair struct {
	Prev *Snapshot
	Next *Snapshot
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{byDate: treemap.NewWith(utils.TimeComparator)}
}

// Add inserts a snapshot. Its date must be after every stored date.
func (s *Store) Add(snap *Snapshot) error {
	if last, _ := s.byDate.Max(); last != nil {
		if !snap.Date().After(last.(time.Time)) {
			return fmt.Errorf("%w: %s after %s", ErrDateOrder,
				snap.Date().Format(DateLayout), last.(time.Time).Format(DateLayout))
		}
	}
	s.byDate.Put(snap.Date(), snap)
	return nil
}

// Len returns the number of snapshots
func (s *Store) Len() int { return s.byDate.Size() }

// Snapshots returns the snapshots in chronological order
func (s *Store) Snapshots() []*Snapshot {
	out := make([]*Snapshot, 0, s.byDate.Size())
	it := s.byDate.Iterator()
	for it.Next() {
		out = append(out, it.Value().(*Snapshot))
	}
	return out
}

// Get returns the snapshot for an exact date
func (s *Store) Get(date time.Time) (*Snapshot, error) {
	v, found := s.byDate.Get(date)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, date.Format(DateLayout))
	}
	return v.(*Snapshot), nil
}

// Before returns the latest snapshot strictly before date, if any
func (s *Store) Before(date time.Time) (*Snapshot, bool) {
	k, v := s.byDate.Floor(date.Add(-time.Nanosecond))
	if k == nil {
		return nil, false
	}
	return v.(*Snapshot), true
}

// Dates returns every snapshot date in chronological order
func (s *Store) Dates() []time.Time {
	dates := make([]time.Time, 0, s.byDate.Size())
	for _, k := range s.byDate.Keys() {
		dates = append(dates, k.(time.Time))
	}
	return dates
}

// Pairs returns each chronologically consecutive pair of snapshots
func (s *Store) Pairs() []Pair {
	var (
		pairs []Pair
		prev  *Snapshot
	)
	it := s.byDate.Iterator()
	for it.Next() {
		snap := it.Value().(*Snapshot)
		if prev != nil {
			pairs = append(pairs, Pair{Prev: prev, Next: snap})
		}
		prev = snap
	}
	return pairs
}

// CheckContiguous verifies every snapshot lies exactly one period after
// the one before it.
func (s *Store) CheckContiguous(period Period) error {
	for _, snap := range s.Snapshots() {
		prev, ok := s.Before(snap.Date())
		if !ok {
			continue
		}
		if !period.Consecutive(prev.Date(), snap.Date()) {
			return &SequenceGapError{Prev: prev.Date(), Next: snap.Date(), Period: period}
		}
	}
	return nil
}

// VertexIndex maps every vertex seen in any snapshot to a small stable id.
// Ids follow name order, so reruns on the same input agree.
type VertexIndex struct {
	ids   map[VertexName]int
	names []VertexName
}

// BuildVertexIndex indexes the union of all snapshot vertex sets
func BuildVertexIndex(s *Store) *VertexIndex {
	union := make(VertexSet)
	for _, snap := range s.Snapshots() {
		for v := range snap.Vertices() {
			union[v] = struct{}{}
		}
	}

	names := union.Sorted()
	ids := make(map[VertexName]int, len(names))
	for i, n := range names {
		ids[n] = i
	}
	return &VertexIndex{ids: ids, names: names}
}

// ID returns the id for a vertex name
func (x *VertexIndex) ID(v VertexName) (int, bool) {
	id, ok := x.ids[v]
	return id, ok
}

// Names returns all indexed vertices in id order
func (x *VertexIndex) Names() []VertexName { return x.names }

// Len returns the number of indexed vertices
func (x *VertexIndex) Len() int { return len(x.names) }
