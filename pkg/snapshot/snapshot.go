package snapshot

import (
	"fmt"
	"sort"
	"time"
)

// VertexSet is a set of vertex names. Sets handed out by Community and
// Snapshot are shared and must not be modified.
type VertexSet map[VertexName]struct{}

// NewVertexSet builds a set from names
func NewVertexSet(names ...VertexName) VertexSet {
	s := make(VertexSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Contains reports membership
func (s VertexSet) Contains(v VertexName) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in name order
func (s VertexSet) Sorted() []VertexName {
	out := make([]VertexName, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Community is one group of a snapshot's partition. Index is its position
// in the snapshot and is only unique within that snapshot.
type Community struct {
	index   int
	members VertexSet
}

// NewCommunity creates a community. Empty member lists are rejected.
func NewCommunity(index int, members []VertexName) (Community, error) {
	if len(members) == 0 {
		return Community{}, fmt.Errorf("community %d: %w", index, ErrEmptyCommunity)
	}
	return Community{index: index, members: NewVertexSet(members...)}, nil
}

// Index returns the community's position within its snapshot
func (c Community) Index() int { return c.index }

// Members returns the member set
func (c Community) Members() VertexSet { return c.members }

// Size returns the member count
func (c Community) Size() int { return len(c.members) }

// Snapshot is the graph state at one date after community detection.
// It is immutable once constructed.
type Snapshot struct {
	date        time.Time
	vertices    VertexSet
	communities []Community
	membership  map[VertexName]int
}

// NewSnapshot validates partition against vertices and builds a snapshot.
// Communities are indexed in partition order. Every community must be
// non-empty, disjoint from the others, and drawn from vertices.
func NewSnapshot(date time.Time, vertices []VertexName, partition [][]VertexName) (*Snapshot, error) {
	s := &Snapshot{
		date:        date,
		vertices:    NewVertexSet(vertices...),
		communities: make([]Community, 0, len(partition)),
		membership:  make(map[VertexName]int, len(vertices)),
	}

	for i, members := range partition {
		c, err := NewCommunity(i, members)
		if err != nil {
			return nil, &SnapshotError{Date: date, Cause: err}
		}
		for v := range c.members {
			if !s.vertices.Contains(v) {
				return nil, &SnapshotError{Date: date, Cause: fmt.Errorf("%w: %q", ErrUnknownVertex, v)}
			}
			if prev, dup := s.membership[v]; dup {
				return nil, &SnapshotError{
					Date:  date,
					Cause: fmt.Errorf("%w: %q in %d and %d", ErrOverlappingCommunities, v, prev, i),
				}
			}
			s.membership[v] = i
		}
		s.communities = append(s.communities, c)
	}

	return s, nil
}

// Date returns the snapshot date
func (s *Snapshot) Date() time.Time { return s.date }

// Label returns the date in DateLayout
func (s *Snapshot) Label() string { return s.date.Format(DateLayout) }

// Vertices returns the snapshot's vertex set
func (s *Snapshot) Vertices() VertexSet { return s.vertices }

// Communities returns the communities in index order
func (s *Snapshot) Communities() []Community { return s.communities }

// Community returns the community at index i
func (s *Snapshot) Community(i int) (Community, bool) {
	if i < 0 || i >= len(s.communities) {
		return Community{}, false
	}
	return s.communities[i], true
}

// HasVertex reports whether v appears in this snapshot's vertex set
func (s *Snapshot) HasVertex(v VertexName) bool {
	return s.vertices.Contains(v)
}

// CommunityOf returns the index of the community containing v. A vertex
// present in the graph but left out of every community reports false.
func (s *Snapshot) CommunityOf(v VertexName) (int, bool) {
	i, ok := s.membership[v]
	return i, ok
}

// Degenerate reports whether the snapshot contributes zero communities
func (s *Snapshot) Degenerate() bool {
	return len(s.communities) == 0
}
