// Package timeline derives per-node and per-identity time series from a
// finished identity propagation. Every view here is a pure function of the
// snapshot store and the propagation result.
package timeline

import (
	"time"

	"github.com/dd0wney/cluso-evolution/pkg/evolution"
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// Absent marks a date on which a vertex is not part of the snapshot
const Absent = -1

// NodeTimeline is the plain id of the community holding Vertex on each
// processed date, or Absent.
type NodeTimeline struct {
	Vertex   snapshot.VertexName
	VertexID int
	PlainIDs []int
}

// IdentitySeries is the member count of one plain identity on each
// processed date, 0 where the identity does not occur.
type IdentitySeries struct {
	PlainID int
	Sizes   []int
}

// CommunityCount is one row of the (date, community_count) table
type CommunityCount struct {
	Date        time.Time
	Communities int
}

// NodeTimelines builds one timeline per indexed vertex, in vertex id order.
// A vertex that is in a snapshot's vertex set but in none of its
// communities is reported Absent for that date.
func NodeTimelines(store *snapshot.Store, result *evolution.Result, index *snapshot.VertexIndex) []NodeTimeline {
	snaps := store.Snapshots()
	out := make([]NodeTimeline, 0, index.Len())

	for id, v := range index.Names() {
		ids := make([]int, len(snaps))
		for t, snap := range snaps {
			ids[t] = Absent
			if !snap.HasVertex(v) {
				continue
			}
			local, ok := snap.CommunityOf(v)
			if !ok {
				continue
			}
			if plain, ok := result.PlainID(snap.Date(), local); ok {
				ids[t] = plain
			}
		}
		out = append(out, NodeTimeline{Vertex: v, VertexID: id, PlainIDs: ids})
	}

	return out
}

// SizeSeries builds one series per minted plain id, in id order
func SizeSeries(store *snapshot.Store, result *evolution.Result) []IdentitySeries {
	dates := store.Dates()
	out := make([]IdentitySeries, 0, result.PlainCount)

	for id := 0; id < result.PlainCount; id++ {
		sizes := make([]int, len(dates))
		for t, d := range dates {
			sizes[t] = result.Size(id, d)
		}
		out = append(out, IdentitySeries{PlainID: id, Sizes: sizes})
	}

	return out
}

// CommunityCounts lists the number of communities per snapshot in date
// order. Snapshots of empty graphs report zero.
func CommunityCounts(store *snapshot.Store) []CommunityCount {
	out := make([]CommunityCount, 0, store.Len())
	for _, snap := range store.Snapshots() {
		out = append(out, CommunityCount{Date: snap.Date(), Communities: len(snap.Communities())})
	}
	return out
}
