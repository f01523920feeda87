package snapshot

import (
	"sort"
	"time"
)

// VertexName identifies a vertex across all snapshots
type VertexName = string

// Edge is an undirected edge between two named vertices
type Edge struct {
	From VertexName
	To   VertexName
}

// Graph is one parsed input snapshot before community detection.
type Graph struct {
	Date     time.Time
	Vertices []VertexName // sorted, unique
	Edges    []Edge
}

// NewGraph builds a graph whose vertex set is every endpoint of edges,
// sorted by name.
func NewGraph(date time.Time, edges []Edge) *Graph {
	seen := make(map[VertexName]struct{}, len(edges))
	for _, e := range edges {
		seen[e.From] = struct{}{}
		seen[e.To] = struct{}{}
	}

	vertices := make([]VertexName, 0, len(seen))
	for v := range seen {
		vertices = append(vertices, v)
	}
	sort.Strings(vertices)

	return &Graph{Date: date, Vertices: vertices, Edges: edges}
}

// Empty reports whether the graph has no vertices
func (g *Graph) Empty() bool {
	return len(g.Vertices) == 0
}
