package algorithms

import (
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// adjacency is an index-based undirected view of a snapshot graph.
// Parallel edges add weight; self-loops are kept on the diagonal.
type adjacency struct {
	names     []snapshot.VertexName
	neighbors []map[int]float64
	degree    []float64 // weighted degree, a self-loop counts twice
	total     float64   // sum of edge weights (m)
}

func newAdjacency(g *snapshot.Graph) *adjacency {
	index := make(map[snapshot.VertexName]int, len(g.Vertices))
	for i, v := range g.Vertices {
		index[v] = i
	}

	adj := &adjacency{
		names:     g.Vertices,
		neighbors: make([]map[int]float64, len(g.Vertices)),
		degree:    make([]float64, len(g.Vertices)),
	}
	for i := range adj.neighbors {
		adj.neighbors[i] = make(map[int]float64)
	}

	for _, e := range g.Edges {
		a, okA := index[e.From]
		b, okB := index[e.To]
		if !okA || !okB {
			continue
		}
		adj.neighbors[a][b] += 1.0
		if a != b {
			adj.neighbors[b][a] += 1.0
		}
		adj.degree[a] += 1.0
		adj.degree[b] += 1.0
		adj.total += 1.0
	}

	return adj
}

func (a *adjacency) len() int { return len(a.names) }

// sortedNeighbors returns the neighbors of i in ascending index order so
// that iteration order never depends on map layout.
func (a *adjacency) sortedNeighbors(i int) []int {
	out := make([]int, 0, len(a.neighbors[i]))
	for j := range a.neighbors[i] {
		out = append(out, j)
	}
	sortInts(out)
	return out
}
