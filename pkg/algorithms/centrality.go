package algorithms

import (
	"container/list"
	"sort"

	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// Scores maps each vertex of a snapshot graph to a centrality value
type Scores map[snapshot.VertexName]float64

// RankedVertex represents a vertex with its score
type RankedVertex struct {
	Vertex snapshot.VertexName
	Score  float64
}

// Top returns the n highest scoring vertices, ties broken by name
func (s Scores) Top(n int) []RankedVertex {
	if n <= 0 {
		return nil
	}

	ranked := make([]RankedVertex, 0, len(s))
	for v, score := range s {
		ranked = append(ranked, RankedVertex{Vertex: v, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Vertex < ranked[j].Vertex
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// DegreeCentrality computes degree centrality for all vertices: the number
// of distinct neighbors divided by n-1.
func DegreeCentrality(g *snapshot.Graph) Scores {
	adj := newAdjacency(g)
	degree := make(Scores, adj.len())

	for i, v := range adj.names {
		if adj.len() <= 1 {
			degree[v] = 0.0
			continue
		}
		neighbors := len(adj.neighbors[i])
		if _, loop := adj.neighbors[i][i]; loop {
			neighbors--
		}
		degree[v] = float64(neighbors) / float64(adj.len()-1)
	}

	return degree
}

// ClosenessCentrality computes closeness centrality for all vertices: the
// number of reachable vertices over the sum of their BFS distances.
func ClosenessCentrality(g *snapshot.Graph) Scores {
	adj := newAdjacency(g)
	closeness := make(Scores, adj.len())

	for source := 0; source < adj.len(); source++ {
		distance := make([]int, adj.len())
		for i := range distance {
			distance[i] = -1
		}
		distance[source] = 0

		queue := list.New()
		queue.PushBack(source)

		for queue.Len() > 0 {
			v, ok := queue.Remove(queue.Front()).(int)
			if !ok {
				continue
			}
			for w := range adj.neighbors[v] {
				if distance[w] < 0 {
					distance[w] = distance[v] + 1
					queue.PushBack(w)
				}
			}
		}

		totalDistance := 0
		reachable := 0
		for _, dist := range distance {
			if dist > 0 {
				totalDistance += dist
				reachable++
			}
		}

		if totalDistance > 0 {
			closeness[adj.names[source]] = float64(reachable) / float64(totalDistance)
		} else {
			closeness[adj.names[source]] = 0.0
		}
	}

	return closeness
}
