package algorithms

import (
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// Modularity computes Newman modularity of partition on g. Vertices left out
// of the partition each count as their own community.
func Modularity(g *snapshot.Graph, partition [][]snapshot.VertexName) float64 {
	adj := newAdjacency(g)
	if adj.total == 0 {
		return 0.0
	}

	group := make([]int, adj.len())
	index := make(map[snapshot.VertexName]int, adj.len())
	for i, v := range adj.names {
		index[v] = i
		group[i] = -1 - i
	}
	for c, members := range partition {
		for _, v := range members {
			if i, ok := index[v]; ok {
				group[i] = c
			}
		}
	}

	return modularity(adj, group)
}

// modularity evaluates sum_c [in_c/2m - (tot_c/2m)^2] where in_c sums
// A_ij over ordered pairs inside c and tot_c sums weighted degrees.
func modularity(adj *adjacency, group []int) float64 {
	m2 := 2.0 * adj.total
	if m2 == 0 {
		return 0.0
	}

	internal := make(map[int]float64)
	tot := make(map[int]float64)
	for i := 0; i < adj.len(); i++ {
		tot[group[i]] += adj.degree[i]
		for j, w := range adj.neighbors[i] {
			if group[i] != group[j] {
				continue
			}
			if i == j {
				internal[group[i]] += 2 * w
			} else {
				internal[group[i]] += w
			}
		}
	}

	q := 0.0
	for c, t := range tot {
		q += internal[c]/m2 - (t/m2)*(t/m2)
	}
	return q
}
