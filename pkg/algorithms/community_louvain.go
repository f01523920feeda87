package algorithms

import (
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// LouvainPartitioner maximises modularity with the Louvain method: local
// moving of single vertices, then aggregation of communities into super
// vertices, repeated until a level makes no move.
type LouvainPartitioner struct {
	// MaxIterations bounds the local-moving passes per level
	MaxIterations int
}

// Name implements Partitioner
func (LouvainPartitioner) Name() string { return AlgorithmLouvain }

// Partition implements Partitioner. Vertices are visited in index order and
// candidate communities in ascending id, with strict improvement required
// to move, so equal graphs give equal partitions.
func (p LouvainPartitioner) Partition(g *snapshot.Graph) ([][]snapshot.VertexName, error) {
	adj := newAdjacency(g)
	return groupsToPartition(adj, louvain(adj, p.MaxIterations)), nil
}

// louvain returns the community of every original vertex
func louvain(adj *adjacency, maxIterations int) []int {
	// membership maps each original vertex to its node in the current level
	membership := make([]int, adj.len())
	for i := range membership {
		membership[i] = i
	}
	if adj.total == 0 {
		return membership
	}

	level := adj
	for {
		n2c, moved := louvainOneLevel(level, maxIterations)
		if !moved {
			break
		}

		renumbered, count := renumber(n2c)
		for v := range membership {
			membership[v] = renumbered[membership[v]]
		}

		if count == level.len() {
			break
		}
		level = aggregate(level, renumbered, count)
	}

	return membership
}

// louvainOneLevel runs local moving until a pass makes no move. It returns
// the community of every node and whether any node moved.
func louvainOneLevel(adj *adjacency, maxIterations int) ([]int, bool) {
	n := adj.len()
	m2 := 2.0 * adj.total

	n2c := make([]int, n)
	tot := make([]float64, n)
	for i := 0; i < n; i++ {
		n2c[i] = i
		tot[i] = adj.degree[i]
	}

	movedAny := false
	for pass := 0; pass < maxIterations; pass++ {
		moves := 0

		for i := 0; i < n; i++ {
			current := n2c[i]
			ki := adj.degree[i]

			// Weight from i to each neighboring community
			links := make(map[int]float64)
			for j, w := range adj.neighbors[i] {
				if j != i {
					links[n2c[j]] += w
				}
			}

			// Remove i from its community
			tot[current] -= ki

			best := current
			bestGain := links[current] - tot[current]*ki/m2
			for _, c := range sortedKeys(links) {
				gain := links[c] - tot[c]*ki/m2
				if gain > bestGain {
					best = c
					bestGain = gain
				}
			}

			tot[best] += ki
			if best != current {
				n2c[i] = best
				moves++
			}
		}

		if moves == 0 {
			break
		}
		movedAny = true
	}

	return n2c, movedAny
}

// renumber maps community ids to 0..k-1 in order of first appearance
func renumber(n2c []int) ([]int, int) {
	ids := make(map[int]int)
	out := make([]int, len(n2c))
	for i, c := range n2c {
		id, ok := ids[c]
		if !ok {
			id = len(ids)
			ids[c] = id
		}
		out[i] = id
	}
	return out, len(ids)
}

// aggregate builds the graph whose nodes are the communities of adj.
// Edges inside a community become a self-loop on its super node.
func aggregate(adj *adjacency, n2c []int, count int) *adjacency {
	super := &adjacency{
		names:     make([]snapshot.VertexName, count),
		neighbors: make([]map[int]float64, count),
		degree:    make([]float64, count),
		total:     adj.total,
	}
	for c := range super.neighbors {
		super.neighbors[c] = make(map[int]float64)
	}

	for i := 0; i < adj.len(); i++ {
		ci := n2c[i]
		super.degree[ci] += adj.degree[i]
		for j, w := range adj.neighbors[i] {
			cj := n2c[j]
			switch {
			case i == j:
				super.neighbors[ci][ci] += w
			case ci == cj:
				// visited once from each endpoint
				super.neighbors[ci][ci] += w / 2
			default:
				super.neighbors[ci][cj] += w
			}
		}
	}

	return super
}

func sortedKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortInts(keys)
	return keys
}
