package algorithms

import (
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// LabelPropagationPartitioner performs label propagation for community
// detection. Fast, scalable algorithm for large graphs.
type LabelPropagationPartitioner struct {
	MaxIterations int
}

// Name implements Partitioner
func (LabelPropagationPartitioner) Name() string { return AlgorithmLabelPropagation }

// Partition implements Partitioner. Vertices are visited in name order and
// ties between equally frequent labels go to the smallest label, so the
// result is reproducible.
func (p LabelPropagationPartitioner) Partition(g *snapshot.Graph) ([][]snapshot.VertexName, error) {
	adj := newAdjacency(g)
	return groupsToPartition(adj, labelPropagation(adj, p.MaxIterations)), nil
}

func labelPropagation(adj *adjacency, maxIterations int) []int {
	// Initialize: each node in its own community
	labels := make([]int, adj.len())
	for i := range labels {
		labels[i] = i
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := false

		for v := 0; v < adj.len(); v++ {
			// Weighted count of neighbor labels
			labelWeight := make(map[int]float64)
			for w, weight := range adj.neighbors[v] {
				if w == v {
					continue
				}
				labelWeight[labels[w]] += weight
			}
			if len(labelWeight) == 0 {
				continue
			}

			bestLabel := labels[v]
			bestWeight := labelWeight[bestLabel]
			for label, weight := range labelWeight {
				if weight > bestWeight || (weight == bestWeight && label < bestLabel) {
					bestLabel = label
					bestWeight = weight
				}
			}

			if bestLabel != labels[v] {
				labels[v] = bestLabel
				changed = true
			}
		}

		if !changed {
			break // Converged
		}
	}

	return labels
}
