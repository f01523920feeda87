package algorithms

import (
	"container/list"

	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// ComponentsPartitioner treats each connected component as a community
type ComponentsPartitioner struct{}

// Name implements Partitioner
func (ComponentsPartitioner) Name() string { return AlgorithmComponents }

// Partition implements Partitioner
func (ComponentsPartitioner) Partition(g *snapshot.Graph) ([][]snapshot.VertexName, error) {
	adj := newAdjacency(g)
	return groupsToPartition(adj, connectedComponents(adj)), nil
}

// connectedComponents labels every vertex with its component number
func connectedComponents(adj *adjacency) []int {
	component := make([]int, adj.len())
	for i := range component {
		component[i] = -1
	}

	next := 0
	for start := 0; start < adj.len(); start++ {
		if component[start] >= 0 {
			continue
		}

		// BFS to find each component
		queue := list.New()
		queue.PushBack(start)
		component[start] = next

		for queue.Len() > 0 {
			v, ok := queue.Remove(queue.Front()).(int)
			if !ok {
				continue
			}
			for _, w := range adj.sortedNeighbors(v) {
				if component[w] < 0 {
					component[w] = next
					queue.PushBack(w)
				}
			}
		}
		next++
	}

	return component
}
