package algorithms

import (
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// Partitioner splits a snapshot graph into communities: disjoint, non-empty
// vertex sets. Implementations must be deterministic for a given graph.
type Partitioner interface {
	Name() string
	Partition(g *snapshot.Graph) ([][]snapshot.VertexName, error)
}

// Algorithm names accepted by NewPartitioner
const (
	AlgorithmComponents       = "components"
	AlgorithmLabelPropagation = "label_propagation"
	AlgorithmLouvain          = "louvain"
)

// DefaultMaxIterations bounds the iterative algorithms
const DefaultMaxIterations = 100

// NewPartitioner returns the partitioner registered under name
func NewPartitioner(name string, maxIterations int) (Partitioner, error) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	switch name {
	case AlgorithmComponents:
		return ComponentsPartitioner{}, nil
	case AlgorithmLabelPropagation:
		return LabelPropagationPartitioner{MaxIterations: maxIterations}, nil
	case AlgorithmLouvain, "":
		return LouvainPartitioner{MaxIterations: maxIterations}, nil
	default:
		return nil, fmt.Errorf("unknown community detection algorithm %q", name)
	}
}

// groupsToPartition turns a vertex -> group assignment into a partition
// with sorted members, ordered by each group's smallest member.
func groupsToPartition(adj *adjacency, group []int) [][]snapshot.VertexName {
	byGroup := make(map[int][]snapshot.VertexName)
	order := make([]int, 0)
	for v, g := range group {
		if _, ok := byGroup[g]; !ok {
			order = append(order, g)
		}
		byGroup[g] = append(byGroup[g], adj.names[v])
	}

	out := make([][]snapshot.VertexName, 0, len(order))
	for _, g := range order {
		members := byGroup[g]
		sort.Strings(members)
		out = append(out, members)
	}

	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func sortInts(s []int) {
	sort.Ints(s)
}
