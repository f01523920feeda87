package algorithms

import (
	"math"

	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// PageRankOptions configures PageRank algorithm
type PageRankOptions struct {
	DampingFactor float64 // Usually 0.85
	MaxIterations int
	Tolerance     float64 // Convergence threshold
}

// DefaultPageRankOptions returns default PageRank configuration
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{
		DampingFactor: 0.85,
		MaxIterations: 100,
		Tolerance:     1e-6,
	}
}

// PageRankResult contains PageRank scores for all vertices
type PageRankResult struct {
	Scores     Scores
	Iterations int  // Number of iterations performed
	Converged  bool // Whether algorithm converged
}

// PageRank computes PageRank on the undirected graph, each edge walked in
// both directions. Rank held by isolated vertices is spread uniformly.
func PageRank(g *snapshot.Graph, opts PageRankOptions) *PageRankResult {
	adj := newAdjacency(g)
	n := adj.len()
	if n == 0 {
		return &PageRankResult{Scores: make(Scores), Converged: true}
	}

	scores := make([]float64, n)
	newScores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}

	converged := false
	iterations := 0

	for iterations < opts.MaxIterations {
		iterations++

		dangling := 0.0
		for i := 0; i < n; i++ {
			if adj.degree[i] == 0 {
				dangling += scores[i]
			}
		}

		base := (1.0-opts.DampingFactor)/float64(n) + opts.DampingFactor*dangling/float64(n)
		for i := range newScores {
			newScores[i] = base
		}
		for i := 0; i < n; i++ {
			if adj.degree[i] == 0 {
				continue
			}
			for _, j := range adj.sortedNeighbors(i) {
				w := adj.neighbors[i][j]
				if i == j {
					w *= 2
				}
				newScores[j] += opts.DampingFactor * scores[i] * w / adj.degree[i]
			}
		}

		maxDiff := 0.0
		for i := range scores {
			if diff := math.Abs(newScores[i] - scores[i]); diff > maxDiff {
				maxDiff = diff
			}
		}

		scores, newScores = newScores, scores
		if maxDiff < opts.Tolerance {
			converged = true
			break
		}
	}

	// Normalize scores to sum to 1
	sum := 0.0
	for _, score := range scores {
		sum += score
	}

	out := make(Scores, n)
	for i, v := range adj.names {
		if sum > 0 {
			out[v] = scores[i] / sum
		} else {
			out[v] = scores[i]
		}
	}

	return &PageRankResult{
		Scores:     out,
		Iterations: iterations,
		Converged:  converged,
	}
}

// Rank returns the PageRank score for a vertex
func (pr *PageRankResult) Rank(v snapshot.VertexName) float64 {
	return pr.Scores[v]
}
