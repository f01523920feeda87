// Package matching finds the minimum-cost one-to-one correspondence between
// the communities of two consecutive snapshots.
//
// The correspondence is a strict assignment of min(n, m) pairs, so splits
// and merges cannot be represented: when a community splits, only the
// closest part keeps its identity.
package matching

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dd0wney/cluso-evolution/pkg/similarity"
)

// ErrInvalidCost is returned when the cost matrix holds NaN or an infinity
var ErrInvalidCost = errors.New("cost matrix entry is not finite")

// Pair assigns row Row to column Col at cost Cost
type Pair struct {
	Row  int
	Col  int
	Cost float64
}

// Solve returns the minimum total cost assignment of min(Rows, Cols) rows
// to distinct columns. Pairs are sorted by row. An empty side yields no
// pairs.
//
// Among equal-cost alternatives the lowest column index is preferred while
// searching for augmenting paths, so equal input gives equal output.
func Solve(m *similarity.Matrix) ([]Pair, error) {
	if m.Rows == 0 || m.Cols == 0 {
		return []Pair{}, nil
	}
	for i, v := range m.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: (%d,%d)", ErrInvalidCost, i/m.Cols, i%m.Cols)
		}
	}

	// The solver needs rows <= cols
	transposed := m.Rows > m.Cols
	n, k := m.Rows, m.Cols
	cost := m.At
	if transposed {
		n, k = m.Cols, m.Rows
		cost = func(i, j int) float64 { return m.At(j, i) }
	}

	colOwner := assign(n, k, cost)

	pairs := make([]Pair, 0, n)
	for j := 1; j <= k; j++ {
		i := colOwner[j]
		if i == 0 {
			continue
		}
		row, col := i-1, j-1
		if transposed {
			row, col = col, row
		}
		pairs = append(pairs, Pair{Row: row, Col: col, Cost: m.At(row, col)})
	}

	sort.Slice(pairs, func(a, b int) bool { return pairs[a].Row < pairs[b].Row })
	return pairs, nil
}

// assign solves the n×k problem (n <= k) with row and column potentials,
// adding one row at a time along a shortest augmenting path. Indices are
// 1-based; column 0 is the virtual source. The result maps each column to
// its row, or 0 when unassigned.
func assign(n, k int, cost func(i, j int) float64) []int {
	inf := math.Inf(1)
	u := make([]float64, n+1)
	v := make([]float64, k+1)
	owner := make([]int, k+1)
	way := make([]int, k+1)
	minv := make([]float64, k+1)
	used := make([]bool, k+1)

	for i := 1; i <= n; i++ {
		owner[0] = i
		j0 := 0
		for j := range minv {
			minv[j] = inf
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := owner[j0]
			delta := inf
			j1 := 0

			for j := 1; j <= k; j++ {
				if used[j] {
					continue
				}
				cur := cost(i0-1, j-1) - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}

			for j := 0; j <= k; j++ {
				if used[j] {
					u[owner[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}

			j0 = j1
			if owner[j0] == 0 {
				break
			}
		}

		// Flip the augmenting path back to the source
		for j0 != 0 {
			j1 := way[j0]
			owner[j0] = owner[j1]
			j0 = j1
		}
	}

	return owner
}

// TotalCost sums the cost of pairs
func TotalCost(pairs []Pair) float64 {
	total := 0.0
	for _, p := range pairs {
		total += p.Cost
	}
	return total
}
