package matching

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-evolution/pkg/similarity"
)

func matrix(rows [][]float64) *similarity.Matrix {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	m := similarity.NewMatrix(len(rows), cols)
	for i, r := range rows {
		for j, v := range r {
			m.Set(i, j, v)
		}
	}
	return m
}

// bruteForce returns the minimum total cost over every injective assignment
// of the smaller side into the larger one.
func bruteForce(m *similarity.Matrix) float64 {
	n, k := m.Rows, m.Cols
	cost := m.At
	if n > k {
		n, k = k, n
		cost = func(i, j int) float64 { return m.At(j, i) }
	}
	if n == 0 {
		return 0
	}

	best := math.Inf(1)
	used := make([]bool, k)
	var walk func(i int, acc float64)
	walk = func(i int, acc float64) {
		if i == n {
			if acc < best {
				best = acc
			}
			return
		}
		for j := 0; j < k; j++ {
			if used[j] {
				continue
			}
			used[j] = true
			walk(i+1, acc+cost(i, j))
			used[j] = false
		}
	}
	walk(0, 0)
	return best
}

func TestSolve_Square(t *testing.T) {
	m := matrix([][]float64{
		{4, 1, 3},
		{2, 0, 5},
		{3, 2, 2},
	})

	pairs, err := Solve(m)
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	assert.InDelta(t, 5.0, TotalCost(pairs), 1e-9)
	assert.Equal(t, []Pair{{0, 1, 1}, {1, 0, 2}, {2, 2, 2}}, pairs)
}

func TestSolve_MoreColumns(t *testing.T) {
	m := matrix([][]float64{
		{1 - 2.0/3.0, 1, 1},
		{1, 0.5, 1},
	})

	pairs, err := Solve(m)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, 0, pairs[0].Col)
	assert.Equal(t, 1, pairs[1].Col)
}

func TestSolve_MoreRows(t *testing.T) {
	m := matrix([][]float64{
		{0.9},
		{0.1},
		{0.5},
	})

	pairs, err := Solve(m)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, Pair{Row: 1, Col: 0, Cost: 0.1}, pairs[0])
}

func TestSolve_EmptySides(t *testing.T) {
	for _, m := range []*similarity.Matrix{
		similarity.NewMatrix(0, 3),
		similarity.NewMatrix(3, 0),
		similarity.NewMatrix(0, 0),
	} {
		pairs, err := Solve(m)
		require.NoError(t, err)
		assert.Empty(t, pairs)
	}
}

func TestSolve_RejectsNaN(t *testing.T) {
	m := matrix([][]float64{{0.1, math.NaN()}})
	_, err := Solve(m)
	assert.ErrorIs(t, err, ErrInvalidCost)
}

func TestSolve_TiesAreDeterministic(t *testing.T) {
	m := matrix([][]float64{
		{1, 1, 1},
		{1, 1, 1},
	})

	first, err := Solve(m)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Solve(m)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

type costCase struct {
	Rows int
	Cols int
	Data []float64
}

func costCaseGen() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 5),
		gen.IntRange(0, 5),
		gen.SliceOfN(25, gen.Float64Range(0, 1)),
	).Map(func(values []interface{}) costCase {
		rows, cols := values[0].(int), values[1].(int)
		data := values[2].([]float64)
		return costCase{Rows: rows, Cols: cols, Data: data[:rows*cols]}
	})
}

func (c costCase) matrix() *similarity.Matrix {
	m := similarity.NewMatrix(c.Rows, c.Cols)
	copy(m.Data, c.Data)
	return m
}

func TestSolve_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("returns min(n,m) pairs", prop.ForAll(
		func(c costCase) bool {
			pairs, err := Solve(c.matrix())
			want := c.Rows
			if c.Cols < want {
				want = c.Cols
			}
			return err == nil && len(pairs) == want
		},
		costCaseGen(),
	))

	properties.Property("never reuses a row or column", prop.ForAll(
		func(c costCase) bool {
			pairs, err := Solve(c.matrix())
			if err != nil {
				return false
			}
			rows, cols := map[int]bool{}, map[int]bool{}
			for _, p := range pairs {
				if rows[p.Row] || cols[p.Col] {
					return false
				}
				rows[p.Row], cols[p.Col] = true, true
			}
			return true
		},
		costCaseGen(),
	))

	properties.Property("total cost is minimal", prop.ForAll(
		func(c costCase) bool {
			m := c.matrix()
			pairs, err := Solve(m)
			return err == nil && math.Abs(TotalCost(pairs)-bruteForce(m)) < 1e-9
		},
		costCaseGen(),
	))

	properties.Property("pair cost equals matrix entry", prop.ForAll(
		func(c costCase) bool {
			m := c.matrix()
			pairs, err := Solve(m)
			if err != nil {
				return false
			}
			for _, p := range pairs {
				if p.Cost != m.At(p.Row, p.Col) {
					return false
				}
			}
			return true
		},
		costCaseGen(),
	))

	properties.TestingRun(t)
}
