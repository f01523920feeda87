package similarity

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-evolution/pkg/parallel"
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// Matrix is a dense row-major Rows×Cols distance matrix. Row i is the i-th
// community of the earlier snapshot, column j the j-th of the later one.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

// NewMatrix allocates a zeroed matrix
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// At returns the entry at (i, j)
func (m *Matrix) At(i, j int) float64 {
	return m.Data[i*m.Cols+j]
}

// Set stores v at (i, j)
func (m *Matrix) Set(i, j int, v float64) {
	m.Data[i*m.Cols+j] = v
}

// Row returns row i, sharing storage with m
func (m *Matrix) Row(i int) []float64 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// BuildOptions configures BuildMatrix
type BuildOptions struct {
	// Workers > 1 computes rows concurrently. The result does not depend on it.
	Workers int
}

// BuildMatrix computes D[i][j] = JaccardDistance(prev[i], next[j]).
// Every entry is written by exactly one task, so rows can be filled
// concurrently without locking.
func BuildMatrix(ctx context.Context, prev, next []snapshot.Community, opts BuildOptions) (*Matrix, error) {
	m := NewMatrix(len(prev), len(next))
	if m.Rows == 0 || m.Cols == 0 {
		return m, nil
	}

	err := parallel.ForEach(ctx, opts.Workers, m.Rows, func(_ context.Context, i int) error {
		row := m.Row(i)
		for j := range next {
			d, err := JaccardDistance(prev[i].Members(), next[j].Members())
			if err != nil {
				return fmt.Errorf("communities (%d,%d): %w", prev[i].Index(), next[j].Index(), err)
			}
			row[j] = d
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
