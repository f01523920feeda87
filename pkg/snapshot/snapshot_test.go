package snapshot

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(m int) time.Time {
	return time.Date(2020, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
}

func mustSnapshot(t *testing.T, date time.Time, partition ...[]VertexName) *Snapshot {
	t.Helper()
	var vertices []VertexName
	for _, c := range partition {
		vertices = append(vertices, c...)
	}
	s, err := NewSnapshot(date, vertices, partition)
	require.NoError(t, err)
	return s
}

func TestNewSnapshot(t *testing.T) {
	s := mustSnapshot(t, month(1), []VertexName{"a", "b"}, []VertexName{"c", "d"})

	assert.Equal(t, "2020-01-01", s.Label())
	require.Len(t, s.Communities(), 2)
	assert.Equal(t, 1, s.Communities()[1].Index())
	assert.Equal(t, 2, s.Communities()[0].Size())
	assert.True(t, s.HasVertex("c"))
	assert.False(t, s.HasVertex("z"))

	idx, ok := s.CommunityOf("d")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	c, ok := s.Community(0)
	require.True(t, ok)
	assert.Equal(t, []VertexName{"a", "b"}, c.Members().Sorted())

	_, ok = s.Community(2)
	assert.False(t, ok)
}

func TestNewSnapshot_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		vertices  []VertexName
		partition [][]VertexName
		want      error
	}{
		{"empty community", []VertexName{"a"}, [][]VertexName{{"a"}, {}}, ErrEmptyCommunity},
		{"overlap", []VertexName{"a", "b"}, [][]VertexName{{"a", "b"}, {"b"}}, ErrOverlappingCommunities},
		{"unknown vertex", []VertexName{"a"}, [][]VertexName{{"a", "x"}}, ErrUnknownVertex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSnapshot(month(1), tt.vertices, tt.partition)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var snapErr *SnapshotError
			require.True(t, errors.As(err, &snapErr))
			assert.Equal(t, month(1), snapErr.Date)
		})
	}
}

func TestSnapshot_Degenerate(t *testing.T) {
	s, err := NewSnapshot(month(1), []VertexName{"a"}, nil)
	require.NoError(t, err)
	assert.True(t, s.Degenerate())
	assert.True(t, s.HasVertex("a"))

	_, ok := s.CommunityOf("a")
	assert.False(t, ok)
}

func TestNewGraph(t *testing.T) {
	g := NewGraph(month(2), []Edge{{"b", "a"}, {"c", "a"}})
	assert.Equal(t, []VertexName{"a", "b", "c"}, g.Vertices)
	assert.False(t, g.Empty())
	assert.True(t, NewGraph(month(2), nil).Empty())
}

func TestPeriod(t *testing.T) {
	assert.True(t, PeriodMonth.Consecutive(month(1), month(2)))
	assert.False(t, PeriodMonth.Consecutive(month(1), month(3)))
	assert.True(t, PeriodMonth.Consecutive(
		time.Date(2019, 12, 1, 0, 0, 0, 0, time.UTC), month(1)))
	assert.True(t, PeriodWeek.Consecutive(month(1), month(1).AddDate(0, 0, 7)))
	assert.True(t, PeriodDay.Consecutive(month(1), month(1).AddDate(0, 0, 1)))
	assert.True(t, PeriodNone.Consecutive(month(1), month(9)))
	assert.False(t, PeriodNone.Consecutive(month(9), month(1)))

	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodMonth, p)

	_, err = ParsePeriod("fortnight")
	assert.Error(t, err)
}
