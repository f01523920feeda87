package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEach_VisitsEveryIndex(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		out := make([]int, 100)
		err := ForEach(context.Background(), workers, len(out), func(_ context.Context, i int) error {
			out[i] = i * i
			return nil
		})
		require.NoError(t, err)
		for i, v := range out {
			assert.Equal(t, i*i, v, "workers=%d index=%d", workers, i)
		}
	}
}

func TestForEach_ReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls int64

	err := ForEach(context.Background(), 4, 1000, func(_ context.Context, i int) error {
		atomic.AddInt64(&calls, 1)
		if i == 3 {
			return boom
		}
		return nil
	})

	require.ErrorIs(t, err, boom)
	assert.LessOrEqual(t, atomic.LoadInt64(&calls), int64(1000))
}

func TestForEach_SequentialStopsAtError(t *testing.T) {
	boom := errors.New("boom")
	var calls int

	err := ForEach(context.Background(), 1, 10, func(_ context.Context, i int) error {
		calls++
		if i == 2 {
			return boom
		}
		return nil
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestForEach_PanicBecomesError(t *testing.T) {
	for _, workers := range []int{1, 2} {
		err := ForEach(context.Background(), workers, 4, func(_ context.Context, i int) error {
			if i == 1 {
				panic("bad row")
			}
			return nil
		})
		require.ErrorIs(t, err, ErrTaskPanicked, "workers=%d", workers)
		assert.Contains(t, err.Error(), "bad row")
	}
}

func TestForEach_PanicStopsRemainingTasks(t *testing.T) {
	var calls int64
	err := ForEach(context.Background(), 2, 1000, func(_ context.Context, i int) error {
		atomic.AddInt64(&calls, 1)
		if i == 0 {
			panic("first")
		}
		return nil
	})
	require.ErrorIs(t, err, ErrTaskPanicked)
	assert.LessOrEqual(t, atomic.LoadInt64(&calls), int64(1000))
}

func TestForEach_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ForEach(ctx, 4, 10, func(context.Context, int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForEach_Empty(t *testing.T) {
	assert.NoError(t, ForEach(context.Background(), 4, 0, func(context.Context, int) error {
		t.Fatal("fn must not be called")
		return nil
	}))
}
