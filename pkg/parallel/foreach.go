package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrTaskPanicked wraps the value recovered from a panicking ForEach task
var ErrTaskPanicked = errors.New("task panicked")

// ForEach calls fn(ctx, i) for every i in [0, n) on a pool of the given size
// and returns the first error. Once an error is recorded the remaining
// indices are skipped. A panicking fn is reported as an error wrapping
// ErrTaskPanicked.
//
// With workers <= 1 the calls run in order on the calling goroutine.
func ForEach(ctx context.Context, workers, n int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}

	if workers <= 1 || n == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := call(ctx, i, fn); err != nil {
				return err
			}
		}
		return nil
	}

	if workers > n {
		workers = n
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	pool, err := NewWorkerPoolWithPanicHandler(workers, func(r any) {
		fail(fmt.Errorf("%w: %v", ErrTaskPanicked, r))
	})
	if err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		idx := i
		pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			if err := fn(ctx, idx); err != nil {
				fail(err)
			}
		})
	}
	pool.Close()

	if firstErr != nil {
		return firstErr
	}
	// Parent cancellation surfaces here; our own cancel only fires via fail.
	return ctx.Err()
}

func call(ctx context.Context, i int, fn func(ctx context.Context, i int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: index %d: %v", ErrTaskPanicked, i, r)
		}
	}()
	return fn(ctx, i)
}
