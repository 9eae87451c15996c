package async

import (
	"context"
	"sync/atomic"
)

// JobHandle tracks a function running in its own goroutine.
type JobHandle[T any] struct {
	cancel   func()
	done     chan struct{}
	result   Result[T]
	finished atomic.Bool
}

// Job starts fn in the background. The job context is derived from ctx and is
// cancelled by Stop or when fn returns.
func Job[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *JobHandle[T] {
	ctx, cancel := context.WithCancel(ctx)
	handle := &JobHandle[T]{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer cancel()
		defer close(handle.done)

		handle.result = NewResult[T](fn(ctx))
		handle.finished.Store(true)
	}()

	return handle
}

func (j *JobHandle[T]) Stop() {
	j.cancel()
}

// Done is closed once the job has returned.
func (j *JobHandle[T]) Done() <-chan struct{} {
	return j.done
}

// Running reports whether the job has not returned yet.
func (j *JobHandle[T]) Running() bool {
	return !j.finished.Load()
}

// Wait blocks until the job returns or ctx is done.
func (j *JobHandle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-j.done:
		return j.result.Unpack()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
