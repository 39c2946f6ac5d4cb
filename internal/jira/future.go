package jira

import "context"

// Future is the handle of an asynchronous call.
type Future[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	val    T
	err    error
}

// Go runs fn in its own goroutine under a cancellable child of ctx.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	ctx, cancel := context.WithCancel(ctx)
	f := &Future[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go func() {
		defer close(f.done)
		defer cancel() // release the context once fn returns
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the call has completed.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Cancel abandons the call. The result then carries the context error.
func (f *Future[T]) Cancel() { f.cancel() }

// Wait blocks until the call has completed and returns its result.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.val, f.err
}

// Await is like Wait but gives up when ctx is done; the call keeps running
// unless it is cancelled.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, &TransportError{Err: ctx.Err()}
	}
}
