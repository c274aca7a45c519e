package loader

import (
	"context"
	"sync"
)

// Result is the outcome of an asynchronous load.
type Result[T any] struct {
	Value T
	Err   error
}

// Future is a pending load. It settles exactly once, either resolved with a
// value or rejected with an error.
type Future[T any] struct {
	done   chan struct{}
	result Result[T]
	once   sync.Once
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Go runs fn on its own goroutine and returns a Future for its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		v, err := fn()
		f.settle(v, err)
	}()
	return f
}

// Rejected returns a Future that has already failed with err.
func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.settle(zero, err)
	return f
}

// Resolved returns a Future that has already succeeded with v.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.settle(v, nil)
	return f
}

func (f *Future[T]) settle(v T, err error) {
	f.once.Do(func() {
		if err != nil {
			var zero T
			v = zero
		}
		f.result = Result[T]{Value: v, Err: err}
		close(f.done)
	})
}

// Done is closed once the Future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future settles or ctx is done. Cancelling ctx stops
// the wait only; the load itself keeps running.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Poll returns the result if the Future has settled.
func (f *Future[T]) Poll() (Result[T], bool) {
	select {
	case <-f.done:
		return f.result, true
	default:
		return Result[T]{}, false
	}
}

// Then delivers the result to fn through post once the Future settles.
// post decides where fn runs; the sketch passes its main-thread queue.
func (f *Future[T]) Then(post func(func()), fn func(T, error)) {
	go func() {
		<-f.done
		r := f.result
		post(func() { fn(r.Value, r.Err) })
	}()
}

// Map returns a Future settling with fn applied to f's value. A rejection
// of f passes through without calling fn.
func Map[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	return Go(func() (U, error) {
		<-f.done
		if f.result.Err != nil {
			var zero U
			return zero, f.result.Err
		}
		return fn(f.result.Value)
	})
}
