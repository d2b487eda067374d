// Package async runs a function on its own goroutine and lets the caller await
// the outcome. Dispatchers use it to execute edge actions off the calling
// goroutine while the engine suspends on the result.
package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// Future represents the result of an asynchronous computation.
type Future[U any] struct {
	result U
	err    error
	once   sync.Once
	done   chan struct{}
}

// PanicError carries a value recovered from a panicking function.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("async: function panicked: %v", e.Value)
}

// Await blocks until the function completes and returns its result and error.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// Done is closed once the function has completed.
func (f *Future[U]) Done() <-chan struct{} {
	return f.done
}

// IsComplete reports whether the function has completed without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func (f *Future[U]) complete(res U, err error) {
	f.once.Do(func() {
		f.result = res
		f.err = err
	})
}

// Async executes fn on a new goroutine and returns a Future for its result.
// A pre-cancelled context completes the future with ctx.Err() without calling fn.
// A panic inside fn is recovered and reported as a *PanicError.
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				var zero U
				f.complete(zero, &PanicError{Value: r, Stack: debug.Stack()})
			}
		}()

		select {
		case <-ctx.Done():
			var zero U
			f.complete(zero, ctx.Err())
			return
		default:
		}

		res, err := fn(ctx, param)
		f.complete(res, err)
	}()

	return f
}

// Go is Async for functions that produce only an error.
func Go(ctx context.Context, fn func(context.Context) error) *Future[struct{}] {
	return Async(ctx, struct{}{}, func(ctx context.Context, _ struct{}) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
}
