// Package deferred turns blocking, callback-style work into a value that settles exactly once.
package deferred

import (
	"context"
	"fmt"
	"sync"
)

// PanicError is the rejection reason of a future whose work panicked.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("deferred: work panicked: %v", e.Value)
}

// Future holds the outcome of a unit of work. It is resolved with a value or
// rejected with an error exactly once; later settlement attempts are ignored.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// settle records the outcome and reports whether this call won.
func (f *Future[T]) settle(value T, err error) bool {
	won := false
	f.once.Do(func() {
		if err == nil {
			f.value = value
		}
		f.err = err
		close(f.done)
		won = true
	})
	return won
}

// Go runs fn on its own goroutine and returns a future for its outcome.
func Go[T any](fn func() (T, error)) *Future[T] {
	return FromSyncCallback(func(done func(T, error)) {
		done(fn())
	})
}

// FromCallback adapts a completion-callback call into a future. The call runs on
// its own goroutine and may invoke done later from any goroutine; the first
// invocation settles the future and any further invocation is dropped. A panic
// in call rejects the future with a *PanicError.
func FromCallback[T any](call func(done func(T, error))) *Future[T] {
	f := newFuture[T]()
	go func() {
		defer f.recoverPanic()
		call(func(value T, err error) {
			f.settle(value, err)
		})
	}()
	return f
}

// FromSyncCallback is FromCallback for calls that report their outcome before
// returning. If call returns without invoking done the future is rejected, so
// a caller is never left waiting.
func FromSyncCallback[T any](call func(done func(T, error))) *Future[T] {
	f := newFuture[T]()
	go func() {
		defer f.recoverPanic()
		call(func(value T, err error) {
			f.settle(value, err)
		})
		var zero T
		f.settle(zero, errNotSettled)
	}()
	return f
}

func (f *Future[T]) recoverPanic() {
	if r := recover(); r != nil {
		var zero T
		f.settle(zero, &PanicError{Value: r})
	}
}

// Resolved returns an already-resolved future.
func Resolved[T any](value T) *Future[T] {
	f := newFuture[T]()
	f.settle(value, nil)
	return f
}

// Rejected returns an already-rejected future.
func Rejected[T any](err error) *Future[T] {
	if err == nil {
		err = errNilRejection
	}
	f := newFuture[T]()
	var zero T
	f.settle(zero, err)
	return f
}

// Done is closed once the future has settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx is done. A ctx error is returned
// to this caller only; the underlying work keeps running and still settles.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Wait blocks until the future settles.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.value, f.err
}

// Settled reports whether the future has settled without blocking.
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
