package models

import (
	"context"
	"sync"
)

// Future holds the eventual result of a unit of work submitted to the scheduler.
type Future[T any] struct {
	input       chan T
	output      chan T
	inputClosed bool
	value       T
	cancel      context.CancelFunc
	lock        sync.Mutex
}

func NewFuture[T any](input chan T, cancel context.CancelFunc) *Future[T] {
	f := &Future[T]{
		input:  input,
		output: make(chan T, 1),
		cancel: cancel,
	}

	go func() {
		v := <-f.input
		f.lock.Lock()
		defer f.lock.Unlock()

		f.value = v
		f.inputClosed = true
		f.output <- v
		f.cancel()
	}()

	return f
}

// C delivers the value once it is resolved. Only one receiver gets it; use Poll
// to observe the value afterwards.
func (f *Future[T]) C() <-chan T {
	return f.output
}

func (f *Future[T]) Poll() (value T, isResolved bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.inputClosed {
		return f.value, true
	}

	var none T
	return none, false
}

func (f *Future[T]) Stop() {
	f.cancel()
}
