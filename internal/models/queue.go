package models

import "context"

type Work[T any] func(ctx context.Context) (T, error)

// Queue is a FIFO. Transport commands must reach the device in the order
// they were issued.
type Queue[T any] []T

func (wq *Queue[T]) Len() int { return len(*wq) }

func (wq *Queue[T]) Pop() T {
	old := *wq
	x := old[0]
	var zero T
	old[0] = zero
	*wq = old[1:]
	return x
}

func (wq *Queue[T]) Push(t T) {
	*wq = append(*wq, t)
}

type Result[T any] struct {
	Data T
	Err  error
}
