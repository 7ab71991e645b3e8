// Package scheduler runs transport commands on a small pool of workers so
// that issuing a command never blocks the caller. Work is dispatched in FIFO
// order; with a single worker the commands reach the device in the order
// they were issued.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/blinky-companion/sync-agent/internal/models"
)

type Result[T any] = models.Result[T]

type Future = models.Future[models.Result[any]]

type workRequest struct {
	fn  models.Work[any]
	c   chan models.Result[any]
	ctx context.Context
}

type Scheduler struct {
	work       chan workRequest
	done       chan any
	close      chan any
	stopped    chan any
	mainCtx    context.Context
	mainCancel context.CancelFunc
	inflight   sync.WaitGroup
	closeOnce  sync.Once
}

func NewScheduler(nbWorkers int) *Scheduler {
	if nbWorkers < 1 {
		nbWorkers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		work:       make(chan workRequest),
		done:       make(chan any),
		close:      make(chan any),
		stopped:    make(chan any),
		mainCtx:    ctx,
		mainCancel: cancel,
	}
	go s.run(nbWorkers)
	return s
}

// AddWork queues w and returns a future for its result. After Close the
// future resolves immediately with context.Canceled.
func (s *Scheduler) AddWork(w models.Work[any]) *Future {
	c := make(chan models.Result[any], 1)
	ctx, cancel := context.WithCancel(s.mainCtx)
	future := models.NewFuture(c, cancel)

	select {
	case s.work <- workRequest{fn: w, c: c, ctx: ctx}:
	case <-s.stopped:
		c <- models.Result[any]{Err: context.Canceled}
	}
	return future
}

// Close cancels queued and running work and waits for running work to return.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		s.mainCancel()
		close(s.close)
		<-s.stopped
		s.inflight.Wait()
	})
}

func (s *Scheduler) run(idle int) {
	defer close(s.stopped)

	queue := &models.Queue[workRequest]{}
	for {
		select {
		case w := <-s.work:
			queue.Push(w)
		case <-s.done:
			idle++
		case <-s.close:
			for queue.Len() > 0 {
				queue.Pop().c <- models.Result[any]{Err: context.Canceled}
			}
			return
		}

		for idle > 0 && queue.Len() > 0 {
			idle--
			s.dispatch(queue.Pop())
		}
	}
}

func (s *Scheduler) dispatch(r workRequest) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		r.c <- call(r)
		select {
		case s.done <- struct{}{}:
		case <-s.stopped:
		}
	}()
}

func call(r workRequest) (result models.Result[any]) {
	defer func() {
		if p := recover(); p != nil {
			zap.S().Named("scheduler").Errorw("worker panicked", "panic", p)
			result = models.Result[any]{Err: fmt.Errorf("worker panicked: %v", p)}
		}
	}()

	v, err := r.fn(r.ctx)
	return models.Result[any]{Data: v, Err: err}
}
