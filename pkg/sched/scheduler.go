package sched

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rivulet-dev/rivulet/pkg/signal"
)

// Immediate runs work synchronously on the calling goroutine. It holds no
// locks, so work may schedule more work re-entrantly. Delayed work runs
// immediately as well; use a Queue or TestScheduler where real delays
// matter.
type Immediate struct{}

// Schedule runs work inline and returns an already-disposed handle.
func (Immediate) Schedule(work func()) signal.Disposable {
	work()
	return signal.Disposed()
}

// ScheduleAfter ignores the delay and runs work inline.
func (Immediate) ScheduleAfter(_ time.Duration, work func()) signal.Disposable {
	work()
	return signal.Disposed()
}

// Background runs each unit of work on its own goroutine. Delayed work
// uses the process clock.
type Background struct{}

// Schedule runs work on a new goroutine. Disposing the result cancels the
// work if it has not started yet.
func (Background) Schedule(work func()) signal.Disposable {
	var cancelled atomic.Bool
	go func() {
		if !cancelled.Load() {
			work()
		}
	}()
	return signal.NewDisposable(func() { cancelled.Store(true) })
}

// ScheduleAfter runs work on its own goroutine after the delay.
func (Background) ScheduleAfter(delay time.Duration, work func()) signal.Disposable {
	timer := time.AfterFunc(delay, work)
	return signal.NewDisposable(func() { timer.Stop() })
}

// Queue runs work one unit at a time, in FIFO order, on a single dedicated
// goroutine. It is the serial execution context: work scheduled from any
// number of goroutines is never run concurrently.
type Queue struct {
	mu      sync.Mutex
	pending []*queuedWork
	running bool
	closed  bool
}

type queuedWork struct {
	fn        func()
	cancelled atomic.Bool
}

// NewQueue creates a serial queue. Close it when no longer needed.
func NewQueue() *Queue {
	return &Queue{}
}

// Schedule enqueues work. Disposing the result cancels the work if it has
// not run yet.
func (q *Queue) Schedule(work func()) signal.Disposable {
	item := &queuedWork{fn: work}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return signal.Disposed()
	}
	q.pending = append(q.pending, item)
	start := !q.running
	if start {
		q.running = true
	}
	q.mu.Unlock()

	if start {
		go q.run()
	}
	return signal.NewDisposable(func() { item.cancelled.Store(true) })
}

// ScheduleAfter enqueues work once the delay has elapsed.
func (q *Queue) ScheduleAfter(delay time.Duration, work func()) signal.Disposable {
	inner := signal.NewSerialDisposable()
	timer := time.AfterFunc(delay, func() {
		inner.Swap(q.Schedule(work))
	})
	return signal.NewCompositeDisposable(
		signal.NewDisposable(func() { timer.Stop() }),
		inner,
	)
}

// Close stops accepting work. Pending work already enqueued still runs.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// run drains the queue on the worker goroutine, exiting when it empties.
func (q *Queue) run() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		item := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		if !item.cancelled.Load() {
			item.fn()
		}
	}
}
