package signal

import (
	"fmt"
	"time"
)

// Signal is a cold, lazily started push-based producer of events. It wraps
// a producer function that, given an observer, starts producing and returns
// a Disposable for cancellation. A Signal owns no resources itself; each
// Observe call is an independent production run whose resources belong to
// the returned Disposable.
type Signal[E any, F error] struct {
	producer func(Observer[E, F]) Disposable
}

// New creates a signal from a producer function. The producer receives a
// wrapped observer that already enforces the delivery contract (serialized
// delivery, at-most-once terminal, no delivery after disposal), so the
// producer may push from any goroutine without further coordination. The
// producer's returned Disposable is disposed when the subscription ends for
// any reason.
func New[E any, F error](producer func(Observer[E, F]) Disposable) Signal[E, F] {
	return Signal[E, F]{producer: producer}
}

// Observe starts a production run, delivering events to obs until a
// terminal event or disposal. If the producer terminates synchronously the
// returned Disposable is already disposed when Observe returns.
func (s Signal[E, F]) Observe(obs Observer[E, F]) Disposable {
	core := newCoreObserver(obs)
	if s.producer != nil {
		core.attachUpstream(s.producer(core.observer()))
	}
	return core
}

// ObserveValues starts a production run delivering only next elements.
func (s Signal[E, F]) ObserveValues(fn func(E)) Disposable {
	return s.Observe(OnNext[E, F](fn))
}

// Scheduler is the execution-context/clock capability used by time-based
// operators and constructors. Implementations live in the sched package;
// the interface is declared here, on the consumer side, so the core has no
// dependency on any concrete scheduler.
type Scheduler interface {
	// Schedule runs work as soon as the scheduler allows, possibly
	// synchronously. Disposing the result cancels the work if it has
	// not run yet.
	Schedule(work func()) Disposable

	// ScheduleAfter runs work once the delay has elapsed. Disposing the
	// result cancels the pending work.
	ScheduleAfter(delay time.Duration, work func()) Disposable
}

// Just creates a signal that emits a single element and completes.
func Just[E any, F error](element E) Signal[E, F] {
	return New(func(obs Observer[E, F]) Disposable {
		obs.SendNext(element)
		obs.SendCompleted()
		return Disposed()
	})
}

// FromSlice creates a signal that emits the elements in order and
// completes. Each production run replays the slice from the start.
func FromSlice[E any, F error](elements []E) Signal[E, F] {
	return New(func(obs Observer[E, F]) Disposable {
		for _, e := range elements {
			obs.SendNext(e)
		}
		obs.SendCompleted()
		return Disposed()
	})
}

// Empty creates a signal that completes immediately.
func Empty[E any, F error]() Signal[E, F] {
	return New(func(obs Observer[E, F]) Disposable {
		obs.SendCompleted()
		return Disposed()
	})
}

// Failing creates a signal that fails immediately with the given failure.
func Failing[E any, F error](failure F) Signal[E, F] {
	return New(func(obs Observer[E, F]) Disposable {
		obs.SendFailed(failure)
		return Disposed()
	})
}

// NeverEnding creates a signal that emits nothing and never terminates.
func NeverEnding[E any, F error]() Signal[E, F] {
	return New(func(Observer[E, F]) Disposable {
		return NewDisposable(nil)
	})
}

// Interval creates a signal that emits 0, 1, 2, ... at a fixed period on
// the given scheduler and never completes on its own.
func Interval[F error](period time.Duration, scheduler Scheduler) Signal[int, F] {
	return New(func(obs Observer[int, F]) Disposable {
		timer := NewSerialDisposable()
		count := 0
		var tick func()
		tick = func() {
			v := count
			count++
			obs.SendNext(v)
			timer.Swap(scheduler.ScheduleAfter(period, tick))
		}
		timer.Swap(scheduler.ScheduleAfter(period, tick))
		return timer
	})
}

// FromSliceEvery creates a signal that emits the elements one at a time,
// spaced by the given period on the scheduler, then completes.
func FromSliceEvery[E any, F error](elements []E, period time.Duration, scheduler Scheduler) Signal[E, F] {
	return New(func(obs Observer[E, F]) Disposable {
		timer := NewSerialDisposable()
		index := 0
		var emit func()
		emit = func() {
			if index >= len(elements) {
				obs.SendCompleted()
				return
			}
			e := elements[index]
			index++
			obs.SendNext(e)
			timer.Swap(scheduler.ScheduleAfter(period, emit))
		}
		timer.Swap(scheduler.ScheduleAfter(period, emit))
		return timer
	})
}

// NewRecovering creates a signal whose producer may panic: panics are
// caught at the producer boundary and converted into a failed event rather
// than unwinding across Observe.
func NewRecovering[E any](producer func(Observer[E, error]) Disposable) Signal[E, error] {
	return New(func(obs Observer[E, error]) (d Disposable) {
		defer func() {
			if r := recover(); r != nil {
				obs.SendFailed(fmt.Errorf("signal: producer panicked: %v", r))
				d = Disposed()
			}
		}()
		return producer(obs)
	})
}
