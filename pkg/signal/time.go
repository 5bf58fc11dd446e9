package signal

import (
	"sync"
	"time"
)

// Debounce emits the most recent element only after interval has elapsed
// with no further upstream elements. A pending element is discarded when
// the upstream terminates. Requires a scheduler for its timers.
func Debounce[E any, F error](s Signal[E, F], interval time.Duration, scheduler Scheduler) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		var mu sync.Mutex
		var (
			pending E
			has     bool
			gen     uint64
		)
		timer := NewSerialDisposable()

		upstream := s.Observe(NewObserver(
			func(e E) {
				mu.Lock()
				pending = e
				has = true
				gen++
				myGen := gen
				mu.Unlock()

				timer.Swap(scheduler.ScheduleAfter(interval, func() {
					mu.Lock()
					if gen != myGen || !has {
						mu.Unlock()
						return
					}
					v := pending
					has = false
					mu.Unlock()
					out.SendNext(v)
				}))
			},
			func(failure F) {
				timer.Dispose()
				out.SendFailed(failure)
			},
			func() {
				timer.Dispose()
				out.SendCompleted()
			},
		))
		return NewCompositeDisposable(upstream, timer)
	})
}

// Throttle emits the first element of each window immediately, then
// suppresses further elements until the window's timer fires. If elements
// arrived during the window, the latest of them is emitted when it closes
// and a new window begins.
func Throttle[E any, F error](s Signal[E, F], interval time.Duration, scheduler Scheduler) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		var mu sync.Mutex
		var (
			windowOpen bool
			pending    E
			hasPending bool
			terminated bool
		)
		timer := NewSerialDisposable()

		var windowEnd func()
		windowEnd = func() {
			mu.Lock()
			if terminated {
				mu.Unlock()
				return
			}
			if !hasPending {
				windowOpen = false
				mu.Unlock()
				return
			}
			v := pending
			hasPending = false
			mu.Unlock()
			out.SendNext(v)
			timer.Swap(scheduler.ScheduleAfter(interval, windowEnd))
		}

		upstream := s.Observe(NewObserver(
			func(e E) {
				mu.Lock()
				if windowOpen {
					pending = e
					hasPending = true
					mu.Unlock()
					return
				}
				windowOpen = true
				mu.Unlock()
				out.SendNext(e)
				timer.Swap(scheduler.ScheduleAfter(interval, windowEnd))
			},
			func(failure F) {
				mu.Lock()
				terminated = true
				mu.Unlock()
				timer.Dispose()
				out.SendFailed(failure)
			},
			func() {
				mu.Lock()
				terminated = true
				mu.Unlock()
				timer.Dispose()
				out.SendCompleted()
			},
		))
		return NewCompositeDisposable(upstream, timer)
	})
}

// Timeout fails the signal with the given failure if interval elapses
// without an upstream event. Every element resets the timer, as does the
// subscription itself; the internal timer is cancelled on normal
// termination.
func Timeout[E any, F error](s Signal[E, F], interval time.Duration, failure F, scheduler Scheduler) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		timer := NewSerialDisposable()

		arm := func() {
			timer.Swap(scheduler.ScheduleAfter(interval, func() {
				out.SendFailed(failure)
			}))
		}
		arm()

		upstream := s.Observe(NewObserver(
			func(e E) {
				arm()
				out.SendNext(e)
			},
			func(f F) {
				timer.Dispose()
				out.SendFailed(f)
			},
			func() {
				timer.Dispose()
				out.SendCompleted()
			},
		))
		return NewCompositeDisposable(upstream, timer)
	})
}

// Delay re-emits every element after the given delay on the scheduler.
// Terminal events are also delayed, preserving their position relative to
// the delayed elements when the scheduler is serial.
func Delay[E any, F error](s Signal[E, F], delay time.Duration, scheduler Scheduler) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		// Timer handles are kept only until they fire, so a long-lived
		// stream holds at most its in-flight timers.
		var (
			mu       sync.Mutex
			pending  = make(map[uint64]Disposable)
			next     uint64
			disposed bool
		)
		upstream := s.Observe(OnEvent(func(ev Event[E, F]) {
			mu.Lock()
			if disposed {
				mu.Unlock()
				return
			}
			token := next
			next++
			mu.Unlock()

			d := scheduler.ScheduleAfter(delay, func() {
				mu.Lock()
				delete(pending, token)
				mu.Unlock()
				out.Send(ev)
			})
			mu.Lock()
			if disposed {
				mu.Unlock()
				d.Dispose()
				return
			}
			if !d.IsDisposed() {
				pending[token] = d
			}
			mu.Unlock()
		}))
		return NewDisposable(func() {
			mu.Lock()
			disposed = true
			timers := make([]Disposable, 0, len(pending))
			for _, t := range pending {
				timers = append(timers, t)
			}
			pending = nil
			mu.Unlock()

			upstream.Dispose()
			for _, t := range timers {
				t.Dispose()
			}
		})
	})
}
