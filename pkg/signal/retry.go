package signal

import "sync"

// Retry resubscribes to the source on failure, up to times additional
// attempts, before letting the final failure through. Elements from every
// attempt are forwarded; completion passes through unchanged. Each attempt
// fully supersedes the previous one.
func Retry[E any, F error](s Signal[E, F], times int) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		serial := NewSerialDisposable()
		var mu sync.Mutex
		gen := 0

		var attempt func(remaining int)
		attempt = func(remaining int) {
			mu.Lock()
			gen++
			myGen := gen
			mu.Unlock()

			d := s.Observe(NewObserver(
				out.SendNext,
				func(failure F) {
					if remaining > 0 {
						attempt(remaining - 1)
						return
					}
					out.SendFailed(failure)
				},
				out.SendCompleted,
			))

			mu.Lock()
			current := gen == myGen
			mu.Unlock()
			if current {
				serial.Swap(d)
			}
		}
		attempt(times)
		return serial
	})
}

// RetryWhen resubscribes to the source after a failure once the trigger
// signal emits its next element. If the trigger completes without emitting,
// the pending failure propagates; if the trigger fails, its failure
// propagates. Resubscription is safe even when the trigger fires
// synchronously within the call stack that delivered it.
func RetryWhen[E any, T any, F error](s Signal[E, F], trigger Signal[T, F]) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		serial := NewSerialDisposable()
		var mu sync.Mutex
		gen := 0

		swapCurrent := func(myGen int, d Disposable) {
			mu.Lock()
			current := gen == myGen
			mu.Unlock()
			if current {
				serial.Swap(d)
			}
		}

		var attempt func()
		attempt = func() {
			mu.Lock()
			gen++
			myGen := gen
			mu.Unlock()

			d := s.Observe(NewObserver(
				out.SendNext,
				func(failure F) {
					// Wait for one trigger element, then try again.
					mu.Lock()
					gen++
					waitGen := gen
					mu.Unlock()

					fired := false
					td := Take(trigger, 1).Observe(NewObserver(
						func(T) {
							fired = true
							attempt()
						},
						out.SendFailed,
						func() {
							if !fired {
								out.SendFailed(failure)
							}
						},
					))
					swapCurrent(waitGen, td)
				},
				out.SendCompleted,
			))
			swapCurrent(myGen, d)
		}
		attempt()
		return serial
	})
}
