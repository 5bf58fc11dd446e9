package signal

import "sync"

// FlattenStrategy selects how FlatMap combines the inner signals produced
// from each upstream element into a single stream.
type FlattenStrategy uint8

const (
	// StrategyMerge runs every inner signal concurrently, forwarding
	// elements as they arrive from any of them.
	StrategyMerge FlattenStrategy = iota + 1
	// StrategyLatest cancels the previous inner signal whenever a new
	// one arrives, forwarding only the most recent inner signal.
	StrategyLatest
	// StrategyConcat queues inner signals in arrival order and runs one
	// at a time.
	StrategyConcat
)

// String returns a human-readable name for the strategy.
func (s FlattenStrategy) String() string {
	switch s {
	case StrategyMerge:
		return "merge"
	case StrategyLatest:
		return "latest"
	case StrategyConcat:
		return "concat"
	default:
		return "unknown"
	}
}

// FlatMap maps every upstream element to an inner signal and flattens the
// inner signals per the strategy. Outer and inner completion are tracked
// independently: the result completes only when the outer signal has
// completed and no inner signal is still running. A failure from the outer
// signal or any live inner signal propagates immediately.
func FlatMap[E, U any, F error](s Signal[E, F], strategy FlattenStrategy, transform func(E) Signal[U, F]) Signal[U, F] {
	switch strategy {
	case StrategyLatest:
		return flattenLatest(s, transform)
	case StrategyConcat:
		return flattenConcat(s, transform)
	default:
		return flattenMerge(s, transform)
	}
}

func flattenMerge[E, U any, F error](s Signal[E, F], transform func(E) Signal[U, F]) Signal[U, F] {
	return New(func(out Observer[U, F]) Disposable {
		var mu sync.Mutex
		var (
			activeInner int
			outerDone   bool
			nextKey     uint64
			inners      = make(map[uint64]Disposable)
			disposed    bool
		)

		innerCompleted := func(key uint64) {
			mu.Lock()
			delete(inners, key)
			activeInner--
			done := outerDone && activeInner == 0
			mu.Unlock()
			if done {
				out.SendCompleted()
			}
		}

		outer := s.Observe(NewObserver(
			func(e E) {
				inner := transform(e)
				mu.Lock()
				if disposed {
					mu.Unlock()
					return
				}
				activeInner++
				key := nextKey
				nextKey++
				mu.Unlock()

				d := inner.Observe(NewObserver(
					out.SendNext,
					out.SendFailed,
					func() { innerCompleted(key) },
				))

				mu.Lock()
				if !d.IsDisposed() && !disposed {
					inners[key] = d
				}
				mu.Unlock()
			},
			out.SendFailed,
			func() {
				mu.Lock()
				outerDone = true
				done := activeInner == 0
				mu.Unlock()
				if done {
					out.SendCompleted()
				}
			},
		))

		return NewDisposable(func() {
			mu.Lock()
			disposed = true
			live := make([]Disposable, 0, len(inners))
			for _, d := range inners {
				live = append(live, d)
			}
			inners = nil
			mu.Unlock()
			outer.Dispose()
			for _, d := range live {
				d.Dispose()
			}
		})
	})
}

func flattenLatest[E, U any, F error](s Signal[E, F], transform func(E) Signal[U, F]) Signal[U, F] {
	return New(func(out Observer[U, F]) Disposable {
		var mu sync.Mutex
		var (
			gen       uint64
			hasInner  bool
			outerDone bool
		)
		serial := NewSerialDisposable()

		outer := s.Observe(NewObserver(
			func(e E) {
				inner := transform(e)
				mu.Lock()
				gen++
				myGen := gen
				hasInner = true
				mu.Unlock()

				// Cancel the previous inner before starting the new one.
				serial.Swap(nil)
				d := inner.Observe(NewObserver(
					out.SendNext,
					out.SendFailed,
					func() {
						mu.Lock()
						current := gen == myGen
						if current {
							hasInner = false
						}
						done := current && outerDone
						mu.Unlock()
						if done {
							out.SendCompleted()
						}
					},
				))

				mu.Lock()
				current := gen == myGen
				mu.Unlock()
				if current {
					serial.Swap(d)
				} else {
					d.Dispose()
				}
			},
			out.SendFailed,
			func() {
				// A still-running inner keeps the result alive after
				// the outer completes.
				mu.Lock()
				outerDone = true
				done := !hasInner
				mu.Unlock()
				if done {
					out.SendCompleted()
				}
			},
		))

		return NewCompositeDisposable(outer, serial)
	})
}

func flattenConcat[E, U any, F error](s Signal[E, F], transform func(E) Signal[U, F]) Signal[U, F] {
	return New(func(out Observer[U, F]) Disposable {
		var mu sync.Mutex
		var (
			queue     []Signal[U, F]
			running   bool
			outerDone bool
			gen       uint64
		)
		serial := NewSerialDisposable()

		var subscribeInner func(inner Signal[U, F])
		subscribeInner = func(inner Signal[U, F]) {
			mu.Lock()
			gen++
			myGen := gen
			mu.Unlock()

			d := inner.Observe(NewObserver(
				out.SendNext,
				out.SendFailed,
				func() {
					mu.Lock()
					if len(queue) > 0 {
						next := queue[0]
						queue = queue[1:]
						mu.Unlock()
						subscribeInner(next)
						return
					}
					running = false
					done := outerDone
					mu.Unlock()
					if done {
						out.SendCompleted()
					}
				},
			))

			mu.Lock()
			current := gen == myGen
			mu.Unlock()
			if current {
				serial.Swap(d)
			}
		}

		outer := s.Observe(NewObserver(
			func(e E) {
				inner := transform(e)
				mu.Lock()
				if running {
					queue = append(queue, inner)
					mu.Unlock()
					return
				}
				running = true
				mu.Unlock()
				subscribeInner(inner)
			},
			out.SendFailed,
			func() {
				mu.Lock()
				outerDone = true
				done := !running && len(queue) == 0
				mu.Unlock()
				if done {
					out.SendCompleted()
				}
			},
		))

		return NewCompositeDisposable(outer, serial)
	})
}

// FlatMapError maps a failure to a recovery signal of the same element
// type, allowing a failed stream to continue with another failure type.
// Elements and completion pass through untouched.
func FlatMapError[E any, F, G error](s Signal[E, F], transform func(F) Signal[E, G]) Signal[E, G] {
	return New(func(out Observer[E, G]) Disposable {
		serial := NewSerialDisposable()
		var mu sync.Mutex
		gen := 0

		d := s.Observe(NewObserver(
			out.SendNext,
			func(failure F) {
				recovery := transform(failure)
				mu.Lock()
				gen++
				mu.Unlock()
				rd := recovery.Observe(NewObserver(
					out.SendNext,
					out.SendFailed,
					out.SendCompleted,
				))
				serial.Swap(rd)
			},
			out.SendCompleted,
		))

		mu.Lock()
		current := gen == 0
		mu.Unlock()
		if current {
			serial.Swap(d)
		}
		return serial
	})
}
