package signal

import "sync"

// Merge subscribes to all sources concurrently and forwards every element
// as it arrives. The first failure from any source propagates immediately;
// completion is forwarded only once every source has completed. Merging
// nothing completes immediately.
func Merge[E any, F error](sources ...Signal[E, F]) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		if len(sources) == 0 {
			out.SendCompleted()
			return Disposed()
		}
		var mu sync.Mutex
		remaining := len(sources)
		comp := NewCompositeDisposable()
		for _, src := range sources {
			comp.Add(src.Observe(NewObserver(
				out.SendNext,
				out.SendFailed,
				func() {
					mu.Lock()
					remaining--
					done := remaining == 0
					mu.Unlock()
					if done {
						out.SendCompleted()
					}
				},
			)))
		}
		return comp
	})
}

// Concat runs the sources one at a time: the next source is subscribed
// only after the current one completes, and nothing is buffered. A failure
// from any source propagates immediately and abandons the rest.
func Concat[E any, F error](sources ...Signal[E, F]) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		serial := NewSerialDisposable()
		var mu sync.Mutex
		gen := 0

		var subscribe func(index int)
		subscribe = func(index int) {
			if index >= len(sources) {
				out.SendCompleted()
				return
			}
			mu.Lock()
			gen++
			myGen := gen
			mu.Unlock()

			d := sources[index].Observe(NewObserver(
				out.SendNext,
				out.SendFailed,
				func() { subscribe(index + 1) },
			))

			// A synchronously completing source has already advanced
			// to its successor; installing its stale disposable would
			// cancel the successor's subscription.
			mu.Lock()
			current := gen == myGen
			mu.Unlock()
			if current {
				serial.Swap(d)
			}
		}
		subscribe(0)
		return serial
	})
}

// CombineLatest emits nothing until both sources have emitted at least one
// element, then emits on every element from either side, combining it with
// the other side's most recent element. It completes when both sides have
// completed; a failure from either side propagates immediately.
func CombineLatest[A, B, C any, F error](a Signal[A, F], b Signal[B, F], combine func(A, B) C) Signal[C, F] {
	return New(func(out Observer[C, F]) Disposable {
		var mu sync.Mutex
		var (
			latestA A
			latestB B
			hasA    bool
			hasB    bool
			doneA   bool
			doneB   bool
		)
		comp := NewCompositeDisposable()
		comp.Add(a.Observe(NewObserver(
			func(v A) {
				mu.Lock()
				latestA = v
				hasA = true
				emit := hasB
				other := latestB
				mu.Unlock()
				if emit {
					out.SendNext(combine(v, other))
				}
			},
			out.SendFailed,
			func() {
				mu.Lock()
				doneA = true
				done := doneB
				mu.Unlock()
				if done {
					out.SendCompleted()
				}
			},
		)))
		comp.Add(b.Observe(NewObserver(
			func(v B) {
				mu.Lock()
				latestB = v
				hasB = true
				emit := hasA
				other := latestA
				mu.Unlock()
				if emit {
					out.SendNext(combine(other, v))
				}
			},
			out.SendFailed,
			func() {
				mu.Lock()
				doneB = true
				done := doneA
				mu.Unlock()
				if done {
					out.SendCompleted()
				}
			},
		)))
		return comp
	})
}

// Zip pairs elements positionally: each side buffers independently and a
// combined element is emitted only when both buffers are non-empty,
// consuming one from each in FIFO order. The zipped signal completes once
// either side has completed and that side's buffer is drained.
func Zip[A, B, C any, F error](a Signal[A, F], b Signal[B, F], combine func(A, B) C) Signal[C, F] {
	return New(func(out Observer[C, F]) Disposable {
		var mu sync.Mutex
		var (
			bufA  []A
			bufB  []B
			doneA bool
			doneB bool
		)

		// pop consumes a pair if both buffers hold one, and reports
		// whether the stream is exhausted afterwards.
		pop := func() (pairA A, pairB B, emit, complete bool) {
			if len(bufA) > 0 && len(bufB) > 0 {
				pairA, pairB = bufA[0], bufB[0]
				bufA = bufA[1:]
				bufB = bufB[1:]
				emit = true
			}
			complete = (doneA && len(bufA) == 0) || (doneB && len(bufB) == 0)
			return
		}

		deliver := func(pairA A, pairB B, emit, complete bool) {
			if emit {
				out.SendNext(combine(pairA, pairB))
			}
			if complete {
				out.SendCompleted()
			}
		}

		comp := NewCompositeDisposable()
		comp.Add(a.Observe(NewObserver(
			func(v A) {
				mu.Lock()
				bufA = append(bufA, v)
				pairA, pairB, emit, complete := pop()
				mu.Unlock()
				deliver(pairA, pairB, emit, complete)
			},
			out.SendFailed,
			func() {
				mu.Lock()
				doneA = true
				complete := len(bufA) == 0
				mu.Unlock()
				if complete {
					out.SendCompleted()
				}
			},
		)))
		comp.Add(b.Observe(NewObserver(
			func(v B) {
				mu.Lock()
				bufB = append(bufB, v)
				pairA, pairB, emit, complete := pop()
				mu.Unlock()
				deliver(pairA, pairB, emit, complete)
			},
			out.SendFailed,
			func() {
				mu.Lock()
				doneB = true
				complete := len(bufB) == 0
				mu.Unlock()
				if complete {
					out.SendCompleted()
				}
			},
		)))
		return comp
	})
}

// Amb forwards all events from whichever source emits or terminates first
// and cancels the other. Exactly one side wins even under truly concurrent
// emission.
func Amb[E any, F error](a, b Signal[E, F]) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		const (
			undecided = iota
			wonA
			wonB
		)
		var mu sync.Mutex
		winner := undecided
		var disposables [2]Disposable

		// claim resolves the race on the first event from either side.
		// The loser's subscription is disposed outside the lock.
		claim := func(side int) bool {
			mu.Lock()
			if winner == undecided {
				winner = side
			}
			mine := winner == side
			var loser Disposable
			if mine {
				other := 1 - (side - wonA)
				loser = disposables[other]
				disposables[other] = nil
			}
			mu.Unlock()
			if loser != nil {
				loser.Dispose()
			}
			return mine
		}

		forward := func(side int) Observer[E, F] {
			return OnEvent(func(ev Event[E, F]) {
				if claim(side) {
					out.Send(ev)
				}
			})
		}

		dA := a.Observe(forward(wonA))
		mu.Lock()
		alreadyWonA := winner == wonA
		if !alreadyWonA {
			disposables[0] = dA
		}
		mu.Unlock()
		if alreadyWonA {
			// a won synchronously; b must not be subscribed at all.
			return dA
		}

		dB := b.Observe(forward(wonB))
		mu.Lock()
		w := winner
		if w != wonA {
			disposables[1] = dB
		}
		mu.Unlock()
		if w == wonA {
			dB.Dispose()
		}

		return NewCompositeDisposable(dA, dB)
	})
}
