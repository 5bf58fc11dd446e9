package signal

import "sync"

// Operators are free generic functions rather than methods because Go
// methods cannot introduce new type parameters. Each operator observes the
// upstream signal, reinterprets events, and pushes to its own observer; the
// disposable it returns cancels the upstream subscription.

// Map transforms every element with f.
func Map[E, U any, F error](s Signal[E, F], f func(E) U) Signal[U, F] {
	return New(func(out Observer[U, F]) Disposable {
		return s.Observe(NewObserver(
			func(e E) { out.SendNext(f(e)) },
			out.SendFailed,
			out.SendCompleted,
		))
	})
}

// MapFailure transforms the failure, leaving elements untouched.
func MapFailure[E any, F, G error](s Signal[E, F], f func(F) G) Signal[E, G] {
	return New(func(out Observer[E, G]) Disposable {
		return s.Observe(NewObserver(
			out.SendNext,
			func(failure F) { out.SendFailed(f(failure)) },
			out.SendCompleted,
		))
	})
}

// Filter forwards only the elements for which pred returns true.
func Filter[E any, F error](s Signal[E, F], pred func(E) bool) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		return s.Observe(NewObserver(
			func(e E) {
				if pred(e) {
					out.SendNext(e)
				}
			},
			out.SendFailed,
			out.SendCompleted,
		))
	})
}

// Scan emits the initial accumulator immediately, then the updated
// accumulator after every upstream element.
func Scan[E, A any, F error](s Signal[E, F], initial A, f func(A, E) A) Signal[A, F] {
	return New(func(out Observer[A, F]) Disposable {
		var mu sync.Mutex
		acc := initial
		out.SendNext(initial)
		return s.Observe(NewObserver(
			func(e E) {
				mu.Lock()
				acc = f(acc, e)
				next := acc
				mu.Unlock()
				out.SendNext(next)
			},
			out.SendFailed,
			out.SendCompleted,
		))
	})
}

// Reduce folds the stream and emits only the final accumulator at
// completion. An empty stream yields the initial accumulator.
func Reduce[E, A any, F error](s Signal[E, F], initial A, f func(A, E) A) Signal[A, F] {
	return New(func(out Observer[A, F]) Disposable {
		var mu sync.Mutex
		acc := initial
		return s.Observe(NewObserver(
			func(e E) {
				mu.Lock()
				acc = f(acc, e)
				mu.Unlock()
			},
			out.SendFailed,
			func() {
				mu.Lock()
				final := acc
				mu.Unlock()
				out.SendNext(final)
				out.SendCompleted()
			},
		))
	})
}

// Take forwards the first n elements then completes. n <= 0 completes
// immediately without subscribing upstream.
func Take[E any, F error](s Signal[E, F], n int) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		if n <= 0 {
			out.SendCompleted()
			return Disposed()
		}
		var mu sync.Mutex
		remaining := n
		return s.Observe(NewObserver(
			func(e E) {
				mu.Lock()
				if remaining == 0 {
					mu.Unlock()
					return
				}
				remaining--
				last := remaining == 0
				mu.Unlock()
				out.SendNext(e)
				if last {
					out.SendCompleted()
				}
			},
			out.SendFailed,
			out.SendCompleted,
		))
	})
}

// TakeLast buffers up to n elements and emits them at completion.
func TakeLast[E any, F error](s Signal[E, F], n int) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		var mu sync.Mutex
		var buf []E
		return s.Observe(NewObserver(
			func(e E) {
				if n <= 0 {
					return
				}
				mu.Lock()
				buf = append(buf, e)
				if len(buf) > n {
					buf = buf[1:]
				}
				mu.Unlock()
			},
			out.SendFailed,
			func() {
				mu.Lock()
				tail := buf
				buf = nil
				mu.Unlock()
				for _, e := range tail {
					out.SendNext(e)
				}
				out.SendCompleted()
			},
		))
	})
}

// Skip drops the first n elements and forwards the rest.
func Skip[E any, F error](s Signal[E, F], n int) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		var mu sync.Mutex
		remaining := n
		return s.Observe(NewObserver(
			func(e E) {
				mu.Lock()
				if remaining > 0 {
					remaining--
					mu.Unlock()
					return
				}
				mu.Unlock()
				out.SendNext(e)
			},
			out.SendFailed,
			out.SendCompleted,
		))
	})
}

// Buffer groups elements into slices of exactly size elements. A partial
// group left over at completion is dropped, not flushed.
func Buffer[E any, F error](s Signal[E, F], size int) Signal[[]E, F] {
	return New(func(out Observer[[]E, F]) Disposable {
		if size <= 0 {
			out.SendCompleted()
			return Disposed()
		}
		var mu sync.Mutex
		buf := make([]E, 0, size)
		return s.Observe(NewObserver(
			func(e E) {
				mu.Lock()
				buf = append(buf, e)
				var full []E
				if len(buf) == size {
					full = buf
					buf = make([]E, 0, size)
				}
				mu.Unlock()
				if full != nil {
					out.SendNext(full)
				}
			},
			out.SendFailed,
			out.SendCompleted,
		))
	})
}

// Collect gathers every element and emits them as a single slice at
// completion.
func Collect[E any, F error](s Signal[E, F]) Signal[[]E, F] {
	return New(func(out Observer[[]E, F]) Disposable {
		var mu sync.Mutex
		var all []E
		return s.Observe(NewObserver(
			func(e E) {
				mu.Lock()
				all = append(all, e)
				mu.Unlock()
			},
			out.SendFailed,
			func() {
				mu.Lock()
				collected := all
				all = nil
				mu.Unlock()
				out.SendNext(collected)
				out.SendCompleted()
			},
		))
	})
}

// Tap invokes fn for every event, terminal ones included, then forwards
// the event unchanged. Instrumentation layers build on this.
func Tap[E any, F error](s Signal[E, F], fn func(Event[E, F])) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		return s.Observe(OnEvent(func(ev Event[E, F]) {
			fn(ev)
			out.Send(ev)
		}))
	})
}
