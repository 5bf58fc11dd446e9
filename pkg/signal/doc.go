// Package signal provides the reactive core for rivulet: cold, push-based
// streams of events with composition operators, hot multicast subjects, and
// subscription lifetime management that is safe under concurrent use.
//
// # Core Types
//
// Signal[E, F] is a lazy producer of events. Nothing happens until Observe
// is called; each Observe call is an independent production run:
//
//	s := signal.FromSlice[int, signal.Never]([]int{1, 2, 3})
//	d := s.Observe(signal.OnNext(func(v int) { fmt.Println(v) }))
//	d.Dispose()
//
// Event[E, F] is the three-state event model: a next element, a typed
// failure, or completion. Failed and completed are terminal; no event is
// ever delivered to an observer after a terminal event.
//
// Never is an error type with no meaningful values. A Signal[E, Never]
// statically cannot fail, which many operators exploit.
//
// # Operators
//
// Operators are free generic functions that wrap an upstream signal's
// Observe call:
//
//	doubled := signal.Map(s, func(v int) int { return v * 2 })
//	evens := signal.Filter(doubled, func(v int) bool { return v%2 == 0 })
//
// Time-based operators (Debounce, Throttle, Timeout, Interval) take a
// Scheduler, the externally supplied execution-context/clock capability.
// See the sched package for implementations.
//
// # Subjects and Properties
//
// Subject[E, F] is a hot multicast source: events pushed with Send fan out
// to every registered observer. Fan-out is linearizable per subject: all
// observers see the same relative interleaving of events. Property[E] holds
// a current value and replays it synchronously to each new observer.
//
// # Thread Safety
//
// All primitives are safe for concurrent use. Delivery to downstream
// callbacks never happens while an internal lock is held, so a callback may
// re-enter the library (dispose its own subscription, push into the subject
// that called it) without deadlocking.
package signal
