package signal

import "fmt"

// EventKind identifies the variant of an Event.
type EventKind uint8

const (
	// KindNext carries an element of the stream.
	KindNext EventKind = iota + 1
	// KindFailed carries the typed failure that ended the stream.
	KindFailed
	// KindCompleted marks successful termination of the stream.
	KindCompleted
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case KindNext:
		return "next"
	case KindFailed:
		return "failed"
	case KindCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Event is the unit of communication between a signal and its observers:
// either a next element, a typed failure, or completion. Failed and
// completed are mutually exclusive terminal states; once an observer has
// received a terminal event it receives nothing further.
type Event[E any, F error] struct {
	kind    EventKind
	element E
	failure F
}

// Next creates an event carrying an element.
func Next[E any, F error](element E) Event[E, F] {
	return Event[E, F]{kind: KindNext, element: element}
}

// Failed creates a terminal event carrying a failure.
func Failed[E any, F error](failure F) Event[E, F] {
	return Event[E, F]{kind: KindFailed, failure: failure}
}

// Completed creates the terminal event marking successful completion.
func Completed[E any, F error]() Event[E, F] {
	return Event[E, F]{kind: KindCompleted}
}

// Kind returns the variant of the event.
func (e Event[E, F]) Kind() EventKind {
	return e.kind
}

// IsTerminal reports whether the event ends the stream.
func (e Event[E, F]) IsTerminal() bool {
	return e.kind == KindFailed || e.kind == KindCompleted
}

// Element returns the carried element and whether this is a next event.
func (e Event[E, F]) Element() (E, bool) {
	return e.element, e.kind == KindNext
}

// Failure returns the carried failure and whether this is a failed event.
func (e Event[E, F]) Failure() (F, bool) {
	return e.failure, e.kind == KindFailed
}

// String formats the event for diagnostics.
func (e Event[E, F]) String() string {
	switch e.kind {
	case KindNext:
		return fmt.Sprintf("next(%v)", e.element)
	case KindFailed:
		return fmt.Sprintf("failed(%v)", error(e.failure))
	case KindCompleted:
		return "completed"
	default:
		return "event(unknown)"
	}
}

// Never is a failure type with no meaningful values. A Signal[E, Never]
// can never deliver a failed event, which marks it as safe at the type
// level; operators such as SuppressError produce such signals and Property
// requires one.
type Never struct{}

// Error implements the error interface. It is unreachable in correct use
// since no code path constructs a Never failure.
func (Never) Error() string {
	return "signal: the Never failure cannot occur"
}
