package signal

// Observer consumes the events of a signal. The zero value discards
// everything. Construct one with NewObserver, OnNext, or OnEvent.
type Observer[E any, F error] struct {
	onNext      func(E)
	onFailed    func(F)
	onCompleted func()
}

// NewObserver creates an observer from per-variant callbacks. Any callback
// may be nil, in which case that variant is ignored.
func NewObserver[E any, F error](onNext func(E), onFailed func(F), onCompleted func()) Observer[E, F] {
	return Observer[E, F]{onNext: onNext, onFailed: onFailed, onCompleted: onCompleted}
}

// OnNext creates an observer that only handles next events.
func OnNext[E any, F error](fn func(E)) Observer[E, F] {
	return Observer[E, F]{onNext: fn}
}

// OnEvent creates an observer that receives every event through a single
// callback, terminal events included.
func OnEvent[E any, F error](fn func(Event[E, F])) Observer[E, F] {
	return Observer[E, F]{
		onNext:      func(e E) { fn(Next[E, F](e)) },
		onFailed:    func(f F) { fn(Failed[E](f)) },
		onCompleted: func() { fn(Completed[E, F]()) },
	}
}

// Send dispatches an event to the matching callback.
func (o Observer[E, F]) Send(ev Event[E, F]) {
	switch ev.kind {
	case KindNext:
		if o.onNext != nil {
			o.onNext(ev.element)
		}
	case KindFailed:
		if o.onFailed != nil {
			o.onFailed(ev.failure)
		}
	case KindCompleted:
		if o.onCompleted != nil {
			o.onCompleted()
		}
	}
}

// SendNext delivers an element.
func (o Observer[E, F]) SendNext(element E) {
	if o.onNext != nil {
		o.onNext(element)
	}
}

// SendFailed delivers a terminal failure.
func (o Observer[E, F]) SendFailed(failure F) {
	if o.onFailed != nil {
		o.onFailed(failure)
	}
}

// SendCompleted delivers the terminal completion.
func (o Observer[E, F]) SendCompleted() {
	if o.onCompleted != nil {
		o.onCompleted()
	}
}
