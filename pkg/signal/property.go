package signal

import (
	"sync"
	"sync/atomic"
)

// Property is a subject specialized to hold exactly one current value and
// never fail. Every new observer receives the current value synchronously,
// before Observe returns, then every subsequent value. Setting the value
// is equivalent to sending it.
type Property[E any] struct {
	mu      sync.Mutex
	value   E
	subject *Subject[E, Never]
}

// NewProperty creates a property holding the initial value.
func NewProperty[E any](initial E) *Property[E] {
	p := &Property[E]{
		value:   initial,
		subject: NewReplayLastSubject[E, Never](),
	}
	p.subject.SendNext(initial)
	return p
}

// Value returns the current value: the element most recently delivered
// to observers. A re-entrant read from inside an observer callback sees
// the element being delivered, not one still queued behind it.
func (p *Property[E]) Value() E {
	v, _ := p.subject.lastElement()
	return v
}

// Set stores a new current value and sends it to every observer.
func (p *Property[E]) Set(value E) {
	p.mu.Lock()
	p.value = value
	p.mu.Unlock()
	p.subject.SendNext(value)
}

// Update applies f to the current value atomically and sends the result.
func (p *Property[E]) Update(f func(E) E) {
	p.mu.Lock()
	p.value = f(p.value)
	value := p.value
	p.mu.Unlock()
	p.subject.SendNext(value)
}

// Observe registers an observer; the current value arrives synchronously
// as its first event.
func (p *Property[E]) Observe(obs Observer[E, Never]) Disposable {
	return p.subject.Observe(obs)
}

// Signal exposes the property as a Signal for composition with operators.
func (p *Property[E]) Signal() Signal[E, Never] {
	return p.subject.Signal()
}

// Bind forwards every element of src into dst, starting with src's current
// state if it replays one. Disposing the result ends the binding.
func Bind[E any](dst *Property[E], src Signal[E, Never]) Disposable {
	return src.Observe(OnNext[E, Never](dst.Set))
}

// BindBidirectional keeps two properties in sync in both directions,
// starting from a's current value. The feedback loop is suppressed by a
// per-direction propagation flag rather than value equality, so even
// values that compare equal do not echo back to their origin.
func BindBidirectional[E any](a, b *Property[E]) Disposable {
	var aToB, bToA atomic.Bool

	da := a.Observe(OnNext[E, Never](func(v E) {
		if bToA.Load() {
			return
		}
		aToB.Store(true)
		b.Set(v)
		aToB.Store(false)
	}))
	db := b.Observe(OnNext[E, Never](func(v E) {
		if aToB.Load() {
			return
		}
		bToA.Store(true)
		a.Set(v)
		bToA.Store(false)
	}))
	return NewCompositeDisposable(da, db)
}
