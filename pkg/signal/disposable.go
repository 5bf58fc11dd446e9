package signal

import (
	"sync"
	"sync/atomic"
)

// Disposable is a handle for an active subscription or resource. Dispose is
// idempotent and safe to call from any goroutine, concurrently with an
// in-flight dispatch. IsDisposed transitions from false to true exactly
// once and never reverts.
type Disposable interface {
	Dispose()
	IsDisposed() bool
}

// funcDisposable runs a function exactly once on disposal.
type funcDisposable struct {
	disposed atomic.Bool
	fn       func()
}

// NewDisposable creates a Disposable that invokes fn on the first Dispose
// call. fn may be nil.
func NewDisposable(fn func()) Disposable {
	return &funcDisposable{fn: fn}
}

func (d *funcDisposable) Dispose() {
	if d.disposed.CompareAndSwap(false, true) {
		if d.fn != nil {
			d.fn()
		}
	}
}

func (d *funcDisposable) IsDisposed() bool {
	return d.disposed.Load()
}

// nopDisposable is permanently disposed and does nothing.
type nopDisposable struct{}

func (nopDisposable) Dispose()         {}
func (nopDisposable) IsDisposed() bool { return true }

// Disposed returns a Disposable that is already disposed. Useful for
// producers that finish all their work synchronously.
func Disposed() Disposable {
	return nopDisposable{}
}

// CompositeDisposable aggregates child disposables and disposes them all
// together. Adding a child after disposal disposes the child immediately.
type CompositeDisposable struct {
	mu       sync.Mutex
	disposed bool
	children []Disposable
}

// NewCompositeDisposable creates a composite holding the given children.
func NewCompositeDisposable(children ...Disposable) *CompositeDisposable {
	c := &CompositeDisposable{}
	c.children = append(c.children, children...)
	return c
}

// Add registers a child. If the composite is already disposed the child is
// disposed immediately instead.
func (c *CompositeDisposable) Add(d Disposable) {
	if d == nil {
		return
	}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		d.Dispose()
		return
	}
	c.children = append(c.children, d)
	c.mu.Unlock()
}

// Dispose disposes every child. Children are disposed outside the
// composite's lock so a child may re-enter the composite.
func (c *CompositeDisposable) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	children := c.children
	c.children = nil
	c.mu.Unlock()

	for _, d := range children {
		d.Dispose()
	}
}

// IsDisposed reports whether Dispose has been called.
func (c *CompositeDisposable) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// SerialDisposable holds at most one child disposable at a time. Swapping
// in a new child atomically disposes the previous one. Used wherever an
// operator cancels and replaces an inner subscription (switch-to-latest,
// retry, debounce timers).
type SerialDisposable struct {
	mu       sync.Mutex
	disposed bool
	current  Disposable
}

// NewSerialDisposable creates an empty SerialDisposable.
func NewSerialDisposable() *SerialDisposable {
	return &SerialDisposable{}
}

// Swap installs d as the current child and disposes the previous child.
// If the SerialDisposable itself is already disposed, d is disposed
// immediately. d may be nil to merely cancel the current child.
func (s *SerialDisposable) Swap(d Disposable) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		if d != nil {
			d.Dispose()
		}
		return
	}
	prev := s.current
	s.current = d
	s.mu.Unlock()

	if prev != nil {
		prev.Dispose()
	}
}

// Dispose disposes the current child and marks the serial disposed.
func (s *SerialDisposable) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	current := s.current
	s.current = nil
	s.mu.Unlock()

	if current != nil {
		current.Dispose()
	}
}

// IsDisposed reports whether Dispose has been called.
func (s *SerialDisposable) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
