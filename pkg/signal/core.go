package signal

import "sync"

// coreObserver is the atomic single-observer wrapper sitting between every
// producer and the observer handed to Observe. It enforces the delivery
// contract:
//
//   - at most one terminal event reaches the downstream observer
//   - nothing reaches the downstream observer after disposal
//   - events from concurrent senders are delivered one at a time, in the
//     order they were accepted
//   - the downstream callback is never invoked while the wrapper's lock is
//     held, so a callback may dispose its own subscription or push more
//     events without deadlocking
//
// Serialization uses a pending-queue drain: the sender that finds the queue
// idle becomes the drainer and delivers until the queue empties; senders
// arriving meanwhile (including re-entrant sends from inside a delivery)
// only enqueue.
type coreObserver[E any, F error] struct {
	mu         sync.Mutex
	queue      []Event[E, F]
	draining   bool
	terminated bool // a terminal event has been accepted
	downstream *Observer[E, F]
	upstream   Disposable
}

func newCoreObserver[E any, F error](downstream Observer[E, F]) *coreObserver[E, F] {
	return &coreObserver[E, F]{downstream: &downstream}
}

// observer returns the facade handed to producers.
func (c *coreObserver[E, F]) observer() Observer[E, F] {
	return OnEvent(c.send)
}

// send accepts an event for delivery. Events after the first terminal
// event, or after disposal, are silently dropped.
func (c *coreObserver[E, F]) send(ev Event[E, F]) {
	c.mu.Lock()
	if c.terminated || c.downstream == nil {
		c.mu.Unlock()
		return
	}
	if ev.IsTerminal() {
		c.terminated = true
	}
	c.queue = append(c.queue, ev)
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	c.drainLocked()
}

// preload queues events on a fresh wrapper and claims the drain so that
// concurrent senders only enqueue until flush runs. Subjects use this to
// deliver replay content before any live event, without holding the
// subject's registry lock across the delivery.
func (c *coreObserver[E, F]) preload(events []Event[E, F]) {
	c.mu.Lock()
	for _, ev := range events {
		if c.terminated {
			break
		}
		if ev.IsTerminal() {
			c.terminated = true
		}
		c.queue = append(c.queue, ev)
	}
	c.draining = true
	c.mu.Unlock()
}

// flush delivers whatever preload queued, plus anything that arrived since.
func (c *coreObserver[E, F]) flush() {
	c.mu.Lock()
	c.drainLocked()
}

// drainLocked delivers queued events one at a time. It must be entered
// with the lock held and the draining flag set; it returns with the lock
// released.
func (c *coreObserver[E, F]) drainLocked() {
	for {
		if len(c.queue) == 0 || c.downstream == nil {
			c.draining = false
			c.queue = nil
			c.mu.Unlock()
			return
		}
		ev := c.queue[0]
		c.queue = c.queue[1:]
		obs := *c.downstream

		var upstream Disposable
		terminal := ev.IsTerminal()
		if terminal {
			// Clear the observer reference before delivering the
			// terminal event so nothing can follow it.
			c.downstream = nil
			upstream = c.upstream
			c.upstream = nil
		}
		c.mu.Unlock()

		obs.Send(ev)

		if terminal {
			if upstream != nil {
				upstream.Dispose()
			}
			c.mu.Lock()
			c.draining = false
			c.queue = nil
			c.mu.Unlock()
			return
		}
		c.mu.Lock()
	}
}

// attachUpstream records the producer's disposable so that a terminal event
// or disposal tears it down. If the wrapper already terminated or was
// disposed before the producer returned, the upstream is disposed here,
// closing the leak window for synchronously terminating producers.
func (c *coreObserver[E, F]) attachUpstream(d Disposable) {
	if d == nil {
		return
	}
	c.mu.Lock()
	if c.downstream == nil {
		c.mu.Unlock()
		d.Dispose()
		return
	}
	c.upstream = d
	c.mu.Unlock()
}

// Dispose makes delivery a no-op and tears down the upstream exactly once.
// Safe to call from any goroutine, including re-entrantly from inside a
// delivery in progress on this very wrapper.
func (c *coreObserver[E, F]) Dispose() {
	c.mu.Lock()
	if c.downstream == nil {
		c.mu.Unlock()
		return
	}
	c.downstream = nil
	upstream := c.upstream
	c.upstream = nil
	c.queue = nil
	c.mu.Unlock()

	if upstream != nil {
		upstream.Dispose()
	}
}

// IsDisposed reports whether the wrapper can no longer deliver events,
// either because a terminal event was delivered or Dispose was called.
func (c *coreObserver[E, F]) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.downstream == nil
}
