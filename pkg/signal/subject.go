package signal

import "sync"

// Subject is a hot, multicast event source: events pushed with Send fan
// out to every registered observer. Unlike a plain Signal it is not lazy;
// it holds a registry of live observers and, for replay variants, a
// bounded buffer of recent elements that new observers receive first.
//
// Fan-out is linearizable: all observers see the same relative
// interleaving of events, and each individual sender's events arrive in
// the order that sender sent them. Send, Observe, and disposal may be
// called concurrently from any goroutine; none of them invokes observer
// callbacks while a subject lock is held, so callbacks may re-enter the
// subject freely.
type Subject[E any, F error] struct {
	mu        sync.Mutex
	capacity  int
	buffer    []E
	entries   []subjectEntry[E, F]
	nextToken uint64

	// queue/draining implement the serialized fan-out: the sender that
	// finds the queue idle dispatches until it empties, so no send ever
	// blocks behind a lock held across observer callbacks.
	queue    []Event[E, F]
	draining bool

	terminated bool // terminal event accepted; later sends are no-ops
	delivered  bool // terminal event dispatched to the registry
	terminal   Event[E, F]

	bag *CompositeDisposable
}

type subjectEntry[E any, F error] struct {
	token uint64
	core  *coreObserver[E, F]
}

// NewSubject creates a plain multicast subject with no replay.
func NewSubject[E any, F error]() *Subject[E, F] {
	return newSubject[E, F](0)
}

// NewReplaySubject creates a subject that replays the last capacity
// elements to each new observer before live events.
func NewReplaySubject[E any, F error](capacity int) *Subject[E, F] {
	if capacity < 0 {
		capacity = 0
	}
	return newSubject[E, F](capacity)
}

// NewReplayLastSubject creates a subject that replays only the most recent
// element to each new observer.
func NewReplayLastSubject[E any, F error]() *Subject[E, F] {
	return newSubject[E, F](1)
}

func newSubject[E any, F error](capacity int) *Subject[E, F] {
	return &Subject[E, F]{
		capacity: capacity,
		bag:      NewCompositeDisposable(),
	}
}

// Observe registers an observer. Replay content, if any, is delivered
// synchronously before Observe returns, followed by live events in fan-out
// order. An observer registered after termination immediately receives the
// buffered elements and then the terminal event. Disposing the returned
// Disposable deregisters the observer.
func (s *Subject[E, F]) Observe(obs Observer[E, F]) Disposable {
	core := newCoreObserver(obs)

	s.mu.Lock()
	replay := make([]Event[E, F], 0, len(s.buffer)+1)
	for _, e := range s.buffer {
		replay = append(replay, Next[E, F](e))
	}
	if s.delivered {
		replay = append(replay, s.terminal)
		s.mu.Unlock()
		core.preload(replay)
		core.flush()
		return core
	}
	token := s.nextToken
	s.nextToken++
	// Claim the new observer's drain before it joins the registry so a
	// racing Send enqueues behind the replay instead of overtaking it.
	core.preload(replay)
	s.entries = append(s.entries, subjectEntry[E, F]{token: token, core: core})
	s.mu.Unlock()

	core.attachUpstream(NewDisposable(func() { s.remove(token) }))
	core.flush()
	return core
}

// Signal exposes the subject as a Signal for composition with operators.
func (s *Subject[E, F]) Signal() Signal[E, F] {
	return New(func(obs Observer[E, F]) Disposable {
		return s.Observe(obs)
	})
}

// AsObserver exposes the subject as an observer, so a signal can be piped
// straight into it.
func (s *Subject[E, F]) AsObserver() Observer[E, F] {
	return OnEvent(s.Send)
}

// Send pushes an event to every registered observer. After a terminal
// event has been accepted, further sends are no-ops.
func (s *Subject[E, F]) Send(ev Event[E, F]) {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return
	}
	if ev.IsTerminal() {
		s.terminated = true
		s.terminal = ev
	}
	s.queue = append(s.queue, ev)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.drainLocked()
}

// SendNext pushes an element.
func (s *Subject[E, F]) SendNext(element E) {
	s.Send(Next[E, F](element))
}

// SendFailed terminates the subject with a failure.
func (s *Subject[E, F]) SendFailed(failure F) {
	s.Send(Failed[E](failure))
}

// SendCompleted terminates the subject successfully.
func (s *Subject[E, F]) SendCompleted() {
	s.Send(Completed[E, F]())
}

// drainLocked dispatches queued events in order. Entered with the lock
// held and the draining flag set; returns with the lock released. The
// replay buffer is updated at dispatch time, under the same lock that
// Observe uses to snapshot it, so a joining observer never sees an element
// both replayed and fanned out.
func (s *Subject[E, F]) drainLocked() {
	for {
		if len(s.queue) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		ev := s.queue[0]
		s.queue = s.queue[1:]

		if element, ok := ev.Element(); ok && s.capacity > 0 {
			s.buffer = append(s.buffer, element)
			if len(s.buffer) > s.capacity {
				s.buffer = s.buffer[1:]
			}
		}
		terminal := ev.IsTerminal()
		var entries []subjectEntry[E, F]
		if terminal {
			s.delivered = true
			entries = s.entries
			s.entries = nil
			s.queue = nil
		} else {
			entries = make([]subjectEntry[E, F], len(s.entries))
			copy(entries, s.entries)
		}
		s.mu.Unlock()

		for _, entry := range entries {
			entry.core.send(ev)
		}

		if terminal {
			s.bag.Dispose()
			s.mu.Lock()
			s.draining = false
			s.mu.Unlock()
			return
		}
		s.mu.Lock()
	}
}

// remove deregisters the observer holding the given token.
func (s *Subject[E, F]) remove(token uint64) {
	s.mu.Lock()
	for i, entry := range s.entries {
		if entry.token == token {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
}

// Own transfers a resource to the subject: it is disposed when the subject
// terminates. If the subject already terminated, d is disposed
// immediately.
func (s *Subject[E, F]) Own(d Disposable) {
	s.bag.Add(d)
}

// observerCount reports the live registry size; exposed for tests.
func (s *Subject[E, F]) observerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// lastElement returns the most recently dispatched element for replaying
// subjects. Property builds its value getter on this.
func (s *Subject[E, F]) lastElement() (E, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buffer) == 0 {
		var zero E
		return zero, false
	}
	return s.buffer[len(s.buffer)-1], true
}
