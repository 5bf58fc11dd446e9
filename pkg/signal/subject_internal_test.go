package signal

import "testing"

func TestSubjectObserverRegistry(t *testing.T) {
	s := NewSubject[int, error]()
	if got := s.observerCount(); got != 0 {
		t.Fatalf("observerCount() = %d, want 0", got)
	}

	d1 := s.Observe(OnNext[int, error](func(int) {}))
	d2 := s.Observe(OnNext[int, error](func(int) {}))
	if got := s.observerCount(); got != 2 {
		t.Fatalf("observerCount() = %d, want 2", got)
	}

	d1.Dispose()
	if got := s.observerCount(); got != 1 {
		t.Errorf("after dispose observerCount() = %d, want 1", got)
	}

	s.SendCompleted()
	if got := s.observerCount(); got != 0 {
		t.Errorf("after termination observerCount() = %d, want 0", got)
	}
	d2.Dispose()
}

func TestSubjectLastElement(t *testing.T) {
	s := NewReplayLastSubject[string, error]()
	if _, ok := s.lastElement(); ok {
		t.Fatal("lastElement() reported a value before any send")
	}

	s.SendNext("a")
	s.SendNext("b")
	if got, ok := s.lastElement(); !ok || got != "b" {
		t.Errorf("lastElement() = %q, %v, want \"b\", true", got, ok)
	}
}

func TestSubjectLastElementTracksDispatchNotEnqueue(t *testing.T) {
	s := NewReplayLastSubject[int, error]()
	seen := -1
	d := s.Observe(OnNext[int, error](func(v int) {
		if v == 1 {
			// Re-entrant send: 2 is queued behind 1 and only becomes
			// the replayed element once it has actually been dispatched.
			s.SendNext(2)
			if got, _ := s.lastElement(); got != 1 {
				t.Errorf("mid-dispatch lastElement() = %d, want 1", got)
			}
		}
		seen = v
	}))
	defer d.Dispose()

	s.SendNext(1)
	if seen != 2 {
		t.Fatalf("final element = %d, want 2", seen)
	}
	if got, _ := s.lastElement(); got != 2 {
		t.Errorf("lastElement() = %d, want 2", got)
	}
}
