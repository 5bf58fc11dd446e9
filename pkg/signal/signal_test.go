package signal_test

import (
	"errors"
	"testing"

	"github.com/rivulet-dev/rivulet/pkg/signal"
	"github.com/rivulet-dev/rivulet/pkg/sigtest"
)

func TestJust(t *testing.T) {
	c := sigtest.NewCollector[int, error]()
	d := signal.Just[int, error](5).Observe(c.Observer())

	c.AssertValues(t, 5)
	c.AssertCompleted(t)
	if !d.IsDisposed() {
		t.Error("synchronously completing producer must return a disposed handle")
	}
}

func TestFromSliceIsCold(t *testing.T) {
	s := signal.FromSlice[int, error]([]int{1, 2, 3})

	// Each production run is independent and replays from the start.
	for run := 0; run < 2; run++ {
		c := sigtest.NewCollector[int, error]()
		s.Observe(c.Observer())
		c.AssertValues(t, 1, 2, 3)
		c.AssertCompleted(t)
	}
}

func TestEmptyAndFailing(t *testing.T) {
	c := sigtest.NewCollector[int, error]()
	signal.Empty[int, error]().Observe(c.Observer())
	c.AssertValues(t)
	c.AssertCompleted(t)

	fc := sigtest.NewCollector[int, error]()
	signal.Failing[int](errors.New("bad")).Observe(fc.Observer())
	fc.AssertFailed(t)
	if f, _ := fc.Failure(); f.Error() != "bad" {
		t.Errorf("failure = %v, want bad", f)
	}
}

func TestNeverEnding(t *testing.T) {
	c := sigtest.NewCollector[int, error]()
	d := signal.NeverEnding[int, error]().Observe(c.Observer())
	c.AssertNotTerminated(t)
	if d.IsDisposed() {
		t.Error("never-ending subscription must stay live")
	}
	d.Dispose()
	if !d.IsDisposed() {
		t.Error("subscription must report disposed")
	}
}

func TestDisposeStopsDelivery(t *testing.T) {
	var push func(int)
	s := signal.New(func(obs signal.Observer[int, error]) signal.Disposable {
		push = obs.SendNext
		return signal.Disposed()
	})

	c := sigtest.NewCollector[int, error]()
	d := s.Observe(c.Observer())

	push(1)
	d.Dispose()
	push(2)

	c.AssertValues(t, 1)
	c.AssertNotTerminated(t)
}

func TestNoDeliveryAfterTerminal(t *testing.T) {
	s := signal.New(func(obs signal.Observer[int, error]) signal.Disposable {
		obs.SendNext(1)
		obs.SendCompleted()
		obs.SendNext(2)
		obs.SendFailed(errors.New("late"))
		return signal.Disposed()
	})

	c := sigtest.NewCollector[int, error]()
	s.Observe(c.Observer())

	c.AssertValues(t, 1)
	c.AssertCompleted(t)
	if _, ok := c.Failure(); ok {
		t.Error("failure after completion must be dropped")
	}
}

func TestDoubleDisposeOfSubscription(t *testing.T) {
	disposals := 0
	s := signal.New(func(obs signal.Observer[int, error]) signal.Disposable {
		return signal.NewDisposable(func() { disposals++ })
	})
	d := s.Observe(signal.OnNext[int, error](func(int) {}))
	d.Dispose()
	d.Dispose()
	if disposals != 1 {
		t.Errorf("upstream disposed %d times, want 1", disposals)
	}
}

func TestUpstreamDisposedOnSynchronousTerminal(t *testing.T) {
	disposals := 0
	s := signal.New(func(obs signal.Observer[int, error]) signal.Disposable {
		obs.SendCompleted()
		return signal.NewDisposable(func() { disposals++ })
	})
	d := s.Observe(signal.OnNext[int, error](func(int) {}))
	if disposals != 1 {
		t.Errorf("upstream disposed %d times, want 1", disposals)
	}
	if !d.IsDisposed() {
		t.Error("returned disposable must already be disposed")
	}
}

func TestObserveValues(t *testing.T) {
	var got []int
	signal.FromSlice[int, error]([]int{1, 2}).ObserveValues(func(v int) {
		got = append(got, v)
	})
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("got %v, want [1 2]", got)
	}
}

func TestNewRecoveringConvertsPanic(t *testing.T) {
	s := signal.NewRecovering(func(obs signal.Observer[int, error]) signal.Disposable {
		obs.SendNext(1)
		panic("producer bug")
	})

	c := sigtest.NewCollector[int, error]()
	s.Observe(c.Observer())

	c.AssertValues(t, 1)
	c.AssertFailed(t)
}

func TestReentrantDisposeFromCallback(t *testing.T) {
	var push func(int)
	s := signal.New(func(obs signal.Observer[int, error]) signal.Disposable {
		push = obs.SendNext
		return signal.Disposed()
	})

	var d signal.Disposable
	var got []int
	d = s.Observe(signal.OnNext[int, error](func(v int) {
		got = append(got, v)
		d.Dispose() // dispose from inside delivery
	}))

	push(1)
	push(2)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("got %v, want [1]", got)
	}
}
