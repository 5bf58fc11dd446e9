package signal_test

import (
	"testing"

	"github.com/rivulet-dev/rivulet/pkg/signal"
	"github.com/rivulet-dev/rivulet/pkg/sigtest"
)

func TestShareMulticastsOneRun(t *testing.T) {
	runs := 0
	var push func(int)
	source := signal.New(func(obs signal.Observer[int, error]) signal.Disposable {
		runs++
		push = obs.SendNext
		return signal.Disposed()
	})
	shared := signal.Share(source)

	c1 := sigtest.NewCollector[int, error]()
	c2 := sigtest.NewCollector[int, error]()
	d1 := shared.Observe(c1.Observer())
	d2 := shared.Observe(c2.Observer())

	if runs != 1 {
		t.Fatalf("upstream started %d times, want 1", runs)
	}

	push(5)
	c1.AssertValues(t, 5)
	c2.AssertValues(t, 5)

	d1.Dispose()
	push(6)
	c1.AssertValues(t, 5)
	c2.AssertValues(t, 5, 6)
	d2.Dispose()
}

func TestShareTearsDownWithLastObserver(t *testing.T) {
	disposals := 0
	source := signal.New(func(obs signal.Observer[int, error]) signal.Disposable {
		return signal.NewDisposable(func() { disposals++ })
	})
	shared := signal.Share(source)

	d1 := shared.Observe(signal.OnNext[int, error](func(int) {}))
	d2 := shared.Observe(signal.OnNext[int, error](func(int) {}))

	d1.Dispose()
	if disposals != 0 {
		t.Fatal("upstream torn down while observers remain")
	}
	d2.Dispose()
	if disposals != 1 {
		t.Fatalf("upstream torn down %d times, want 1", disposals)
	}
}

func TestShareRestartsAfterTeardown(t *testing.T) {
	runs := 0
	source := signal.New(func(obs signal.Observer[int, error]) signal.Disposable {
		runs++
		return signal.Disposed()
	})
	shared := signal.Share(source)

	shared.Observe(signal.OnNext[int, error](func(int) {})).Dispose()
	shared.Observe(signal.OnNext[int, error](func(int) {})).Dispose()

	if runs != 2 {
		t.Errorf("upstream started %d times, want 2 independent runs", runs)
	}
}

func TestShareReplay(t *testing.T) {
	var push func(int)
	source := signal.New(func(obs signal.Observer[int, error]) signal.Disposable {
		push = obs.SendNext
		return signal.Disposed()
	})
	shared := signal.ShareReplay(source, 1)

	first := sigtest.NewCollector[int, error]()
	d1 := shared.Observe(first.Observer())
	push(1)
	push(2)

	// A late joiner gets the live run's most recent element first.
	late := sigtest.NewCollector[int, error]()
	d2 := shared.Observe(late.Observer())
	late.AssertValues(t, 2)

	push(3)
	first.AssertValues(t, 1, 2, 3)
	late.AssertValues(t, 2, 3)
	d1.Dispose()
	d2.Dispose()
}
