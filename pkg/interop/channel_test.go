package interop_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rivulet-dev/rivulet/pkg/interop"
	"github.com/rivulet-dev/rivulet/pkg/signal"
	"github.com/rivulet-dev/rivulet/pkg/sigtest"
)

func TestFromChanDeliversAndCompletes(t *testing.T) {
	ch := make(chan int, 3)
	ch <- 1
	ch <- 2
	ch <- 3
	close(ch)

	c := sigtest.NewCollector[int, signal.Never]()
	defer interop.FromChan(ch).Observe(c.Observer()).Dispose()

	c.AwaitTerminal(t, 5*time.Second)
	c.AssertValues(t, 1, 2, 3)
	c.AssertCompleted(t)
}

func TestFromChanDisposeStopsConsuming(t *testing.T) {
	ch := make(chan int)
	c := sigtest.NewCollector[int, signal.Never]()
	d := interop.FromChan(ch).Observe(c.Observer())
	d.Dispose()

	// A returned Dispose means the observation is no longer a receiver,
	// so no send may succeed no matter how often we offer one.
	for i := 0; i < 10; i++ {
		select {
		case ch <- i:
			t.Fatal("disposed observation still consumed the channel")
		case <-time.After(5 * time.Millisecond):
		}
	}
	c.AssertValues(t)
	c.AssertNotTerminated(t)
}

func TestFromChanDisposeLeavesElementsForOthers(t *testing.T) {
	// Two observations share one channel; disposing the first must leave
	// every remaining element to the survivor.
	ch := make(chan int, 4)
	c := sigtest.NewCollector[int, signal.Never]()

	d := interop.FromChan(ch).Observe(signal.OnNext[int, signal.Never](func(int) {}))
	d.Dispose()
	defer interop.FromChan(ch).Observe(c.Observer()).Dispose()

	for i := 1; i <= 4; i++ {
		ch <- i
	}
	deadline := time.Now().Add(5 * time.Second)
	for len(c.Values()) < 4 {
		if time.Now().After(deadline) {
			t.Fatalf("survivor received %v, want all 4 elements", c.Values())
		}
		time.Sleep(time.Millisecond)
	}
	c.AssertValues(t, 1, 2, 3, 4)
}

func TestToChanDeliversAndCloses(t *testing.T) {
	ch, errFn, d := interop.ToChan(signal.FromSlice[int, error]([]int{1, 2, 3}), 8)
	defer d.Dispose()

	var got []int
	for v := range ch {
		got = append(got, v)
	}
	if len(got) != 3 {
		t.Fatalf("received %v, want 3 elements", got)
	}
	if err := errFn(); err != nil {
		t.Errorf("errFn() = %v, want nil", err)
	}
}

func TestToChanReportsFailure(t *testing.T) {
	boom := errors.New("boom")
	ch, errFn, d := interop.ToChan(signal.Failing[int](boom), 1)
	defer d.Dispose()

	if _, ok := <-ch; ok {
		t.Fatal("failed signal delivered an element")
	}
	if err := errFn(); !errors.Is(err, boom) {
		t.Errorf("errFn() = %v, want %v", err, boom)
	}
}

func TestToChanBackpressuresThenDrains(t *testing.T) {
	var push func(int)
	source := signal.New(func(obs signal.Observer[int, error]) signal.Disposable {
		push = obs.SendNext
		go func() {
			for i := 0; i < 4; i++ {
				push(i)
			}
			obs.SendCompleted()
		}()
		return signal.Disposed()
	})

	ch, _, d := interop.ToChan(source, 1)
	defer d.Dispose()

	var got []int
	for v := range ch {
		got = append(got, v)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("got %v, want 0..3 in order", got)
		}
	}
	if len(got) != 4 {
		t.Fatalf("received %d elements, want 4", len(got))
	}
}

func TestObserveContextCancelDisposes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := sigtest.NewCollector[int, error]()
	d := interop.ObserveContext(ctx, signal.NeverEnding[int, error](), c.Observer())

	cancel()
	deadline := time.Now().Add(5 * time.Second)
	for !d.IsDisposed() {
		if time.Now().After(deadline) {
			t.Fatal("subscription not disposed after context cancellation")
		}
		time.Sleep(time.Millisecond)
	}
	c.AssertNotTerminated(t)
}
