package signal_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rivulet-dev/rivulet/pkg/signal"
	"github.com/rivulet-dev/rivulet/pkg/sigtest"
)

func TestMergeForwardsAllAndCompletesLast(t *testing.T) {
	a := signal.NewSubject[int, error]()
	b := signal.NewSubject[int, error]()

	c := sigtest.NewCollector[int, error]()
	signal.Merge(a.Signal(), b.Signal()).Observe(c.Observer())

	a.SendNext(1)
	b.SendNext(2)
	a.SendCompleted()
	c.AssertNotTerminated(t) // b is still live
	b.SendNext(3)
	b.SendCompleted()

	c.AssertValues(t, 1, 2, 3)
	c.AssertCompleted(t)
}

func TestMergeFirstFailureWins(t *testing.T) {
	a := signal.NewSubject[int, error]()
	b := signal.NewSubject[int, error]()

	c := sigtest.NewCollector[int, error]()
	signal.Merge(a.Signal(), b.Signal()).Observe(c.Observer())

	a.SendNext(1)
	b.SendFailed(errors.New("boom"))
	a.SendNext(2) // after downstream terminal; must not arrive

	c.AssertValues(t, 1)
	c.AssertFailed(t)
}

func TestMergeEmpty(t *testing.T) {
	c := sigtest.NewCollector[int, error]()
	signal.Merge[int, error]().Observe(c.Observer())
	c.AssertCompleted(t)
}

func TestConcatRunsSourcesInOrder(t *testing.T) {
	first := signal.FromSlice[int, error]([]int{1, 2})
	second := signal.FromSlice[int, error]([]int{3, 4})

	c := sigtest.NewCollector[int, error]()
	signal.Concat(first, second).Observe(c.Observer())

	c.AssertValues(t, 1, 2, 3, 4)
	c.AssertCompleted(t)
}

func TestConcatSubscribesLazily(t *testing.T) {
	a := signal.NewSubject[int, error]()
	subscriptions := 0
	second := signal.New(func(obs signal.Observer[int, error]) signal.Disposable {
		subscriptions++
		obs.SendNext(9)
		obs.SendCompleted()
		return signal.Disposed()
	})

	c := sigtest.NewCollector[int, error]()
	signal.Concat(a.Signal(), second).Observe(c.Observer())

	a.SendNext(1)
	if subscriptions != 0 {
		t.Fatal("second source subscribed before the first completed")
	}
	a.SendCompleted()
	if subscriptions != 1 {
		t.Fatalf("second source subscribed %d times, want 1", subscriptions)
	}
	c.AssertValues(t, 1, 9)
	c.AssertCompleted(t)
}

func TestConcatFailureAbandonsRest(t *testing.T) {
	first := signal.Failing[int](errors.New("early"))
	subscribed := false
	second := signal.New(func(obs signal.Observer[int, error]) signal.Disposable {
		subscribed = true
		return signal.Disposed()
	})

	c := sigtest.NewCollector[int, error]()
	signal.Concat(first, second).Observe(c.Observer())

	c.AssertFailed(t)
	if subscribed {
		t.Error("failure must cancel the pending queue")
	}
}

func TestCombineLatestSequence(t *testing.T) {
	a := signal.NewSubject[int, signal.Never]()
	b := signal.NewSubject[string, signal.Never]()

	c := sigtest.NewCollector[string, signal.Never]()
	signal.CombineLatest(a.Signal(), b.Signal(), func(n int, s string) string {
		return fmt.Sprintf("%d%s", n, s)
	}).Observe(c.Observer())

	a.SendNext(1)
	c.AssertValues(t) // nothing until both sides have emitted
	b.SendNext("A")
	b.SendNext("B")
	a.SendNext(2)
	a.SendNext(3)
	b.SendNext("C")

	c.AssertValues(t, "1A", "1B", "2B", "3B", "3C")

	a.SendCompleted()
	c.AssertNotTerminated(t)
	b.SendCompleted()
	c.AssertCompleted(t)
}

func TestCombineLatestFailurePropagates(t *testing.T) {
	a := signal.NewSubject[int, error]()
	b := signal.NewSubject[int, error]()

	c := sigtest.NewCollector[int, error]()
	signal.CombineLatest(a.Signal(), b.Signal(), func(x, y int) int { return x + y }).Observe(c.Observer())

	a.SendFailed(errors.New("side a"))
	c.AssertFailed(t)
}

func TestZipPairsPositionally(t *testing.T) {
	a := signal.NewSubject[int, signal.Never]()
	b := signal.NewSubject[string, signal.Never]()

	c := sigtest.NewCollector[string, signal.Never]()
	signal.Zip(a.Signal(), b.Signal(), func(n int, s string) string {
		return fmt.Sprintf("%d%s", n, s)
	}).Observe(c.Observer())

	a.SendNext(1)
	a.SendNext(2)
	a.SendNext(3)
	b.SendNext("A")
	b.SendNext("B")

	// Strict FIFO pairing, unlike combineLatest.
	c.AssertValues(t, "1A", "2B")
}

func TestZipShorterSideGatesCompletion(t *testing.T) {
	// Lengths 3 and 2 produce exactly 2 pairs, then completion.
	a := signal.FromSlice[int, signal.Never]([]int{1, 2, 3})
	b := signal.FromSlice[string, signal.Never]([]string{"A", "B"})

	c := sigtest.NewCollector[string, signal.Never]()
	signal.Zip(a, b, func(n int, s string) string {
		return fmt.Sprintf("%d%s", n, s)
	}).Observe(c.Observer())

	c.AssertValues(t, "1A", "2B")
	c.AssertCompleted(t)
}

func TestAmbFirstEmitterWins(t *testing.T) {
	a := signal.NewSubject[int, error]()
	b := signal.NewSubject[int, error]()

	c := sigtest.NewCollector[int, error]()
	signal.Amb(a.Signal(), b.Signal()).Observe(c.Observer())

	b.SendNext(10)
	a.SendNext(1) // loser; cancelled
	b.SendNext(20)
	b.SendCompleted()

	c.AssertValues(t, 10, 20)
	c.AssertCompleted(t)
}

func TestAmbTerminationAlsoWins(t *testing.T) {
	a := signal.NewSubject[int, error]()
	b := signal.NewSubject[int, error]()

	c := sigtest.NewCollector[int, error]()
	signal.Amb(a.Signal(), b.Signal()).Observe(c.Observer())

	a.SendCompleted()
	b.SendNext(5)

	c.AssertValues(t)
	c.AssertCompleted(t)
}

func TestAmbSynchronousWinnerSkipsLoser(t *testing.T) {
	subscribed := false
	b := signal.New(func(obs signal.Observer[int, error]) signal.Disposable {
		subscribed = true
		return signal.Disposed()
	})

	c := sigtest.NewCollector[int, error]()
	signal.Amb(signal.FromSlice[int, error]([]int{1, 2}), b).Observe(c.Observer())

	c.AssertValues(t, 1, 2)
	c.AssertCompleted(t)
	if subscribed {
		t.Error("loser must not be subscribed after a synchronous win")
	}
}
