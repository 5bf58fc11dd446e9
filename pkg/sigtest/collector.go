package sigtest

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rivulet-dev/rivulet/pkg/signal"
)

// Collector records every event a signal delivers, for later inspection
// in tests. It is safe for concurrent delivery.
//
// Example:
//
//	c := sigtest.NewCollector[int, signal.Never]()
//	defer signal.FromSlice[int, signal.Never]([]int{1, 2}).Observe(c.Observer()).Dispose()
//	c.AssertValues(t, 1, 2)
type Collector[E any, F error] struct {
	mu        sync.Mutex
	values    []E
	failure   *F
	completed bool
	terminal  chan struct{}
	done      bool
}

// NewCollector creates an empty collector.
func NewCollector[E any, F error]() *Collector[E, F] {
	return &Collector[E, F]{terminal: make(chan struct{})}
}

// Observer returns the observer to pass to Observe.
func (c *Collector[E, F]) Observer() signal.Observer[E, F] {
	return signal.NewObserver(
		func(e E) {
			c.mu.Lock()
			c.values = append(c.values, e)
			c.mu.Unlock()
		},
		func(f F) {
			c.mu.Lock()
			c.failure = &f
			c.close()
			c.mu.Unlock()
		},
		func() {
			c.mu.Lock()
			c.completed = true
			c.close()
			c.mu.Unlock()
		},
	)
}

// close must be called with the lock held.
func (c *Collector[E, F]) close() {
	if !c.done {
		c.done = true
		close(c.terminal)
	}
}

// Values returns a copy of the elements received so far.
func (c *Collector[E, F]) Values() []E {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]E, len(c.values))
	copy(out, c.values)
	return out
}

// Failure returns the received failure, if any.
func (c *Collector[E, F]) Failure() (F, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failure == nil {
		var zero F
		return zero, false
	}
	return *c.failure, true
}

// Completed reports whether completion was received.
func (c *Collector[E, F]) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// AwaitTerminal blocks until a terminal event arrives or the timeout
// elapses, failing the test on timeout.
func (c *Collector[E, F]) AwaitTerminal(t *testing.T, timeout time.Duration) {
	t.Helper()
	select {
	case <-c.terminal:
	case <-time.After(timeout):
		t.Fatalf("no terminal event within %v (got %d values)", timeout, len(c.Values()))
	}
}

// AssertValues fails the test unless exactly the given elements were
// received, in order.
func (c *Collector[E, F]) AssertValues(t *testing.T, want ...E) {
	t.Helper()
	got := c.Values()
	if len(got) != len(want) {
		t.Fatalf("received %d values %v, want %d values %v", len(got), got, len(want), want)
	}
	for i := range want {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Errorf("value %d = %v, want %v", i, got[i], want[i])
		}
	}
}

// AssertCompleted fails the test unless completion was received without a
// failure.
func (c *Collector[E, F]) AssertCompleted(t *testing.T) {
	t.Helper()
	if f, ok := c.Failure(); ok {
		t.Fatalf("signal failed with %v, want completion", error(f))
	}
	if !c.Completed() {
		t.Fatal("signal has not completed")
	}
}

// AssertFailed fails the test unless a failure was received.
func (c *Collector[E, F]) AssertFailed(t *testing.T) {
	t.Helper()
	if _, ok := c.Failure(); !ok {
		t.Fatal("signal has not failed")
	}
}

// AssertNotTerminated fails the test if any terminal event was received.
func (c *Collector[E, F]) AssertNotTerminated(t *testing.T) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		t.Fatal("signal terminated early")
	}
}
