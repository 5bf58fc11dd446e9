package sched

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rivulet-dev/rivulet/pkg/signal"
)

// TestScheduler is a scheduler driven by a virtual clock. Nothing runs
// until the clock is advanced; due work then runs on the advancing
// goroutine, in due-time order with ties broken by scheduling order. It
// makes time-based operators fully deterministic in tests.
type TestScheduler struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	tasks []*testTask
}

type testTask struct {
	due       time.Time
	seq       uint64
	fn        func()
	cancelled atomic.Bool
}

// NewTestScheduler creates a test scheduler with its clock at the Unix
// epoch.
func NewTestScheduler() *TestScheduler {
	return &TestScheduler{now: time.Unix(0, 0)}
}

// Now returns the current virtual time.
func (s *TestScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Schedule enqueues work due immediately; it runs on the next Advance.
func (s *TestScheduler) Schedule(work func()) signal.Disposable {
	return s.at(s.Now(), work)
}

// ScheduleAfter enqueues work due after the given virtual delay.
func (s *TestScheduler) ScheduleAfter(delay time.Duration, work func()) signal.Disposable {
	return s.at(s.Now().Add(delay), work)
}

func (s *TestScheduler) at(due time.Time, work func()) signal.Disposable {
	task := &testTask{due: due, fn: work}
	s.mu.Lock()
	task.seq = s.seq
	s.seq++
	s.tasks = append(s.tasks, task)
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if !s.tasks[i].due.Equal(s.tasks[j].due) {
			return s.tasks[i].due.Before(s.tasks[j].due)
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})
	s.mu.Unlock()
	return signal.NewDisposable(func() { task.cancelled.Store(true) })
}

// Advance moves the clock forward by d, running all work that falls due,
// including work scheduled by the work being run.
func (s *TestScheduler) Advance(d time.Duration) {
	s.AdvanceTo(s.Now().Add(d))
}

// AdvanceTo moves the clock to t, running all work due at or before t.
func (s *TestScheduler) AdvanceTo(t time.Time) {
	for {
		s.mu.Lock()
		if len(s.tasks) == 0 || s.tasks[0].due.After(t) {
			if t.After(s.now) {
				s.now = t
			}
			s.mu.Unlock()
			return
		}
		task := s.tasks[0]
		s.tasks = s.tasks[1:]
		if task.due.After(s.now) {
			s.now = task.due
		}
		s.mu.Unlock()

		if !task.cancelled.Load() {
			task.fn()
		}
	}
}

// RunAll runs every pending task regardless of due time, advancing the
// clock as it goes. Work that perpetually reschedules itself makes this
// loop forever; prefer Advance for such producers.
func (s *TestScheduler) RunAll() {
	for {
		s.mu.Lock()
		if len(s.tasks) == 0 {
			s.mu.Unlock()
			return
		}
		task := s.tasks[0]
		s.tasks = s.tasks[1:]
		if task.due.After(s.now) {
			s.now = task.due
		}
		s.mu.Unlock()

		if !task.cancelled.Load() {
			task.fn()
		}
	}
}
