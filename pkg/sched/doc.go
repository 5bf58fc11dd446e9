// Package sched supplies execution-context implementations for the signal
// core: the capability to run a unit of work now, later, or on another
// logical thread of control.
//
// Immediate runs work inline and is safe for re-entrant invocation. Queue
// runs work one at a time in FIFO order on a dedicated goroutine.
// Background runs each unit on its own goroutine. TestScheduler gives
// tests a virtual clock so time-based operators can be exercised
// deterministically.
//
// Real schedulers use time.AfterFunc for delayed work; the package never
// blocks a goroutine to wait.
package sched
