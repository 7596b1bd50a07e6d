package rthread

import (
	"runtime"
	"time"
)

// LaunchPolicy selects how Async schedules a computation, mirroring the
// three launch policies of spec §4.2.
type LaunchPolicy uint8

const (
	// LaunchAsync always runs fn on the pool; Async returns a pending
	// future immediately.
	LaunchAsync LaunchPolicy = iota
	// LaunchDeferred does not run fn until the returned future is
	// waited upon, at which point it runs inline on the waiter.
	LaunchDeferred
	// LaunchSync runs fn to completion before Async returns; the
	// returned future is already ready.
	LaunchSync
)

// Async schedules fn according to policy and returns a future for its
// result.
func Async[R any](pool *Pool, policy LaunchPolicy, fn func() (R, error)) *Future[R] {
	switch policy {
	case LaunchSync:
		v, err := fn()
		return MakeReady(v, err)
	case LaunchDeferred:
		return MakeDeferred(fn)
	default:
		p := NewPromise[R]()
		pool.Submit(func() {
			v, err := fn()
			p.Resolve(v, err)
		})
		return p.Future()
	}
}

// Yield hands the OS thread backing the calling goroutine back to the Go
// scheduler, the direct analogue of this_thread::yield: a hint that other
// runnable work should get a chance to run now.
func Yield() {
	runtime.Gosched()
}

// SleepFor suspends the calling goroutine for d, yielding to the
// scheduler for the duration, just like this_thread::sleep_for.
func SleepFor(d time.Duration) {
	time.Sleep(d)
}
