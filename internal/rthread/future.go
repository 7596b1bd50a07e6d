package rthread

import "sync"

type result[R any] struct {
	value R
	err   error
}

// Promise is the writable side of a future: exactly one Resolve call
// matters, any further ones are ignored, mirroring a C++ promise that may
// only be satisfied once.
type Promise[R any] struct {
	once sync.Once
	done chan struct{}
	res  result[R]
}

// NewPromise returns a pending promise.
func NewPromise[R any]() *Promise[R] {
	return &Promise[R]{done: make(chan struct{})}
}

// Resolve satisfies the promise. Safe to call from any goroutine; only
// the first call has an effect.
func (p *Promise[R]) Resolve(v R, err error) {
	p.once.Do(func() {
		p.res = result[R]{value: v, err: err}
		close(p.done)
	})
}

// Future returns the read side of this promise. Every call returns a
// handle sharing the same underlying state, matching shared_future
// semantics: many readers, one writer, cheap to copy.
func (p *Promise[R]) Future() *Future[R] {
	return &Future[R]{p: p}
}

// Future is a shared_future<R>: copyable, many readers may Wait/Get
// concurrently, and Get always returns the same resolved value.
type Future[R any] struct {
	p *Promise[R]

	// run, when non-nil, is the deferred computation: nothing executes
	// until the first Wait/Get, which then runs it inline on the
	// calling goroutine. once ensures concurrent waiters run it only
	// once (deferred futures may be waited on by several goroutines
	// since they are shared).
	runOnce *sync.Once
	run     func()
}

// Ready reports whether the future's value is already available, without
// blocking and without forcing a deferred computation to run.
func (f *Future[R]) Ready() bool {
	select {
	case <-f.p.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the future is resolved, running a deferred
// computation inline if necessary.
func (f *Future[R]) Wait() {
	f.force()
	<-f.p.done
}

// Get blocks until the future is resolved and returns its value.
func (f *Future[R]) Get() (R, error) {
	f.force()
	<-f.p.done
	return f.p.res.value, f.p.res.err
}

func (f *Future[R]) force() {
	if f.run != nil {
		f.runOnce.Do(f.run)
	}
}

// MakeReady returns a future that is already resolved with v, err —
// the sync launch policy's shape, and useful for the local short-circuit.
func MakeReady[R any](v R, err error) *Future[R] {
	p := NewPromise[R]()
	p.Resolve(v, err)
	return p.Future()
}

// MakeDeferred returns a future whose computation fn does not run until
// the future is first waited upon.
func MakeDeferred[R any](fn func() (R, error)) *Future[R] {
	p := NewPromise[R]()
	var once sync.Once
	f := &Future[R]{p: p, runOnce: &once}
	f.run = func() {
		v, err := fn()
		p.Resolve(v, err)
	}
	return f
}
