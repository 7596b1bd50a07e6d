package rthread

import "sync"

// Mutex is a non-reentrant mutual-exclusion lock, same semantics as
// sync.Mutex. It exists under this name so call sites read the way
// spec §4.2 describes the thread layer's primitives; WithLock is the
// lock_guard equivalent, guaranteeing release even if fn panics.
type Mutex = sync.Mutex

// WithLock acquires mu, runs fn, and releases mu even if fn panics.
func WithLock(mu *Mutex, fn func()) {
	mu.Lock()
	defer mu.Unlock()
	fn()
}
