// Package rthread is the thread layer (component C2): a fixed pool of
// worker goroutines standing in for the original's user-space cooperative
// tasks, plus futures, promises and the async/deferred/sync launch
// policies built on top of them. Suspension points (Future.Get/Wait,
// SleepFor, Yield) are exactly where a real OS thread would be handed
// back to the Go runtime scheduler, which plays the role the original's
// cooperative scheduler played explicitly.
package rthread
