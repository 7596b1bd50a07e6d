// Package gshared implements the global shared pointer (component C6): a
// reference-counted handle to a value that lives on exactly one process,
// safely copyable and sendable across the mesh. It builds on gptr for
// the non-owning (rank, address) pair and on callp to carry the
// increment/decrement/fetch traffic that keeps the owner's refcount
// correct as copies travel between processes.
//
// Every process that holds a reference to a given owner keeps at most
// one local manager for it (see manager.go), so the owner counts one
// reference per process rather than one per handle. A further copy that
// arrives over the wire while the manager exists bumps that manager's
// local count and returns its inherited in-flight reference to the owner
// with a decrement; the last local release sends the process's own
// decrement. Copying a GlobalShared value in memory does not change any
// count.
package gshared
