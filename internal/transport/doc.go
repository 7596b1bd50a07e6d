// Package transport is the event loop and wire layer (component C3): one
// duplicated communicator per process, here a full mesh of long-lived TCP
// connections — one per peer — each carrying a stream of gob-encoded
// action.Envelope values. A writer goroutine per peer plays the role of
// the non-blocking send queue; a reader goroutine per peer plays the role
// of the pre-posted, wildcard-source receive slot, handing completed
// evaluate envelopes to the thread pool (package rthread) for dispatch
// and resolving the waiting promise of each finish envelope directly.
//
// Go's blocking I/O on a dedicated goroutine is the idiomatic analogue of
// the original's non-blocking MPI_Isend/MPI_Irecv polled by an explicit
// pump loop: the goroutine scheduler performs the polling, so there is no
// separate "test all receive slots" step to write by hand. gob's own
// streaming framing (a self-delimiting encoding, the same mechanism
// net/rpc's default codec relies on) substitutes for the hand-rolled
// length-prefixed-ASCII-ID framing spec.md §6 describes for the original
// transport; see DESIGN.md.
package transport
