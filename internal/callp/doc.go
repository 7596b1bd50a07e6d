// Package callp implements the call primitives (component C4): Sync,
// Async, Detached and Broadcast, each in local (same-rank, short-
// circuited), remote, and future-of-destination forms, built on top of
// the action registry (package action), the thread layer (package
// rthread) and the transport (package transport). AsyncBroadcast adds a
// logarithmic-cost k-ary forwarding tree on top of the flat Broadcast,
// and MapReduce/Reduce gather per-destination results into a single
// associative fold.
package callp
