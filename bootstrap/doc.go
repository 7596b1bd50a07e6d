// Package bootstrap is process start-up: component C10 of spec.md §4.10.
// It loads configuration, pins worker threads to processing units, brings
// up the thread pool, transport, call layer and termination protocol in
// the fixed order spec §9 requires, and dispatches the user's main
// function on rank 0 only, every other rank simply waiting for
// termination to be initiated from there.
package bootstrap
