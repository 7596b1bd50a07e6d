// Package client implements the client handle (component C7): a thin,
// copyable wrapper around a future global shared pointer
// (gshared.GlobalShared), the universal remote handle passed between
// processes. Construction and forwarding work (tree, reduce, broadcast)
// all flow through Client so that scheduling pipelines naturally against
// data motion: callers can keep working with a Client before the object
// it names has actually finished constructing anywhere.
package client
