// Package tree implements the distributed tree (component C9): a
// recursively partitioned sequence built on top of the call layer
// (package callp) and the client handle (package client). A Tree[T] is
// either a leaf holding a small local array of T, or a branch holding
// children as client.Client[Tree[T]], any of which may live on a remote
// process.
//
// Iota, FMap, FMap2 and FoldMap take their function argument as a
// Callable, which is either a plain Go callable or a registered action
// (package action): plain callables can only ever run on the process that
// already holds the data, since a closure cannot be shipped across the
// wire; registered actions can be dispatched to wherever a branch's child
// actually lives, which is what lets Iota, FMap and FoldMap fan out
// across the mesh instead of fetching everything home first (FMap2
// always combines on the calling process). Callable captures that
// distinction; see fn.go. StencilFMap and the monad operations take plain
// Go functions and always run on the calling process.
package tree
