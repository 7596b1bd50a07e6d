package callp

import (
	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/rthread"
)

// MapReduce fetches one value per destination by invoking d with
// argsFor(dest), then folds the results into op/zero in dest order
// (spec §4.4: "tie-breaks follow in-order traversal of the index
// range"). op must be associative and zero its identity. Fetches run
// concurrently; only the fold is sequential.
//
// This is the flat building block the distributed tree's foldMap
// (component C9) composes recursively over subtrees; MapReduce itself
// does not recurse.
func MapReduce[Args any, R any](c *Caller, dests []int, d *action.Descriptor[Args, R], argsFor func(dest int) Args, zero R, op func(acc, v R) R) (R, error) {
	futures := make([]*rthread.Future[R], len(dests))
	for i, dest := range dests {
		futures[i] = Async(c, rthread.LaunchAsync, dest, d, argsFor(dest))
	}
	acc := zero
	for _, f := range futures {
		v, err := f.Get()
		if err != nil {
			return zero, errorf("MapReduce", "%w", err)
		}
		acc = op(acc, v)
	}
	return acc, nil
}

// Reduce is MapReduce for an action that takes no arguments: it just
// gathers one value per destination and folds them.
func Reduce[R any](c *Caller, dests []int, d *action.Descriptor[struct{}, R], zero R, op func(acc, v R) R) (R, error) {
	return MapReduce(c, dests, d, func(int) struct{} { return struct{}{} }, zero, op)
}
