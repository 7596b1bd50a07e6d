package callp

import (
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/rthread"
)

// fanout bounds how many children each node in the broadcast forwarding
// tree sends to, per spec §4.4 ("k-ary tree (fanout ≈ 3)").
const fanout = 3

// activeCaller is the process-wide Caller, set once by bootstrap before
// any broadcast traffic can arrive. The forwarding action below is a
// plain registered action function with no closure over a live Caller —
// it needs somewhere to reach the local transport/pool from, and this
// package-level singleton is that somewhere, matching the fixed global
// construction order of spec §9.
var activeCaller atomic.Pointer[Caller]

// SetActive installs c as the process-wide call layer that the broadcast
// forwarding action dispatches through. Bootstrap calls this exactly
// once, immediately after constructing the Caller.
func SetActive(c *Caller) {
	activeCaller.Store(c)
}

// Broadcast sends d to every destination in dests and returns one future
// per destination, in the same order. Unlike AsyncBroadcast this is a
// flat fanout: cost is linear in len(dests), traded for simplicity when
// the destination set is small.
func Broadcast[Args any, R any](c *Caller, dests []int, d *action.Descriptor[Args, R], args Args) []*rthread.Future[R] {
	futures := make([]*rthread.Future[R], len(dests))
	for i, dest := range dests {
		futures[i] = Async(c, rthread.LaunchAsync, dest, d, args)
	}
	return futures
}

// forwardArgs is the payload of the recursive forwarding action:
// AsyncBroadcast and every subsequent hop address it to dests[0], which
// evaluates the named action locally and then re-partitions the
// remaining destinations among up to fanout further hops.
type forwardArgs struct {
	ActionID string
	Payload  []byte
	Dests    []int
}

var forwardDescriptor = action.Register[forwardArgs, struct{}]("callp.broadcast-forward", runForward)

func runForward(args forwardArgs) (struct{}, error) {
	c := activeCaller.Load()
	if c == nil {
		return struct{}{}, errorf("runForward", "no active caller installed; bootstrap must call SetActive before broadcast traffic can arrive")
	}
	if len(args.Dests) == 0 {
		return struct{}{}, nil
	}
	fn, ok := c.registry.Lookup(args.ActionID)
	if !ok {
		return struct{}{}, errorf("runForward", "unknown action id %s", args.ActionID)
	}
	if _, failure := fn(args.Payload); failure != "" {
		log.WithFields(log.Fields{"actionID": args.ActionID, "cause": failure}).
			Warn("callp: broadcast action failed on one destination")
	}
	for _, g := range chunkDests(args.Dests[1:], fanout) {
		if err := sendForward(c, g[0], args.ActionID, args.Payload, g); err != nil {
			log.WithError(err).Warn("callp: broadcast forward failed")
		}
	}
	return struct{}{}, nil
}

func sendForward(c *Caller, head int, actionID string, payload []byte, dests []int) error {
	return Detached(c, head, forwardDescriptor, forwardArgs{ActionID: actionID, Payload: payload, Dests: dests})
}

// chunkDests splits dests into at most n round-robin groups, each
// non-empty, used to fan a forwarding hop's remaining work out to its
// children.
func chunkDests(dests []int, n int) [][]int {
	if len(dests) == 0 {
		return nil
	}
	if n > len(dests) {
		n = len(dests)
	}
	groups := make([][]int, n)
	for i, d := range dests {
		idx := i % n
		groups[idx] = append(groups[idx], d)
	}
	return groups
}

// AsyncBroadcast sends d to every destination in dests using a k-ary
// forwarding tree instead of a flat fanout, so the number of messages
// any single rank originates is logarithmic in len(dests) (spec §4.4).
// The result is not observable: d must return struct{}, matching the
// detached semantics each hop uses internally.
func AsyncBroadcast[Args any](c *Caller, dests []int, d *action.Descriptor[Args, struct{}], args Args) error {
	if len(dests) == 0 {
		return nil
	}
	payload, err := d.EncodeArgs(args)
	if err != nil {
		return errorf("AsyncBroadcast", "encoding arguments for %s: %w", d.ID(), err)
	}
	for _, g := range chunkDests(dests, fanout) {
		if err := sendForward(c, g[0], d.ID(), payload, g); err != nil {
			return errorf("AsyncBroadcast", "forwarding to rank %d: %w", g[0], err)
		}
	}
	return nil
}
