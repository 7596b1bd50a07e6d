package callp

import (
	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/rthread"
)

// Sync invokes d on dest and blocks until the result is available. Go
// forbids generic methods, so every call primitive here is a free
// function parameterized on the action's argument and result types,
// taking the Caller as its first argument instead.
func Sync[Args any, R any](c *Caller, dest int, d *action.Descriptor[Args, R], args Args) (R, error) {
	return Async(c, rthread.LaunchSync, dest, d, args).Get()
}

// Async invokes d on dest according to policy and returns a future for
// its result. When dest is the local rank, the call is a plain function
// invocation (spec §4.4's local short-circuit): no encoding, no
// envelope, no trip through the transport.
func Async[Args any, R any](c *Caller, policy rthread.LaunchPolicy, dest int, d *action.Descriptor[Args, R], args Args) *rthread.Future[R] {
	if c.isLocal(dest) {
		return rthread.Async(c.pool, policy, func() (R, error) {
			return d.Call(args)
		})
	}
	return rthread.Async(c.pool, policy, remoteSend(c, dest, d, args))
}

// Detached invokes d on dest and returns without waiting for, or ever
// being able to observe, a result (spec §4.4). Locally this just fires
// the action on the pool; remotely the evaluate envelope carries a zero
// PromiseID, which the receiving transport recognizes as "no finish
// reply wanted".
func Detached[Args any, R any](c *Caller, dest int, d *action.Descriptor[Args, R], args Args) error {
	if c.isLocal(dest) {
		c.pool.Submit(func() { _, _ = d.Call(args) })
		return nil
	}
	payload, err := d.EncodeArgs(args)
	if err != nil {
		return errorf("Detached", "encoding arguments for %s: %w", d.ID(), err)
	}
	return c.transport.Send(dest, action.Envelope{
		ActionID: d.ID(),
		Kind:     action.KindEvaluate,
		Payload:  payload,
		// PromiseID left at its zero value: the transport's dispatch
		// loop treats 0 as "detached, send no finish envelope".
	})
}

// remoteSend builds the blocking computation a remote Async/Sync call
// runs: encode, register a promise, send the evaluate envelope, wait for
// the matching finish envelope, decode. It is always handed to
// rthread.Async so the three launch policies apply uniformly whether the
// call is local or remote.
func remoteSend[Args any, R any](c *Caller, dest int, d *action.Descriptor[Args, R], args Args) func() (R, error) {
	return func() (R, error) {
		var zero R
		payload, err := d.EncodeArgs(args)
		if err != nil {
			return zero, errorf("remoteSend", "encoding arguments for %s: %w", d.ID(), err)
		}
		id := c.transport.NewPromiseID()
		type reply struct {
			payload []byte
			failure string
		}
		repliesCh := make(chan reply, 1)
		c.transport.AwaitFinish(id, func(payload []byte, failure string) {
			repliesCh <- reply{payload: payload, failure: failure}
		})
		if err := c.transport.Send(dest, action.Envelope{
			ActionID:  d.ID(),
			Kind:      action.KindEvaluate,
			PromiseID: id,
			Payload:   payload,
		}); err != nil {
			c.transport.AbandonPromise(id)
			return zero, errorf("remoteSend", "sending evaluate envelope to rank %d: %w", dest, err)
		}
		r := <-repliesCh
		if r.failure != "" {
			return zero, errorf("remoteSend", "action %s failed on rank %d: %s", d.ID(), dest, r.failure)
		}
		return d.DecodeResult(r.payload)
	}
}
