package callp

import (
	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/rthread"
)

// AsyncDest is Async, except the destination rank is itself not known
// yet: it arrives as a future, e.g. one produced by a prior call that
// computes "which rank owns this object" (spec §5, global pointer
// resolution feeding a call). The returned future is always a deferred
// one, regardless of policy: nothing runs, not even the wait for
// destFuture, until the returned future is first waited on; policy then
// applies to the call made once the destination is known.
func AsyncDest[Args any, R any](c *Caller, policy rthread.LaunchPolicy, destFuture *rthread.Future[int], d *action.Descriptor[Args, R], args Args) *rthread.Future[R] {
	return rthread.MakeDeferred(func() (R, error) {
		dest, err := destFuture.Get()
		if err != nil {
			var zero R
			return zero, errorf("AsyncDest", "resolving destination: %w", err)
		}
		return Async(c, policy, dest, d, args).Get()
	})
}

// SyncDest blocks until destFuture resolves, then blocks until d
// completes on that destination.
func SyncDest[Args any, R any](c *Caller, destFuture *rthread.Future[int], d *action.Descriptor[Args, R], args Args) (R, error) {
	dest, err := destFuture.Get()
	if err != nil {
		var zero R
		return zero, errorf("SyncDest", "resolving destination: %w", err)
	}
	return Sync(c, dest, d, args)
}

// DetachedDest fires d at whatever rank destFuture eventually resolves
// to, without waiting for a result. The wait for destFuture itself runs
// on the pool so DetachedDest can return immediately.
func DetachedDest[Args any, R any](c *Caller, destFuture *rthread.Future[int], d *action.Descriptor[Args, R], args Args) {
	c.pool.Submit(func() {
		dest, err := destFuture.Get()
		if err != nil {
			return
		}
		_ = Detached(c, dest, d, args)
	})
}
