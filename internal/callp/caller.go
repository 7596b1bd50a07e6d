package callp

import (
	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/rthread"
	"github.com/nicolagi/rpctree/internal/transport"
)

// Caller is the process-wide call layer (component C4): every Sync,
// Async, Detached and Broadcast call goes through one of these. Exactly
// one instance exists per process, built after the transport and before
// anything that issues calls, per spec §9's fixed construction order.
type Caller struct {
	transport *transport.Transport
	pool      *rthread.Pool
	registry  *action.Registry
}

// NewCaller wraps a transport, thread pool and registry into a call
// layer. registry must be the same one the transport was constructed
// with; it is only needed here so the broadcast forwarding action
// (which runs with no caller-specific closure, see SetActive) can
// evaluate an action locally without going through the transport.
func NewCaller(t *transport.Transport, pool *rthread.Pool, registry *action.Registry) *Caller {
	if registry == nil {
		registry = action.Default
	}
	return &Caller{transport: t, pool: pool, registry: registry}
}

// Rank returns the local process's rank.
func (c *Caller) Rank() int { return c.transport.Rank() }

// Size returns the number of processes in the mesh.
func (c *Caller) Size() int { return c.transport.Size() }

// Stats returns a snapshot of messages sent and received by this
// process's transport, the observability surface spec §4.3 asks for.
func (c *Caller) Stats() transport.Stats { return c.transport.Stats() }

// isLocal reports whether dest names the calling process itself, the
// condition under which every primitive below short-circuits around the
// transport entirely (spec §4.4).
func (c *Caller) isLocal(dest int) bool {
	return dest == c.transport.Rank()
}
