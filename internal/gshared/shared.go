package gshared

import (
	"bytes"
	"encoding/gob"

	"github.com/nicolagi/rpctree/internal/gptr"
	"github.com/nicolagi/rpctree/internal/rthread"
)

// GlobalShared is a reference-counted handle to a T living on one
// process (component C6). Copies may be held on any process and sent
// across the mesh; only the owning process may dereference one
// directly, via Get.
type GlobalShared[T any] struct {
	pointee gptr.Ptr[T]
	owner   int
	ownerID uint64
	m       *manager
}

// NewGlobalShared allocates a fresh owner (refcount 1) and a pointee
// entry for v on the local rank, and returns a handle to it. This is the
// "from shared_ptr<T> on the local rank" construction path of spec §4.6.
func NewGlobalShared[T any](v *T) GlobalShared[T] {
	pointee := gptr.Make(v)
	ownerID := allocateOwner(func() { pointee.Release() })
	m := acquireManagerOwned(pointee.GetProc(), ownerID)
	return GlobalShared[T]{pointee: pointee, owner: pointee.GetProc(), ownerID: ownerID, m: m}
}

// Empty returns a handle pointing at nothing; it serializes to, and
// compares equal to, itself with no owner traffic whatsoever (spec
// §4.6, "a serialization of an empty pointer produces a stream that
// deserializes to empty with no owner traffic").
func Empty[T any]() GlobalShared[T] {
	return GlobalShared[T]{pointee: gptr.Empty[T](), owner: -1}
}

// IsEmpty reports whether this handle points at nothing.
func (g GlobalShared[T]) IsEmpty() bool {
	return g.pointee.IsEmpty()
}

// GetProc returns the rank the pointee lives on.
func (g GlobalShared[T]) GetProc() int {
	return g.owner
}

// IsLocal reports whether the pointee can be dereferenced on this
// process.
func (g GlobalShared[T]) IsLocal() bool {
	return !g.IsEmpty() && g.owner == gptr.Rank()
}

// Get dereferences the handle. Only legal when IsLocal(); returns nil
// otherwise (spec §4.6, "the only legal deref is on the home process").
func (g GlobalShared[T]) Get() *T {
	if !g.IsLocal() {
		return nil
	}
	return g.pointee.Get()
}

// Release drops this process's reference to the owner. Safe to call on
// an empty handle (a no-op). A GlobalShared value must not be used again
// after Release.
func (g GlobalShared[T]) Release() {
	release(g.m)
}

// Local returns a future that resolves to a handle whose pointee is
// guaranteed to be dereferenceable on the calling process: itself,
// immediately, if already local; otherwise a future that round-trips to
// the owning rank, fetches a copy of the current value, and wraps it in
// a brand new, locally-owned GlobalShared (spec §4.6, "a future-valued
// local() round-trips to fetch a copy onto the caller's process if
// needed").
func (g GlobalShared[T]) Local() *rthread.Future[GlobalShared[T]] {
	if g.IsEmpty() || g.IsLocal() {
		return rthread.MakeReady(g, nil)
	}
	return rthread.MakeDeferred(func() (GlobalShared[T], error) {
		return fetchCopy(g)
	})
}

// GobEncode implements gob.GobEncoder. Every encode adds one in-flight
// reference to the owner's refcount (spec §4.6, "Serialization (send
// path)"): the contract is that the owner cannot be destructed while
// these bytes are in transit, independent of what the sender does next.
func (g GlobalShared[T]) GobEncode() ([]byte, error) {
	wire := sharedWire{Empty: g.IsEmpty()}
	if !wire.Empty {
		sendIncrement(g.owner, g.ownerID)
		wire.PointeeProc = g.pointee.GetProc()
		wire.PointeeAddr = g.pointee.Addr
		wire.OwnerProc = g.owner
		wire.OwnerID = g.ownerID
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(wire); err != nil {
		return nil, errorf("GobEncode", "%w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder, the receive path of spec §4.6.
func (g *GlobalShared[T]) GobDecode(data []byte) error {
	var wire sharedWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&wire); err != nil {
		return errorf("GobDecode", "%w", err)
	}
	if wire.Empty {
		*g = Empty[T]()
		return nil
	}
	pointee := gptr.Ptr[T]{Proc: wire.PointeeProc, Addr: wire.PointeeAddr}
	m := acquireManagerFromWire(wire.OwnerProc, wire.OwnerID)
	*g = GlobalShared[T]{pointee: pointee, owner: wire.OwnerProc, ownerID: wire.OwnerID, m: m}
	return nil
}
