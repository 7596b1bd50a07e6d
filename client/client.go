package client

import (
	"bytes"
	"encoding/gob"

	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/callp"
	"github.com/nicolagi/rpctree/internal/gshared"
	"github.com/nicolagi/rpctree/internal/rthread"
)

// Client is client<T>: a shared_future<global_shared_ptr<T>> (spec
// §4.7). Every copy of a Client shares the same underlying future, so
// many goroutines may hold, pass around, and await the same Client
// concurrently.
type Client[T any] struct {
	future *rthread.Future[gshared.GlobalShared[T]]
}

// MakeClient constructs a ready client whose value is a fresh global
// shared pointer to v, owned by the local rank.
func MakeClient[T any](v *T) Client[T] {
	return Client[T]{future: rthread.MakeReady(gshared.NewGlobalShared(v), nil)}
}

// MakeRemoteClient submits ctor to rank and returns a client whose
// future resolves once construction completes there. ctor is a
// user-registered action that builds a T and wraps it with
// gshared.NewGlobalShared before returning; MakeRemoteClient only
// supplies the generic plumbing, not the construction logic itself,
// since T's constructor arguments are application-specific.
func MakeRemoteClient[Args any, T any](c *callp.Caller, rank int, ctor *action.Descriptor[Args, gshared.GlobalShared[T]], args Args) Client[T] {
	return Client[T]{future: callp.Async(c, rthread.LaunchAsync, rank, ctor, args)}
}

// Empty returns a client whose value is the empty global shared
// pointer, ready immediately.
func Empty[T any]() Client[T] {
	return Client[T]{future: rthread.MakeReady(gshared.Empty[T](), nil)}
}

// Future returns the underlying shared future, for callers that need to
// compose it with other futures (e.g. as a destination via callp's
// future-of-destination call forms).
func (c Client[T]) Future() *rthread.Future[gshared.GlobalShared[T]] {
	return c.future
}

// Get blocks until the client's value is available.
func (c Client[T]) Get() (gshared.GlobalShared[T], error) {
	return c.future.Get()
}

// Ready reports whether the client's value is already available.
func (c Client[T]) Ready() bool {
	return c.future.Ready()
}

// GobEncode implements gob.GobEncoder. A client can only cross the wire
// once its value is known, so encoding blocks on the underlying future
// and then delegates to GlobalShared's own wire format (package
// gshared), which is what actually carries the owner reference-count
// traffic (spec §4.6).
func (c Client[T]) GobEncode() ([]byte, error) {
	g, err := c.Get()
	if err != nil {
		return nil, errorf("GobEncode", "resolving client before encoding: %w", err)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g); err != nil {
		return nil, errorf("GobEncode", "%w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder: the decoded client is always
// already ready, since only resolved clients are ever put on the wire.
func (c *Client[T]) GobDecode(data []byte) error {
	var g gshared.GlobalShared[T]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&g); err != nil {
		return errorf("GobDecode", "%w", err)
	}
	*c = Client[T]{future: rthread.MakeReady(g, nil)}
	return nil
}

// MakeLocal returns a client whose eventual value is guaranteed
// dereferenceable on the calling process: a no-op if the pointee is
// already local, otherwise a future that fetches a copy (spec §4.7,
// "make_local() ... no-op if already local; otherwise fetches").
func (c Client[T]) MakeLocal() Client[T] {
	return Client[T]{future: rthread.MakeDeferred(func() (gshared.GlobalShared[T], error) {
		g, err := c.future.Get()
		if err != nil {
			var zero gshared.GlobalShared[T]
			return zero, errorf("MakeLocal", "resolving source client: %w", err)
		}
		local, err := g.Local().Get()
		if err != nil {
			var zero gshared.GlobalShared[T]
			return zero, errorf("MakeLocal", "fetching local copy: %w", err)
		}
		return local, nil
	})}
}
