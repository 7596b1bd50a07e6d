package gshared

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nicolagi/rpctree/internal/gptr"
)

// The tests in this package run as a single process: give it rank 0 so
// that freshly constructed values are local here.
func init() {
	gptr.SetLocalRank(0)
}

func TestNewGlobalSharedLocalGetAndRelease(t *testing.T) {
	v := 42
	g := NewGlobalShared(&v)
	require.True(t, g.IsLocal())
	require.Equal(t, 42, *g.Get())

	g.Release()
	require.Nil(t, g.Get())
}

func TestEmptyRoundTrip(t *testing.T) {
	g := Empty[string]()
	require.True(t, g.IsEmpty())

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(g))
	var g2 GlobalShared[string]
	require.NoError(t, gob.NewDecoder(&buf).Decode(&g2))
	require.True(t, g2.IsEmpty())
}

func TestGobRoundTripReusesLocalOwner(t *testing.T) {
	v := "hello"
	g := NewGlobalShared(&v)
	defer g.Release()

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(g))

	var g2 GlobalShared[string]
	require.NoError(t, gob.NewDecoder(&buf).Decode(&g2))
	require.True(t, g2.IsLocal())
	require.Equal(t, "hello", *g2.Get())

	// Decoding a second copy of the same owner must not create a second
	// destructive path: releasing both, in either order, must leave the
	// pointee reachable until the very last release.
	var buf2 bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf2).Encode(g))
	var g3 GlobalShared[string]
	require.NoError(t, gob.NewDecoder(&buf2).Decode(&g3))

	g2.Release()
	require.NotNil(t, g.Get(), "owner must survive while g and g3 still hold references")
	g3.Release()
	require.NotNil(t, g.Get(), "owner must survive while g still holds a reference")
}

func TestLocalOnAlreadyLocalReturnsReadyFuture(t *testing.T) {
	v := 7
	g := NewGlobalShared(&v)
	defer g.Release()

	f := g.Local()
	require.True(t, f.Ready())
	got, err := f.Get()
	require.NoError(t, err)
	require.Equal(t, 7, *got.Get())
}
