package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorRoundTrip(t *testing.T) {
	reg := NewRegistry()
	d := RegisterIn(reg, "action_test.double", func(x int) (int, error) {
		return x * 2, nil
	})

	payload, err := d.EncodeArgs(21)
	require.NoError(t, err)

	fn, ok := reg.Lookup(d.ID())
	require.True(t, ok)

	resultPayload, failure := fn(payload)
	assert.Empty(t, failure)

	result, err := d.DecodeResult(resultPayload)
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestDescriptorPropagatesInvocationError(t *testing.T) {
	reg := NewRegistry()
	d := RegisterIn(reg, "action_test.fail", func(int) (int, error) {
		return 0, errors.New("boom")
	})
	payload, err := d.EncodeArgs(1)
	require.NoError(t, err)
	fn, ok := reg.Lookup(d.ID())
	require.True(t, ok)
	_, failure := fn(payload)
	assert.Equal(t, "boom", failure)
}

func TestStableIDIsDeterministic(t *testing.T) {
	assert.Equal(t, stableID("same.name"), stableID("same.name"))
	assert.NotEqual(t, stableID("a"), stableID("b"))
}

func TestLookupMissReportsUnknownAction(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Lookup("deadbeef")
	assert.False(t, ok)
}

func TestRegisterSameNameTwiceDoesNotCollide(t *testing.T) {
	reg := NewRegistry()
	RegisterIn(reg, "action_test.idempotent", func(int) (int, error) { return 0, nil })
	assert.NotPanics(t, func() {
		RegisterIn(reg, "action_test.idempotent", func(int) (int, error) { return 1, nil })
	})
}
