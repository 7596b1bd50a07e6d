package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPingActionEchoesArgument(t *testing.T) {
	v, err := pingAction.Call(42)
	require.NoError(t, err)
	require.Equal(t, uint8(42), v)
}
