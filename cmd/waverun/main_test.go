package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nicolagi/rpctree/tree"
)

func TestLaplacianFlatFieldIsZero(t *testing.T) {
	require.Equal(t, 0.0, laplacian(1.0, 1.0, 1.0))
}

func TestLaplacianSpike(t *testing.T) {
	// A unit spike surrounded by zeros curves down by 2 at the
	// spike itself.
	require.Equal(t, -2.0, laplacian(1.0, 0.0, 0.0))
}

func TestCombine2uMinusPrev(t *testing.T) {
	v, err := combine2uMinusPrev(tree.Pair[float64, float64]{X: 3.0, Y: 1.0})
	require.NoError(t, err)
	require.Equal(t, 5.0, v)
}

func TestAddScaled(t *testing.T) {
	f := addScaled(0.25)
	v, err := f(tree.Pair[float64, float64]{X: 1.0, Y: 4.0})
	require.NoError(t, err)
	require.Equal(t, 2.0, v)
}
