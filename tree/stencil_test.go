package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStencilFMapRoundTrip(t *testing.T) {
	toFloat := LocalFn(func(i int) (float64, error) { return float64(i), nil })
	xs := Iota(nil, toFloat, NewRange(0, 64, 1))

	f := func(_ float64, l, r float64) float64 { return r - l }
	g := func(x float64) float64 { return x }
	ys, err := StencilFMap(f, g, xs, Boundaries1D(-1.0, 64.0))
	require.NoError(t, err)
	assert.Equal(t, 64, ys.Size())

	values, err := flattenFloat(ys)
	require.NoError(t, err)
	require.Len(t, values, 64)

	assert.Equal(t, 2.0, values[0])
	assert.Equal(t, 2.0, values[63])
	for i := 1; i < 63; i++ {
		assert.Equal(t, 2.0, values[i], "interior cell %d", i)
	}
}

func TestStencilFMapRequiresABoundaryDimension(t *testing.T) {
	ident := LocalFn(func(i int) (int, error) { return i, nil })
	xs := Iota(nil, ident, NewRange(0, 5, 1))
	_, err := StencilFMap(func(x, l, r int) int { return x + l + r }, func(x int) int { return x }, xs, Boundaries[int]{})
	assert.Error(t, err)
}

func TestStencilFMapOnEmptyIsMZero(t *testing.T) {
	ys, err := StencilFMap(func(x, l, r float64) float64 { return x }, func(x float64) float64 { return x }, MZero[float64](), Boundaries1D(0.0, 0.0))
	require.NoError(t, err)
	assert.True(t, ys.IsEmpty())
}

// flattenFloat walks ys in order, collecting every leaf value; used only to
// assert on cell-by-cell results without caring how Iota happened to
// subdivide the tree into branches.
func flattenFloat(t Tree[float64]) ([]float64, error) {
	if t.IsEmpty() {
		return nil, nil
	}
	if !t.IsBranch() {
		out := make([]float64, len(t.leaf))
		copy(out, t.leaf)
		return out, nil
	}
	var out []float64
	for _, c := range t.branch {
		sub, err := resolveLocal(c)
		if err != nil {
			return nil, err
		}
		vs, err := flattenFloat(sub)
		if err != nil {
			return nil, err
		}
		out = append(out, vs...)
	}
	return out, nil
}
