package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFMapAppliesToEveryElement(t *testing.T) {
	ident := LocalFn(func(i int) (int, error) { return i, nil })
	xs := Iota(nil, ident, NewRange(0, MaxLeaf*3, 1))

	double := LocalFn(func(i int) (int, error) { return i * 2, nil })
	ys := FMap(nil, double, xs)

	assert.Equal(t, xs.Size(), ys.Size())
	head, err := ys.Head()
	require.NoError(t, err)
	assert.Equal(t, 0, head)
	last, err := ys.Last()
	require.NoError(t, err)
	assert.Equal(t, (MaxLeaf*3-1)*2, last)
}

func TestFMapPreservesIdentityLaw(t *testing.T) {
	ident := LocalFn(func(i int) (int, error) { return i, nil })
	xs := Iota(nil, ident, NewRange(0, MaxLeaf+5, 1))

	mapped := FMap(nil, ident, xs)
	sum, err := Fold(nil, LocalFn(func(p Pair[int, int]) (int, error) { return p.X + p.Y, nil }), 0, mapped)
	require.NoError(t, err)
	originalSum, err := Fold(nil, LocalFn(func(p Pair[int, int]) (int, error) { return p.X + p.Y, nil }), 0, xs)
	require.NoError(t, err)
	assert.Equal(t, originalSum, sum)
}

func TestFMapComposition(t *testing.T) {
	ident := LocalFn(func(i int) (int, error) { return i, nil })
	xs := Iota(nil, ident, NewRange(0, MaxLeaf+5, 1))

	plusOne := LocalFn(func(i int) (int, error) { return i + 1, nil })
	timesTwo := LocalFn(func(i int) (int, error) { return i * 2, nil })

	composed := LocalFn(func(i int) (int, error) { return (i + 1) * 2, nil })

	lhs := FMap(nil, timesTwo, FMap(nil, plusOne, xs))
	rhs := FMap(nil, composed, xs)

	add := LocalFn(func(p Pair[int, int]) (int, error) { return p.X + p.Y, nil })
	lhsSum, err := Fold(nil, add, 0, lhs)
	require.NoError(t, err)
	rhsSum, err := Fold(nil, add, 0, rhs)
	require.NoError(t, err)
	assert.Equal(t, rhsSum, lhsSum)
}
