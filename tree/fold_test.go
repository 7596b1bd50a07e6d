package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldIsAssociativeSum(t *testing.T) {
	ident := LocalFn(func(i int) (int, error) { return i, nil })
	xs := Iota(nil, ident, NewRange(1, 101, 1))

	add := LocalFn(func(p Pair[int, int]) (int, error) { return p.X + p.Y, nil })
	sum, err := Fold(nil, add, 0, xs)
	require.NoError(t, err)
	assert.Equal(t, 5050, sum)
}

func TestFoldOnEmptyReturnsZero(t *testing.T) {
	add := LocalFn(func(p Pair[int, int]) (int, error) { return p.X + p.Y, nil })
	sum, err := Fold(nil, add, 42, MZero[int]())
	require.NoError(t, err)
	assert.Equal(t, 42, sum)
}

func TestFoldMapProjectsBeforeCombining(t *testing.T) {
	ident := LocalFn(func(i int) (int, error) { return i, nil })
	xs := Iota(nil, ident, NewRange(0, MaxLeaf*2, 1))

	square := LocalFn(func(i int) (int, error) { return i * i, nil })
	add := LocalFn(func(p Pair[int, int]) (int, error) { return p.X + p.Y, nil })

	got, err := FoldMap(nil, square, add, 0, xs)
	require.NoError(t, err)

	want := 0
	for i := 0; i < MaxLeaf*2; i++ {
		want += i * i
	}
	assert.Equal(t, want, got)
}

func TestFoldPropagatesLeafEvaluationError(t *testing.T) {
	boom := LocalFn(func(p Pair[int, int]) (int, error) { return 0, assert.AnError })
	xs := Msome(1, 2, 3)
	_, err := Fold(nil, boom, 0, xs)
	assert.Error(t, err)
}
