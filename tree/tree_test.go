package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolagi/rpctree/internal/gptr"
)

// The tests in this package run as a single process: give it rank 0 so
// that locally built clients are dereferenceable here.
func init() {
	gptr.SetLocalRank(0)
}

func TestMZeroIsEmpty(t *testing.T) {
	z := MZero[int]()
	assert.True(t, z.IsEmpty())
	assert.False(t, z.IsLeaf())
	assert.False(t, z.IsBranch())
	assert.Equal(t, 0, z.Size())
}

func TestMunitIsSingletonLeaf(t *testing.T) {
	u := Munit(7)
	assert.True(t, u.IsLeaf())
	assert.Equal(t, 1, u.Size())
	head, err := u.Head()
	require.NoError(t, err)
	assert.Equal(t, 7, head)
}

func TestMsomeHoldsEveryArgument(t *testing.T) {
	xs := Msome(1, 2, 3)
	assert.True(t, xs.IsLeaf())
	assert.Equal(t, 3, xs.Size())
	head, err := xs.Head()
	require.NoError(t, err)
	assert.Equal(t, 1, head)
	last, err := xs.Last()
	require.NoError(t, err)
	assert.Equal(t, 3, last)
}

func TestNewLeafPanicsOverMaxLeaf(t *testing.T) {
	values := make([]int, MaxLeaf+1)
	assert.Panics(t, func() { newLeaf(values) })
}

func TestNewLeafPanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() { newLeaf[int](nil) })
}

func TestNewBranchPanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() { newBranch[int](nil) })
}

func TestHeadLastOnEmptyIsError(t *testing.T) {
	z := MZero[int]()
	_, err := z.Head()
	assert.Error(t, err)
	_, err = z.Last()
	assert.Error(t, err)
}

func TestSizeSumsBranchChildren(t *testing.T) {
	xs := buildLeaf(LocalFn(func(i int) (int, error) { return i, nil }), NewRange(0, 5, 1))
	ys := buildLeaf(LocalFn(func(i int) (int, error) { return i, nil }), NewRange(5, 9, 1))
	branch := MPlus(xs, ys)
	assert.True(t, branch.IsBranch())
	assert.Equal(t, 9, branch.Size())
	head, err := branch.Head()
	require.NoError(t, err)
	assert.Equal(t, 0, head)
	last, err := branch.Last()
	require.NoError(t, err)
	assert.Equal(t, 8, last)
}
