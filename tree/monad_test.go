package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMJoinOfMunitOfTreeIsTree(t *testing.T) {
	xs := Msome(1, 2, 3)
	wrapped := Munit(xs)
	joined, err := MJoin(wrapped)
	require.NoError(t, err)
	assert.Equal(t, xs.Size(), joined.Size())
	head, err := joined.Head()
	require.NoError(t, err)
	assert.Equal(t, 1, head)
}

func TestMBindOfMunitAppliesFDirectly(t *testing.T) {
	f := func(x int) (Tree[int], error) { return Msome(x, x+1), nil }
	got, err := MBind(Munit(5), f)
	require.NoError(t, err)
	want, err := f(5)
	require.NoError(t, err)
	assert.Equal(t, want.Size(), got.Size())
	gh, _ := got.Head()
	wh, _ := want.Head()
	assert.Equal(t, wh, gh)
}

func TestMPlusIsIdentityOverMZero(t *testing.T) {
	xs := Msome(1, 2, 3)
	lhs := MPlus(MZero[int](), xs)
	rhs := MPlus(xs, MZero[int]())
	assert.Equal(t, xs.Size(), lhs.Size())
	assert.Equal(t, xs.Size(), rhs.Size())
}

func TestMPlusAssociativeUpToShape(t *testing.T) {
	a := Msome(1)
	b := Msome(2)
	c := Msome(3)

	lhs := MPlus(MPlus(a, b), c)
	rhs := MPlus(a, MPlus(b, c))

	lhsVals, err := flattenInt(lhs)
	require.NoError(t, err)
	rhsVals, err := flattenInt(rhs)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, lhsVals)
	assert.Equal(t, []int{1, 2, 3}, rhsVals)
}

func flattenInt(t Tree[int]) ([]int, error) {
	if t.IsEmpty() {
		return nil, nil
	}
	if !t.IsBranch() {
		out := make([]int, len(t.leaf))
		copy(out, t.leaf)
		return out, nil
	}
	var out []int
	for _, c := range t.branch {
		sub, err := resolveLocal(c)
		if err != nil {
			return nil, err
		}
		vs, err := flattenInt(sub)
		if err != nil {
			return nil, err
		}
		out = append(out, vs...)
	}
	return out, nil
}
