package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeSizeAndAt(t *testing.T) {
	r := NewRange(0, 10, 1)
	assert.Equal(t, 10, r.Size())
	assert.Equal(t, 0, r.At(0))
	assert.Equal(t, 9, r.At(9))
}

func TestRangeStrided(t *testing.T) {
	r := NewRange(0, 10, 2)
	assert.Equal(t, 5, r.Size())
	assert.Equal(t, 0, r.At(0))
	assert.Equal(t, 8, r.At(4))
}

func TestRangeEmptyWhenMinEqualsMax(t *testing.T) {
	r := NewRange(3, 3, 1)
	assert.Equal(t, 0, r.Size())
}

func TestNewRangePanicsOnInvertedBounds(t *testing.T) {
	assert.Panics(t, func() { NewRange(5, 1, 1) })
}

func TestNewRangePanicsOnNonPositiveStep(t *testing.T) {
	assert.Panics(t, func() { NewRange(0, 5, 0) })
}

func TestRangeSubPartitionsContiguously(t *testing.T) {
	r := NewRange(0, 20, 1)
	a := r.sub(0, 10)
	b := r.sub(10, 20)
	assert.Equal(t, 10, a.Size())
	assert.Equal(t, 10, b.Size())
	assert.Equal(t, 0, a.At(0))
	assert.Equal(t, 9, a.At(9))
	assert.Equal(t, 10, b.At(0))
	assert.Equal(t, 19, b.At(9))
}

func TestRangeSubStrided(t *testing.T) {
	r := NewRange(0, 20, 2)
	a := r.sub(0, 5)
	assert.Equal(t, 5, a.Size())
	assert.Equal(t, 0, a.At(0))
	assert.Equal(t, 8, a.At(4))
}
