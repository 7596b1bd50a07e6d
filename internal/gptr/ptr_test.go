package gptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeAndGetLocal(t *testing.T) {
	SetLocalRank(0)
	v := 42
	p := Make(&v)
	assert.False(t, p.IsEmpty())
	assert.Equal(t, 0, p.GetProc())
	got := p.Get()
	if assert.NotNil(t, got) {
		assert.Equal(t, 42, *got)
	}
	p.Release()
	assert.Nil(t, p.Get())
}

func TestRemotePointerDoesNotDeref(t *testing.T) {
	SetLocalRank(0)
	v := 1
	p := Make(&v)
	p.Proc = 1 // simulate a pointer that arrived describing another rank
	assert.Nil(t, p.Get())
}

func TestEmptyPointer(t *testing.T) {
	e := Empty[int]()
	assert.True(t, e.IsEmpty())
	assert.Nil(t, e.Get())
}

func TestEquality(t *testing.T) {
	SetLocalRank(0)
	v := 1
	p := Make(&v)
	q := p
	assert.True(t, p.Equals(q))
	assert.True(t, p == q)
	r := Make(&v)
	assert.False(t, p.Equals(r))
}
