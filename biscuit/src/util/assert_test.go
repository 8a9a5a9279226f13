package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssertPanicsOnFalse(t *testing.T) {
	assert.Panics(t, func() { Assert(false, "boom %d", 42) })
	assert.NotPanics(t, func() { Assert(true, "never") })
}

func TestFifoOrder(t *testing.T) {
	var f Fifo_t[int]
	assert.True(t, f.Empty())

	f.PushBack(1)
	f.PushBack(2)
	f.PushBack(3)
	assert.Equal(t, 3, f.Len())

	v, ok := f.PopFront()
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = f.PopFront()
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	assert.Equal(t, 1, f.Len())
}

func TestFifoPopFrontEmpty(t *testing.T) {
	var f Fifo_t[string]
	_, ok := f.PopFront()
	assert.False(t, ok)
}

func TestFifoRemove(t *testing.T) {
	var f Fifo_t[int]
	f.PushBack(1)
	f.PushBack(2)
	f.PushBack(3)

	eq := func(a, b int) bool { return a == b }
	assert.True(t, f.Remove(2, eq))
	assert.False(t, f.Remove(2, eq))

	drained := f.Drain()
	assert.Equal(t, []int{1, 3}, drained)
	assert.True(t, f.Empty())
}

func TestMinRoundupRounddown(t *testing.T) {
	assert.Equal(t, 3, Min(3, 5))
	assert.Equal(t, 3, Min(5, 3))
	assert.Equal(t, 4096, Roundup(1, 4096))
	assert.Equal(t, 4096, Roundup(4096, 4096))
	assert.Equal(t, 8192, Roundup(4097, 4096))
	assert.Equal(t, 0, Rounddown(4095, 4096))
	assert.Equal(t, 4096, Rounddown(4096, 4096))
}
