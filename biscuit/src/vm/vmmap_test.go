package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defs"
	"sched"
)

func testThread() *sched.Thread {
	return sched.NewThread("vmtest", func(*sched.Thread) {})
}

func TestMapFindsGapAndInserts(t *testing.T) {
	m := NewVmmap()
	th := testThread()

	a, err := m.Map(th, nil, 0, 4, defs.PROT_READ|defs.PROT_WRITE, defs.MAP_PRIVATE, 0, LOHI)
	require.Equal(t, defs.Ok, err)
	require.NotNil(t, a)
	assert.Equal(t, 4, a.npages())

	found := m.Lookup(a.Start)
	assert.Same(t, a, found)
}

func TestMapAtExplicitAddress(t *testing.T) {
	m := NewVmmap()
	th := testThread()

	lo := defs.USER_MEM_LOW / defs.PAGE_SIZE
	a, err := m.Map(th, nil, lo, 2, defs.PROT_READ, defs.MAP_SHARED, 0, LOHI)
	require.Equal(t, defs.Ok, err)
	assert.Equal(t, lo, a.Start)
	assert.Equal(t, lo+2, a.End)
}

func TestIsRangeEmpty(t *testing.T) {
	m := NewVmmap()
	th := testThread()
	lo := defs.USER_MEM_LOW / defs.PAGE_SIZE

	_, err := m.Map(th, nil, lo, 2, defs.PROT_READ, defs.MAP_PRIVATE, 0, LOHI)
	require.Equal(t, defs.Ok, err)

	assert.False(t, m.IsRangeEmpty(lo, 2))
	assert.False(t, m.IsRangeEmpty(lo+1, 5))
	assert.True(t, m.IsRangeEmpty(lo+2, 5))
}

func TestRemoveWholeArea(t *testing.T) {
	m := NewVmmap()
	th := testThread()
	lo := defs.USER_MEM_LOW / defs.PAGE_SIZE

	_, err := m.Map(th, nil, lo, 4, defs.PROT_READ, defs.MAP_PRIVATE, 0, LOHI)
	require.Equal(t, defs.Ok, err)

	require.Equal(t, defs.Ok, m.Remove(th, lo, 4))
	assert.Nil(t, m.Lookup(lo))
	assert.Empty(t, m.Areas())
}

func TestRemoveSplitsArea(t *testing.T) {
	m := NewVmmap()
	th := testThread()
	lo := defs.USER_MEM_LOW / defs.PAGE_SIZE

	_, err := m.Map(th, nil, lo, 10, defs.PROT_READ, defs.MAP_PRIVATE, 0, LOHI)
	require.Equal(t, defs.Ok, err)

	require.Equal(t, defs.Ok, m.Remove(th, lo+3, 2))

	areas := m.Areas()
	require.Len(t, areas, 2)
	assert.Equal(t, lo, areas[0].Start)
	assert.Equal(t, lo+3, areas[0].End)
	assert.Equal(t, lo+5, areas[1].Start)
	assert.Equal(t, lo+10, areas[1].End)
	assert.Nil(t, m.Lookup(lo+3))
	assert.Nil(t, m.Lookup(lo+4))
}

func TestRemoveTrimsLeftAndRight(t *testing.T) {
	m := NewVmmap()
	th := testThread()
	lo := defs.USER_MEM_LOW / defs.PAGE_SIZE

	_, err := m.Map(th, nil, lo, 10, defs.PROT_READ, defs.MAP_PRIVATE, 0, LOHI)
	require.Equal(t, defs.Ok, err)

	// right-trim: remove the tail
	require.Equal(t, defs.Ok, m.Remove(th, lo+7, 3))
	areas := m.Areas()
	require.Len(t, areas, 1)
	assert.Equal(t, lo, areas[0].Start)
	assert.Equal(t, lo+7, areas[0].End)

	// left-trim: remove the head of what's left
	require.Equal(t, defs.Ok, m.Remove(th, lo, 2))
	areas = m.Areas()
	require.Len(t, areas, 1)
	assert.Equal(t, lo+2, areas[0].Start)
	assert.Equal(t, lo+7, areas[0].End)
}

func TestReadWriteRoundTrip(t *testing.T) {
	m := NewVmmap()
	th := testThread()
	lo := defs.USER_MEM_LOW / defs.PAGE_SIZE

	_, err := m.Map(th, nil, lo, 1, defs.PROT_READ|defs.PROT_WRITE, defs.MAP_PRIVATE, 0, LOHI)
	require.Equal(t, defs.Ok, err)

	addr := lo * defs.PAGE_SIZE
	require.Equal(t, defs.Ok, m.Write(th, addr, []byte{0xAA, 0xBB, 0xCC}))

	buf := make([]byte, 3)
	require.Equal(t, defs.Ok, m.Read(th, addr, buf))
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, buf)
}

func TestReadUnmappedIsEfault(t *testing.T) {
	m := NewVmmap()
	th := testThread()
	buf := make([]byte, 1)
	assert.Equal(t, defs.EFAULT, m.Read(th, defs.USER_MEM_LOW, buf))
}

func TestCloneCopiesShapeWithoutObj(t *testing.T) {
	m := NewVmmap()
	th := testThread()
	lo := defs.USER_MEM_LOW / defs.PAGE_SIZE

	_, err := m.Map(th, nil, lo, 3, defs.PROT_READ, defs.MAP_PRIVATE, 0, LOHI)
	require.Equal(t, defs.Ok, err)

	clone := m.Clone()
	areas := clone.Areas()
	require.Len(t, areas, 1)
	assert.Equal(t, lo, areas[0].Start)
	assert.Equal(t, lo+3, areas[0].End)
	assert.Nil(t, areas[0].Obj)
}
