package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defs"
)

func TestForkCopyOnWriteIsolatesParentAndChild(t *testing.T) {
	parent := NewVmmap()
	th := testThread()
	lo := defs.USER_MEM_LOW / defs.PAGE_SIZE

	_, err := parent.Map(th, nil, lo, 1, defs.PROT_READ|defs.PROT_WRITE, defs.MAP_PRIVATE, 0, LOHI)
	require.Equal(t, defs.Ok, err)

	addr := lo * defs.PAGE_SIZE
	require.Equal(t, defs.Ok, parent.Write(th, addr, []byte{0xAA}))

	child := Fork(parent)

	// Both sides read the shared page written before the fork.
	buf := make([]byte, 1)
	require.Equal(t, defs.Ok, parent.Read(th, addr, buf))
	assert.Equal(t, byte(0xAA), buf[0])
	require.Equal(t, defs.Ok, child.Read(th, addr, buf))
	assert.Equal(t, byte(0xAA), buf[0])

	// A write on one side must not leak to the other.
	require.Equal(t, defs.Ok, child.Write(th, addr, []byte{0xBB}))
	require.Equal(t, defs.Ok, parent.Read(th, addr, buf))
	assert.Equal(t, byte(0xAA), buf[0])
	require.Equal(t, defs.Ok, child.Read(th, addr, buf))
	assert.Equal(t, byte(0xBB), buf[0])
}

func TestForkSharedAreaStaysShared(t *testing.T) {
	parent := NewVmmap()
	th := testThread()
	lo := defs.USER_MEM_LOW / defs.PAGE_SIZE

	_, err := parent.Map(th, nil, lo, 1, defs.PROT_READ|defs.PROT_WRITE, defs.MAP_SHARED, 0, LOHI)
	require.Equal(t, defs.Ok, err)

	child := Fork(parent)

	addr := lo * defs.PAGE_SIZE
	require.Equal(t, defs.Ok, child.Write(th, addr, []byte{0x42}))

	buf := make([]byte, 1)
	require.Equal(t, defs.Ok, parent.Read(th, addr, buf))
	assert.Equal(t, byte(0x42), buf[0], "MAP_SHARED areas must observe the other side's writes after fork")
}

func TestForkPreservesAreaCount(t *testing.T) {
	parent := NewVmmap()
	th := testThread()
	lo := defs.USER_MEM_LOW / defs.PAGE_SIZE

	_, err := parent.Map(th, nil, lo, 1, defs.PROT_READ, defs.MAP_PRIVATE, 0, LOHI)
	require.Equal(t, defs.Ok, err)
	_, err = parent.Map(th, nil, lo+4, 1, defs.PROT_READ, defs.MAP_SHARED, 0, LOHI)
	require.Equal(t, defs.Ok, err)

	child := Fork(parent)
	assert.Len(t, child.Areas(), 2)
	assert.Len(t, parent.Areas(), 2)
}
