package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defs"
	"stat"
)

func TestCreateAndLookup(t *testing.T) {
	root := NewRoot()

	fn, err := root.Ops.Create(root, "hello")
	require.Equal(t, defs.Ok, err)
	require.NotNil(t, fn)
	assert.True(t, defs.S_ISREG(fn.Mode))

	found, err := Lookup(root, "hello")
	require.Equal(t, defs.Ok, err)
	assert.Same(t, fn, found)
}

func TestCreateDuplicateIsEexist(t *testing.T) {
	root := NewRoot()

	_, err := root.Ops.Create(root, "dup")
	require.Equal(t, defs.Ok, err)

	_, err = root.Ops.Create(root, "dup")
	assert.Equal(t, defs.EEXIST, err)
}

func TestLookupMissingIsEnoent(t *testing.T) {
	root := NewRoot()
	_, err := Lookup(root, "nope")
	assert.Equal(t, defs.ENOENT, err)
}

func TestLookupDot(t *testing.T) {
	root := NewRoot()
	before := root.Refcount()
	vn, err := Lookup(root, ".")
	require.Equal(t, defs.Ok, err)
	assert.Same(t, root, vn)
	assert.Equal(t, before+1, root.Refcount())
}

func TestMkdirAndDotDot(t *testing.T) {
	root := NewRoot()
	sub, err := root.Ops.Mkdir(root, "sub")
	require.Equal(t, defs.Ok, err)
	assert.True(t, defs.S_ISDIR(sub.Mode))

	parent, err := Lookup(sub, "..")
	require.Equal(t, defs.Ok, err)
	assert.Same(t, root, parent)
}

func TestRmdirRequiresEmpty(t *testing.T) {
	root := NewRoot()
	sub, err := root.Ops.Mkdir(root, "sub")
	require.Equal(t, defs.Ok, err)
	_, err = sub.Ops.Create(sub, "f")
	require.Equal(t, defs.Ok, err)

	assert.Equal(t, defs.ENOTEMPTY, root.Ops.Rmdir(root, "sub"))

	require.Equal(t, defs.Ok, sub.Ops.Unlink(sub, "f"))
	assert.Equal(t, defs.Ok, root.Ops.Rmdir(root, "sub"))

	_, err = Lookup(root, "sub")
	assert.Equal(t, defs.ENOENT, err)
}

func TestRmdirRejectsDotAndDotDot(t *testing.T) {
	root := NewRoot()
	assert.Equal(t, defs.EINVAL, root.Ops.Rmdir(root, "."))
	assert.Equal(t, defs.ENOTEMPTY, root.Ops.Rmdir(root, ".."))
}

func TestLinkAndUnlink(t *testing.T) {
	root := NewRoot()
	fn, err := root.Ops.Create(root, "a")
	require.Equal(t, defs.Ok, err)

	require.Equal(t, defs.Ok, root.Ops.Link(root, "b", fn))
	found, err := Lookup(root, "b")
	require.Equal(t, defs.Ok, err)
	assert.Same(t, fn, found)

	require.Equal(t, defs.Ok, root.Ops.Unlink(root, "a"))
	_, err = Lookup(root, "a")
	assert.Equal(t, defs.ENOENT, err)

	// b still resolves: unlinking a does not touch the other hardlink
	_, err = Lookup(root, "b")
	assert.Equal(t, defs.Ok, err)
}

func TestLinkRejectsDirectories(t *testing.T) {
	root := NewRoot()
	sub, err := root.Ops.Mkdir(root, "sub")
	require.Equal(t, defs.Ok, err)
	assert.Equal(t, defs.EISDIR, root.Ops.Link(root, "sub2", sub))
}

func TestUnlinkRejectsDirectories(t *testing.T) {
	root := NewRoot()
	_, err := root.Ops.Mkdir(root, "sub")
	require.Equal(t, defs.Ok, err)
	assert.Equal(t, defs.EISDIR, root.Ops.Unlink(root, "sub"))
}

func TestRenameSameDirectory(t *testing.T) {
	root := NewRoot()
	fn, err := root.Ops.Create(root, "old")
	require.Equal(t, defs.Ok, err)

	require.Equal(t, defs.Ok, root.Ops.Rename(root, "old", root, "new"))
	_, err = Lookup(root, "old")
	assert.Equal(t, defs.ENOENT, err)
	found, err := Lookup(root, "new")
	require.Equal(t, defs.Ok, err)
	assert.Same(t, fn, found)
}

func TestRenameCrossDirectory(t *testing.T) {
	root := NewRoot()
	sub, err := root.Ops.Mkdir(root, "sub")
	require.Equal(t, defs.Ok, err)
	fn, err := root.Ops.Create(root, "f")
	require.Equal(t, defs.Ok, err)

	require.Equal(t, defs.Ok, root.Ops.Rename(root, "f", sub, "f"))
	_, err = Lookup(root, "f")
	assert.Equal(t, defs.ENOENT, err)
	found, err := Lookup(sub, "f")
	require.Equal(t, defs.Ok, err)
	assert.Same(t, fn, found)
}

func TestRenameOverwritesDestination(t *testing.T) {
	root := NewRoot()
	_, err := root.Ops.Create(root, "a")
	require.Equal(t, defs.Ok, err)
	b, err := root.Ops.Create(root, "b")
	require.Equal(t, defs.Ok, err)

	require.Equal(t, defs.Ok, root.Ops.Rename(root, "b", root, "a"))
	found, err := Lookup(root, "a")
	require.Equal(t, defs.Ok, err)
	assert.Same(t, b, found)
}

func TestReaddirStableSortedOrder(t *testing.T) {
	root := NewRoot()
	names := []string{"zeta", "alpha", "mid"}
	for _, n := range names {
		_, err := root.Ops.Create(root, n)
		require.Equal(t, defs.Ok, err)
	}

	var got []string
	off := 0
	for {
		de, next, err := root.Ops.Readdir(root, off)
		require.Equal(t, defs.Ok, err)
		if next == off {
			break
		}
		got = append(got, de.Name)
		off = next
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, got)
}

func TestReadWriteRoundTrip(t *testing.T) {
	root := NewRoot()
	fn, err := root.Ops.Create(root, "f")
	require.Equal(t, defs.Ok, err)

	n, err := fn.Ops.Write(fn, 0, []byte("hello"))
	require.Equal(t, defs.Ok, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, fn.Length())

	buf := make([]byte, 5)
	n, err = fn.Ops.Read(fn, 0, buf)
	require.Equal(t, defs.Ok, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))
}

func TestReadWriteRejectDirectories(t *testing.T) {
	root := NewRoot()
	sub, err := root.Ops.Mkdir(root, "sub")
	require.Equal(t, defs.Ok, err)

	_, err = sub.Ops.Read(sub, 0, make([]byte, 1))
	assert.Equal(t, defs.EISDIR, err)
	_, err = sub.Ops.Write(sub, 0, []byte("x"))
	assert.Equal(t, defs.EISDIR, err)
}

func TestStatReportsModeAndSize(t *testing.T) {
	root := NewRoot()
	fn, err := root.Ops.Create(root, "f")
	require.Equal(t, defs.Ok, err)
	_, err = fn.Ops.Write(fn, 0, []byte("abc"))
	require.Equal(t, defs.Ok, err)

	var st stat.Stat_t
	require.Equal(t, defs.Ok, fn.Ops.Stat(fn, &st))
	assert.Equal(t, uint(3), st.Size())
	assert.Equal(t, uint(defs.S_IFREG), st.Mode())
}
