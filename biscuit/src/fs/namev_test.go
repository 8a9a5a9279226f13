package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defs"
)

func TestDirNamevResolvesParentAndBasename(t *testing.T) {
	root := NewRoot()
	sub, err := root.Ops.Mkdir(root, "sub")
	require.Equal(t, defs.Ok, err)

	parent, name, derr := DirNamev("/sub/file", nil, root, root)
	require.Equal(t, defs.Ok, derr)
	assert.Same(t, sub, parent)
	assert.Equal(t, "file", name)
}

func TestDirNamevRootOnly(t *testing.T) {
	root := NewRoot()
	parent, name, derr := DirNamev("/", nil, root, root)
	require.Equal(t, defs.Ok, derr)
	assert.Same(t, root, parent)
	assert.Equal(t, "", name)
}

func TestDirNamevEmptyPathIsEinval(t *testing.T) {
	root := NewRoot()
	_, _, err := DirNamev("", nil, root, root)
	assert.Equal(t, defs.EINVAL, err)
}

func TestDirNamevMissingIntermediateIsEnoent(t *testing.T) {
	root := NewRoot()
	_, _, err := DirNamev("/nope/file", nil, root, root)
	assert.Equal(t, defs.ENOENT, err)
}

func TestDirNamevThroughFileIsEnotdir(t *testing.T) {
	root := NewRoot()
	_, err := root.Ops.Create(root, "f")
	require.Equal(t, defs.Ok, err)

	_, _, derr := DirNamev("/f/g", nil, root, root)
	assert.Equal(t, defs.ENOTDIR, derr)
}

func TestOpenNamevExistingFile(t *testing.T) {
	root := NewRoot()
	fn, err := root.Ops.Create(root, "f")
	require.Equal(t, defs.Ok, err)

	found, operr := OpenNamev("/f", 0, nil, root, root)
	require.Equal(t, defs.Ok, operr)
	assert.Same(t, fn, found)
}

func TestOpenNamevMissingNoCreateIsEnoent(t *testing.T) {
	root := NewRoot()
	_, err := OpenNamev("/f", 0, nil, root, root)
	assert.Equal(t, defs.ENOENT, err)
}

func TestOpenNamevCreatesOnOCreat(t *testing.T) {
	root := NewRoot()
	created, err := OpenNamev("/f", defs.O_CREAT, nil, root, root)
	require.Equal(t, defs.Ok, err)
	require.NotNil(t, created)

	found, err := Lookup(root, "f")
	require.Equal(t, defs.Ok, err)
	assert.Same(t, created, found)
}

func TestOpenNamevRelativeToCwdAndBase(t *testing.T) {
	root := NewRoot()
	sub, err := root.Ops.Mkdir(root, "sub")
	require.Equal(t, defs.Ok, err)
	fn, err := sub.Ops.Create(sub, "f")
	require.Equal(t, defs.Ok, err)

	found, operr := OpenNamev("f", 0, sub, root, root)
	require.Equal(t, defs.Ok, operr)
	assert.Same(t, fn, found)

	found, operr = OpenNamev("f", 0, nil, sub, root)
	require.Equal(t, defs.Ok, operr)
	assert.Same(t, fn, found)
}

func TestLookupNameFindsEntry(t *testing.T) {
	root := NewRoot()
	fn, err := root.Ops.Create(root, "f")
	require.Equal(t, defs.Ok, err)

	name, nerr := LookupName(root, fn)
	require.Equal(t, defs.Ok, nerr)
	assert.Equal(t, "f", name)
}

func TestLookupNameNotFound(t *testing.T) {
	root := NewRoot()
	other := NewVnode(Ramfs, defs.S_IFREG)
	_, err := LookupName(root, other)
	assert.Equal(t, defs.ENOENT, err)
}

func TestLookupDirpathRoot(t *testing.T) {
	root := NewRoot()
	path, err := LookupDirpath(root, root)
	require.Equal(t, defs.Ok, err)
	assert.Equal(t, "/", path)
}

func TestLookupDirpathNested(t *testing.T) {
	root := NewRoot()
	sub, err := root.Ops.Mkdir(root, "sub")
	require.Equal(t, defs.Ok, err)
	subsub, err := sub.Ops.Mkdir(sub, "deeper")
	require.Equal(t, defs.Ok, err)

	path, derr := LookupDirpath(subsub, root)
	require.Equal(t, defs.Ok, derr)
	assert.Equal(t, "/sub/deeper", path)
}
