// Package fs is the VFS core: the polymorphic vnode, path resolution
// (lookup/dir_namev/open_namev), and an in-memory filesystem ("ramfs")
// that backs it end to end. The on-disk S5FS format the teacher's own
// fs package spoke (blk.go, super.go) is explicitly out of scope (spec.md
// §1); ramfs exists so every VFS syscall in §4.4 is exercisable without
// it.
package fs

import (
	"sync"

	"defs"
	"mem"
	"stat"
)

// Ops is a vnode's operations table (spec.md §3's fixed capability set).
// A concrete filesystem (only ramfs, here) implements this once; every
// Vnode instance it creates points at the same Ops value.
type Ops interface {
	Lookup(dir *Vnode, name string) (*Vnode, defs.Err_t)
	Create(dir *Vnode, name string) (*Vnode, defs.Err_t)
	Mknod(dir *Vnode, name string, mode int, devid int) (*Vnode, defs.Err_t)
	Mkdir(dir *Vnode, name string) (*Vnode, defs.Err_t)
	Rmdir(dir *Vnode, name string) defs.Err_t
	Link(dir *Vnode, name string, target *Vnode) defs.Err_t
	Unlink(dir *Vnode, name string) defs.Err_t
	Rename(olddir *Vnode, oldname string, newdir *Vnode, newname string) defs.Err_t
	Read(vn *Vnode, off int, buf []byte) (int, defs.Err_t)
	Write(vn *Vnode, off int, buf []byte) (int, defs.Err_t)
	Readdir(vn *Vnode, off int) (Dirent, int, defs.Err_t)
	Stat(vn *Vnode, st *stat.Stat_t) defs.Err_t
	Mmap(vn *Vnode) (mem.Mmobj, defs.Err_t)
}

// Dirent is one directory entry, as getdent returns it.
type Dirent struct {
	Name  string
	Vnode *Vnode
}

// Vnode is a polymorphic inode: mode, length, device id, a reference
// count, an operations table, and (for regular files) the embedded
// file-backed memory object that mmap hands out. Grounded on
// original_source/weenix/kernel/fs/vnode.h's field list and
// vfs_syscall.c's vget/vput usage.
type Vnode struct {
	Ops  Ops
	Mode int
	Dev  int // meaningful only for S_IFCHR/S_IFBLK

	mu      sync.Mutex
	refcnt  int
	length  int
	mmobj   *mem.FileObj // lazily created by Mmap
	fsdata  interface{}  // concrete filesystem's private state (ramDir/ramFile)
}

// NewVnode returns a vnode with refcount 1.
func NewVnode(ops Ops, mode int) *Vnode {
	return &Vnode{Ops: ops, Mode: mode, refcnt: 1}
}

// Vget increments vn's reference count.
func (vn *Vnode) Vget() {
	vn.mu.Lock()
	defer vn.mu.Unlock()
	vn.refcnt++
}

// Vput decrements vn's reference count. At zero the vnode is gone — for
// ramfs that just means nothing else is holding it (its fsdata, if a
// directory or file, lives on in its parent as long as it's linked).
func (vn *Vnode) Vput() {
	vn.mu.Lock()
	defer vn.mu.Unlock()
	vn.refcnt--
}

// Refcount returns vn's current reference count, for tests and
// leak-checking.
func (vn *Vnode) Refcount() int {
	vn.mu.Lock()
	defer vn.mu.Unlock()
	return vn.refcnt
}

// Length returns the vnode's current byte length.
func (vn *Vnode) Length() int {
	vn.mu.Lock()
	defer vn.mu.Unlock()
	return vn.length
}

func (vn *Vnode) setLength(n int) {
	vn.mu.Lock()
	vn.length = n
	vn.mu.Unlock()
}

// Mmap returns vn's embedded file-backed memory object, creating it on
// first use (spec.md §3: "a memory object embedded inside it").
func (vn *Vnode) Mmap() (mem.Mmobj, defs.Err_t) {
	vn.mu.Lock()
	if vn.mmobj != nil {
		obj := vn.mmobj
		vn.mu.Unlock()
		obj.Ref()
		return obj, defs.Ok
	}
	vn.mu.Unlock()
	return vn.Ops.Mmap(vn)
}

// ReadPage and WritePage implement mem.Backing directly against a
// ramFile's byte buffer, so Vnode can hand its embedded FileObj straight
// to mem.NewFileObj(vn) without any adapter type. The return type is
// the plain error interface, not defs.Err_t, because mem.Backing is
// defined in a package that knows nothing about this kernel's
// negative-errno convention — defs.Err_t still satisfies it via its own
// Error() method.
func (vn *Vnode) ReadPage(pagenum uint32, buf []byte) error {
	rf, ok := vn.fsdata.(*ramFile)
	if !ok {
		return defs.EINVAL
	}
	if err := rf.readPage(pagenum, buf); err != defs.Ok {
		return err
	}
	return nil
}

func (vn *Vnode) WritePage(pagenum uint32, buf []byte) error {
	rf, ok := vn.fsdata.(*ramFile)
	if !ok {
		return defs.EINVAL
	}
	if err := rf.writePage(pagenum, buf); err != defs.Ok {
		return err
	}
	return nil
}
