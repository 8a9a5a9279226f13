// Package fd is the file descriptor table and open-file abstraction
// (spec.md §3's "File (open instance)" and "File-descriptor table").
// Adapted from the teacher's own fd.go: Fd_t/Cwd_t/Copyfd keep their
// names and shape, but Fd_t now wraps a vnode + offset + mode directly
// instead of the teacher's pluggable fdops.Fdops_i, since this kernel's
// only open-file kind is "vnode opened with some access mode" (no
// pipes, no sockets — out of scope per spec.md §1).
package fd

import (
	"sync"

	"defs"
	"fs"
)

/// Fd_t represents an open file descriptor: a vnode reference, the
/// current byte offset, and the access mode it was opened with. Shared
/// across dup/dup2'd descriptors — Copyfd bumps its reference count
/// rather than copying it.
type Fd_t struct {
	mu       sync.Mutex
	Vn       *fs.Vnode
	pos      int
	mode     int // FMODE_* bits
	refcount int
}

/// MkFd wraps vn as a freshly opened file at offset 0, refcount 1.
/// Takes ownership of the caller's vnode reference.
func MkFd(vn *fs.Vnode, mode int) *Fd_t {
	return &Fd_t{Vn: vn, mode: mode, refcount: 1}
}

/// Mode returns the FMODE_* bits this descriptor was opened with.
func (f *Fd_t) Mode() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

/// Pos returns the descriptor's current byte offset.
func (f *Fd_t) Pos() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

/// SetPos sets the descriptor's byte offset, as lseek and post-read/
/// write advances do.
func (f *Fd_t) SetPos(p int) {
	f.mu.Lock()
	f.pos = p
	f.mu.Unlock()
}

/// Readable reports whether this descriptor was opened for reading.
func (f *Fd_t) Readable() bool { return f.Mode()&defs.FMODE_READ != 0 }

/// Writable reports whether this descriptor was opened for writing.
func (f *Fd_t) Writable() bool { return f.Mode()&defs.FMODE_WRITE != 0 }

/// Appending reports whether this descriptor was opened with O_APPEND.
func (f *Fd_t) Appending() bool { return f.Mode()&defs.FMODE_APPEND != 0 }

/// Copyfd duplicates an open file descriptor by sharing it: dup/dup2
/// and fork all arrive here, and all three want "the same file
/// instance, one more reference" rather than an independent copy
/// (spec.md §4.4: "dup/dup2 share the same file instance").
func Copyfd(f *Fd_t) *Fd_t {
	f.mu.Lock()
	f.refcount++
	f.mu.Unlock()
	return f
}

/// Close_panic closes the descriptor and panics if its refcount was
/// already zero — a programming bug, not a recoverable condition.
func Close_panic(f *Fd_t) {
	f.mu.Lock()
	if f.refcount <= 0 {
		f.mu.Unlock()
		panic("close of already-closed fd")
	}
	f.refcount--
	last := f.refcount == 0
	f.mu.Unlock()
	if last {
		f.Vn.Vput()
	}
}

/// Cwd_t tracks the current working directory for a process: the held
/// vnode only. No path is stored; getcwd-style reporting rebuilds it
/// from the vnode via fs.LookupDirpath.
type Cwd_t struct {
	mu   sync.Mutex
	Vn   *fs.Vnode
}

/// MkRootCwd constructs a Cwd_t rooted at vn (the vfs root), taking
/// ownership of the caller's reference.
func MkRootCwd(vn *fs.Vnode) *Cwd_t {
	return &Cwd_t{Vn: vn}
}

/// Get returns the current directory vnode with an incremented
/// reference, for the caller to release when done.
func (cwd *Cwd_t) Get() *fs.Vnode {
	cwd.mu.Lock()
	vn := cwd.Vn
	cwd.mu.Unlock()
	vn.Vget()
	return vn
}

/// Set replaces the current directory with vn (already held by the
/// caller on its behalf) and releases the old one. do_chdir's job.
func (cwd *Cwd_t) Set(vn *fs.Vnode) {
	cwd.mu.Lock()
	old := cwd.Vn
	cwd.Vn = vn
	cwd.mu.Unlock()
	old.Vput()
}

/// Release drops this Cwd_t's vnode reference — proc_cleanup's job when a
/// process exits.
func (cwd *Cwd_t) Release() {
	cwd.mu.Lock()
	vn := cwd.Vn
	cwd.Vn = nil
	cwd.mu.Unlock()
	if vn != nil {
		vn.Vput()
	}
}
