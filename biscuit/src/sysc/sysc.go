// Package sysc is the syscall layer over vnodes (spec.md §4.4): one
// function per do_* entry point, each validating its fd/path arguments,
// acquiring the references it needs, performing the vnode-op, and
// releasing every reference on every return path. Grounded on
// original_source/weenix/kernel/fs/vfs_syscall.c, whose overall shape
// (fget/fput bracketing, dir_namev-then-lookup) this follows; its
// refcount leaks on early-return error paths and its use of a bare
// logical OR when computing f_mode are both explicitly not reproduced
// (spec.md §7's redesign flags call both out).
//
// Every do_* function except DoExit, which returns nothing, returns a single int via defs.Err_t.Rc, matching
// the C calling convention these functions mirror: negative is -errno,
// anything else is the syscall's result.
package sysc

import (
	"defs"
	"fd"
	"fs"
	"klog"
	"proc"
	"sched"
)

// root is the VFS root every path syscall resolves absolute paths and
// ".." escapes against. kernel.Boot sets it once at startup.
var root *fs.Vnode

// SetRoot installs the VFS root this package resolves every path
// against. Called exactly once, by kernel.Boot.
func SetRoot(vn *fs.Vnode) {
	root = vn
}

// cwdOf returns p's current working directory vnode, held, for use as
// dir_namev/open_namev's base. Processes always have a cwd once
// kernel.Boot has run, but defensively fall back to root so a
// not-yet-fully-initialized process doesn't nil-deref.
func cwdOf(p *proc.Process) *fs.Vnode {
	if p.Cwd == nil {
		root.Vget()
		return root
	}
	return p.Cwd.Get()
}
