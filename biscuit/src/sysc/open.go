package sysc

import (
	"defs"
	"fd"
	"fs"
	"klog"
	"proc"
)

// DoOpen is do_open: resolve path (creating a regular file if O_CREAT is
// set and the path doesn't exist yet), reject invalid oflags, and
// install a fresh Fd_t in p's table. Returns the new fd, or a negative
// Err_t.
//
// f_mode is derived strictly by defs.OflagsToFmode's bitwise OR — the
// original source's do_open draft computes it with a logical OR in one
// commented branch, a bug spec.md §7 calls out explicitly and this does
// not reproduce.
func DoOpen(p *proc.Process, path string, oflags int) int {
	if !defs.ValidOflags(oflags) {
		return int(defs.EINVAL)
	}
	base := cwdOf(p)
	vn, err := fs.OpenNamev(path, oflags, base, base, root)
	base.Vput()
	if err != defs.Ok {
		klog.Error(klog.Vfs, "do_open(%q): %v", path, err)
		return int(err)
	}

	// O_TRUNC truncation of an existing regular file's contents is not
	// modeled: ramfs exposes no truncate op, and nothing in spec.md §4.4
	// pins its exact semantics beyond the flag's existence in §6.

	newfd, aerr := p.Fds.Alloc(fd.MkFd(vn, defs.OflagsToFmode(oflags)))
	if aerr != defs.Ok {
		vn.Vput()
		return int(aerr)
	}
	klog.Debug(klog.Vfs, "do_open(%q) -> fd %d", path, newfd)
	return newfd
}

// DoClose is do_close: zero fd's slot and drop its reference exactly
// once.
func DoClose(p *proc.Process, fdno int) int {
	err := p.Fds.Close(fdno)
	return int(err.Rc(0))
}

// DoDup is do_dup: share fd's descriptor into a new, lowest-available
// slot.
func DoDup(p *proc.Process, fdno int) int {
	nfd, err := p.Fds.Dup(fdno)
	if err != defs.Ok {
		return int(err)
	}
	return nfd
}

// DoDup2 is do_dup2: share oldfd's descriptor into newfd, closing
// whatever occupied newfd first. A no-op when oldfd == newfd.
func DoDup2(p *proc.Process, oldfd, newfd int) int {
	if err := p.Fds.Dup2(oldfd, newfd); err != defs.Ok {
		return int(err)
	}
	return newfd
}
