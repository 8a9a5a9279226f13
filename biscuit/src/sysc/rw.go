package sysc

import (
	"defs"
	"klog"
	"proc"
)

// DoRead is do_read: fails EBADF if fdno isn't open for reading, EISDIR
// on a directory, else reads at the descriptor's current offset and
// advances it by the bytes returned.
func DoRead(p *proc.Process, fdno int, buf []byte) int {
	f, err := p.Fds.Get(fdno)
	if err != defs.Ok {
		return int(err)
	}
	if !f.Readable() {
		klog.Error(klog.Vfs, "do_read: fd %d not open for reading", fdno)
		return int(defs.EBADF)
	}
	if defs.S_ISDIR(f.Vn.Mode) {
		return int(defs.EISDIR)
	}
	n, rerr := f.Vn.Ops.Read(f.Vn, f.Pos(), buf)
	if rerr != defs.Ok {
		return int(rerr)
	}
	f.SetPos(f.Pos() + n)
	return n
}

// DoWrite is do_write: fails EBADF if fdno isn't open for writing; in
// FMODE_APPEND mode seeks to the file's end first. Advances f_pos by
// bytes written.
func DoWrite(p *proc.Process, fdno int, buf []byte) int {
	f, err := p.Fds.Get(fdno)
	if err != defs.Ok {
		return int(err)
	}
	if !f.Writable() {
		klog.Error(klog.Vfs, "do_write: fd %d not open for writing", fdno)
		return int(defs.EBADF)
	}
	if f.Appending() {
		if rc := DoLseek(p, fdno, 0, defs.SEEK_END); rc < 0 {
			return rc
		}
	}
	n, werr := f.Vn.Ops.Write(f.Vn, f.Pos(), buf)
	if werr != defs.Ok {
		return int(werr)
	}
	f.SetPos(f.Pos() + n)
	return n
}

// DoLseek is do_lseek: reposition fdno's offset per whence, rejecting
// any whence other than SEEK_SET/CUR/END or a resulting negative
// offset. Returns the new offset.
func DoLseek(p *proc.Process, fdno int, offset int, whence int) int {
	f, err := p.Fds.Get(fdno)
	if err != defs.Ok {
		return int(err)
	}
	var next int
	switch whence {
	case defs.SEEK_SET:
		next = offset
	case defs.SEEK_CUR:
		next = f.Pos() + offset
	case defs.SEEK_END:
		next = f.Vn.Length() + offset
	default:
		return int(defs.EINVAL)
	}
	if next < 0 {
		return int(defs.EINVAL)
	}
	f.SetPos(next)
	return next
}

// DoGetdent is do_getdent: fetch one directory entry at fdno's current
// offset into name, advancing f_pos. Returns 0 at end-of-directory.
func DoGetdent(p *proc.Process, fdno int, name *string) int {
	f, err := p.Fds.Get(fdno)
	if err != defs.Ok {
		return int(err)
	}
	if !defs.S_ISDIR(f.Vn.Mode) {
		return int(defs.ENOTDIR)
	}
	dirent, next, rerr := f.Vn.Ops.Readdir(f.Vn, f.Pos())
	if rerr != defs.Ok {
		return int(rerr)
	}
	if dirent.Vnode == nil {
		return 0 // end of directory
	}
	f.SetPos(next)
	*name = dirent.Name
	return 1
}
