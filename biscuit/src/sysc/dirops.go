package sysc

import (
	"defs"
	"fs"
	"proc"
)

// resolveParent runs dir_namev against p's cwd and validates the
// resulting parent is actually a directory — the common prefix every
// mkdir/mknod/rmdir/unlink/link/rename call starts with.
func resolveParent(p *proc.Process, path string) (parent *fs.Vnode, name string, err defs.Err_t) {
	base := cwdOf(p)
	parent, name, err = fs.DirNamev(path, base, base, root)
	base.Vput()
	if err != defs.Ok {
		return nil, "", err
	}
	if !defs.S_ISDIR(parent.Mode) {
		parent.Vput()
		return nil, "", defs.ENOTDIR
	}
	return parent, name, defs.Ok
}

// DoMknod is do_mknod: create a device special file. mode must be
// S_IFCHR or S_IFBLK — Weenix never allows mknod to create a regular
// file.
func DoMknod(p *proc.Process, path string, mode int, devid int) int {
	if mode != defs.S_IFCHR && mode != defs.S_IFBLK {
		return int(defs.EINVAL)
	}
	parent, name, err := resolveParent(p, path)
	if err != defs.Ok {
		return int(err)
	}
	if existing, lerr := fs.Lookup(parent, name); lerr == defs.Ok {
		existing.Vput()
		parent.Vput()
		return int(defs.EEXIST)
	}
	_, merr := parent.Ops.Mknod(parent, name, mode, devid)
	parent.Vput()
	return int(merr.Rc(0))
}

// DoMkdir is do_mkdir.
func DoMkdir(p *proc.Process, path string) int {
	parent, name, err := resolveParent(p, path)
	if err != defs.Ok {
		return int(err)
	}
	if existing, lerr := fs.Lookup(parent, name); lerr == defs.Ok {
		existing.Vput()
		parent.Vput()
		return int(defs.EEXIST)
	}
	_, merr := parent.Ops.Mkdir(parent, name)
	parent.Vput()
	return int(merr.Rc(0))
}

// DoRmdir is do_rmdir: EINVAL if the final component is ".", ENOTEMPTY
// if it's "..". The containing directory's rmdir vn_op itself catches
// non-empty/non-directory targets.
func DoRmdir(p *proc.Process, path string) int {
	parent, name, err := resolveParent(p, path)
	if err != defs.Ok {
		return int(err)
	}
	defer parent.Vput()
	if name == "." {
		return int(defs.EINVAL)
	}
	if name == ".." {
		return int(defs.ENOTEMPTY)
	}
	return int(parent.Ops.Rmdir(parent, name).Rc(0))
}

// DoUnlink is do_unlink: EISDIR if the target is a directory.
func DoUnlink(p *proc.Process, path string) int {
	parent, name, err := resolveParent(p, path)
	if err != defs.Ok {
		return int(err)
	}
	defer parent.Vput()
	target, lerr := fs.Lookup(parent, name)
	if lerr != defs.Ok {
		return int(lerr)
	}
	isDir := defs.S_ISDIR(target.Mode)
	target.Vput()
	if isDir {
		return int(defs.EISDIR)
	}
	return int(parent.Ops.Unlink(parent, name).Rc(0))
}

// DoLink is do_link: resolve from via open_namev, to's parent via
// dir_namev, and link to's parent to from's vnode. EEXIST if to already
// exists.
func DoLink(p *proc.Process, from, to string) int {
	base := cwdOf(p)
	fromVn, ferr := fs.OpenNamev(from, 0, base, base, root)
	if ferr != defs.Ok {
		base.Vput()
		return int(ferr)
	}
	toParent, toName, terr := fs.DirNamev(to, base, base, root)
	base.Vput()
	if terr != defs.Ok {
		fromVn.Vput()
		return int(terr)
	}
	if !defs.S_ISDIR(toParent.Mode) {
		fromVn.Vput()
		toParent.Vput()
		return int(defs.ENOTDIR)
	}
	if existing, lerr := fs.Lookup(toParent, toName); lerr == defs.Ok {
		existing.Vput()
		fromVn.Vput()
		toParent.Vput()
		return int(defs.EEXIST)
	}
	err := toParent.Ops.Link(toParent, toName, fromVn)
	fromVn.Vput()
	toParent.Vput()
	return int(err.Rc(0))
}

// DoRename is do_rename: link(old, new) followed by unlink(old), the
// same caveat POSIX accepts — a failure between the two can leave both
// names pointing at the file (spec.md §4.4). ramfs's Rename vn_op does
// this atomically when both names share a filesystem, which is the only
// case this kernel has.
func DoRename(p *proc.Process, oldname, newname string) int {
	oldParent, oldComp, oerr := resolveParent(p, oldname)
	if oerr != defs.Ok {
		return int(oerr)
	}
	defer oldParent.Vput()

	newParent, newComp, nerr := resolveParent(p, newname)
	if nerr != defs.Ok {
		return int(nerr)
	}
	defer newParent.Vput()

	return int(oldParent.Ops.Rename(oldParent, oldComp, newParent, newComp).Rc(0))
}
