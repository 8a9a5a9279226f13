package sysc

import (
	"defs"
	"fs"
	"proc"
)

// DoChdir is do_chdir: resolve path and make it p's new cwd, releasing
// the old one. ENOTDIR if the resolved vnode isn't a directory.
func DoChdir(p *proc.Process, path string) int {
	base := cwdOf(p)
	vn, err := fs.OpenNamev(path, 0, base, base, root)
	base.Vput()
	if err != defs.Ok {
		return int(err)
	}
	if !defs.S_ISDIR(vn.Mode) {
		vn.Vput()
		return int(defs.ENOTDIR)
	}
	p.Cwd.Set(vn)
	return 0
}
