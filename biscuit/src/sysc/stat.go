package sysc

import (
	"defs"
	"fs"
	"proc"
	"stat"
)

// DoStat is do_stat: resolve path and fill st via the target vnode's
// stat vn_op.
func DoStat(p *proc.Process, path string, st *stat.Stat_t) int {
	base := cwdOf(p)
	vn, err := fs.OpenNamev(path, 0, base, base, root)
	base.Vput()
	if err != defs.Ok {
		return int(err)
	}
	serr := vn.Ops.Stat(vn, st)
	vn.Vput()
	return int(serr.Rc(0))
}
