package proc

import (
	"fmt"
	"strings"

	"fs"
)

// Info renders a human-readable summary of p — pid, name, parent,
// children, state/status and (if it has a working directory and a VFS
// root to resolve against) its current path. A supplemented feature:
// grounded directly on proc.c's proc_info, minus its #ifdef __MTP__
// thread-count block (this kernel never runs more than one thread per
// process) and its iprintf/fixed-buffer plumbing, which a Go string
// builder has no need to imitate.
func Info(p *Process, vfsRoot *fs.Vnode) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "pid:      %d\n", p.Pid)
	fmt.Fprintf(&b, "name:     %s\n", p.Name)
	if p.Parent != nil {
		fmt.Fprintf(&b, "parent:   %d (%s)\n", p.Parent.Pid, p.Parent.Name)
	} else {
		fmt.Fprintf(&b, "parent:   -\n")
	}

	if len(p.Children) == 0 {
		fmt.Fprintf(&b, "children: -\n")
	} else {
		fmt.Fprintf(&b, "children:\n")
		for _, c := range p.Children {
			fmt.Fprintf(&b, "    %d (%s)\n", c.Pid, c.Name)
		}
	}

	fmt.Fprintf(&b, "state:    %s\n", p.state)
	fmt.Fprintf(&b, "status:   %d\n", p.Status)
	fmt.Fprintf(&b, "usage:    user=%dns sys=%dns\n", p.Accnt.Userns, p.Accnt.Sysns)

	if p.Cwd != nil && vfsRoot != nil {
		vn := p.Cwd.Get()
		path, err := fs.LookupDirpath(vn, vfsRoot)
		vn.Vput()
		if err == 0 {
			fmt.Fprintf(&b, "cwd:      %s\n", path)
		}
	}
	return b.String()
}

// ListInfo renders a one-line-per-process table of every live process,
// the supplemented proc_list_info.
func ListInfo(vfsRoot *fs.Vnode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%5s %-13s %-18s %-s\n", "PID", "NAME", "PARENT", "CWD")
	for _, p := range List() {
		p.mu.Lock()
		parent := "-"
		if p.Parent != nil {
			parent = fmt.Sprintf("%d (%s)", p.Parent.Pid, p.Parent.Name)
		}
		cwd := "-"
		if p.Cwd != nil && vfsRoot != nil {
			vn := p.Cwd.Get()
			if path, err := fs.LookupDirpath(vn, vfsRoot); err == 0 {
				cwd = path
			}
			vn.Vput()
		}
		fmt.Fprintf(&b, "%5d %-13s %-18s %-s\n", p.Pid, p.Name, parent, cwd)
		p.mu.Unlock()
	}
	return b.String()
}
