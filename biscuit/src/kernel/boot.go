// Package kernel wires together the packages built around spec.md's
// three subsystems — sched, fs/fd, vm, proc, sysc — into a bootable
// whole: Boot constructs the idle and init processes and mounts ramfs
// as the VFS root, the same role chentry.go's ELF-entry patching played
// for the teacher's real x86 boot sequence before an in-kernel exec
// existed to run user binaries. exec and user-mode linking are
// explicitly out of scope here (spec.md §1), so init runs a kernel-side
// entry function directly rather than loading one from disk.
package kernel

import (
	"defs"
	"fd"
	"fs"
	"proc"
	"sched"
	"sysc"
	"vm"
)

// Kernel holds everything Boot constructs: the VFS root and the idle/
// init processes, for a caller (weenixctl, or a test) to drive further.
type Kernel struct {
	Root *fs.Vnode
	Idle *proc.Process
	Init *proc.Process
}

// Boot brings up the kernel: mounts a fresh ramfs as the VFS root,
// creates the idle process (pid 0, the scheduler's fallback thread) and
// init (pid 1, running initEntry), and returns once init's thread has
// been made runnable. Grounded on original_source/weenix/kernel/
// kernel.c's boot ordering (idle first, then init) to the extent that
// file is anything but hardware bring-up this kernel has no use for;
// there is no equivalent original_source body for "construct the first
// two processes in a freestanding Go program", so the pid/vmmap/fd/cwd
// wiring here follows proc.Create/DoFork's own established contracts
// instead.
func Boot(initEntry func(t *sched.Thread, k *Kernel)) *Kernel {
	root := fs.NewRoot()
	sysc.SetRoot(root)

	idle, err := proc.Create("idle", nil)
	if err != defs.Ok {
		panic("kernel.Boot: failed to create idle process: " + err.Error())
	}
	idleThread := sched.NewThread("idle", func(t *sched.Thread) {
		sched.SleepOn(t, &idleWait)
	})
	proc.AttachThread(idle, idleThread)
	sched.MakeRunnable(idleThread)

	init, err := proc.Create("init", nil)
	if err != defs.Ok {
		panic("kernel.Boot: failed to create init process: " + err.Error())
	}
	root.Vget()
	init.Cwd = fd.MkRootCwd(root)
	init.Vmmap = vm.NewVmmap()

	k := &Kernel{Root: root, Idle: idle, Init: init}
	initThread := sched.NewThread("init", func(t *sched.Thread) {
		initEntry(t, k)
	})
	proc.AttachThread(init, initThread)
	sched.MakeRunnable(initThread)

	return k
}

var idleWait sched.Waitqueue
