package proc

import (
	"defs"
	"fd"
	"sched"
	"vm"
)

// DoFork is do_fork's process-level half: create the child process,
// clone the address space with copy-on-write shadows installed on both
// sides (vm.Fork), duplicate the fd table and working directory, and
// start the child running entry in a fresh kernel thread. entry is
// called with the child's own *sched.Thread, exactly the contract
// sched.NewThread already establishes; the caller decides what "return
// 0 in the child, child pid in the parent" means for its own calling
// convention (a goroutine has no register file to patch, unlike
// fork_setup_stack in original_source/weenix/kernel/proc/fork.c, which
// is itself dead code — fork_setup_stack is never called from do_fork's
// body in that file).
//
// Step 4 of spec.md §4.5.4 ("unmap the parent's page-table entries and
// flush the TLB") has no effect here: this kernel has no hardware page
// tables (out of scope per spec.md §1), so there is nothing to unmap —
// re-faulting on write is already guaranteed by vm.Fork never installing
// any mapping for the newly shadowed areas in the first place.
func DoFork(t *sched.Thread, parent *Process, entry func(*sched.Thread)) (*Process, defs.Err_t) {
	child, err := Create(parent.Name, parent)
	if err != defs.Ok {
		return nil, err
	}

	child.Vmmap = vm.Fork(parent.Vmmap)
	child.Fds = parent.Fds.Clone()
	if parent.Cwd != nil {
		child.Cwd = fd.MkRootCwd(parent.Cwd.Get())
	}

	childThread := sched.NewThread(child.Name, entry)
	child.addThread(childThread)
	sched.MakeRunnable(childThread)

	return child, defs.Ok
}
