package sysc

import (
	"defs"
	"proc"
	"sched"
)

// DoFork is do_fork's syscall-layer entry point: spawn a child of p via
// proc.DoFork, running entry in the child's own thread, and return the
// child's pid to the caller (the parent's "eax" in spec.md §4.5.4 step
// 6). There is no register file to patch here — entry receives the
// child's own *sched.Thread and is exactly what would run "after fork
// returns 0" in the child; the caller supplies it because a goroutine
// has no single return address two control flows can diverge from.
func DoFork(t *sched.Thread, p *proc.Process, entry func(*sched.Thread)) int {
	child, err := proc.DoFork(t, p, entry)
	if err != defs.Ok {
		return int(err)
	}
	return int(child.Pid)
}

// DoWaitpid is do_waitpid: reap one dead child of p, writing its exit
// status to *status and returning its pid.
func DoWaitpid(t *sched.Thread, p *proc.Process, pid defs.Pid_t, options int, status *int) int {
	childPid, childStatus, err := proc.DoWaitpid(t, p, pid, options)
	if err != defs.Ok {
		return int(err)
	}
	if status != nil {
		*status = childStatus
	}
	return int(childPid)
}

// DoExit is do_exit: the calling thread's half of process termination.
// Grounded on proc.c's do_exit, which for this single-threaded-per-
// process kernel collapses to "this is the process's only thread, so
// exiting it always finishes the process": ThreadExited runs
// proc_cleanup once every thread has exited, which for a one-thread
// process is immediately.
func DoExit(t *sched.Thread, p *proc.Process, status int) {
	proc.ThreadExited(t, p, status)
}
