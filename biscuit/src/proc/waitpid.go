package proc

import (
	"defs"
	"sched"
	"stats"
	"util"
)

// DoWaitpid is do_waitpid: reap one dead child of parent. pid == -1
// reaps any dead child; pid > 0 waits specifically for that child.
// Blocks on parent.Wait until a matching child is dead if none already
// is. Grounded on proc.c's do_waitpid, whose overall shape (scan for a
// DEAD child, sleep on p_wait and retry if none found yet) this follows;
// its two near-duplicate pid==-1/pid>0 loops are unified into one scan
// with a predicate.
func DoWaitpid(t *sched.Thread, parent *Process, pid defs.Pid_t, options int) (defs.Pid_t, int, defs.Err_t) {
	util.Assert(options == 0, "do_waitpid: only options == 0 is supported")

	for {
		parent.mu.Lock()
		if len(parent.Children) == 0 {
			parent.mu.Unlock()
			return -1, 0, defs.ECHILD
		}

		haveMatch := false
		for i, c := range parent.Children {
			if pid != -1 && c.Pid != pid {
				continue
			}
			haveMatch = true
			if c.State() == Dead {
				parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
				status := c.Status
				childPid := c.Pid

				tableMu.Lock()
				delete(table, childPid)
				stats.LiveProcesses.Set(float64(len(table)))
				tableMu.Unlock()

				parent.mu.Unlock()
				return childPid, status, defs.Ok
			}
		}
		parent.mu.Unlock()

		if pid != -1 && !haveMatch {
			return -1, 0, defs.ECHILD
		}

		sched.SleepOn(t, &parent.Wait)
	}
}
