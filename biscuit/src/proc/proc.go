// Package proc is the process and thread model: process creation,
// parent/child reparenting, zombie reaping (do_waitpid), process kill,
// and do_fork's process-level half (the address-space and fd-table
// halves live in packages vm and fd respectively; proc wires them
// together the way do_fork does). Grounded on
// original_source/weenix/kernel/proc/{proc,fork}.c — the pid-allocation
// scheme, zombie/reparent bookkeeping and waitpid loop shape follow
// those files, but their actual bodies are draft-incomplete
// (NOT_YET_IMPLEMENTED markers throughout, a do_fork that overwrites a
// freshly created shadow object with its own input before ever using
// it); spec.md §4.2/§4.5.4 is authoritative for control flow here.
package proc

import (
	"sync"

	"accnt"
	"defs"
	"fd"
	"klog"
	"sched"
	"stats"
	"vm"
)

// State is a process's lifecycle state.
type State int

const (
	Running State = iota
	Dead
)

func (s State) String() string {
	if s == Dead {
		return "DEAD"
	}
	return "RUNNING"
}

// Process is a Weenix process control block: pid, name, parent/children
// links, the threads running in it (always exactly one — this kernel
// does not implement MTP, spec.md §1's non-goals), its open-file table,
// working directory, address-space map, and CPU accounting.
type Process struct {
	mu       sync.Mutex
	Pid      defs.Pid_t
	Name     string
	Parent   *Process
	Children []*Process
	Threads  []*sched.Thread
	Wait     sched.Waitqueue

	state  State
	Status int

	Fds   *fd.Table_t
	Cwd   *fd.Cwd_t
	Vmmap *vm.Vmmap
	Accnt accnt.Accnt_t

	birthNs int // Accnt.Now() at Create; Accnt.Finish's inttime argument at cleanup
}

var (
	tableMu  sync.Mutex
	table    = map[defs.Pid_t]*Process{}
	nextPid  defs.Pid_t
	initProc *Process
)

// allocPid finds the lowest unused pid at or after nextPid, wrapping at
// PROC_MAX_COUNT. Grounded on proc.c's _proc_getid, minus its infinite
// goto loop (expressed here as a bounded scan).
func allocPid() (defs.Pid_t, defs.Err_t) {
	for i := 0; i < defs.PROC_MAX_COUNT; i++ {
		pid := (nextPid + defs.Pid_t(i)) % defs.PROC_MAX_COUNT
		if _, used := table[pid]; !used {
			nextPid = (pid + 1) % defs.PROC_MAX_COUNT
			return pid, defs.Ok
		}
	}
	return -1, defs.ENOMEM
}

// Create allocates a new process named name, parented under parent (nil
// for the idle process, pid 0, and for init, pid 1). The caller still needs to attach
// at least one thread (sched.NewThread) and, for anything other than
// idle, a Vmmap/Fds/Cwd — Create itself only does the pid/table/
// parent-link bookkeeping proc_create covers.
func Create(name string, parent *Process) (*Process, defs.Err_t) {
	tableMu.Lock()
	defer tableMu.Unlock()

	pid, err := allocPid()
	if err != defs.Ok {
		return nil, err
	}

	p := &Process{
		Pid:    pid,
		Name:   name,
		Parent: parent,
		state:  Running,
		Fds:    &fd.Table_t{},
	}
	p.birthNs = p.Accnt.Now()
	table[pid] = p
	if parent != nil {
		parent.mu.Lock()
		parent.Children = append(parent.Children, p)
		parent.mu.Unlock()
	}
	if pid == defs.PID_INIT {
		initProc = p
	}
	stats.ProcessesCreated.Inc()
	stats.LiveProcesses.Set(float64(len(table)))
	klog.Debug(klog.Proc, "created pid %d (%s), parent %v", pid, name, parentPid(parent))
	return p, defs.Ok
}

func parentPid(p *Process) interface{} {
	if p == nil {
		return "-"
	}
	return p.Pid
}

// Lookup returns the process with the given pid, or nil.
func Lookup(pid defs.Pid_t) *Process {
	tableMu.Lock()
	defer tableMu.Unlock()
	return table[pid]
}

// List returns a snapshot of every live process.
func List() []*Process {
	tableMu.Lock()
	defer tableMu.Unlock()
	out := make([]*Process, 0, len(table))
	for _, p := range table {
		out = append(out, p)
	}
	return out
}

func (p *Process) addThread(t *sched.Thread) {
	p.mu.Lock()
	p.Threads = append(p.Threads, t)
	p.mu.Unlock()
}

// AttachThread gives p its first (or an additional) thread. Exported for
// package kernel's Boot, which builds idle and init directly rather than
// through DoFork.
func AttachThread(p *Process, t *sched.Thread) {
	p.addThread(t)
}

// State returns the process's current lifecycle state.
func (p *Process) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Cleanup releases everything a process can release on its own:
// closing open files, tearing down its address space, reparenting its
// children to init, and waking its parent. Grounded on proc.c's
// proc_cleanup; the process itself is not removed from the global
// table here — it remains a zombie until its parent reaps it via
// do_waitpid, exactly as spec.md §4.2 requires ("the parent finishes
// destroying it in do_waitpid").
func Cleanup(t *sched.Thread, p *Process, status int) {
	cleanup(t, p, status, "exit")
}

func cleanup(t *sched.Thread, p *Process, status int, reason string) {
	if p.Fds != nil {
		p.Fds.CloseAll()
	}
	if p.Cwd != nil {
		p.Cwd.Release()
	}
	if p.Vmmap != nil {
		for _, a := range p.Vmmap.Areas() {
			a.Obj.Put(t)
		}
	}

	p.Accnt.Finish(p.birthNs)

	p.mu.Lock()
	p.state = Dead
	p.Status = status
	children := p.Children
	p.Children = nil
	parent := p.Parent
	p.mu.Unlock()

	if len(children) > 0 && p != initProc {
		tableMu.Lock()
		ip := initProc
		tableMu.Unlock()
		if ip != nil {
			ip.mu.Lock()
			for _, c := range children {
				c.mu.Lock()
				c.Parent = ip
				c.mu.Unlock()
			}
			ip.Children = append(ip.Children, children...)
			ip.mu.Unlock()
		}
	}

	if parent != nil {
		sched.Broadcast(&parent.Wait)
	}
	stats.ProcessesExited.WithLabelValues(reason).Inc()
	klog.Debug(klog.Proc, "pid %d exited, status %d", p.Pid, status)
}

// ThreadExited is proc_thread_exited: the last (only, sans MTP) thread
// of p has returned, so clean up the process and let the thread itself
// exit the scheduler.
func ThreadExited(t *sched.Thread, p *Process, retval int) {
	Cleanup(t, p, retval)
	sched.Exit(t, retval)
}

// Kill terminates p with the given status as if it had called exit(2)
// itself. Unlike a real kill, this model cannot forcibly unwind a
// goroutine that is not the caller — killing another process only
// tears down its resources and marks it dead/zombie; its own thread
// goroutine notices via Cancelled() at its next cancellation point and
// unwinds from there, per spec.md §5's cancellation contract. Calling
// this on curproc is exactly do_exit.
func Kill(t *sched.Thread, p *Process, status int) {
	p.mu.Lock()
	threads := p.Threads
	p.mu.Unlock()
	for _, pt := range threads {
		sched.Cancel(pt)
	}
	cleanup(t, p, status, "killed")
}

// KillAll terminates every process except the idle process (pid 0) and
// its direct children are not special-cased further than that — spec.md
// §4.2 only calls this out as "used by sys_halt", not as part of normal
// shutdown ordering beyond "never kill idle".
func KillAll(t *sched.Thread) {
	for _, p := range List() {
		if p.Pid == defs.PID_IDLE {
			continue
		}
		Kill(t, p, 0)
	}
}

// The idle and init processes are constructed by package kernel's Boot
// sequence, not here — proc only knows how to build *a* process, not
// which one is first.
