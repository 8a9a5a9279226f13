package proc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defs"
	"sched"
	"vm"
)

// bootstrapOnce mirrors package kernel's Boot sequence (idle then init,
// both parentless) so every test in this file sees the same pid-0/pid-1
// pair and the same initProc that Cleanup reparents orphans to.
var (
	bootstrapMu  sync.Once
	idleProc     *Process
	initTestProc *Process
)

func bootstrap(t *testing.T) (*Process, *Process) {
	bootstrapMu.Do(func() {
		var err defs.Err_t
		idleProc, err = Create("idle", nil)
		require.Equal(t, defs.Ok, err)
		initTestProc, err = Create("init", nil)
		require.Equal(t, defs.Ok, err)
	})
	return idleProc, initTestProc
}

func newThread() *sched.Thread {
	return sched.NewThread("proctest", func(*sched.Thread) {})
}

func TestCreateBootstrapsIdleAndInit(t *testing.T) {
	idle, initp := bootstrap(t)
	assert.Equal(t, defs.PID_IDLE, idle.Pid)
	assert.Equal(t, defs.PID_INIT, initp.Pid)
	assert.Same(t, idle, Lookup(idle.Pid))
	assert.Same(t, initp, Lookup(initp.Pid))
}

func TestCreateLinksParentAndChild(t *testing.T) {
	_, initp := bootstrap(t)

	child, err := Create("child", initp)
	require.Equal(t, defs.Ok, err)
	assert.Same(t, initp, child.Parent)

	found := false
	for _, c := range initp.Children {
		if c == child {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDoForkClonesAddressSpaceAndFdTable(t *testing.T) {
	_, initp := bootstrap(t)
	th := newThread()

	parent, err := Create("parent", initp)
	require.Equal(t, defs.Ok, err)
	parent.Vmmap = vm.NewVmmap()
	_, verr := parent.Vmmap.Map(th, nil, 0, 1, defs.PROT_READ, defs.MAP_PRIVATE, 0, vm.LOHI)
	require.Equal(t, defs.Ok, verr)

	child, ferr := DoFork(th, parent, func(*sched.Thread) {})
	require.Equal(t, defs.Ok, ferr)
	assert.NotEqual(t, parent.Pid, child.Pid)
	assert.Same(t, parent, child.Parent)
	assert.NotSame(t, parent.Fds, child.Fds)
	require.Len(t, child.Vmmap.Areas(), 1)
	require.Len(t, child.Threads, 1)

	child.Threads[0].Join()
}

func TestDoWaitpidReapsDeadChildThenEchild(t *testing.T) {
	_, initp := bootstrap(t)
	th := newThread()

	parent, err := Create("waiter-parent", initp)
	require.Equal(t, defs.Ok, err)
	parent.Vmmap = vm.NewVmmap()

	child, ferr := DoFork(th, parent, func(*sched.Thread) {})
	require.Equal(t, defs.Ok, ferr)
	child.Threads[0].Join()

	Cleanup(th, child, 7)

	pid, status, werr := DoWaitpid(th, parent, -1, 0)
	require.Equal(t, defs.Ok, werr)
	assert.Equal(t, child.Pid, pid)
	assert.Equal(t, 7, status)
	assert.Nil(t, Lookup(child.Pid), "a reaped child must be removed from the global table")

	_, _, werr = DoWaitpid(th, parent, -1, 0)
	assert.Equal(t, defs.ECHILD, werr)
}

func TestDoWaitpidSpecificPidIgnoresOthers(t *testing.T) {
	_, initp := bootstrap(t)
	th := newThread()

	parent, err := Create("specific-parent", initp)
	require.Equal(t, defs.Ok, err)
	parent.Vmmap = vm.NewVmmap()

	a, _ := DoFork(th, parent, func(*sched.Thread) {})
	b, _ := DoFork(th, parent, func(*sched.Thread) {})
	a.Threads[0].Join()
	b.Threads[0].Join()

	Cleanup(th, b, 2)

	pid, status, werr := DoWaitpid(th, parent, b.Pid, 0)
	require.Equal(t, defs.Ok, werr)
	assert.Equal(t, b.Pid, pid)
	assert.Equal(t, 2, status)

	// a is still alive and not the requested pid: a second wait for b
	// must now find no matching child at all.
	_, _, werr = DoWaitpid(th, parent, b.Pid, 0)
	assert.Equal(t, defs.ECHILD, werr)

	Cleanup(th, a, 0)
	_, _, werr = DoWaitpid(th, parent, a.Pid, 0)
	assert.Equal(t, defs.Ok, werr)
}

func TestCleanupReparentsSurvivingChildrenToInit(t *testing.T) {
	_, initp := bootstrap(t)
	th := newThread()

	parent, err := Create("dying-parent", initp)
	require.Equal(t, defs.Ok, err)
	parent.Vmmap = vm.NewVmmap()

	grandchild, ferr := DoFork(th, parent, func(*sched.Thread) {})
	require.Equal(t, defs.Ok, ferr)
	grandchild.Threads[0].Join()

	Cleanup(th, parent, 0)

	assert.Same(t, initp, grandchild.Parent)
	found := false
	for _, c := range initp.Children {
		if c == grandchild {
			found = true
		}
	}
	assert.True(t, found, "init must inherit the dead parent's surviving children")

	// Once the grandchild exits, init can reap it directly.
	Cleanup(th, grandchild, 0)
	pid, _, werr := DoWaitpid(th, initp, grandchild.Pid, 0)
	require.Equal(t, defs.Ok, werr)
	assert.Equal(t, grandchild.Pid, pid)
}

func TestKillCancelsThreadsAndMarksDead(t *testing.T) {
	_, initp := bootstrap(t)
	th := newThread()

	p, err := Create("killable", initp)
	require.Equal(t, defs.Ok, err)
	p.Vmmap = vm.NewVmmap()

	var q sched.Waitqueue
	cancelled := make(chan bool, 1)
	victim := sched.NewThread("victim", func(ct *sched.Thread) {
		c := sched.CancellableSleepOn(ct, &q)
		cancelled <- c
	})
	AttachThread(p, victim)
	sched.MakeRunnable(victim)

	Kill(th, p, -1)
	victim.Join()

	assert.True(t, <-cancelled)
	assert.Equal(t, Dead, p.State())
	assert.Equal(t, -1, p.Status)
}

func TestKillAllSparesIdle(t *testing.T) {
	idle, initp := bootstrap(t)
	th := newThread()

	p, err := Create("killall-victim", initp)
	require.Equal(t, defs.Ok, err)
	p.Vmmap = vm.NewVmmap()
	victim := sched.NewThread("v", func(*sched.Thread) {})
	AttachThread(p, victim)
	sched.MakeRunnable(victim)
	victim.Join()

	KillAll(th)

	assert.Equal(t, Running, idle.State())
	assert.Equal(t, Dead, p.State())
}
