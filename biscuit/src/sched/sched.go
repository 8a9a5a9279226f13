// Package sched is the cooperative kernel scheduler: a thread type, FIFO
// wait queues, and the mutex built on top of them. It is the Go
// counterpart of original_source/weenix/kernel/proc/kthread.c and
// kmutex.c, and implements spec.md §4.1.
//
// spec.md models one physical CPU that runs kernel threads cooperatively:
// a thread runs until it explicitly yields, sleeps, or exits, and the code
// between two such points is implicitly a critical section. Go has no
// literal equivalent — the runtime schedules goroutines preemptively on
// its own — so each kernel thread here is a real goroutine, and "sleep"
// and "wake" are a direct channel handoff rather than a virtual-CPU
// dequeue. What the spec actually requires of a wait queue — FIFO wake
// order, a single owner for a mutex, cancellation removing a cancellable
// sleeper from its queue — all survive this translation exactly; the
// properties spec.md §8 tests for are per-wait-queue, not "only one
// goroutine in the whole process may run", so Big below only needs to
// protect the scheduler's own bookkeeping (thread state, wait-queue
// membership, mutex ownership), the same way the teacher protects Vm_t's
// fields with its own embedded mutex (biscuit/src/vm/as.go).
package sched

import (
	"runtime"
	"sync"

	"defs"
	"klog"
	"stats"
)

// State is a kernel thread's scheduling state (spec.md §3).
type State int

const (
	NoState State = iota
	OnCPU
	Runnable
	Sleep
	SleepCancellable
	Exited
)

func (s State) String() string {
	switch s {
	case NoState:
		return "NO_STATE"
	case OnCPU:
		return "ON_CPU"
	case Runnable:
		return "RUNNABLE"
	case Sleep:
		return "SLEEP"
	case SleepCancellable:
		return "SLEEP_CANCELLABLE"
	case Exited:
		return "EXITED"
	default:
		return "?"
	}
}

// Thread is a kernel thread. entry runs on its own goroutine; resumeCh is
// the "wake" signal a sleeping thread's goroutine is blocked receiving on.
type Thread struct {
	Tid  defs.Tid_t
	Name string

	mu        sync.Mutex // guards the fields below
	state     State
	cancelled bool
	retval    int
	wchan     *Waitqueue // non-nil iff state is Sleep or SleepCancellable

	resumeCh chan struct{}
	doneCh   chan struct{}
}

// Big is the kernel giant lock guarding thread state transitions, wait
// queue membership and mutex ownership — the scheduler's own data, not
// arbitrary kernel state. Held only for the duration of a single
// scheduler operation, never across a sleep.
var Big sync.Mutex

var (
	tidMu   sync.Mutex
	nextTid defs.Tid_t = 1
)

func allocTid() defs.Tid_t {
	tidMu.Lock()
	defer tidMu.Unlock()
	t := nextTid
	nextTid++
	return t
}

// NewThread allocates a thread in NO_STATE, with entry parked waiting to
// be started by MakeRunnable — mirroring kthread_create, which leaves a
// freshly built kthread_t unscheduled until something runs it.
func NewThread(name string, entry func(t *Thread)) *Thread {
	t := &Thread{
		Tid:      allocTid(),
		Name:     name,
		state:    NoState,
		resumeCh: make(chan struct{}, 1),
		doneCh:   make(chan struct{}),
	}
	go func() {
		<-t.resumeCh
		t.mu.Lock()
		t.state = OnCPU
		t.mu.Unlock()
		entry(t)
		close(t.doneCh)
	}()
	stats.ThreadsCreated.Inc()
	return t
}

// State returns the thread's current scheduling state.
func (t *Thread) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Cancelled reports whether the thread has been asked to cancel. Threads
// must consult this at their own cancellation points (spec.md §5).
func (t *Thread) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Retval returns the value kthread_exit recorded.
func (t *Thread) Retval() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.retval
}

// Join blocks the caller until t has exited. Used by the reap path and by
// tests; real kernel code never joins its own threads (spec.md forbids
// multi-thread-per-process reasoning beyond what proc_cleanup needs).
func (t *Thread) Join() {
	<-t.doneCh
}

func wake(t *Thread) {
	select {
	case t.resumeCh <- struct{}{}:
	default:
	}
}

// MakeRunnable transitions t from SLEEP|NO_STATE to RUNNABLE and resumes
// its goroutine. Idempotent if t is already runnable or running
// (spec.md §4.1).
func MakeRunnable(t *Thread) {
	Big.Lock()
	defer Big.Unlock()
	t.mu.Lock()
	if t.state == Runnable || t.state == OnCPU {
		t.mu.Unlock()
		return
	}
	t.state = Runnable
	t.wchan = nil
	t.mu.Unlock()
	wake(t)
}

// Switch yields the current goroutine back to the Go runtime's scheduler.
// It has no virtual runqueue to dequeue from — Go's own scheduler already
// multiplexes goroutines onto OS threads — but is kept as an explicit
// suspension point matching spec.md's contract, and is what SleepOn /
// CancellableSleepOn call after arranging to be woken.
func Switch() {
	runtime.Gosched()
}

// SleepOn puts t to sleep on q. Not cancellable: only wake_one/broadcast
// can resume t.
func SleepOn(t *Thread, q *Waitqueue) {
	sleepOn(t, q, Sleep)
}

// CancellableSleepOn is as SleepOn but reports cancellation to the caller:
// it returns true if the sleep was interrupted by Cancel rather than a
// normal wake.
func CancellableSleepOn(t *Thread, q *Waitqueue) (cancelled bool) {
	sleepOn(t, q, SleepCancellable)
	return t.Cancelled()
}

func sleepOn(t *Thread, q *Waitqueue, st State) {
	Big.Lock()
	t.mu.Lock()
	t.state = st
	t.wchan = q
	t.mu.Unlock()
	q.pushBack(t)
	Big.Unlock()

	<-t.resumeCh
	Switch()

	t.mu.Lock()
	t.state = OnCPU
	t.wchan = nil
	t.mu.Unlock()
}

// WakeOne dequeues the longest-waiting thread on q, makes it runnable, and
// returns it, or nil if q was empty. FIFO: two calls in a row wake the two
// oldest waiters in arrival order (spec.md §8 invariant 6).
func WakeOne(q *Waitqueue) *Thread {
	Big.Lock()
	t, ok := q.popFront()
	if !ok {
		Big.Unlock()
		return nil
	}
	t.mu.Lock()
	t.state = Runnable
	t.wchan = nil
	t.mu.Unlock()
	Big.Unlock()
	wake(t)
	return t
}

// Broadcast wakes every thread on q, oldest first.
func Broadcast(q *Waitqueue) {
	Big.Lock()
	waiters := q.drain()
	for _, t := range waiters {
		t.mu.Lock()
		t.state = Runnable
		t.wchan = nil
		t.mu.Unlock()
	}
	Big.Unlock()
	for _, t := range waiters {
		wake(t)
	}
}

// Cancel sets t's cancelled flag. If t is sleeping cancellably it is
// pulled off its wait queue and resumed immediately; otherwise it stays
// asleep and will observe the flag at its next cancellation point
// (spec.md §4.1/§5).
func Cancel(t *Thread) {
	Big.Lock()
	t.mu.Lock()
	t.cancelled = true
	st := t.state
	q := t.wchan
	t.mu.Unlock()

	if st == SleepCancellable && q != nil {
		if q.remove(t) {
			t.mu.Lock()
			t.state = Runnable
			t.wchan = nil
			t.mu.Unlock()
			Big.Unlock()
			wake(t)
			klog.Debug(klog.Thr, "cancelled sleeping thread %d (%s)", t.Tid, t.Name)
			return
		}
	}
	Big.Unlock()
}

// SetRetval records the exit value a thread cancelled from outside should
// report once it reaches kthread_exit.
func (t *Thread) SetRetval(v int) {
	t.mu.Lock()
	t.retval = v
	t.mu.Unlock()
}

// Exit marks t EXITED and records its return value.
func Exit(t *Thread, retval int) {
	t.mu.Lock()
	t.state = Exited
	t.retval = retval
	t.mu.Unlock()
	klog.Debug(klog.Thr, "thread %d (%s) exited, retval=%d", t.Tid, t.Name, retval)
}
