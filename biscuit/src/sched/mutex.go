package sched

import (
	"stats"
	"util"
)

// Mutex is a sleeping kernel mutex with direct FIFO ownership transfer on
// unlock: Unlock does not merely wake the head of its wait queue and let
// it re-race for ownership, it installs that thread as the new owner in
// the same step. Grounded on
// original_source/weenix/kernel/proc/kmutex.c (km_lock/km_unlock).
type Mutex struct {
	owner *Thread
	wq    Waitqueue
}

// NewMutex returns an unlocked mutex.
func NewMutex() *Mutex {
	return &Mutex{}
}

// Lock acquires m for t, blocking uninterruptibly until it is available.
func (m *Mutex) Lock(t *Thread) {
	Big.Lock()
	if m.owner == nil {
		m.owner = t
		Big.Unlock()
		return
	}
	util.Assert(m.owner != t, "recursive lock by thread %d on the same mutex", t.Tid)
	stats.MutexContentions.Inc()
	t.mu.Lock()
	t.state = Sleep
	t.wchan = &m.wq
	t.mu.Unlock()
	m.wq.pushBack(t)
	Big.Unlock()

	<-t.resumeCh
	Switch()

	t.mu.Lock()
	t.state = OnCPU
	t.wchan = nil
	t.mu.Unlock()
	// Ownership was installed by the unlocker before waking us; nothing
	// left to do here but return holding the lock.
}

// Unlock releases m, owned by t, and transfers ownership directly to the
// longest-waiting thread if any are queued — that thread wakes already
// owning the mutex, it never re-races for it.
func (m *Mutex) Unlock(t *Thread) {
	Big.Lock()
	util.Assert(m.owner == t, "thread %d unlocked a mutex it does not own", t.Tid)
	next, ok := m.wq.popFront()
	if !ok {
		m.owner = nil
		Big.Unlock()
		return
	}
	m.owner = next
	next.mu.Lock()
	next.state = Runnable
	next.wchan = nil
	next.mu.Unlock()
	Big.Unlock()
	wake(next)
}

// TryLock acquires m without blocking, reporting whether it succeeded.
func (m *Mutex) TryLock(t *Thread) bool {
	Big.Lock()
	defer Big.Unlock()
	if m.owner != nil {
		return false
	}
	m.owner = t
	return true
}

// Owner returns the thread currently holding m, or nil.
func (m *Mutex) Owner() *Thread {
	Big.Lock()
	defer Big.Unlock()
	return m.owner
}
