package sched

import "util"

// Waitqueue is a FIFO queue of threads blocked on some condition: a mutex,
// a pipe, a child's exit, I/O completion. Grounded on
// original_source/weenix/kernel/proc/kmutex.c's wait-queue-in-a-mutex
// shape, generalized so any subsystem can embed one.
//
// All mutation goes through sched.Big (see sleepOn/WakeOne/Broadcast/
// Cancel); Waitqueue itself holds no lock of its own.
type Waitqueue struct {
	q util.Fifo_t[*Thread]
}

// NewWaitqueue returns an empty wait queue.
func NewWaitqueue() *Waitqueue {
	return &Waitqueue{}
}

func (wq *Waitqueue) pushBack(t *Thread) {
	wq.q.PushBack(t)
}

func (wq *Waitqueue) popFront() (*Thread, bool) {
	return wq.q.PopFront()
}

func (wq *Waitqueue) drain() []*Thread {
	return wq.q.Drain()
}

func (wq *Waitqueue) remove(t *Thread) bool {
	return wq.q.Remove(t, func(a, b *Thread) bool { return a == b })
}

// Empty reports whether any thread is waiting on wq. Callers must hold
// Big, or accept a racy snapshot, when using this for anything but
// diagnostics.
func (wq *Waitqueue) Empty() bool {
	Big.Lock()
	defer Big.Unlock()
	return wq.q.Empty()
}

// Len reports how many threads are waiting on wq.
func (wq *Waitqueue) Len() int {
	Big.Lock()
	defer Big.Unlock()
	return wq.q.Len()
}
