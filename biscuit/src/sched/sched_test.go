package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAndJoin(t *Thread) {
	MakeRunnable(t)
	t.Join()
}

func TestThreadLifecycle(t *testing.T) {
	ran := false
	th := NewThread("t1", func(t *Thread) {
		ran = true
	})
	assert.Equal(t, NoState, th.State())
	runAndJoin(th)
	assert.True(t, ran)
}

func TestMutexFIFOOwnershipTransfer(t *testing.T) {
	var m Mutex
	order := make(chan int, 3)

	owner := NewThread("owner", func(t *Thread) {
		m.Lock(t)
		time.Sleep(10 * time.Millisecond) // hold it long enough for waiters to queue
		m.Unlock(t)
	})
	MakeRunnable(owner)
	time.Sleep(2 * time.Millisecond) // let owner grab the lock first

	waiters := make([]*Thread, 3)
	for i := 0; i < 3; i++ {
		i := i
		waiters[i] = NewThread("waiter", func(t *Thread) {
			m.Lock(t)
			order <- i
			m.Unlock(t)
		})
	}
	for _, w := range waiters {
		MakeRunnable(w)
		time.Sleep(time.Millisecond) // stagger arrival into the wait queue
	}

	owner.Join()
	for _, w := range waiters {
		w.Join()
	}
	close(order)

	var got []int
	for v := range order {
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 1, 2}, got, "waiters must acquire the mutex in FIFO arrival order")
}

func TestWaitqueueWakeOneFIFO(t *testing.T) {
	var q Waitqueue
	woke := make(chan int, 3)
	sleepers := make([]*Thread, 3)
	started := make(chan struct{}, 3)

	for i := 0; i < 3; i++ {
		i := i
		sleepers[i] = NewThread("sleeper", func(t *Thread) {
			started <- struct{}{}
			SleepOn(t, &q)
			woke <- i
		})
		MakeRunnable(sleepers[i])
		<-started // ensure each thread has queued before the next starts
		time.Sleep(time.Millisecond)
	}

	require.Equal(t, 3, q.Len())
	for i := 0; i < 3; i++ {
		woken := WakeOne(&q)
		require.NotNil(t, woken)
	}
	for _, s := range sleepers {
		s.Join()
	}
	close(woke)

	var got []int
	for v := range woke {
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.True(t, q.Empty())
}

func TestBroadcastWakesEveryone(t *testing.T) {
	var q Waitqueue
	const n = 5
	done := make(chan struct{}, n)
	started := make(chan struct{}, n)

	for i := 0; i < n; i++ {
		th := NewThread("b", func(t *Thread) {
			started <- struct{}{}
			SleepOn(t, &q)
			done <- struct{}{}
		})
		MakeRunnable(th)
	}
	for i := 0; i < n; i++ {
		<-started
	}
	time.Sleep(5 * time.Millisecond)
	Broadcast(&q)

	for i := 0; i < n; i++ {
		<-done
	}
	assert.True(t, q.Empty())
}

func TestCancelWakesCancellableSleeper(t *testing.T) {
	var q Waitqueue
	cancelled := make(chan bool, 1)
	ready := make(chan struct{})

	th := NewThread("cancellable", func(t *Thread) {
		close(ready)
		c := CancellableSleepOn(t, &q)
		cancelled <- c
	})
	MakeRunnable(th)
	<-ready
	time.Sleep(5 * time.Millisecond)

	Cancel(th)
	th.Join()
	assert.True(t, <-cancelled)
	assert.True(t, q.Empty())
}
