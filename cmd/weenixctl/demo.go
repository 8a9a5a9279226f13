package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"defs"
	"kernel"
	"proc"
	"sched"
	"sysc"
	"vm"
)

var demoCmd = &cobra.Command{
	Use:   "demo <name>",
	Short: "Run one of the S1-S6 end-to-end scenarios against a freshly booted kernel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		maybeServeMetrics()
		scenario, ok := scenarios[args[0]]
		if !ok {
			return fmt.Errorf("unknown scenario %q (known: s1 s2 s3 s4 s5 s6)", args[0])
		}
		return scenario()
	},
}

var scenarios = map[string]func() error{
	"s1": demoS1,
	"s2": demoS2,
	"s3": demoS3,
	"s4": demoS4,
	"s5": demoS5,
	"s6": demoS6,
}

// bootForDemo brings up a kernel and runs fn on init's own thread,
// blocking until fn returns. Every demo below drives its syscalls from
// inside fn, since sysc's do_* functions (like the original's) take the
// calling thread explicitly.
func bootForDemo(fn func(t *sched.Thread, k *kernel.Kernel)) {
	done := make(chan struct{})
	kernel.Boot(func(t *sched.Thread, kk *kernel.Kernel) {
		fn(t, kk)
		close(done)
	})
	<-done
}

// demoS1 is spec.md §8 S1: open/write/close/open/read round-trips
// "hello" through a freshly created file.
func demoS1() error {
	var fail error
	bootForDemo(func(t *sched.Thread, k *kernel.Kernel) {
		fd1 := sysc.DoOpen(k.Init, "/f", defs.O_RDWR|defs.O_CREAT)
		if fd1 < 0 {
			fail = fmt.Errorf("open #1: %v", defs.Err_t(fd1))
			return
		}
		n := sysc.DoWrite(k.Init, fd1, []byte("hello"))
		if n != 5 {
			fail = fmt.Errorf("write: got %d, want 5", n)
			return
		}
		sysc.DoClose(k.Init, fd1)

		fd2 := sysc.DoOpen(k.Init, "/f", defs.O_RDONLY)
		if fd2 < 0 {
			fail = fmt.Errorf("open #2: %v", defs.Err_t(fd2))
			return
		}
		buf := make([]byte, 5)
		r := sysc.DoRead(k.Init, fd2, buf)
		sysc.DoClose(k.Init, fd2)
		if r != 5 || string(buf) != "hello" {
			fail = fmt.Errorf("read: got %d bytes %q, want 5 bytes \"hello\"", r, buf)
			return
		}
		fmt.Printf("S1 ok: fd1=%d wrote=%d fd2=%d read=%q\n", fd1, n, fd2, buf)
	})
	return fail
}

// demoS2 is S2: dup shares the same file offset, so two reads through
// dup'd descriptors are consecutive rather than both starting at 0.
func demoS2() error {
	var fail error
	bootForDemo(func(t *sched.Thread, k *kernel.Kernel) {
		fd0 := sysc.DoOpen(k.Init, "/f", defs.O_RDWR|defs.O_CREAT)
		sysc.DoWrite(k.Init, fd0, []byte("hello"))
		sysc.DoClose(k.Init, fd0)

		fd1 := sysc.DoOpen(k.Init, "/f", defs.O_RDONLY)
		fd2 := sysc.DoDup(k.Init, fd1)
		a := make([]byte, 3)
		b := make([]byte, 2)
		sysc.DoRead(k.Init, fd1, a)
		sysc.DoRead(k.Init, fd2, b)
		if string(a) != "hel" || string(b) != "lo" {
			fail = fmt.Errorf("dup: got a=%q b=%q, want a=\"hel\" b=\"lo\"", a, b)
			return
		}
		fmt.Printf("S2 ok: fd1=%d fd2=%d a=%q b=%q\n", fd1, fd2, a, b)
	})
	return fail
}

// demoS3 is S3: the parent maps a private anonymous page, writes 0xAA,
// forks, the child writes 0xBB to the same virtual page, and the parent
// must still see 0xAA afterward — copy-on-write keeps the two writes from
// clobbering each other.
func demoS3() error {
	var fail error
	bootForDemo(func(t *sched.Thread, k *kernel.Kernel) {
		area, err := k.Init.Vmmap.Map(t, nil, 0, 1, defs.PROT_READ|defs.PROT_WRITE, defs.MAP_PRIVATE, 0, vm.LOHI)
		if err != defs.Ok {
			fail = fmt.Errorf("map: %v", err)
			return
		}
		addr := area.Start * defs.PAGE_SIZE

		if werr := k.Init.Vmmap.Write(t, addr, []byte{0xAA}); werr != defs.Ok {
			fail = fmt.Errorf("parent write: %v", werr)
			return
		}

		childPid := sysc.DoFork(t, k.Init, func(ct *sched.Thread) {})
		if childPid < 0 {
			fail = fmt.Errorf("fork: %v", defs.Err_t(childPid))
			return
		}
		child := proc.Lookup(defs.Pid_t(childPid))
		if child == nil {
			fail = fmt.Errorf("fork: child pid %d not found in process table", childPid)
			return
		}

		// The child's forked thread body is a no-op; the write it would
		// perform is issued synchronously here instead, once the child's
		// pid (and therefore its Process/Vmmap) is known to the caller.
		if werr := child.Vmmap.Write(t, addr, []byte{0xBB}); werr != defs.Ok {
			fail = fmt.Errorf("child write: %v", werr)
			return
		}

		var parentByte, childByte [1]byte
		if rerr := k.Init.Vmmap.Read(t, addr, parentByte[:]); rerr != defs.Ok {
			fail = fmt.Errorf("parent read: %v", rerr)
			return
		}
		if rerr := child.Vmmap.Read(t, addr, childByte[:]); rerr != defs.Ok {
			fail = fmt.Errorf("child read: %v", rerr)
			return
		}
		if parentByte[0] != 0xAA || childByte[0] != 0xBB {
			fail = fmt.Errorf("cow: parent=%#x child=%#x, want parent=0xAA child=0xBB", parentByte[0], childByte[0])
			return
		}
		fmt.Printf("S3 ok: child pid=%d parent byte=%#x child byte=%#x\n", childPid, parentByte[0], childByte[0])
	})
	return fail
}

// producerConsumerBuf is the single-slot shared buffer S4 passes between
// two threads, guarded by a mutex with separate not-empty/not-full wait
// queues — grounded on the same kmutex+waitqueue primitives sched already
// exposes, per spec.md §8's note that this is "the most natural way to
// demonstrate FIFO wake order."
type producerConsumerBuf struct {
	mu       sched.Mutex
	notEmpty sched.Waitqueue
	notFull  sched.Waitqueue
	full     bool
	value    int
}

func (b *producerConsumerBuf) put(t *sched.Thread, v int) {
	b.mu.Lock(t)
	for b.full {
		b.mu.Unlock(t)
		sched.SleepOn(t, &b.notFull)
		b.mu.Lock(t)
	}
	b.value = v
	b.full = true
	b.mu.Unlock(t)
	sched.WakeOne(&b.notEmpty)
}

func (b *producerConsumerBuf) take(t *sched.Thread) int {
	b.mu.Lock(t)
	for !b.full {
		b.mu.Unlock(t)
		sched.SleepOn(t, &b.notEmpty)
		b.mu.Lock(t)
	}
	v := b.value
	b.full = false
	b.mu.Unlock(t)
	sched.WakeOne(&b.notFull)
	return v
}

// demoS4 is S4: 100 put/take pairs through a capacity-1 buffer between a
// producer and consumer thread, verifying every value survives in order
// and the buffer ends empty.
func demoS4() error {
	const n = 100
	var fail error
	bootForDemo(func(t *sched.Thread, k *kernel.Kernel) {
		buf := &producerConsumerBuf{}
		got := make([]int, 0, n)
		gotDone := make(chan struct{})

		consumer := sched.NewThread("s4-consumer", func(ct *sched.Thread) {
			for i := 0; i < n; i++ {
				got = append(got, buf.take(ct))
			}
			close(gotDone)
		})
		proc.AttachThread(k.Init, consumer)
		sched.MakeRunnable(consumer)

		producer := sched.NewThread("s4-producer", func(pt *sched.Thread) {
			for i := 0; i < n; i++ {
				buf.put(pt, i)
			}
		})
		proc.AttachThread(k.Init, producer)
		sched.MakeRunnable(producer)

		<-gotDone
		if len(got) != n {
			fail = fmt.Errorf("got %d values, want %d", len(got), n)
			return
		}
		for i, v := range got {
			if v != i {
				fail = fmt.Errorf("value %d: got %d, want %d (FIFO order broken)", i, v, i)
				return
			}
		}
		if buf.full {
			fail = fmt.Errorf("buffer not empty after %d pairs", n)
			return
		}
		fmt.Printf("S4 ok: %d put/take pairs, buffer empty, FIFO order preserved\n", n)
	})
	return fail
}

// demoS5 is S5: a parent forks 10 children that each exit immediately
// with a distinct status, then reaps all 10 via waitpid(-1), and must see
// ECHILD on the 11th call.
func demoS5() error {
	const n = 10
	var fail error
	bootForDemo(func(t *sched.Thread, k *kernel.Kernel) {
		wantStatus := map[defs.Pid_t]int{}
		for i := 0; i < n; i++ {
			status := i + 1
			childReady := make(chan *proc.Process, 1)
			pid := sysc.DoFork(t, k.Init, func(ct *sched.Thread) {
				sysc.DoExit(ct, <-childReady, status)
			})
			if pid < 0 {
				fail = fmt.Errorf("fork #%d: %v", i, defs.Err_t(pid))
				return
			}
			childReady <- proc.Lookup(defs.Pid_t(pid))
			wantStatus[defs.Pid_t(pid)] = status
		}

		seen := map[defs.Pid_t]bool{}
		for i := 0; i < n; i++ {
			var status int
			rc := sysc.DoWaitpid(t, k.Init, -1, 0, &status)
			if rc < 0 {
				fail = fmt.Errorf("waitpid #%d: %v", i, defs.Err_t(rc))
				return
			}
			pid := defs.Pid_t(rc)
			if seen[pid] {
				fail = fmt.Errorf("waitpid reaped pid %d twice", pid)
				return
			}
			seen[pid] = true
			if want, ok := wantStatus[pid]; !ok || status != want {
				fail = fmt.Errorf("pid %d: status %d, want %d", pid, status, want)
				return
			}
		}

		var status int
		rc := sysc.DoWaitpid(t, k.Init, -1, 0, &status)
		if rc != int(defs.ECHILD) {
			fail = fmt.Errorf("11th waitpid: got %d, want ECHILD", rc)
			return
		}
		fmt.Printf("S5 ok: reaped %d children, 11th waitpid returned ECHILD\n", n)
	})
	return fail
}

// demoS6 is S6: a child forks a grandchild and exits before the
// grandchild does; the grandchild must be reparented to init, and init's
// subsequent waitpid must reap it.
func demoS6() error {
	var fail error
	bootForDemo(func(t *sched.Thread, k *kernel.Kernel) {
		grandchildDone := make(chan defs.Pid_t, 1)

		childReady := make(chan *proc.Process, 1)
		childPid := sysc.DoFork(t, k.Init, func(ct *sched.Thread) {
			child := <-childReady
			gcReady := make(chan *proc.Process, 1)
			gcPid := sysc.DoFork(ct, child, func(gt *sched.Thread) {
				gc := <-gcReady
				grandchildDone <- gc.Pid
				sysc.DoExit(gt, gc, 42)
			})
			if gcPid < 0 {
				return
			}
			gcReady <- proc.Lookup(defs.Pid_t(gcPid))
			// The child exits immediately, before the grandchild; the
			// grandchild must survive and be reparented to init rather
			// than become unreachable.
			sysc.DoExit(ct, child, 0)
		})
		if childPid < 0 {
			fail = fmt.Errorf("fork child: %v", defs.Err_t(childPid))
			return
		}
		childReady <- proc.Lookup(defs.Pid_t(childPid))

		var childStatus int
		if rc := sysc.DoWaitpid(t, k.Init, defs.Pid_t(childPid), 0, &childStatus); rc < 0 {
			fail = fmt.Errorf("waitpid child: %v", defs.Err_t(rc))
			return
		}

		gcPid := <-grandchildDone
		if proc.Lookup(gcPid) == nil {
			fail = fmt.Errorf("grandchild pid %d missing from process table", gcPid)
			return
		}

		var gcStatus int
		rc := sysc.DoWaitpid(t, k.Init, gcPid, 0, &gcStatus)
		if rc != int(gcPid) || gcStatus != 42 {
			fail = fmt.Errorf("init waitpid(grandchild): rc=%d status=%d, want rc=%d status=42", rc, gcStatus, gcPid)
			return
		}
		fmt.Printf("S6 ok: child pid=%d grandchild pid=%d reaped by init with status=%d\n", childPid, gcPid, gcStatus)
	})
	return fail
}
