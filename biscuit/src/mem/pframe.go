package mem

import (
	"sync"

	"defs"
	"sched"
)

// Pframe is a physical page frame in the page cache, tagged by
// (owning mmobj, page index). Addr stands in for the kernel mapping of
// the frame: a real PAGE_SIZE-byte buffer, since this kernel has no
// actual physical memory to carve frames out of.
type Pframe struct {
	owner   Mmobj
	Pagenum uint32
	Addr    []byte

	mu     sync.Mutex
	busy   bool
	dirty  bool
	pinned int
	waitq  sched.Waitqueue
}

func newPframe(o Mmobj, pagenum uint32) *Pframe {
	return &Pframe{owner: o, Pagenum: pagenum, Addr: make([]byte, defs.PAGE_SIZE), busy: true}
}

// Busy reports whether pf is currently being filled.
func (pf *Pframe) Busy() bool {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	return pf.busy
}

// Dirty reports whether pf holds writes not yet reflected in its backing
// store (a no-op condition for anon objects, meaningful for file-backed).
func (pf *Pframe) Dirty() bool {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	return pf.dirty
}

func (pf *Pframe) setDirty(v bool) {
	pf.mu.Lock()
	pf.dirty = v
	pf.mu.Unlock()
}

// Pin increments pf's pin count: pinned pages are never evicted and are
// not freed out from under an in-flight mapping.
func (pf *Pframe) Pin() {
	pf.mu.Lock()
	pf.pinned++
	pf.mu.Unlock()
}

// Unpin decrements pf's pin count.
func (pf *Pframe) Unpin() {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	if pf.pinned > 0 {
		pf.pinned--
	}
}

// Pinned reports whether pf has at least one pin outstanding.
func (pf *Pframe) Pinned() bool {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	return pf.pinned > 0
}

// clearBusy marks pf not-busy and wakes every thread waiting for that.
func (pf *Pframe) clearBusy() {
	pf.mu.Lock()
	pf.busy = false
	pf.mu.Unlock()
	sched.Broadcast(&pf.waitq)
}

// waitUntilNotBusy blocks t on pf's own wait queue while it is busy, as
// pframe_get does for every reader that finds an in-progress fill. Not
// cancellable: spec.md §5 lists pframe_get among the plain suspension
// points, not the cancellable ones.
func (pf *Pframe) waitUntilNotBusy(t *sched.Thread) {
	for pf.Busy() {
		sched.SleepOn(t, &pf.waitq)
	}
}

// Get implements the generic pframe_get entry point: return the
// resident page for (o, pagenum), filling it via o.FillPage if it is
// not yet resident. forwrite matters only to Shadow.LookupPage, which
// must decide whether a read may be satisfied by an ancestor's page or
// a write must materialize a private copy.
func Get(t *sched.Thread, o Mmobj, pagenum uint32, forwrite bool) (*Pframe, error) {
	for {
		pf, err := o.LookupPage(t, pagenum, forwrite)
		if err != nil {
			return nil, err
		}
		if pf != nil {
			if pf.Busy() {
				pf.waitUntilNotBusy(t)
				continue
			}
			return pf, nil
		}
		break
	}

	pf := newPframe(o, pagenum)
	if err := o.FillPage(t, pf); err != nil {
		return nil, err
	}
	pf.clearBusy()
	return pf, nil
}
