// Package mem implements the memory-object layer of the virtual memory
// core: the mmobj operations table and its anon and shadow
// implementations, and the page frame (pframe) cache that backs them.
// Grounded on original_source/weenix/kernel/vm/{anon,shadow,pframe}.c —
// the control flow (lookup-then-fill, refcount==nrespages teardown,
// shadow-chain walk for copy-on-write) follows those files, but several
// bugs in that student draft (anon_fillpage copying from "a resident
// page" instead of zeroing, shadow_lookuppage's tangled flag logic) are
// not reproduced; this package implements spec.md §4.5.2 directly.
package mem

import (
	"sync"

	"klog"
	"sched"
	"util"
)

// Mmobj is a reference-counted page provider. Concrete kinds are Anon
// (zero-fill), Shadow (copy-on-write overlay) and FileObj, the
// file-backed object a vnode hands out from its Mmap operation.
//
// Every method that can block takes the calling thread explicitly — this
// kernel has no implicit "current thread" global, callers already have
// their *sched.Thread in hand from the syscall entry point and pass it
// down, the same way sched.SleepOn itself takes t rather than inferring
// it.
type Mmobj interface {
	Ref()
	Put(t *sched.Thread)
	Refcount() int
	NRespages() int

	// LookupPage returns the page resident in this object (or, for a
	// Shadow, resident anywhere in the chain down to and including its
	// bottom object when forwrite is false), or nil if none is resident
	// yet.
	LookupPage(t *sched.Thread, pagenum uint32, forwrite bool) (*Pframe, error)
	// FillPage populates pf, which is busy and not yet on any resident
	// list.
	FillPage(t *sched.Thread, pf *Pframe) error
	DirtyPage(pf *Pframe) error
	CleanPage(t *sched.Thread, pf *Pframe) error

	// Shadowed returns the object immediately below this one in a CoW
	// chain, or nil if this object is not a Shadow.
	Shadowed() Mmobj
	// BottomObj returns the non-shadow root of this object's chain
	// (itself, if this object is not a Shadow).
	BottomObj() Mmobj
}

// base holds the bookkeeping shared by every concrete mmobj kind:
// refcount, the resident page list, and the teardown trigger
// (refcount == nrespages means no vmarea references this object
// anymore, only its own resident pages do).
type base struct {
	mu       sync.Mutex
	refcount int
	respages map[uint32]*Pframe
	name     string // for klog only
}

func newBase(name string) base {
	return base{refcount: 1, respages: make(map[uint32]*Pframe), name: name}
}

func (b *base) Refcount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refcount
}

func (b *base) NRespages() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.respages)
}

func (b *base) ref() {
	b.mu.Lock()
	defer b.mu.Unlock()
	util.Assert(b.refcount > 0, "ref on dead mmobj %s", b.name)
	b.refcount++
}

// put decrements refcount and, if the object has become unreachable
// (refcount dropped to exactly nrespages — only its own pages hold a
// reference now), tears down every resident page. destroy is called
// with each resident page removed from the map already, the caller's
// job is only to release whatever backing (e.g. the slot in another
// object's chain) that frame implied.
func (b *base) put(t *sched.Thread, owner Mmobj, destroy func()) {
	b.mu.Lock()
	util.Assert(b.refcount > 0, "put on dead mmobj %s", b.name)
	b.refcount--
	unreachable := b.refcount == len(b.respages) && b.refcount >= 0
	pages := b.respages
	b.mu.Unlock()

	if !unreachable {
		return
	}
	for _, pf := range pages {
		pf.waitUntilNotBusy(t)
		if pf.Dirty() {
			_ = owner.CleanPage(t, pf)
		}
	}
	b.mu.Lock()
	for pn := range b.respages {
		delete(b.respages, pn)
		b.refcount--
	}
	b.mu.Unlock()
	klog.Debug(klog.Vm, "mmobj %s torn down (refcount==nrespages==0)", b.name)
	if destroy != nil {
		destroy()
	}
}

func (b *base) insertPage(pf *Pframe) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.respages[pf.Pagenum]; !ok {
		b.refcount++ // each resident page holds one reference
	}
	b.respages[pf.Pagenum] = pf
}

func (b *base) residentPage(pagenum uint32) *Pframe {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.respages[pagenum]
}

