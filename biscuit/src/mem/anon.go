package mem

import (
	"sched"
)

// Anon is a zero-initialized memory object with no backing store:
// every page is born zero-filled and there is never anything to read
// back from a "device". Grounded on
// original_source/weenix/kernel/vm/anon.c, with anon_fillpage's bug
// (copying from some other resident page instead of zeroing) not
// carried over — spec.md §4.5.2 is explicit that fillpage zeros a
// fresh page.
type Anon struct {
	base
}

// NewAnon returns a fresh anon object with refcount 1.
func NewAnon() *Anon {
	return &Anon{base: newBase("anon")}
}

func (a *Anon) Ref() { a.ref() }

// Put decrements the refcount; when it reaches the resident-page count
// the object is unreachable from any vmarea and its pages are released.
func (a *Anon) Put(t *sched.Thread) {
	a.put(t, a, nil)
}

func (a *Anon) LookupPage(t *sched.Thread, pagenum uint32, forwrite bool) (*Pframe, error) {
	return a.residentPage(pagenum), nil
}

// FillPage zeros pf's contents — Addr is already zero-valued by Go's
// make([]byte, ...), so there is nothing to copy — and pins it before
// inserting it into the resident list.
func (a *Anon) FillPage(t *sched.Thread, pf *Pframe) error {
	pf.Pin()
	a.insertPage(pf)
	return nil
}

// DirtyPage and CleanPage are no-ops: an anon object has no backing
// store to flush to or read stale data from.
func (a *Anon) DirtyPage(pf *Pframe) error       { return nil }
func (a *Anon) CleanPage(t *sched.Thread, pf *Pframe) error { return nil }

func (a *Anon) Shadowed() Mmobj { return nil }
func (a *Anon) BottomObj() Mmobj { return a }
