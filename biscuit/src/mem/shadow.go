package mem

import (
	"sched"
)

// Shadow is a copy-on-write overlay created on PRIVATE mappings and on
// fork. Chains point from newest toward shadowed (the parent); bottomObj
// is a shortcut to the non-shadow root so lookups and fork don't have to
// walk the whole chain to find it. Grounded on
// original_source/weenix/kernel/vm/shadow.c — the lookup-walk-the-chain
// and copy-on-fault shape follows that file, but its tangled
// forwrite/flag bookkeeping in shadow_lookuppage is replaced with a
// plain loop per spec.md §4.5.2.
type Shadow struct {
	base
	shadowed  Mmobj
	bottomObj Mmobj
}

// NewShadow layers a new shadow over top, whose non-shadow root is
// bottom. top.Ref() and bottom.Ref() are the caller's responsibility to
// have already arranged for (vmmap_map and fork both bump refcounts
// explicitly per spec.md §4.5.1/§4.5.4).
func NewShadow(top, bottom Mmobj) *Shadow {
	return &Shadow{base: newBase("shadow"), shadowed: top, bottomObj: bottom}
}

func (s *Shadow) Ref() { s.ref() }

func (s *Shadow) Put(t *sched.Thread) {
	s.put(t, s, func() {
		s.shadowed.Put(t)
	})
}

func (s *Shadow) Shadowed() Mmobj  { return s.shadowed }
func (s *Shadow) BottomObj() Mmobj { return s.bottomObj }

// LookupPage walks from this object toward shadowed looking for a
// resident copy of pagenum. When forwrite is true it never returns an
// ancestor's page (a write must go through FillPage, which copies into
// a frame owned by this object) — it only ever reports a page already
// resident in *this* object.
func (s *Shadow) LookupPage(t *sched.Thread, pagenum uint32, forwrite bool) (*Pframe, error) {
	if forwrite {
		return s.residentPage(pagenum), nil
	}
	var cur Mmobj = s
	for cur != nil {
		if pf := residentOf(cur, pagenum); pf != nil {
			return pf, nil
		}
		cur = cur.Shadowed()
	}
	return nil, nil
}

func residentOf(o Mmobj, pagenum uint32) *Pframe {
	switch v := o.(type) {
	case *Shadow:
		return v.residentPage(pagenum)
	case *Anon:
		return v.residentPage(pagenum)
	default:
		pf, _ := o.LookupPage(nil, pagenum, false)
		return pf
	}
}

// FillPage is the copy-on-write step: locate the nearest ancestor's
// page for pagenum (via pframe_get, which recurses into that ancestor's
// own FillPage if nothing is resident yet) and copy its bytes into pf,
// marking pf dirty in this, the topmost shadow.
func (s *Shadow) FillPage(t *sched.Thread, pf *Pframe) error {
	src, err := Get(t, s.shadowed, pf.Pagenum, false)
	if err != nil {
		return err
	}
	copy(pf.Addr, src.Addr)
	pf.setDirty(true)
	pf.Pin()
	s.insertPage(pf)
	return nil
}

func (s *Shadow) DirtyPage(pf *Pframe) error {
	pf.setDirty(true)
	return nil
}

// CleanPage pushes pf's contents down into the bottom object's backing
// store (file-backed) or simply clears dirty (anon bottom — nothing to
// flush to).
func (s *Shadow) CleanPage(t *sched.Thread, pf *Pframe) error {
	if err := s.bottomObj.CleanPage(t, pf); err != nil {
		return err
	}
	pf.setDirty(false)
	return nil
}
