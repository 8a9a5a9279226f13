package vm

import (
	"sort"
	"sync"

	"defs"
	"fs"
	"mem"
	"sched"
	"util"
)

// Vmmap is a process's address-space map: an ordered, disjoint list of
// vmareas (spec.md §3).
type Vmmap struct {
	mu    sync.Mutex
	areas []*Vmarea
}

// NewVmmap returns an empty address-space map.
func NewVmmap() *Vmmap {
	return &Vmmap{}
}

// Insert adds a into m, keeping the area list sorted ascending by
// Start. Panics if a overlaps an existing area — vmmap_map always
// arranges disjointness first via Remove.
func (m *Vmmap) Insert(a *Vmarea) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := sort.Search(len(m.areas), func(i int) bool { return m.areas[i].Start >= a.Start })
	if idx > 0 {
		util.Assert(m.areas[idx-1].End <= a.Start, "vmmap_insert: overlaps preceding area")
	}
	if idx < len(m.areas) {
		util.Assert(a.End <= m.areas[idx].Start, "vmmap_insert: overlaps following area")
	}
	a.Map = m
	m.areas = append(m.areas, nil)
	copy(m.areas[idx+1:], m.areas[idx:])
	m.areas[idx] = a
}

// FindRange does a first-fit gap search for npages contiguous pages,
// scanning ascending (LOHI) or descending (HILO). Returns the starting
// vfn, or -1 if there is no such gap within the user address range.
func (m *Vmmap) FindRange(npages int, dir Direction) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	lo := defs.USER_MEM_LOW / defs.PAGE_SIZE
	hi := defs.USER_MEM_HIGH / defs.PAGE_SIZE

	if dir == LOHI {
		cursor := lo
		for _, a := range m.areas {
			if a.Start-cursor >= npages {
				return cursor
			}
			if a.End > cursor {
				cursor = a.End
			}
		}
		if hi-cursor >= npages {
			return cursor
		}
		return -1
	}

	cursor := hi
	for i := len(m.areas) - 1; i >= 0; i-- {
		a := m.areas[i]
		if cursor-a.End >= npages {
			return cursor - npages
		}
		if a.Start < cursor {
			cursor = a.Start
		}
	}
	if cursor-lo >= npages {
		return cursor - npages
	}
	return -1
}

// Lookup returns the area containing vfn, or nil.
func (m *Vmmap) Lookup(vfn int) *Vmarea {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.areas {
		if a.Start <= vfn && vfn < a.End {
			return a
		}
	}
	return nil
}

// IsRangeEmpty reports whether no area overlaps [start, start+n).
func (m *Vmmap) IsRangeEmpty(start, n int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := start + n
	for _, a := range m.areas {
		if a.Start < end && start < a.End {
			return false
		}
	}
	return true
}

// Map builds a new area covering npages pages starting at lopage (or a
// freshly found gap, if lopage is 0), backed by file's memory object or
// a fresh anon object, wrapped in a shadow if the mapping is PRIVATE.
// Grounded on vmmap.c's vmmap_map, per spec.md §4.5.1.
func (m *Vmmap) Map(t *sched.Thread, file *fs.Vnode, lopage, npages, prot, flags, off int, dir Direction) (*Vmarea, defs.Err_t) {
	start := lopage
	if start == 0 {
		start = m.FindRange(npages, dir)
		if start == -1 {
			return nil, defs.ENOMEM
		}
	} else if !m.IsRangeEmpty(start, npages) {
		if err := m.Remove(t, start, npages); err != defs.Ok {
			return nil, err
		}
	}
	end := start + npages
	if !withinUserRange(start, end) {
		return nil, defs.EINVAL
	}

	var obj mem.Mmobj
	if file == nil {
		obj = mem.NewAnon()
	} else {
		o, err := file.Mmap()
		if err != defs.Ok {
			return nil, err
		}
		obj = o
	}
	if flags == defs.MAP_PRIVATE {
		bottom := obj.BottomObj()
		bottom.Ref()
		sh := mem.NewShadow(obj, bottom)
		obj = sh
	}

	a := &Vmarea{Start: start, End: end, Off: off, Prot: prot, Flags: flags, Obj: obj}
	m.Insert(a)
	return a, defs.Ok
}

// Remove applies one of four transforms to every area overlapping
// [lopage, lopage+n): full-contained split, right-trim, left-trim, or
// whole-area removal (spec.md §4.5.1).
func (m *Vmmap) Remove(t *sched.Thread, lopage, n int) defs.Err_t {
	m.mu.Lock()
	defer m.mu.Unlock()

	end := lopage + n
	var kept []*Vmarea
	for _, a := range m.areas {
		switch {
		case a.End <= lopage || a.Start >= end:
			// disjoint, unaffected
			kept = append(kept, a)

		case a.Start >= lopage && a.End <= end:
			// whole-area removal
			a.Obj.Put(t)

		case a.Start < lopage && a.End > end:
			// full-contained split: two new areas
			left := &Vmarea{Start: a.Start, End: lopage, Off: a.Off, Prot: a.Prot, Flags: a.Flags, Obj: a.Obj, Map: m}
			right := &Vmarea{Start: end, End: a.End, Off: a.Off + (end - a.Start), Prot: a.Prot, Flags: a.Flags, Obj: a.Obj, Map: m}
			a.Obj.Ref() // split copy gets its own reference
			kept = append(kept, left, right)

		case a.Start < lopage:
			// right-trim
			a.End = lopage
			kept = append(kept, a)

		default:
			// left-trim: update Off to match the new Start
			a.Off += end - a.Start
			a.Start = end
			kept = append(kept, a)
		}
	}
	m.areas = kept
	return defs.Ok
}

// Clone allocates a new map with one area per source area, same
// Start/End/Off/Prot/Flags, leaving Obj nil — fork installs the shadow
// objects afterward (spec.md §4.5.1/§4.5.4).
func (m *Vmmap) Clone() *Vmmap {
	m.mu.Lock()
	defer m.mu.Unlock()
	nm := NewVmmap()
	for _, a := range m.areas {
		na := &Vmarea{Start: a.Start, End: a.End, Off: a.Off, Prot: a.Prot, Flags: a.Flags}
		nm.areas = append(nm.areas, na)
		na.Map = nm
	}
	return nm
}

// Areas returns a snapshot of the map's areas, in ascending Start order.
func (m *Vmmap) Areas() []*Vmarea {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Vmarea, len(m.areas))
	copy(out, m.areas)
	return out
}

// Read copies n bytes starting at byte offset addr (within the areas
// this map covers) into buf, faulting in pages as needed.
func (m *Vmmap) Read(t *sched.Thread, addr int, buf []byte) defs.Err_t {
	return m.walk(t, addr, len(buf), false, func(pf *mem.Pframe, pageOff, n int) {
		copy(buf[:n], pf.Addr[pageOff:pageOff+n])
		buf = buf[n:]
	})
}

// Write copies len(buf) bytes from buf into the areas this map covers
// starting at byte offset addr, faulting in (and dirtying) pages as
// needed.
func (m *Vmmap) Write(t *sched.Thread, addr int, buf []byte) defs.Err_t {
	return m.walk(t, addr, len(buf), true, func(pf *mem.Pframe, pageOff, n int) {
		copy(pf.Addr[pageOff:pageOff+n], buf[:n])
		buf = buf[n:]
	})
}

func (m *Vmmap) walk(t *sched.Thread, addr, length int, forwrite bool, apply func(pf *mem.Pframe, pageOff, n int)) defs.Err_t {
	remaining := length
	cursor := addr
	for remaining > 0 {
		vfn := cursor / defs.PAGE_SIZE
		area := m.Lookup(vfn)
		if area == nil {
			return defs.EFAULT
		}
		pageOff := cursor % defs.PAGE_SIZE
		n := defs.PAGE_SIZE - pageOff
		if n > remaining {
			n = remaining
		}
		pagenum := uint32(vfn - area.Start + area.Off)
		pf, err := mem.Get(t, area.Obj, pagenum, forwrite)
		if err != nil {
			return defs.EFAULT
		}
		apply(pf, pageOff, n)
		if forwrite {
			_ = area.Obj.DirtyPage(pf)
		}
		cursor += n
		remaining -= n
	}
	return defs.Ok
}
