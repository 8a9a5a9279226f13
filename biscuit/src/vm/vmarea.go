// Package vm is the virtual memory core: vmareas and vmmaps (a
// process's address-space map), the page-fault handler, and the
// address-space half of fork. Grounded on
// original_source/weenix/kernel/vm/vmmap.c and pagefault.c; the
// teacher's own vm package (as.go, userbuf.go) modeled real x86 page
// tables, which this kernel has none of — out of scope per spec.md §1 —
// so it is rewritten around the mmobj/vmarea model spec.md §4.5
// describes instead.
package vm

import (
	"defs"
	"mem"
)

// Direction selects which way vmmap_find_range scans for a gap.
type Direction int

const (
	LOHI Direction = iota // scan ascending
	HILO                  // scan descending
)

// Vmarea is a half-open virtual-page range [Start, End) backed by a
// memory object at page offset Off, with the permission and sharing
// bits spec.md §3 lists.
type Vmarea struct {
	Start, End int // virtual page numbers
	Off        int // page offset into Obj
	Prot       int // PROT_*
	Flags      int // MAP_SHARED or MAP_PRIVATE
	Obj        mem.Mmobj
	Map        *Vmmap
}

// npages returns the area's length in pages.
func (a *Vmarea) npages() int { return a.End - a.Start }

func withinUserRange(startPage, endPage int) bool {
	lo := defs.USER_MEM_LOW / defs.PAGE_SIZE
	hi := defs.USER_MEM_HIGH / defs.PAGE_SIZE
	return lo <= startPage && startPage < endPage && endPage <= hi
}
