package vm

import (
	"defs"
	"mem"
	"util"
)

// Fork produces the child's address-space map for do_fork: a structural
// clone of parent, with every PRIVATE area in both parent and child
// rewritten to sit atop a fresh shadow object (so that writes after fork
// re-fault and copy-on-write), and every SHARED area left pointing at
// the same object with one extra reference. Grounded on spec.md §4.5.4
// steps 2-3; original_source/weenix/kernel/vm/vmmap.c's vmmap_clone
// stops at the structural copy and never reaches the shadow-insertion
// step this implements.
//
// Unmapping the parent's page-table entries and flushing the TLB (step
// 4) and creating the child's kernel thread (step 6) are not this
// function's concern — they belong to the caller in package proc, which
// owns process/thread lifecycle; this kernel has no hardware page
// tables to unmap in the first place (out of scope per spec.md §1).
func Fork(parent *Vmmap) *Vmmap {
	child := parent.Clone()

	pAreas := parent.Areas()
	cAreas := child.Areas()
	util.Assert(len(pAreas) == len(cAreas), "vm.Fork: cloned map has a different area count than its parent")

	for i, pa := range pAreas {
		ca := cAreas[i]
		if pa.Flags == defs.MAP_PRIVATE {
			top := pa.Obj
			bottom := top.BottomObj()

			top.Ref() // second shadow's "shadowed" reference; the first is the one pa.Obj already held
			bottom.Ref()
			bottom.Ref()

			pa.Obj = mem.NewShadow(top, bottom)
			ca.Obj = mem.NewShadow(top, bottom)
		} else {
			pa.Obj.Ref()
			ca.Obj = pa.Obj
		}
	}

	return child
}
