package vm

import (
	"defs"
	"mem"
	"sched"
	"stats"
)

// PageFault resolves a fault at vaddr caused by cause (a FAULT_* bitmask)
// against m. It returns defs.Ok once a page is resident and ready to be
// mapped in (installing the actual page-table entry is the caller's job —
// this kernel has no hardware page tables to program, per spec.md §1), or
// defs.EFAULT if the access was illegal, in which case the caller (the
// trap handler) is responsible for killing curproc per spec.md §4.5.3/§7.
//
// Grounded on original_source/weenix/kernel/vm/pagefault.c's
// handle_pagefault, whose permission checks and pframe_get call this
// follows; its page-lookup loop (scanning mmo_respages by hand instead of
// calling lookuppage/pframe_get) and its dangling NOT_YET_IMPLEMENTED are
// not reproduced.
func PageFault(t *sched.Thread, m *Vmmap, vaddr uintptr, cause int) (*mem.Pframe, defs.Err_t) {
	vfn := int(vaddr) / defs.PAGE_SIZE

	area := m.Lookup(vfn)
	if area == nil {
		stats.PageFaults.WithLabelValues("efault").Inc()
		return nil, defs.EFAULT
	}

	if cause&defs.FAULT_WRITE != 0 && area.Prot&defs.PROT_WRITE == 0 {
		stats.PageFaults.WithLabelValues("efault").Inc()
		return nil, defs.EFAULT
	}
	if cause&defs.FAULT_EXEC != 0 && area.Prot&defs.PROT_EXEC == 0 {
		stats.PageFaults.WithLabelValues("efault").Inc()
		return nil, defs.EFAULT
	}
	if cause&defs.FAULT_RESERVED != 0 && area.Prot == defs.PROT_NONE {
		stats.PageFaults.WithLabelValues("efault").Inc()
		return nil, defs.EFAULT
	}
	if cause&defs.FAULT_PRESENT != 0 && area.Prot&defs.PROT_READ == 0 {
		stats.PageFaults.WithLabelValues("efault").Inc()
		return nil, defs.EFAULT
	}

	forwrite := cause&defs.FAULT_WRITE != 0
	pagenum := uint32(vfn - area.Start + area.Off)

	pf, err := mem.Get(t, area.Obj, pagenum, forwrite)
	if err != nil {
		stats.PageFaults.WithLabelValues("efault").Inc()
		return nil, defs.EFAULT
	}
	if forwrite {
		_ = area.Obj.DirtyPage(pf)
	}
	stats.PageFaults.WithLabelValues("ok").Inc()
	return pf, defs.Ok
}
