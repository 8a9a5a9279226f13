package fd

import (
	"sync"

	"defs"
)

/// Table_t is a process's fixed-size file-descriptor array: the first
/// null slot is always the next fd Alloc hands out (spec.md §3).
type Table_t struct {
	mu    sync.Mutex
	slots [defs.NFILES]*Fd_t
}

/// Alloc installs f in the first free slot and returns its number, or
/// EMFILE if the table is full.
func (t *Table_t) Alloc(f *Fd_t) (int, defs.Err_t) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.slots {
		if s == nil {
			t.slots[i] = f
			return i, defs.Ok
		}
	}
	return -1, defs.EMFILE
}

/// allocAt installs f at exactly slot n, closing whatever was there
/// first. Used by dup2.
func (t *Table_t) allocAt(n int, f *Fd_t) defs.Err_t {
	if n < 0 || n >= defs.NFILES {
		return defs.EBADF
	}
	t.mu.Lock()
	old := t.slots[n]
	t.slots[n] = f
	t.mu.Unlock()
	if old != nil {
		Close_panic(old)
	}
	return defs.Ok
}

/// Get returns the descriptor at fd, or EBADF if out of range or
/// unused.
func (t *Table_t) Get(n int) (*Fd_t, defs.Err_t) {
	if n < 0 || n >= defs.NFILES {
		return nil, defs.EBADF
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	f := t.slots[n]
	if f == nil {
		return nil, defs.EBADF
	}
	return f, defs.Ok
}

/// Close zeroes fd's slot and drops its reference exactly once.
func (t *Table_t) Close(n int) defs.Err_t {
	f, err := t.Get(n)
	if err != defs.Ok {
		return err
	}
	t.mu.Lock()
	t.slots[n] = nil
	t.mu.Unlock()
	Close_panic(f)
	return defs.Ok
}

/// Dup shares fd's descriptor into a new, lowest-available slot.
func (t *Table_t) Dup(n int) (int, defs.Err_t) {
	f, err := t.Get(n)
	if err != defs.Ok {
		return -1, err
	}
	return t.Alloc(Copyfd(f))
}

/// Dup2 shares oldfd's descriptor into newfd, closing whatever occupied
/// newfd first. A no-op when oldfd == newfd (spec.md §4.4).
func (t *Table_t) Dup2(oldfd, newfd int) defs.Err_t {
	if oldfd == newfd {
		_, err := t.Get(oldfd)
		return err
	}
	f, err := t.Get(oldfd)
	if err != defs.Ok {
		return err
	}
	return t.allocAt(newfd, Copyfd(f))
}

/// Clone duplicates every open descriptor into a fresh table, bumping
/// each file's reference — fork's fd-table half (spec.md §4.5.4 step 5).
func (t *Table_t) Clone() *Table_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	nt := &Table_t{}
	for i, f := range t.slots {
		if f != nil {
			nt.slots[i] = Copyfd(f)
		}
	}
	return nt
}

/// CloseAll closes every open descriptor — proc_cleanup's fd-table half
/// (spec.md §4.2).
func (t *Table_t) CloseAll() {
	t.mu.Lock()
	slots := t.slots
	t.slots = [defs.NFILES]*Fd_t{}
	t.mu.Unlock()
	for _, f := range slots {
		if f != nil {
			Close_panic(f)
		}
	}
}
