package fs

import (
	"sort"
	"sync"

	"defs"
	"hashtable"
	"mem"
	"stat"
)

// dirBuckets is the bucket count for each directory's hashtable.Hashtable_t.
// ramfs directories are small enough that this is never a bottleneck; it
// just has to be nonzero.
const dirBuckets = 16

// ramfs is the in-memory filesystem that backs every Vnode in this
// kernel: there is no on-disk S5FS here (spec.md §1 puts it out of
// scope), so ramfs is what makes dir_namev/open_namev and the do_*
// syscalls actually exercisable end to end. It implements the single
// Ops table every Vnode in the tree shares.
type ramfs struct{}

var Ramfs Ops = ramfs{}

// ramDir is a directory vnode's private state: a name->vnode table.
// Entries live in a hashtable.Hashtable_t keyed by plain string names
// (the table's own hash()/equal() switch already special-cases string
// alongside ustr.Ustr and int keys) rather than a bare Go map, so
// existence-check-then-insert is the table's own atomic Set instead of a
// separate map probe; ramDir's own mutex still serializes the handful of
// operations (Rmdir's empty check, Rename's cross-directory move) that
// touch more than one entry or the order slice at once.
type ramDir struct {
	mu      sync.Mutex
	entries *hashtable.Hashtable_t
	order   []string // insertion order, for stable getdent
	parent  *Vnode   // ".." target; the root is its own parent
}

func newRamDir() *ramDir {
	return &ramDir{entries: hashtable.MkHash(dirBuckets)}
}

func (rd *ramDir) get(name string) (*Vnode, bool) {
	v, ok := rd.entries.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Vnode), true
}

func (rd *ramDir) size() int {
	return rd.entries.Size()
}

// ramFile is a regular file vnode's private state: its byte contents,
// paged in PAGE_SIZE chunks so mem.FileObj.ReadPage/WritePage can treat
// it like any other backing store.
type ramFile struct {
	mu   sync.Mutex
	data []byte
}

func newRamFile() *ramFile {
	return &ramFile{}
}

func (rf *ramFile) readPage(pagenum uint32, buf []byte) defs.Err_t {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	off := int(pagenum) * defs.PAGE_SIZE
	for i := range buf {
		buf[i] = 0
	}
	if off >= len(rf.data) {
		return defs.Ok
	}
	n := copy(buf, rf.data[off:])
	_ = n
	return defs.Ok
}

func (rf *ramFile) writePage(pagenum uint32, buf []byte) defs.Err_t {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	off := int(pagenum) * defs.PAGE_SIZE
	need := off + len(buf)
	if need > len(rf.data) {
		grown := make([]byte, need)
		copy(grown, rf.data)
		rf.data = grown
	}
	copy(rf.data[off:need], buf)
	return defs.Ok
}

func (rf *ramFile) readAt(off int, buf []byte) int {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if off >= len(rf.data) {
		return 0
	}
	return copy(buf, rf.data[off:])
}

func (rf *ramFile) writeAt(off int, buf []byte) int {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	need := off + len(buf)
	if need > len(rf.data) {
		grown := make([]byte, need)
		copy(grown, rf.data)
		rf.data = grown
	}
	return copy(rf.data[off:need], buf)
}

func (rf *ramFile) size() int {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return len(rf.data)
}

// NewRoot returns a fresh root directory vnode for a new ramfs instance,
// its own ".." parent.
func NewRoot() *Vnode {
	vn := NewVnode(Ramfs, defs.S_IFDIR)
	rd := newRamDir()
	rd.parent = vn
	vn.fsdata = rd
	return vn
}

// Lookup is the filesystem-specific half of fs.Lookup's contract: ".."
// is resolved here (ramDir tracks its parent explicitly) rather than in
// the generic wrapper, per spec.md §4.3 ("`..` delegates to the
// filesystem's lookup").
func (ramfs) Lookup(dir *Vnode, name string) (*Vnode, defs.Err_t) {
	rd, ok := dir.fsdata.(*ramDir)
	if !ok {
		return nil, defs.ENOTDIR
	}
	if name == ".." {
		rd.mu.Lock()
		p := rd.parent
		rd.mu.Unlock()
		p.Vget()
		return p, defs.Ok
	}
	rd.mu.Lock()
	defer rd.mu.Unlock()
	child, found := rd.get(name)
	if !found {
		return nil, defs.ENOENT
	}
	child.Vget()
	return child, defs.Ok
}

func (ramfs) Create(dir *Vnode, name string) (*Vnode, defs.Err_t) {
	rd, ok := dir.fsdata.(*ramDir)
	if !ok {
		return nil, defs.ENOTDIR
	}
	vn := NewVnode(Ramfs, defs.S_IFREG)
	vn.fsdata = newRamFile()
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if _, inserted := rd.entries.Set(name, vn); !inserted {
		return nil, defs.EEXIST
	}
	rd.order = append(rd.order, name)
	vn.Vget() // the directory's own reference, held for as long as it's linked
	return vn, defs.Ok
}

func (ramfs) Mknod(dir *Vnode, name string, mode int, devid int) (*Vnode, defs.Err_t) {
	rd, ok := dir.fsdata.(*ramDir)
	if !ok {
		return nil, defs.ENOTDIR
	}
	if mode != defs.S_IFCHR && mode != defs.S_IFBLK {
		return nil, defs.EINVAL
	}
	vn := NewVnode(Ramfs, mode)
	vn.Dev = devid
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if _, inserted := rd.entries.Set(name, vn); !inserted {
		return nil, defs.EEXIST
	}
	rd.order = append(rd.order, name)
	vn.Vget()
	return vn, defs.Ok
}

func (ramfs) Mkdir(dir *Vnode, name string) (*Vnode, defs.Err_t) {
	rd, ok := dir.fsdata.(*ramDir)
	if !ok {
		return nil, defs.ENOTDIR
	}
	vn := NewVnode(Ramfs, defs.S_IFDIR)
	childDir := newRamDir()
	childDir.parent = dir
	vn.fsdata = childDir
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if _, inserted := rd.entries.Set(name, vn); !inserted {
		return nil, defs.EEXIST
	}
	rd.order = append(rd.order, name)
	vn.Vget()
	return vn, defs.Ok
}

func (ramfs) Rmdir(dir *Vnode, name string) defs.Err_t {
	if name == "." {
		return defs.EINVAL
	}
	if name == ".." {
		return defs.ENOTEMPTY
	}
	rd, ok := dir.fsdata.(*ramDir)
	if !ok {
		return defs.ENOTDIR
	}
	rd.mu.Lock()
	defer rd.mu.Unlock()
	child, found := rd.get(name)
	if !found {
		return defs.ENOENT
	}
	if !defs.S_ISDIR(child.Mode) {
		return defs.ENOTDIR
	}
	childDir := child.fsdata.(*ramDir)
	childDir.mu.Lock()
	empty := childDir.size() == 0
	childDir.mu.Unlock()
	if !empty {
		return defs.ENOTEMPTY
	}
	rd.entries.Del(name)
	rd.order = removeStr(rd.order, name)
	child.Vput()
	return defs.Ok
}

func (ramfs) Link(dir *Vnode, name string, target *Vnode) defs.Err_t {
	if defs.S_ISDIR(target.Mode) {
		return defs.EISDIR
	}
	rd, ok := dir.fsdata.(*ramDir)
	if !ok {
		return defs.ENOTDIR
	}
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if _, inserted := rd.entries.Set(name, target); !inserted {
		return defs.EEXIST
	}
	rd.order = append(rd.order, name)
	target.Vget()
	return defs.Ok
}

func (ramfs) Unlink(dir *Vnode, name string) defs.Err_t {
	rd, ok := dir.fsdata.(*ramDir)
	if !ok {
		return defs.ENOTDIR
	}
	rd.mu.Lock()
	defer rd.mu.Unlock()
	child, found := rd.get(name)
	if !found {
		return defs.ENOENT
	}
	if defs.S_ISDIR(child.Mode) {
		return defs.EISDIR
	}
	rd.entries.Del(name)
	rd.order = removeStr(rd.order, name)
	child.Vput()
	return defs.Ok
}

// Rename moves the directory entry oldname (in olddir) to newname (in
// newdir), replacing any existing entry at the destination — the same
// semantics POSIX rename(2) gives, simplified for a single in-memory
// filesystem: no cross-device case exists here, so this is a pure
// directory-entry move, never a copy. Not modeled on any original_source
// file (the original keeps rename entirely NOT_YET_IMPLEMENTED across
// the board, spec.md §6 just lists it in the syscall surface); grounded
// on the structure of ramfs's own Link/Unlink this is built from.
func (ramfs) Rename(olddir *Vnode, oldname string, newdir *Vnode, newname string) defs.Err_t {
	ord, ok := olddir.fsdata.(*ramDir)
	if !ok {
		return defs.ENOTDIR
	}
	nrd, ok := newdir.fsdata.(*ramDir)
	if !ok {
		return defs.ENOTDIR
	}

	if ord == nrd {
		ord.mu.Lock()
		defer ord.mu.Unlock()
		target, found := ord.get(oldname)
		if !found {
			return defs.ENOENT
		}
		if existing, clash := ord.get(newname); clash && existing != target {
			if defs.S_ISDIR(existing.Mode) {
				return defs.EISDIR
			}
			existing.Vput()
			ord.entries.Del(newname)
			ord.order = removeStr(ord.order, newname)
		}
		ord.entries.Del(oldname)
		ord.order = removeStr(ord.order, oldname)
		ord.entries.Set(newname, target)
		ord.order = append(ord.order, newname)
		if defs.S_ISDIR(target.Mode) {
			target.fsdata.(*ramDir).parent = newdir
		}
		return defs.Ok
	}

	nrd.mu.Lock()
	if existing, clash := nrd.get(newname); clash && defs.S_ISDIR(existing.Mode) {
		nrd.mu.Unlock()
		return defs.EISDIR
	}
	nrd.mu.Unlock()

	ord.mu.Lock()
	target, found := ord.get(oldname)
	if !found {
		ord.mu.Unlock()
		return defs.ENOENT
	}
	ord.entries.Del(oldname)
	ord.order = removeStr(ord.order, oldname)
	ord.mu.Unlock()

	nrd.mu.Lock()
	defer nrd.mu.Unlock()
	if existing, clash := nrd.get(newname); clash {
		if defs.S_ISDIR(existing.Mode) {
			return defs.EISDIR
		}
		existing.Vput()
		nrd.entries.Del(newname)
		nrd.order = removeStr(nrd.order, newname)
	}
	nrd.entries.Set(newname, target)
	nrd.order = append(nrd.order, newname)
	if defs.S_ISDIR(target.Mode) {
		target.fsdata.(*ramDir).parent = newdir
	}
	return defs.Ok
}

func (ramfs) Read(vn *Vnode, off int, buf []byte) (int, defs.Err_t) {
	if defs.S_ISDIR(vn.Mode) {
		return 0, defs.EISDIR
	}
	if defs.S_ISCHR(vn.Mode) || defs.S_ISBLK(vn.Mode) {
		return 0, defs.ENXIO // device drivers are out of scope; no backing driver exists
	}
	rf := vn.fsdata.(*ramFile)
	return rf.readAt(off, buf), defs.Ok
}

func (ramfs) Write(vn *Vnode, off int, buf []byte) (int, defs.Err_t) {
	if defs.S_ISDIR(vn.Mode) {
		return 0, defs.EISDIR
	}
	if defs.S_ISCHR(vn.Mode) || defs.S_ISBLK(vn.Mode) {
		return 0, defs.ENXIO
	}
	rf := vn.fsdata.(*ramFile)
	n := rf.writeAt(off, buf)
	if newlen := off + n; newlen > vn.Length() {
		vn.setLength(newlen)
	}
	return n, defs.Ok
}

func (ramfs) Readdir(vn *Vnode, off int) (Dirent, int, defs.Err_t) {
	rd, ok := vn.fsdata.(*ramDir)
	if !ok {
		return Dirent{}, 0, defs.ENOTDIR
	}
	rd.mu.Lock()
	defer rd.mu.Unlock()
	names := append([]string(nil), rd.order...)
	sort.Strings(names) // stable order independent of map/slice churn
	if off < 0 || off >= len(names) {
		return Dirent{}, off, defs.Ok
	}
	name := names[off]
	vn, _ := rd.get(name)
	return Dirent{Name: name, Vnode: vn}, off + 1, defs.Ok
}

func (ramfs) Stat(vn *Vnode, st *stat.Stat_t) defs.Err_t {
	st.Wmode(uint(vn.Mode))
	st.Wsize(uint(vn.Length()))
	st.Wrdev(uint(vn.Dev))
	return defs.Ok
}

func (ramfs) Mmap(vn *Vnode) (mem.Mmobj, defs.Err_t) {
	if !defs.S_ISREG(vn.Mode) {
		return nil, defs.EINVAL
	}
	vn.mu.Lock()
	if vn.mmobj != nil {
		obj := vn.mmobj
		vn.mu.Unlock()
		obj.Ref()
		return obj, defs.Ok
	}
	obj := mem.NewFileObj(vn)
	vn.mmobj = obj
	vn.mu.Unlock()
	return obj, defs.Ok
}

func removeStr(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
