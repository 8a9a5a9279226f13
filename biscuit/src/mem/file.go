package mem

import "sched"

// Backing is the narrow interface a vnode implements to back a FileObj:
// read and write exactly one PAGE_SIZE page of its underlying data.
// Keeping this interface here (rather than depending on package fs)
// avoids a cycle — fs imports mem, not the reverse — while still letting
// "the file-backed object is embedded inside a vnode" hold literally:
// a vnode embeds a *FileObj and supplies its own ReadPage/WritePage.
type Backing interface {
	ReadPage(pagenum uint32, buf []byte) error
	WritePage(pagenum uint32, buf []byte) error
}

// FileObj is the file-backed mmobj kind: fillpage reads from the
// backing vnode, cleanpage writes dirty pages back, dirtypage just
// flags them. Grounded on spec.md §4.5.2's file-backed paragraph.
type FileObj struct {
	base
	backing Backing
}

// NewFileObj returns a file-backed object over backing, refcount 1.
func NewFileObj(backing Backing) *FileObj {
	return &FileObj{base: newBase("file"), backing: backing}
}

func (f *FileObj) Ref() { f.ref() }

func (f *FileObj) Put(t *sched.Thread) { f.put(t, f, nil) }

func (f *FileObj) Shadowed() Mmobj  { return nil }
func (f *FileObj) BottomObj() Mmobj { return f }

func (f *FileObj) LookupPage(t *sched.Thread, pagenum uint32, forwrite bool) (*Pframe, error) {
	return f.residentPage(pagenum), nil
}

func (f *FileObj) FillPage(t *sched.Thread, pf *Pframe) error {
	if err := f.backing.ReadPage(pf.Pagenum, pf.Addr); err != nil {
		return err
	}
	pf.Pin()
	f.insertPage(pf)
	return nil
}

func (f *FileObj) DirtyPage(pf *Pframe) error {
	pf.setDirty(true)
	return nil
}

func (f *FileObj) CleanPage(t *sched.Thread, pf *Pframe) error {
	if err := f.backing.WritePage(pf.Pagenum, pf.Addr); err != nil {
		return err
	}
	pf.setDirty(false)
	return nil
}
