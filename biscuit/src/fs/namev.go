package fs

import (
	"strings"

	"defs"
)

// Lookup resolves a single path component inside dir, handling "." here
// (every filesystem's root/child directories mean the same thing by
// it) and delegating "..", and everything else, to dir's own Ops.Lookup.
// Grounded on original_source/weenix/kernel/fs/namev.c's lookup(), minus
// its dead commented-out branches.
func Lookup(dir *Vnode, name string) (*Vnode, defs.Err_t) {
	if dir == nil || !defs.S_ISDIR(dir.Mode) || dir.Ops == nil {
		return nil, defs.ENOTDIR
	}
	if name == "." {
		dir.Vget()
		return dir, defs.Ok
	}
	return dir.Ops.Lookup(dir, name)
}

// splitPath breaks path into its non-empty components, treating any run
// of '/' as a single separator.
func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	comps := make([]string, 0, len(raw))
	for _, c := range raw {
		if c != "" {
			comps = append(comps, c)
		}
	}
	return comps
}

// DirNamev resolves every component of path but the last, returning the
// held parent directory vnode plus the final component's name.
// Grounded on namev.c's dir_namev, with its reversed-branch bugs
// ("if (!ret) return ret" style) not reproduced: spec.md §4.3 is the
// source of truth for the control flow here.
func DirNamev(path string, base, cwd, root *Vnode) (parent *Vnode, name string, err defs.Err_t) {
	if len(path) > defs.MAXPATHLEN {
		return nil, "", defs.ENAMETOOLONG
	}
	if len(path) == 0 {
		return nil, "", defs.EINVAL
	}

	var cur *Vnode
	comps := splitPath(path)
	if strings.HasPrefix(path, "/") {
		cur = root
	} else if base != nil {
		cur = base
	} else {
		cur = cwd
	}
	cur.Vget()

	if len(comps) == 0 {
		// path was all slashes ("/", "//", ...): the parent of the
		// (missing) final component is the starting directory itself,
		// and the basename is empty — callers that need a creatable
		// name will get EEXIST/ENOENT from the lookup that follows.
		return cur, "", defs.Ok
	}

	for i := 0; i < len(comps)-1; i++ {
		c := comps[i]
		if len(c) > defs.NAME_LEN {
			cur.Vput()
			return nil, "", defs.ENAMETOOLONG
		}
		if !defs.S_ISDIR(cur.Mode) {
			cur.Vput()
			return nil, "", defs.ENOTDIR
		}
		next, lerr := Lookup(cur, c)
		cur.Vput()
		if lerr != defs.Ok {
			return nil, "", lerr
		}
		cur = next
	}

	last := comps[len(comps)-1]
	if len(last) > defs.NAME_LEN {
		cur.Vput()
		return nil, "", defs.ENAMETOOLONG
	}
	return cur, last, defs.Ok
}

// OpenNamev resolves path to a vnode, honoring O_CREAT: if the final
// component doesn't exist and O_CREAT is set, it is created as a
// regular file in the resolved parent. Grounded on namev.c's
// open_namev, again following spec.md §4.3 rather than that file's
// inverted success checks.
func OpenNamev(path string, oflags int, base, cwd, root *Vnode) (*Vnode, defs.Err_t) {
	parent, name, err := DirNamev(path, base, cwd, root)
	if err != defs.Ok {
		return nil, err
	}
	if !defs.S_ISDIR(parent.Mode) {
		parent.Vput()
		return nil, defs.ENOTDIR
	}
	if name == "" {
		// Resolved straight to a directory (path was "/" or similar).
		return parent, defs.Ok
	}

	target, lerr := Lookup(parent, name)
	if lerr == defs.Ok {
		parent.Vput()
		return target, defs.Ok
	}
	if lerr != defs.ENOENT {
		parent.Vput()
		return nil, lerr
	}
	if oflags&defs.O_CREAT == 0 {
		parent.Vput()
		return nil, defs.ENOENT
	}
	created, cerr := parent.Ops.Create(parent, name)
	parent.Vput()
	if cerr != defs.Ok {
		return nil, cerr
	}
	return created, defs.Ok
}

// LookupName finds entry's name inside dir by scanning its directory
// listing — the inverse of Lookup. A supplemented feature: the original
// source stubs this out behind __GETCWD__ (original_source/weenix/
// kernel/fs/namev.c), left NOT_YET_IMPLEMENTED; ramfs's in-memory
// listing makes a real implementation straightforward.
func LookupName(dir *Vnode, entry *Vnode) (string, defs.Err_t) {
	rd, ok := dir.fsdata.(*ramDir)
	if !ok {
		return "", defs.ENOTDIR
	}
	rd.mu.Lock()
	defer rd.mu.Unlock()
	for _, name := range rd.order {
		if v, ok := rd.get(name); ok && v == entry {
			return name, defs.Ok
		}
	}
	return "", defs.ENOENT
}

// LookupDirpath reconstructs dir's absolute path by walking ".." up to
// root, prepending each name found via LookupName. Another supplemented
// feature (the original stubs lookup_dirpath the same way it stubs
// lookup_name).
func LookupDirpath(dir, root *Vnode) (string, defs.Err_t) {
	if dir == root {
		return "/", defs.Ok
	}
	var comps []string
	cur := dir
	cur.Vget()
	for cur != root {
		parent, err := Lookup(cur, "..")
		if err != defs.Ok {
			cur.Vput()
			return "", err
		}
		name, nerr := LookupName(parent, cur)
		cur.Vput()
		if nerr != defs.Ok {
			parent.Vput()
			return "", nerr
		}
		comps = append([]string{name}, comps...)
		cur = parent
	}
	cur.Vput()
	return "/" + strings.Join(comps, "/"), defs.Ok
}
