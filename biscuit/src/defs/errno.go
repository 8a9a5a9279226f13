// Package defs holds the constants, flag bits and error-number encoding
// shared by every other kernel package: nothing in here has any logic of
// its own, it is the vocabulary the rest of the tree is written in.
package defs

import "golang.org/x/sys/unix"

/// Err_t is a negative errno, exactly as every do_* syscall in this tree
/// returns it: 0 or a positive value is success, a negative Err_t is
/// failure. The underlying numbers are borrowed from golang.org/x/sys/unix
/// so that callers printing an Err_t get the familiar POSIX strings.
type Err_t int

/// Ok is the zero Err_t: "no error".
const Ok Err_t = 0

func neg(e unix.Errno) Err_t {
	return Err_t(-int(e))
}

// Error catalog (see spec §7). Every one of these is a negative Err_t.
var (
	EINVAL       = neg(unix.EINVAL)
	EMFILE       = neg(unix.EMFILE)
	ENOMEM       = neg(unix.ENOMEM)
	ENAMETOOLONG = neg(unix.ENAMETOOLONG)
	ENOENT       = neg(unix.ENOENT)
	EISDIR       = neg(unix.EISDIR)
	ENOTDIR      = neg(unix.ENOTDIR)
	EEXIST       = neg(unix.EEXIST)
	ENOTEMPTY    = neg(unix.ENOTEMPTY)
	ENXIO        = neg(unix.ENXIO)
	ECHILD       = neg(unix.ECHILD)
	EBADF        = neg(unix.EBADF)
	EFAULT       = neg(unix.EFAULT)
)

/// Error renders the Err_t the way %v formatting on a POSIX errno would.
func (e Err_t) Error() string {
	if e == Ok {
		return "success"
	}
	return unix.Errno(-int(e)).Error()
}

/// Rc packs an Err_t and a non-negative result into a single return value,
/// the way a do_* syscall's return convention works: negative is an error,
/// anything else is the result.
func (e Err_t) Rc(n int) int {
	if e != Ok {
		return int(e)
	}
	return n
}
