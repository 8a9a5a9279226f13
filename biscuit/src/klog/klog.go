// Package klog is the kernel's structured event log. The original Weenix
// source calls a printf-style dbg(DBG_THR|DBG_VFS|..., fmt, ...) at every
// interesting transition (see original_source/weenix/kernel/proc/*.c); we
// keep the same call sites but back them with a real structured logger
// instead of a raw printf, following the logging stack already present in
// the retrieval pack (Talismancer-gvisor-ligolo uses sirupsen/logrus
// throughout its daemon).
package klog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Facility mirrors the original dbg() subsystem bitmask (DBG_THR, DBG_VFS,
// DBG_VM, ...), kept as a field rather than a bit so each facility can be
// filtered independently with logrus' structured fields.
type Facility string

const (
	Thr  Facility = "thr"
	Proc Facility = "proc"
	Vfs  Facility = "vfs"
	Vm   Facility = "vm"
	Sys  Facility = "sys"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stderr
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// SetLevel adjusts the verbosity of the whole kernel log, e.g. "debug" from
// weenixctl's --verbose flag.
func SetLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Info logs a routine, always-interesting transition (process create/exit,
// reap, fork).
func Info(fac Facility, format string, args ...interface{}) {
	log.WithField("facility", fac).Infof(format, args...)
}

// Debug logs a high-volume, only-sometimes-interesting event (mutex
// contention, page fault resolution).
func Debug(fac Facility, format string, args ...interface{}) {
	log.WithField("facility", fac).Debugf(format, args...)
}

// Error logs a recoverable failure a caller is about to turn into an Err_t.
func Error(fac Facility, format string, args ...interface{}) {
	log.WithField("facility", fac).Errorf(format, args...)
}
