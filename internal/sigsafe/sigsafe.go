//go:build linux

// Package sigsafe collects the narrow set of syscalls the sandbox's re-exec
// helper roles (watchdog, tested-setup, timer) need. Each helper is a
// freshly exec'd process with no inherited goroutines, so there is no
// fork-without-exec hazard to guard against here — these are thin,
// ordinary wrappers over golang.org/x/sys/unix, kept in one place so the
// helper mains stay short. The shared-cell mapping in internal/sandbox
// (memfd_create, mmap, munmap) calls golang.org/x/sys/unix directly.
package sigsafe

import (
	"os"

	"golang.org/x/sys/unix"
)

// WaitStatus wraps unix.WaitStatus as returned by Wait4. The sandbox's
// status classifier works on the packed value (see Raw).
type WaitStatus struct {
	raw unix.WaitStatus
}

func (w WaitStatus) Exited() bool         { return w.raw.Exited() }
func (w WaitStatus) ExitStatus() int      { return w.raw.ExitStatus() }
func (w WaitStatus) Signaled() bool       { return w.raw.Signaled() }
func (w WaitStatus) TermSig() unix.Signal { return w.raw.Signal() }

// Raw returns the kernel's packed wait status, the form the watchdog hands
// to the parent through the shared cell.
func (w WaitStatus) Raw() int32 { return int32(w.raw) }

// Wait4 reaps one child, returning its pid, wait status, and resource usage.
func Wait4(pid int, options int) (reapedPid int, ws WaitStatus, ru unix.Rusage, err error) {
	var raw unix.WaitStatus
	var rusage unix.Rusage
	reapedPid, err = unix.Wait4(pid, &raw, options, &rusage)
	return reapedPid, WaitStatus{raw: raw}, rusage, err
}

// Setrlimit applies a soft/hard resource limit pair to the calling process.
func Setrlimit(resource int, soft, hard uint64) error {
	return unix.Setrlimit(resource, &unix.Rlimit{Cur: soft, Max: hard})
}

// Kill sends a signal to a pid (or a process group, when pid is negative).
func Kill(pid int, sig unix.Signal) error {
	return unix.Kill(pid, sig)
}

// Dup2 duplicates oldfd onto newfd.
func Dup2(oldfd, newfd int) error {
	return unix.Dup2(oldfd, newfd)
}

// OpenRead opens path read-only, for use as a redirected stdin.
func OpenRead(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDONLY, 0)
}

// OpenWrite opens (creating/truncating) path for use as a redirected
// stdout/stderr.
func OpenWrite(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
}

// Getrusage fetches resource usage for who (unix.RUSAGE_SELF or
// unix.RUSAGE_CHILDREN).
func Getrusage(who int) (unix.Rusage, error) {
	var ru unix.Rusage
	err := unix.Getrusage(who, &ru)
	return ru, err
}

// Setpgid(0,0) moves the calling process into its own new process group,
// so a watchdog can later kill the whole group with one signal.
func SetpgidSelf() error {
	return unix.Setpgid(0, 0)
}

// Exec replaces the calling process image. On success it never returns.
func Exec(path string, argv []string, envv []string) error {
	return unix.Exec(path, argv, envv)
}
