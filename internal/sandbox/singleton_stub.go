//go:build !linux

package sandbox

import (
	"context"
	"fmt"
)

// Run is unsupported outside Linux: the watchdog topology depends on
// memfd, wait4-with-rusage, and rlimit semantics this rewrite only
// implements for Linux.
func Run(ctx context.Context, selfExe string, cfg SingletonConfig) (Termination, error) {
	return Termination{}, fmt.Errorf("sandbox: unsupported platform (linux only)")
}
