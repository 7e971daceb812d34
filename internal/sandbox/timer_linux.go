//go:build linux

package sandbox

import (
	"fmt"
	"strconv"
	"time"
)

// RunTimer is the entry point for the `__timer` re-exec role (Z in the
// design): sleeps for the given whole-second wall-clock budget, then
// exits. The watchdog races Z's reap against T's reap to tell a
// wall-clock timeout apart from T self-terminating in time.
func RunTimer(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("timer: expected exactly one argument (seconds), got %d", len(args))
	}
	seconds, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("timer: invalid seconds %q: %w", args[0], err)
	}
	time.Sleep(time.Duration(seconds) * time.Second)
	return nil
}
