//go:build !linux

package sandbox

import "fmt"

func RunWatchdog() error {
	return fmt.Errorf("sandbox: unsupported platform (linux only)")
}

func RunExecChild() error {
	return fmt.Errorf("sandbox: unsupported platform (linux only)")
}

func RunTimer(args []string) error {
	return fmt.Errorf("sandbox: unsupported platform (linux only)")
}
