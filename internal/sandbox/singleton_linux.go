//go:build linux

package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"
)

// Run executes one sandboxed program under cfg and returns its
// Termination. The caller is the parent (P) in the watchdog topology; it
// never forks directly, only spawns the watchdog re-exec role and waits
// for it.
func Run(ctx context.Context, selfExe string, cfg SingletonConfig) (Termination, error) {
	start := time.Now()

	shared, err := NewSharedRusage()
	if err != nil {
		return Termination{}, fmt.Errorf("sandbox: create shared cell: %w", err)
	}
	defer shared.Close()

	req := watchdogRequest{Config: cfg, SandboxExe: selfExe}
	payload, err := json.Marshal(req)
	if err != nil {
		return Termination{}, fmt.Errorf("sandbox: marshal watchdog request: %w", err)
	}

	cmd := exec.CommandContext(ctx, selfExe, "__watchdog")
	cmd.Stdin = bytesReader(payload)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{shared.File()}

	if err := cmd.Run(); err != nil {
		return Termination{}, fmt.Errorf("sandbox: watchdog failed: %w", err)
	}

	realTime := Elapse(uint64(time.Since(start) / time.Millisecond))

	p, ok := shared.Get()
	if !ok {
		return Termination{}, fmt.Errorf("sandbox: watchdog exited without reporting a verdict")
	}

	cpuTime := Elapse(uint64((p.UtimeUsec + p.StimeUsec) / 1000))
	memory := Memory(uint64(p.MaxrssKB) * 1024)
	status, raw := classify(cfg.Limits, realTime, cpuTime, memory, p.TimerFirst, unix.WaitStatus(p.WaitStatus))

	return Termination{
		Status:   status,
		RawCode:  raw,
		RealTime: realTime,
		CPUTime:  cpuTime,
		Memory:   memory,
	}, nil
}

func classify(lim Limitation, realTime, cpuTime Elapse, memory Memory, timerFirst bool, ws unix.WaitStatus) (Status, int) {
	wallTLE := !lim.RealTime.Check(realTime)

	if ws.Exited() {
		code := ws.ExitStatus()
		switch {
		case !lim.RealMemory.Check(memory):
			return MemoryLimitExceeded, code
		case timerFirst || wallTLE:
			return TimeLimitExceeded, code
		case code != 0:
			return RuntimeError, code
		default:
			return Ok, code
		}
	}

	if ws.Signaled() {
		sig := ws.Signal()
		if sig == unix.SIGKILL || sig == unix.SIGXCPU || wallTLE {
			return TimeLimitExceeded, int(sig)
		}
		return RuntimeError, int(sig)
	}

	return RuntimeError, -1
}

func bytesReader(b []byte) *os.File {
	r, w, err := os.Pipe()
	if err != nil {
		// Falling back to no stdin is acceptable here: the watchdog
		// request is always non-empty in practice, so this path only
		// triggers on pipe exhaustion, which Run's caller will see
		// surfaced as a watchdog decode failure instead.
		return nil
	}
	go func() {
		defer w.Close()
		_, _ = w.Write(b)
	}()
	return r
}
