//go:build linux

package sandbox

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"judgecore/internal/sigsafe"
)

// watchdogRequest is what the parent pipes to the watchdog's stdin.
type watchdogRequest struct {
	Config     SingletonConfig `json:"config"`
	SandboxExe string          `json:"sandbox_exe"`
}

// RunWatchdog is the entry point for the `__watchdog` re-exec role (W in
// the design: spawns the tested process T and, when a real-time limit is
// set, a timer process Z; reaps whichever dies first; writes the verdict
// into the inherited shared cell).
func RunWatchdog() error {
	var req watchdogRequest
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		return fmt.Errorf("watchdog: decode request: %w", err)
	}

	// The shared cell is always extra file 3 (fd 0-2 are stdio, the
	// parent wires it in as the first entry of cmd.ExtraFiles).
	shared, err := OpenSharedRusage(3)
	if err != nil {
		return fmt.Errorf("watchdog: open shared cell: %w", err)
	}
	defer shared.Close()

	sigchld := make(chan os.Signal, 16)
	signal.Notify(sigchld, unix.SIGCHLD)
	defer signal.Stop(sigchld)

	baseline, err := sigsafe.Getrusage(unix.RUSAGE_SELF)
	if err != nil {
		return fmt.Errorf("watchdog: baseline getrusage: %w", err)
	}

	tCmd, tStdin, err := spawnExecChild(req.SandboxExe, req.Config)
	if err != nil {
		return fmt.Errorf("watchdog: spawn tested process: %w", err)
	}
	if err := writeConfig(tStdin, req.Config); err != nil {
		return fmt.Errorf("watchdog: send config to tested process: %w", err)
	}
	tPid := tCmd.Process.Pid

	var zPid int
	if req.Config.Limits.RealTime.Soft > 0 {
		zCmd, err := spawnTimer(req.SandboxExe, req.Config.Limits.RealTime.Soft)
		if err != nil {
			return fmt.Errorf("watchdog: spawn timer process: %w", err)
		}
		zPid = zCmd.Process.Pid
	}

	var (
		timerFirst bool
		reapedT    bool
		reapedZ    = zPid == 0
		tWaitRaw   sigsafe.WaitStatus
		tRusage    unix.Rusage
	)

	for !reapedT || !reapedZ {
		<-sigchld
		for {
			pid, ws, ru, err := sigsafe.Wait4(-1, unix.WNOHANG)
			if err != nil {
				if err == unix.ECHILD {
					reapedT, reapedZ = true, true
					break
				}
				return fmt.Errorf("watchdog: wait4: %w", err)
			}
			if pid <= 0 {
				break
			}
			switch pid {
			case tPid:
				reapedT = true
				tWaitRaw = ws
				tRusage = ru
				if zPid != 0 && !reapedZ {
					_ = sigsafe.Kill(zPid, unix.SIGKILL)
				}
			case zPid:
				reapedZ = true
				if !reapedT {
					timerFirst = true
					_ = sigsafe.Kill(-tPid, unix.SIGKILL)
				}
			}
		}
	}

	utime := tRusage.Utime.Sec*1_000_000 + int64(tRusage.Utime.Usec)
	stime := tRusage.Stime.Sec*1_000_000 + int64(tRusage.Stime.Usec)
	maxrss := tRusage.Maxrss - baseline.Maxrss
	if maxrss < 0 {
		maxrss = tRusage.Maxrss
	}

	shared.TrySet(sharedPayload{
		TimerFirst: timerFirst,
		WaitStatus: tWaitRaw.Raw(),
		UtimeUsec:  utime,
		StimeUsec:  stime,
		MaxrssKB:   maxrss,
	})
	return nil
}

func writeConfig(w io.WriteCloser, cfg SingletonConfig) error {
	defer w.Close()
	return json.NewEncoder(w).Encode(cfg)
}

func spawnExecChild(sandboxExe string, cfg SingletonConfig) (*exec.Cmd, io.WriteCloser, error) {
	cmd := exec.Command(sandboxExe, "__execchild")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, err
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}
	return cmd, stdin, nil
}

func spawnTimer(sandboxExe string, soft Elapse) (*exec.Cmd, error) {
	seconds := fmt.Sprintf("%d", (uint64(soft)+999)/1000)
	cmd := exec.Command(sandboxExe, "__timer", seconds)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}
