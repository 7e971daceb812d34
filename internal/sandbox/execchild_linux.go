//go:build linux

package sandbox

import (
	"encoding/json"
	"fmt"
	"os"

	"judgecore/internal/sigsafe"

	"golang.org/x/sys/unix"
)

// RunExecChild is the entry point for the `__execchild` re-exec role (T in
// the design). It receives a SingletonConfig on stdin, applies resource
// limits and stdio redirection, then replaces its own process image via
// exec — there is no return from a successful call.
func RunExecChild() error {
	var cfg SingletonConfig
	if err := json.NewDecoder(os.Stdin).Decode(&cfg); err != nil {
		return fmt.Errorf("execchild: decode config: %w", err)
	}

	if err := sigsafe.SetpgidSelf(); err != nil {
		return fmt.Errorf("execchild: setpgid: %w", err)
	}

	if err := redirectStdio(cfg); err != nil {
		return fmt.Errorf("execchild: redirect stdio: %w", err)
	}

	if err := applyLimits(cfg.Limits); err != nil {
		return fmt.Errorf("execchild: apply rlimits: %w", err)
	}

	env := cfg.Envs
	if len(env) == 0 {
		env = []string{"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"}
	}
	argv := append([]string{cfg.ExecPath}, cfg.Arguments...)
	err := sigsafe.Exec(cfg.ExecPath, argv, env)
	// unix.Exec only returns on failure.
	return fmt.Errorf("execchild: exec %s: %w", cfg.ExecPath, err)
}

func redirectStdio(cfg SingletonConfig) error {
	if cfg.Stdin != "" {
		f, err := sigsafe.OpenRead(cfg.Stdin)
		if err != nil {
			return fmt.Errorf("open stdin: %w", err)
		}
		if err := sigsafe.Dup2(int(f.Fd()), 0); err != nil {
			return fmt.Errorf("dup2 stdin: %w", err)
		}
		f.Close()
	}
	if cfg.Stdout != "" {
		f, err := sigsafe.OpenWrite(cfg.Stdout)
		if err != nil {
			return fmt.Errorf("open stdout: %w", err)
		}
		if err := sigsafe.Dup2(int(f.Fd()), 1); err != nil {
			return fmt.Errorf("dup2 stdout: %w", err)
		}
		f.Close()
	}
	if cfg.Stderr != "" {
		f, err := sigsafe.OpenWrite(cfg.Stderr)
		if err != nil {
			return fmt.Errorf("open stderr: %w", err)
		}
		if err := sigsafe.Dup2(int(f.Fd()), 2); err != nil {
			return fmt.Errorf("dup2 stderr: %w", err)
		}
		f.Close()
	}
	return nil
}

func applyLimits(lim Limitation) error {
	if err := sigsafe.Setrlimit(unix.RLIMIT_CPU, (uint64(lim.CPUTime.Soft)+999)/1000, (uint64(lim.CPUTime.Hard)+999)/1000); err != nil {
		return fmt.Errorf("cpu: %w", err)
	}
	if err := sigsafe.Setrlimit(unix.RLIMIT_AS, uint64(lim.VirtualMemory.Soft), uint64(lim.VirtualMemory.Hard)); err != nil {
		return fmt.Errorf("as: %w", err)
	}
	if err := sigsafe.Setrlimit(unix.RLIMIT_STACK, uint64(lim.StackMemory.Soft), uint64(lim.StackMemory.Hard)); err != nil {
		return fmt.Errorf("stack: %w", err)
	}
	if err := sigsafe.Setrlimit(unix.RLIMIT_FSIZE, uint64(lim.OutputMemory.Soft), uint64(lim.OutputMemory.Hard)); err != nil {
		return fmt.Errorf("fsize: %w", err)
	}
	if err := sigsafe.Setrlimit(unix.RLIMIT_NOFILE, lim.Fileno.Soft, lim.Fileno.Hard); err != nil {
		return fmt.Errorf("nofile: %w", err)
	}
	return nil
}
