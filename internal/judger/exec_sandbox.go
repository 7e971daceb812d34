package judger

import (
	"context"
	"encoding/json"
	"os/exec"

	judgeerrors "judgecore/pkg/errors"

	"judgecore/internal/sandbox"
)

type sandboxRunResponse struct {
	Termination *sandbox.Termination `json:"termination,omitempty"`
	Error       []string             `json:"error,omitempty"`
}

// execSandbox spawns `sandboxExe run`, writing cfg to its stdin on a
// dedicated goroutine while reading the response from stdout on the
// caller's goroutine.
func execSandbox(ctx context.Context, sandboxExe string, cfg sandbox.SingletonConfig) (sandbox.Termination, error) {
	cmd := exec.CommandContext(ctx, sandboxExe, "run")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return sandbox.Termination{}, judgeerrors.Wrapf(err, judgeerrors.SandboxSpawnFailed, "exec sandbox: stdin pipe: %v", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return sandbox.Termination{}, judgeerrors.Wrapf(err, judgeerrors.SandboxSpawnFailed, "exec sandbox: stdout pipe: %v", err)
	}

	if err := cmd.Start(); err != nil {
		return sandbox.Termination{}, judgeerrors.Wrapf(err, judgeerrors.SandboxSpawnFailed, "exec sandbox: start: %v", err)
	}

	writeErrCh := make(chan error, 1)
	go func() {
		defer stdin.Close()
		writeErrCh <- json.NewEncoder(stdin).Encode(cfg)
	}()

	var resp sandboxRunResponse
	decodeErr := json.NewDecoder(stdout).Decode(&resp)

	waitErr := cmd.Wait()
	writeErr := <-writeErrCh

	if decodeErr != nil {
		return sandbox.Termination{}, judgeerrors.Wrapf(decodeErr, judgeerrors.SandboxProtocolError, "exec sandbox: decode response: %v", decodeErr)
	}
	if len(resp.Error) > 0 {
		return sandbox.Termination{}, judgeerrors.Newf(judgeerrors.SandboxProtocolError, "exec sandbox: %v", resp.Error)
	}
	if resp.Termination == nil {
		return sandbox.Termination{}, judgeerrors.New(judgeerrors.SandboxProtocolError).WithMessage("exec sandbox: empty response")
	}
	if waitErr != nil {
		return sandbox.Termination{}, judgeerrors.Wrapf(waitErr, judgeerrors.SandboxWatchdogError, "exec sandbox: subprocess exit: %v", waitErr)
	}
	if writeErr != nil {
		return sandbox.Termination{}, judgeerrors.Wrapf(writeErr, judgeerrors.SandboxProtocolError, "exec sandbox: write config: %v", writeErr)
	}

	return *resp.Termination, nil
}
