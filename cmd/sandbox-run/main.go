// Command sandbox-run executes a single program under resource limits and
// reports how it terminated. It is spawned by the judger's ExecSandbox for
// normal use, and re-execs itself under internal subcommands to implement
// the watchdog/tested/timer roles described alongside internal/sandbox.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"judgecore/internal/sandbox"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "__watchdog":
		if err := sandbox.RunWatchdog(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "__execchild":
		if err := sandbox.RunExecChild(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "__timer":
		if err := sandbox.RunTimer(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "run":
		runProtocol()
	case "-V", "--version":
		fmt.Printf("sandbox-run %s (built %s)\n", version, buildTime)
	case "-h", "--help":
		usage()
	default:
		runStandalone(os.Args[1:])
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  sandbox-run run
      reads a SingletonConfig JSON object from stdin, writes
      {"termination": ...} or {"error": [...]} to stdout.
  sandbox-run --stdin PATH --stdout PATH --stderr PATH --lim LIMITATION --save PATH -- EXE ARGS...
      runs EXE directly under the given limits.
  sandbox-run -V | --version`)
}

// runResponse is the stdout envelope for the `run` subcommand.
type runResponse struct {
	Termination *sandbox.Termination `json:"termination,omitempty"`
	Error       []string             `json:"error,omitempty"`
}

func runProtocol() {
	var cfg sandbox.SingletonConfig
	if err := json.NewDecoder(os.Stdin).Decode(&cfg); err != nil {
		emitProtocolError(fmt.Errorf("decode SingletonConfig: %w", err))
		os.Exit(1)
	}

	self, err := os.Executable()
	if err != nil {
		emitProtocolError(fmt.Errorf("resolve own executable: %w", err))
		os.Exit(1)
	}

	term, err := sandbox.Run(context.Background(), self, cfg)
	if err != nil {
		emitProtocolError(err)
		os.Exit(1)
	}

	resp := runResponse{Termination: &term}
	if err := json.NewEncoder(os.Stdout).Encode(resp); err != nil {
		fmt.Fprintln(os.Stderr, "sandbox-run: encode response:", err)
		os.Exit(1)
	}
}

func emitProtocolError(err error) {
	resp := runResponse{Error: []string{err.Error()}}
	_ = json.NewEncoder(os.Stdout).Encode(resp)
}

func runStandalone(args []string) {
	fs := flag.NewFlagSet("sandbox-run", flag.ExitOnError)
	stdinPath := fs.String("stdin", "", "stdin path for the executed program")
	stdoutPath := fs.String("stdout", "", "stdout path for the executed program")
	stderrPath := fs.String("stderr", "", "stderr path for the executed program")
	limStr := fs.String("lim", "", "seven-colon Limitation grammar; defaults to DefaultLimitation")
	savePath := fs.String("save", "", "path to write the resulting Termination JSON")

	dashIdx := -1
	for i, a := range args {
		if a == "--" {
			dashIdx = i
			break
		}
	}
	if dashIdx < 0 {
		fmt.Fprintln(os.Stderr, "sandbox-run: standalone mode requires -- EXE ARGS...")
		os.Exit(2)
	}
	if err := fs.Parse(args[:dashIdx]); err != nil {
		os.Exit(2)
	}
	rest := args[dashIdx+1:]
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "sandbox-run: missing EXE after --")
		os.Exit(2)
	}

	lim := sandbox.DefaultLimitation()
	if *limStr != "" {
		parsed, err := sandbox.ParseLimitation(*limStr)
		if err != nil {
			fmt.Fprintln(os.Stderr, "sandbox-run:", err)
			os.Exit(2)
		}
		lim = parsed
	}

	cfg := sandbox.SingletonConfig{
		Limits:    lim,
		ExecPath:  rest[0],
		Arguments: rest[1:],
		Stdin:     *stdinPath,
		Stdout:    *stdoutPath,
		Stderr:    *stderrPath,
	}

	self, err := os.Executable()
	if err != nil {
		fmt.Fprintln(os.Stderr, "sandbox-run: resolve own executable:", err)
		os.Exit(1)
	}

	term, err := sandbox.Run(context.Background(), self, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sandbox-run:", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(term, "", "  ")
	if *savePath != "" {
		if err := os.WriteFile(*savePath, out, 0644); err != nil {
			fmt.Fprintln(os.Stderr, "sandbox-run: save termination:", err)
			os.Exit(1)
		}
	}
	fmt.Println(string(out))
}
