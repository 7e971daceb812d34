// Package compile maps a submission's source language onto the sandbox
// invocation that compiles it.
package compile

import (
	"fmt"
	"os/exec"
	"sync"

	"judgecore/internal/sandbox"
)

// FileType is a closed set of supported source kinds.
type FileType int

const (
	GnuCpp20O2 FileType = iota
	GnuCpp17O2
	GnuCpp14O2
	Plain
	Python3
	Rust
	GnuAssembly
)

func (f FileType) String() string {
	switch f {
	case GnuCpp20O2:
		return "GnuCpp20O2"
	case GnuCpp17O2:
		return "GnuCpp17O2"
	case GnuCpp14O2:
		return "GnuCpp14O2"
	case Plain:
		return "Plain"
	case Python3:
		return "Python3"
	case Rust:
		return "Rust"
	case GnuAssembly:
		return "GnuAssembly"
	default:
		return "Unknown"
	}
}

// Ext returns the conventional filename extension for the file type.
func (f FileType) Ext() string {
	switch f {
	case GnuCpp20O2, GnuCpp17O2, GnuCpp14O2:
		return ".cpp"
	case Plain:
		return ".bin"
	case Python3:
		return ".py"
	case Rust:
		return ".rs"
	case GnuAssembly:
		return ".s"
	default:
		return ""
	}
}

// Compileable reports whether callers send the file type through
// CompileSandbox. Plain is the sole exception: it is already an
// executable. Python3 reports true, but CompileSandbox has no compile
// command for it and returns an error.
func (f FileType) Compileable() bool {
	return f != Plain
}

var lookPathOnce sync.Map // compiler name -> resolved path (cached per process)

func resolveCompiler(name string) (string, error) {
	if v, ok := lookPathOnce.Load(name); ok {
		return v.(string), nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("resolve compiler %q: %w", name, err)
	}
	lookPathOnce.Store(name, path)
	return path, nil
}

// CompileSandbox builds the SingletonConfig that compiles source into dest,
// redirecting the compiler's stderr to logPath so the caller can recover
// diagnostics (warnings, errors) after the sandboxed run exits.
func (f FileType) CompileSandbox(source, dest, logPath string) (sandbox.SingletonConfig, error) {
	if !f.Compileable() {
		return sandbox.SingletonConfig{}, fmt.Errorf("compile: %s is never compiled", f)
	}

	var (
		compiler string
		args     []string
	)
	switch f {
	case GnuCpp20O2:
		compiler, args = "g++", []string{"-std=c++20", "-O2", "-Wall", "-Wextra", "-o", dest, source}
	case GnuCpp17O2:
		compiler, args = "g++", []string{"-std=c++17", "-O2", "-Wall", "-Wextra", "-o", dest, source}
	case GnuCpp14O2:
		compiler, args = "g++", []string{"-std=c++14", "-O2", "-Wall", "-Wextra", "-o", dest, source}
	case Rust:
		compiler, args = "rustc", []string{"-O", "-o", dest, source}
	case GnuAssembly:
		compiler, args = "gcc", []string{"-o", dest, source}
	case Python3:
		// No compile command is defined for Python3, so a .py source
		// that reaches this point ends in an error.
		return sandbox.SingletonConfig{}, fmt.Errorf("compile: %s has no native compile step", f)
	default:
		return sandbox.SingletonConfig{}, fmt.Errorf("compile: unsupported file type %s", f)
	}

	path, err := resolveCompiler(compiler)
	if err != nil {
		return sandbox.SingletonConfig{}, err
	}

	return sandbox.SingletonConfig{
		Limits:    CompileLimitation,
		ExecPath:  path,
		Arguments: args,
		Stderr:    logPath,
	}, nil
}

// CompileLimitation bounds every compilation step regardless of language:
// 10s CPU, 20s wall, 4 GiB vm/rss/stack, 1 GiB output, 200 fds.
var CompileLimitation = sandbox.CompileLimitation()
