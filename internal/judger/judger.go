// Package judger runs one test case's sandbox/compile/cache plumbing on
// behalf of a problem kind's JudgeTask implementation.
package judger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"judgecore/internal/sandbox"
	"judgecore/internal/task"
	"judgecore/pkg/utils/logger"
)

// Compilation is the outcome of compiling one source file.
type Compilation struct {
	Ok      bool
	Log     string
	BinPath string
	Verdict sandbox.Termination
}

// Judger owns a working directory and the machinery (sandbox exec,
// compile cache, file staging) a JudgeTask needs to evaluate one test.
type Judger interface {
	WorkingDir() string
	RuntimeLog(msg task.LogMessage)
	ExecSandbox(ctx context.Context, cfg sandbox.SingletonConfig) (sandbox.Termination, error)
	Compile(ctx context.Context, sourceFile, name string) (Compilation, error)
	CopyStoreFile(storeName, destName string) error
	CopyFile(srcPath, destName string) error
	CreateSourceFile(name, content string) (string, error)
	ClearDest() error
	// DefaultLimitation is the base resource ceiling a problem kind
	// should start from before applying its own per-test overrides.
	DefaultLimitation() sandbox.Limitation
}

// DefaultJudger is the reference Judger: it shells out to a sandbox-run
// binary for every sandboxed execution and optionally content-addresses
// compile results under a cache root.
type DefaultJudger struct {
	workingDir   string
	storeDir     string
	cacheRoot    string
	sandboxExe   string
	defaultLimit sandbox.Limitation
	logSink      func(task.LogMessage)
}

// NewDefaultJudger builds a Judger rooted at workingDir, staging files
// from storeDir, optionally caching compiles under cacheRoot (empty
// disables caching). defaultLimitStr is the operator-configured base
// limitation in the seven-colon grammar (sandbox.ParseLimitation); an
// empty or malformed string falls back to sandbox.DefaultLimitation().
func NewDefaultJudger(workingDir, storeDir, cacheRoot, sandboxExe, defaultLimitStr string, logSink func(task.LogMessage)) *DefaultJudger {
	if logSink == nil {
		logSink = func(task.LogMessage) {}
	}
	defaultLimit := sandbox.DefaultLimitation()
	if defaultLimitStr != "" {
		if parsed, err := sandbox.ParseLimitation(defaultLimitStr); err == nil {
			defaultLimit = parsed
		} else {
			logger.Warnf(context.Background(), "judger: malformed default limitation %q, using built-in default: %v", defaultLimitStr, err)
		}
	}
	return &DefaultJudger{
		workingDir:   workingDir,
		storeDir:     storeDir,
		cacheRoot:    cacheRoot,
		sandboxExe:   sandboxExe,
		defaultLimit: defaultLimit,
		logSink:      logSink,
	}
}

func (j *DefaultJudger) WorkingDir() string { return j.workingDir }

func (j *DefaultJudger) DefaultLimitation() sandbox.Limitation { return j.defaultLimit }

func (j *DefaultJudger) RuntimeLog(msg task.LogMessage) { j.logSink(msg) }

// ExecSandbox spawns `sandbox-run run`, streaming the config to its stdin
// on a dedicated goroutine while the main goroutine reads the response
// from stdout. One goroutine per call, joined on subprocess exit.
func (j *DefaultJudger) ExecSandbox(ctx context.Context, cfg sandbox.SingletonConfig) (sandbox.Termination, error) {
	return execSandbox(ctx, j.sandboxExe, cfg)
}

func (j *DefaultJudger) CopyStoreFile(storeName, destName string) error {
	return copyFile(filepath.Join(j.storeDir, storeName), filepath.Join(j.workingDir, destName))
}

func (j *DefaultJudger) CopyFile(srcPath, destName string) error {
	return copyFile(srcPath, filepath.Join(j.workingDir, destName))
}

func (j *DefaultJudger) CreateSourceFile(name, content string) (string, error) {
	path := filepath.Join(j.workingDir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("create source file %s: %w", name, err)
	}
	return path, nil
}

// ClearDest purges the working directory between tests, so no state
// leaks from one test to the next.
func (j *DefaultJudger) ClearDest() error {
	entries, err := os.ReadDir(j.workingDir)
	if err != nil {
		return fmt.Errorf("clear working dir: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(j.workingDir, e.Name())); err != nil {
			return fmt.Errorf("clear working dir: remove %s: %w", e.Name(), err)
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy file: open source: %w", err)
	}
	defer in.Close()
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("copy file: open dest: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	return nil
}

// CachableBlock is content-addressed: when cacheRoot is non-empty, hash
// input, look up cacheRoot/<hash>; if present and JSON-decodable, return
// it; else run f, write-to-temp-then-rename the result into that
// directory, and return it. With an empty cacheRoot it is a pass-through.
func CachableBlock[T any](cacheRoot, input string, f func() (T, error)) (T, error) {
	var zero T
	if cacheRoot == "" {
		return f()
	}

	sum := sha256.Sum256([]byte(input))
	hash := hex.EncodeToString(sum[:])
	entryPath := filepath.Join(cacheRoot, hash)

	if data, err := os.ReadFile(entryPath); err == nil {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			logger.Debugf(context.Background(), "compile cache hit for %s", hash)
			return cached, nil
		}
		logger.Warnf(context.Background(), "compile cache entry %s failed to decode, recomputing", hash)
	}

	result, err := f()
	if err != nil {
		return zero, err
	}

	if err := os.MkdirAll(cacheRoot, 0755); err != nil {
		logger.Warnf(context.Background(), "compile cache: mkdir cache root: %v", err)
		return result, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		logger.Warnf(context.Background(), "compile cache: marshal result: %v", err)
		return result, nil
	}
	tmp, err := os.CreateTemp(cacheRoot, "tmp-*")
	if err != nil {
		logger.Warnf(context.Background(), "compile cache: create temp: %v", err)
		return result, nil
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		logger.Warnf(context.Background(), "compile cache: write temp: %v", err)
		return result, nil
	}
	tmp.Close()
	if err := os.Rename(tmp.Name(), entryPath); err != nil {
		logger.Warnf(context.Background(), "compile cache: rename into place: %v", err)
		return result, nil
	}
	logger.Debugf(context.Background(), "compile cache store for %s", hash)
	return result, nil
}
