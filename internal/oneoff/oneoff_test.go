package oneoff

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"judgecore/internal/compile"
	"judgecore/internal/judger"
	"judgecore/internal/sandbox"
	"judgecore/internal/task"
)

type fakeJudger struct {
	workDir     string
	compileFunc func(sourceFile, name string) (judger.Compilation, error)
	execFunc    func(cfg sandbox.SingletonConfig) (sandbox.Termination, error)
}

func newFakeJudger(t *testing.T) *fakeJudger {
	return &fakeJudger{workDir: t.TempDir()}
}

func (f *fakeJudger) WorkingDir() string         { return f.workDir }
func (f *fakeJudger) RuntimeLog(task.LogMessage) {}
func (f *fakeJudger) DefaultLimitation() sandbox.Limitation {
	return sandbox.DefaultLimitation()
}

func (f *fakeJudger) ExecSandbox(_ context.Context, cfg sandbox.SingletonConfig) (sandbox.Termination, error) {
	return f.execFunc(cfg)
}

func (f *fakeJudger) Compile(_ context.Context, sourceFile, name string) (judger.Compilation, error) {
	return f.compileFunc(sourceFile, name)
}

func (f *fakeJudger) CopyStoreFile(storeName, destName string) error { return nil }
func (f *fakeJudger) CopyFile(srcPath, destName string) error        { return nil }

func (f *fakeJudger) CreateSourceFile(name, content string) (string, error) {
	path := filepath.Join(f.workDir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeJudger) ClearDest() error { return nil }

func TestOneOffRunsAndCapturesOutput(t *testing.T) {
	j := newFakeJudger(t)
	j.compileFunc = func(sourceFile, name string) (judger.Compilation, error) {
		return judger.Compilation{Ok: true, BinPath: "/bin/fake-echo"}, nil
	}
	j.execFunc = func(cfg sandbox.SingletonConfig) (sandbox.Termination, error) {
		if err := os.WriteFile(cfg.Stdout, []byte("hello\n"), 0644); err != nil {
			t.Fatalf("write fake stdout: %v", err)
		}
		return sandbox.Termination{Status: sandbox.Ok, CPUTime: 3, Memory: 512}, nil
	}

	report := Exec(context.Background(), j, OneOff{
		Source:   "print('hello')",
		FileType: compile.Python3,
		Stdin:    "",
	})

	if report.Meta.Status != task.Good {
		t.Fatalf("status = %v, want Good", report.Meta.Status)
	}
	if report.Payload["stdout"] != "hello\n" {
		t.Fatalf("stdout payload = %q, want %q", report.Payload["stdout"], "hello\n")
	}
}

func TestOneOffTimeLimitExceeded(t *testing.T) {
	j := newFakeJudger(t)
	j.compileFunc = func(sourceFile, name string) (judger.Compilation, error) {
		return judger.Compilation{Ok: true, BinPath: "/bin/fake-loop"}, nil
	}
	j.execFunc = func(cfg sandbox.SingletonConfig) (sandbox.Termination, error) {
		return sandbox.Termination{Status: sandbox.TimeLimitExceeded, CPUTime: cfg.Limits.CPUTime.Soft}, nil
	}

	report := Exec(context.Background(), j, OneOff{
		Source:    "while(1);",
		FileType:  compile.GnuCpp17O2,
		TimeLimit: 500,
	})

	if report.Meta.Status != task.TimeLimitExceeded {
		t.Fatalf("status = %v, want TimeLimitExceeded", report.Meta.Status)
	}
}

func TestOneOffCompileErrorSkipsExec(t *testing.T) {
	j := newFakeJudger(t)
	j.compileFunc = func(sourceFile, name string) (judger.Compilation, error) {
		return judger.Compilation{Ok: false, Log: "syntax error"}, nil
	}
	j.execFunc = func(sandbox.SingletonConfig) (sandbox.Termination, error) {
		t.Fatal("sandbox should never run after a failed compile")
		return sandbox.Termination{}, nil
	}

	report := Exec(context.Background(), j, OneOff{Source: "broken(", FileType: compile.GnuCpp17O2})

	if report.Meta.Status != task.CompileError {
		t.Fatalf("status = %v, want CompileError", report.Meta.Status)
	}
	if report.Payload["compile_log"] != "syntax error" {
		t.Fatalf("compile_log = %q, want %q", report.Payload["compile_log"], "syntax error")
	}
}

func TestOneOffCreatesEmptyStdinWhenNoneGiven(t *testing.T) {
	j := newFakeJudger(t)
	j.compileFunc = func(sourceFile, name string) (judger.Compilation, error) {
		return judger.Compilation{Ok: true, BinPath: "/bin/fake"}, nil
	}
	var gotStdin string
	j.execFunc = func(cfg sandbox.SingletonConfig) (sandbox.Termination, error) {
		gotStdin = cfg.Stdin
		return sandbox.Termination{Status: sandbox.Ok}, nil
	}

	Exec(context.Background(), j, OneOff{Source: "ignored", FileType: compile.Plain})

	if gotStdin == "" {
		t.Fatal("expected a stdin path to be set")
	}
	if _, err := os.Stat(gotStdin); err != nil {
		t.Fatalf("expected empty stdin file to exist at %s: %v", gotStdin, err)
	}
}
