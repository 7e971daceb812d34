package traditional

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"judgecore/internal/judger"
	"judgecore/internal/sandbox"
	"judgecore/internal/task"
)

// fakeJudger backs CreateSourceFile/CopyStoreFile with real files under a
// temp working directory, and lets each test script what Compile and
// ExecSandbox return.
type fakeJudger struct {
	workDir     string
	storeDir    string
	compileFunc func(sourceFile, name string) (judger.Compilation, error)
	execFunc    func(cfg sandbox.SingletonConfig) (sandbox.Termination, error)
}

func newFakeJudger(t *testing.T) *fakeJudger {
	return &fakeJudger{workDir: t.TempDir(), storeDir: t.TempDir()}
}

func (f *fakeJudger) WorkingDir() string             { return f.workDir }
func (f *fakeJudger) RuntimeLog(task.LogMessage)     {}
func (f *fakeJudger) DefaultLimitation() sandbox.Limitation {
	return sandbox.DefaultLimitation()
}

func (f *fakeJudger) ExecSandbox(_ context.Context, cfg sandbox.SingletonConfig) (sandbox.Termination, error) {
	return f.execFunc(cfg)
}

func (f *fakeJudger) Compile(_ context.Context, sourceFile, name string) (judger.Compilation, error) {
	return f.compileFunc(sourceFile, name)
}

func (f *fakeJudger) CopyStoreFile(storeName, destName string) error {
	data, err := os.ReadFile(filepath.Join(f.storeDir, storeName))
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(f.workDir, destName), data, 0644)
}

func (f *fakeJudger) CopyFile(srcPath, destName string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(f.workDir, destName), data, 0644)
}

func (f *fakeJudger) CreateSourceFile(name, content string) (string, error) {
	path := filepath.Join(f.workDir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeJudger) ClearDest() error { return nil }

func putStoreFile(t *testing.T, j *fakeJudger, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(j.storeDir, name), []byte(content), 0644); err != nil {
		t.Fatalf("seed store file %s: %v", name, err)
	}
}

func TestTraditionalAcceptedOutput(t *testing.T) {
	j := newFakeJudger(t)
	putStoreFile(t, j, "1.in", "3 4\n")
	putStoreFile(t, j, "1.out", "7\n")

	j.compileFunc = func(sourceFile, name string) (judger.Compilation, error) {
		return judger.Compilation{Ok: true, BinPath: "/bin/fake-adder"}, nil
	}
	j.execFunc = func(cfg sandbox.SingletonConfig) (sandbox.Termination, error) {
		if err := os.WriteFile(cfg.Stdout, []byte("7\n"), 0644); err != nil {
			t.Fatalf("write fake stdout: %v", err)
		}
		return sandbox.Termination{Status: sandbox.Ok, CPUTime: 5, Memory: 1024}, nil
	}

	report := Traditional{}.JudgeOne(context.Background(), j, Meta{}, Task{Input: "1.in", Output: "1.out"}, Subm{Source: "int main(){}"})

	if report.Meta.Status != task.Good {
		t.Fatalf("status = %v, want Good (payload: %v)", report.Meta.Status, report.Payload)
	}
	if report.Meta.ScoreRate != 1.0 {
		t.Fatalf("score = %v, want 1.0", report.Meta.ScoreRate)
	}
}

func TestTraditionalWrongAnswer(t *testing.T) {
	j := newFakeJudger(t)
	putStoreFile(t, j, "1.in", "3 4\n")
	putStoreFile(t, j, "1.out", "7\n")

	j.compileFunc = func(sourceFile, name string) (judger.Compilation, error) {
		return judger.Compilation{Ok: true, BinPath: "/bin/fake-adder"}, nil
	}
	j.execFunc = func(cfg sandbox.SingletonConfig) (sandbox.Termination, error) {
		if err := os.WriteFile(cfg.Stdout, []byte("8\n"), 0644); err != nil {
			t.Fatalf("write fake stdout: %v", err)
		}
		return sandbox.Termination{Status: sandbox.Ok}, nil
	}

	report := Traditional{}.JudgeOne(context.Background(), j, Meta{}, Task{Input: "1.in", Output: "1.out"}, Subm{Source: "int main(){}"})

	if report.Meta.Status != task.WrongAnswer {
		t.Fatalf("status = %v, want WrongAnswer", report.Meta.Status)
	}
	if report.Meta.ScoreRate != 0 {
		t.Fatalf("score = %v, want 0", report.Meta.ScoreRate)
	}
}

func TestTraditionalCompileError(t *testing.T) {
	j := newFakeJudger(t)
	putStoreFile(t, j, "1.in", "3 4\n")
	putStoreFile(t, j, "1.out", "7\n")

	j.compileFunc = func(sourceFile, name string) (judger.Compilation, error) {
		return judger.Compilation{Ok: false, Log: "error: expected ';'"}, nil
	}
	j.execFunc = func(sandbox.SingletonConfig) (sandbox.Termination, error) {
		t.Fatal("sandbox should never run after a failed compile")
		return sandbox.Termination{}, nil
	}

	report := Traditional{}.JudgeOne(context.Background(), j, Meta{}, Task{Input: "1.in", Output: "1.out"}, Subm{Source: "broken"})

	if report.Meta.Status != task.CompileError {
		t.Fatalf("status = %v, want CompileError", report.Meta.Status)
	}
	if report.Payload["compile_log"] == "" {
		t.Fatal("expected compile_log payload to be populated")
	}
}

func TestTraditionalRuntimeErrorShortCircuitsChecker(t *testing.T) {
	j := newFakeJudger(t)
	putStoreFile(t, j, "1.in", "3 4\n")
	putStoreFile(t, j, "1.out", "7\n")

	j.compileFunc = func(sourceFile, name string) (judger.Compilation, error) {
		return judger.Compilation{Ok: true, BinPath: "/bin/fake-adder"}, nil
	}
	j.execFunc = func(cfg sandbox.SingletonConfig) (sandbox.Termination, error) {
		return sandbox.Termination{Status: sandbox.RuntimeError}, nil
	}

	report := Traditional{}.JudgeOne(context.Background(), j, Meta{}, Task{Input: "1.in", Output: "1.out"}, Subm{Source: "int main(){ abort(); }"})

	if report.Meta.Status != task.RuntimeError {
		t.Fatalf("status = %v, want RuntimeError", report.Meta.Status)
	}
}

func TestMetaWithOverride(t *testing.T) {
	base := Meta{TimeLimit: 1000, MemoryLimit: 256 << 20}
	override := Meta{TimeLimit: 2000}

	merged := base.WithOverride(override).(Meta)
	if merged.TimeLimit != 2000 {
		t.Fatalf("TimeLimit = %v, want overridden 2000", merged.TimeLimit)
	}
	if merged.MemoryLimit != 256<<20 {
		t.Fatalf("MemoryLimit = %v, want unchanged base value", merged.MemoryLimit)
	}
}
