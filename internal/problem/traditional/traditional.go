// Package traditional implements the most common problem kind: for each
// test, compile the submission, feed a fixed input file and compare the
// produced output against a fixed answer file.
package traditional

import (
	"context"
	"fmt"

	"judgecore/internal/checker"
	"judgecore/internal/judger"
	"judgecore/internal/sandbox"
	"judgecore/internal/task"
)

// Meta is the traditional problem kind's metadata: how to check output,
// and the per-test resource limits.
type Meta struct {
	Checker     checker.Checker
	TimeLimit   sandbox.Elapse
	MemoryLimit sandbox.Memory
	OutputLimit sandbox.Memory
}

// WithOverride clones m and applies a subtask-level override, satisfying
// the judge driver's merge hook.
func (m Meta) WithOverride(override any) any {
	clone := m
	if o, ok := override.(Meta); ok {
		if o.Checker != nil {
			clone.Checker = o.Checker
		}
		if o.TimeLimit != 0 {
			clone.TimeLimit = o.TimeLimit
		}
		if o.MemoryLimit != 0 {
			clone.MemoryLimit = o.MemoryLimit
		}
		if o.OutputLimit != 0 {
			clone.OutputLimit = o.OutputLimit
		}
	}
	return clone
}

func (m Meta) limitation(base sandbox.Limitation) sandbox.Limitation {
	lim := base
	if m.TimeLimit != 0 {
		lim.RealTime = sandbox.NewSingle(m.TimeLimit * 2)
		lim.CPUTime = sandbox.NewSingle(m.TimeLimit)
	}
	if m.MemoryLimit != 0 {
		lim.VirtualMemory = sandbox.NewSingle(m.MemoryLimit)
		lim.RealMemory = sandbox.NewSingle(m.MemoryLimit)
	}
	if m.OutputLimit != 0 {
		lim.OutputMemory = sandbox.NewSingle(m.OutputLimit)
	}
	return lim
}

// Task is one test case's fixed input/output file pair, named as staged
// under the problem's store directory.
type Task struct {
	Input  string
	Output string
}

// Subm is a submission's source code.
type Subm struct {
	Source string
}

// Traditional implements judge.JudgeTask for the traditional kind.
type Traditional struct{}

func (Traditional) JudgeOne(ctx context.Context, j judger.Judger, metaAny any, taskAny task.Task, submAny any) task.TaskReport {
	meta, ok := metaAny.(Meta)
	if !ok {
		return errorReport(task.RuntimeError, fmt.Sprintf("traditional: unexpected meta type %T", metaAny))
	}
	tc, ok := taskAny.(Task)
	if !ok {
		return errorReport(task.RuntimeError, fmt.Sprintf("traditional: unexpected task type %T", taskAny))
	}
	subm, ok := submAny.(Subm)
	if !ok {
		return errorReport(task.RuntimeError, fmt.Sprintf("traditional: unexpected submission type %T", submAny))
	}

	sourcePath, err := j.CreateSourceFile("main.cpp", subm.Source)
	if err != nil {
		return errorReport(task.RuntimeError, err.Error())
	}

	compilation, err := j.Compile(ctx, sourcePath, "main.bin")
	if err != nil {
		return errorReport(task.RuntimeError, err.Error())
	}
	if !compilation.Ok {
		report := errorReport(task.CompileError, "compilation failed")
		report.AddPayloadStr("compile_log", compilation.Log)
		return report
	}

	if err := j.CopyStoreFile(tc.Input, "input.txt"); err != nil {
		return errorReport(task.RuntimeError, err.Error())
	}

	cfg := sandbox.SingletonConfig{
		Limits:   meta.limitation(j.DefaultLimitation()),
		ExecPath: compilation.BinPath,
		Stdin:    j.WorkingDir() + "/input.txt",
		Stdout:   j.WorkingDir() + "/output.txt",
		Stderr:   j.WorkingDir() + "/stderr.txt",
	}

	term, err := j.ExecSandbox(ctx, cfg)
	if err != nil {
		return errorReport(task.RuntimeError, err.Error())
	}

	status := task.FromSandboxStatus(term.Status)
	if status != task.Good {
		return task.TaskReport{Meta: task.NewStatusMeta(status, term.CPUTime, term.Memory)}
	}

	answerName := tc.Output
	if err := j.CopyStoreFile(answerName, "answer.txt"); err != nil {
		return errorReport(task.RuntimeError, err.Error())
	}

	c := meta.Checker
	if c == nil {
		c = checker.FileCmp{}
	}
	score, msg, err := c.Check(j.WorkingDir()+"/input.txt", j.WorkingDir()+"/output.txt", j.WorkingDir()+"/answer.txt")
	if err != nil {
		return errorReport(task.RuntimeError, err.Error())
	}

	finalStatus := task.Good
	if score < task.ScoreEps {
		finalStatus = task.WrongAnswer
	}
	report := task.TaskReport{Meta: task.TaskMeta{
		ScoreRate: score,
		Status:    finalStatus,
		Time:      term.CPUTime,
		Memory:    term.Memory,
	}}
	report.AddPayloadStr("checker_message", msg)
	return report
}

func errorReport(status task.JudgerStatus, msg string) task.TaskReport {
	report := task.TaskReport{Meta: task.NewStatusMeta(status, 0, 0)}
	report.AddPayloadStr("error", msg)
	return report
}
