// Package oneoff implements a convenience path that compiles and runs a
// single submission once, with no answer checking — used for "run my
// code against this input" style requests rather than full judging.
package oneoff

import (
	"context"
	"os"

	"judgecore/internal/compile"
	"judgecore/internal/judger"
	"judgecore/internal/sandbox"
	"judgecore/internal/task"
)

// OneOff describes a single compile-and-run request.
type OneOff struct {
	Source      string
	FileType    compile.FileType
	Stdin       string
	TimeLimit   sandbox.Elapse // default 1s
	MemoryLimit sandbox.Memory // default 1 GiB
	OutputLimit sandbox.Memory // default 128 MiB
	FilenoLimit uint64         // default 10
}

func (o OneOff) limitation(base sandbox.Limitation) sandbox.Limitation {
	lim := base
	timeLimit := o.TimeLimit
	if timeLimit == 0 {
		timeLimit = 1000
	}
	memLimit := o.MemoryLimit
	if memLimit == 0 {
		memLimit = 1 << 30
	}
	outLimit := o.OutputLimit
	if outLimit == 0 {
		outLimit = 128 << 20
	}
	filenoLimit := o.FilenoLimit
	if filenoLimit == 0 {
		filenoLimit = 10
	}
	lim.RealTime = sandbox.NewSingle(timeLimit * 2)
	lim.CPUTime = sandbox.NewSingle(timeLimit)
	lim.VirtualMemory = sandbox.NewSingle(memLimit)
	lim.RealMemory = sandbox.NewSingle(memLimit)
	lim.OutputMemory = sandbox.NewSingle(outLimit)
	lim.Fileno = sandbox.NewSingle(filenoLimit)
	return lim
}

// Exec compiles o.Source in j's working directory under the compile
// limitation, then (on success) runs the compiled artifact once against
// o.Stdin, capturing stdout to main.out.
func Exec(ctx context.Context, j judger.Judger, o OneOff) task.TaskReport {
	sourcePath, err := j.CreateSourceFile("main"+o.FileType.Ext(), o.Source)
	if err != nil {
		return errorReport(err.Error())
	}

	compilation, err := j.Compile(ctx, sourcePath, "main.bin")
	if err != nil {
		return errorReport(err.Error())
	}
	if !compilation.Ok {
		report := task.TaskReport{Meta: task.NewStatusMeta(task.CompileError, 0, 0)}
		report.AddPayloadStr("compile_log", compilation.Log)
		return report
	}

	stdinPath := o.Stdin
	if stdinPath == "" {
		stdinPath, err = j.CreateSourceFile("empty_stdin.txt", "")
		if err != nil {
			return errorReport(err.Error())
		}
	}

	stdoutPath := j.WorkingDir() + "/main.out"
	stderrPath := j.WorkingDir() + "/main.err"
	cfg := sandbox.SingletonConfig{
		Limits:   o.limitation(j.DefaultLimitation()),
		ExecPath: compilation.BinPath,
		Stdin:    stdinPath,
		Stdout:   stdoutPath,
		Stderr:   stderrPath,
	}

	term, err := j.ExecSandbox(ctx, cfg)
	if err != nil {
		return errorReport(err.Error())
	}

	report := task.TaskReport{Meta: task.NewStatusMeta(task.FromSandboxStatus(term.Status), term.CPUTime, term.Memory)}
	if out, err := os.ReadFile(stdoutPath); err == nil {
		report.AddPayloadStr("stdout", string(out))
	}
	if errOut, err := os.ReadFile(stderrPath); err == nil {
		report.AddPayloadStr("stderr", string(errOut))
	}
	return report
}

func errorReport(msg string) task.TaskReport {
	report := task.TaskReport{Meta: task.NewStatusMeta(task.RuntimeError, 0, 0)}
	report.AddPayloadStr("error", msg)
	return report
}
