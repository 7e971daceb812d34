// Package judge implements the driver that walks a problem's taskset,
// invoking a problem kind's JudgeTask once per test and folding the
// results into a JudgeReport.
package judge

import (
	"context"
	"fmt"

	"judgecore/internal/judger"
	"judgecore/internal/task"
)

// JudgeTask is implemented once per problem kind (traditional, special
// judge, interactive, ...). The kind's metadata and submission values
// travel as `any` through the taskset and are type-asserted by the
// implementation.
type JudgeTask interface {
	JudgeOne(ctx context.Context, j judger.Judger, meta any, t task.Task, subm any) task.TaskReport
}

// Run executes one judge pass over data's taskset against subm, using impl
// to judge each individual test.
func Run(ctx context.Context, j judger.Judger, impl JudgeTask, meta any, data task.Taskset, subm any) (task.JudgeReport, error) {
	if data.IsTests() {
		return runTests(ctx, j, impl, meta, data.Tests, subm)
	}
	return runSubtasks(ctx, j, impl, meta, data, subm)
}

func runTests(ctx context.Context, j judger.Judger, impl JudgeTask, meta any, tests []task.Task, subm any) (task.JudgeReport, error) {
	n := len(tests)
	if n == 0 {
		return task.JudgeReport{}, fmt.Errorf("judge: empty test list")
	}
	weight := 1.0 / float64(n)
	summary := task.NewSummarizer(task.Sum)
	reports := make([]*task.TaskReport, n)

	j.RuntimeLog(task.LogMessage{Kind: task.LogStartTests})
	for i, t := range tests {
		if summary.Skippable() {
			reports[i] = nil
			continue
		}
		j.RuntimeLog(task.LogMessage{Kind: task.LogTestTask, TaskIndex: i})
		if err := j.ClearDest(); err != nil {
			return task.JudgeReport{}, fmt.Errorf("judge: clear working dir: %w", err)
		}
		report := impl.JudgeOne(ctx, j, meta, t, subm)
		summary.Update(report.Meta, weight)
		reports[i] = &report
	}
	j.RuntimeLog(task.LogMessage{Kind: task.LogEnd})

	return task.JudgeReport{
		Meta:   summary.Report(),
		Detail: task.JudgeDetail{Tests: reports},
	}, nil
}

func runSubtasks(ctx context.Context, j judger.Judger, impl JudgeTask, problemMeta any, data task.Taskset, subm any) (task.JudgeReport, error) {
	outer := task.NewSummarizer(task.Sum)
	reports := make([]task.SubtaskReport, len(data.Subtasks))

	j.RuntimeLog(task.LogMessage{Kind: task.LogStartSubtasks})
	for idx, st := range data.Subtasks {
		if outer.Skippable() {
			reports[idx] = task.SubtaskReport{
				Meta:  outer.Report(),
				Tasks: make([]*task.TaskReport, len(st.Tasks)),
			}
			continue
		}

		if !dependencyOK(idx, data.Deps, reports) {
			// No dedicated "unmet dependency" status; RuntimeError marks it
			// as a zero-score failure without implying the checker ran.
			failMeta := task.TaskMeta{ScoreRate: 0, Status: task.RuntimeError}
			reports[idx] = task.SubtaskReport{
				Meta:  failMeta,
				Tasks: make([]*task.TaskReport, len(st.Tasks)),
			}
			outer.Update(failMeta, st.Score)
			continue
		}

		inner := task.NewSummarizer(task.Minimum)
		taskReports := make([]*task.TaskReport, len(st.Tasks))
		effectiveMeta := mergeMeta(problemMeta, st.Meta)

		for taskIdx, t := range st.Tasks {
			if inner.Skippable() {
				taskReports[taskIdx] = nil
				continue
			}
			j.RuntimeLog(task.LogMessage{Kind: task.LogSubtaskTask, SubtaskIndex: idx, TaskIndex: taskIdx})
			if err := j.ClearDest(); err != nil {
				return task.JudgeReport{}, fmt.Errorf("judge: clear working dir: %w", err)
			}
			report := impl.JudgeOne(ctx, j, effectiveMeta, t, subm)
			inner.Update(report.Meta, 1)
			taskReports[taskIdx] = &report
		}

		innerMeta := inner.Report()
		reports[idx] = task.SubtaskReport{
			TotalScore: innerMeta.ScoreRate * st.Score,
			Meta:       innerMeta,
			Tasks:      taskReports,
		}
		outer.Update(innerMeta, st.Score)
	}
	j.RuntimeLog(task.LogMessage{Kind: task.LogEnd})

	return task.JudgeReport{
		Meta:   outer.Report(),
		Detail: task.JudgeDetail{Subtask: reports},
	}, nil
}

// dependencyOK reports whether every dependency of subtask `depender`
// scored Good. A subtask with no recorded dependencies always passes.
func dependencyOK(depender int, deps []task.DepRelation, reports []task.SubtaskReport) bool {
	for _, d := range deps {
		if d.Depender != depender {
			continue
		}
		if d.Dependee < 0 || d.Dependee >= len(reports) {
			return false
		}
		if reports[d.Dependee].Meta.Status != task.Good {
			return false
		}
	}
	return true
}

// mergeMeta applies a subtask-level override onto a clone of the
// problem-level meta. Both are opaque `any` values; concrete problem
// kinds provide the merge logic via a type switch on their own meta type.
// The traditional problem kind's Meta implements this directly in
// internal/problem/traditional.
func mergeMeta(problemMeta, override any) any {
	if override == nil {
		return problemMeta
	}
	if merger, ok := problemMeta.(interface{ WithOverride(any) any }); ok {
		return merger.WithOverride(override)
	}
	return problemMeta
}
