package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"judgecore/internal/judge"
	"judgecore/internal/judger"
	"judgecore/internal/task"
	"judgecore/pkg/utils/contextkey"
	"judgecore/pkg/utils/logger"
)

// Result is one submission's outcome: either a completed report or the
// error that stopped judging.
type Result struct {
	Report task.FullJudgeReport
	Err    error
}

// Event pairs a submission id with its finished report, the shape the
// outbound channel publishes.
type Event struct {
	SubmissionID string
	Report       task.FullJudgeReport
}

// ProblemJudger drives judge runs for one problem: a base working
// directory, per-submission results and live logs, and an outbound event
// channel a publisher drains.
type ProblemJudger struct {
	baseDir string
	runner  *JobRunner

	resultsMu sync.RWMutex
	results   map[string]Result

	logsMu sync.RWMutex
	logs   map[string][]task.LogMessage

	events chan Event
}

// NewProblemJudger creates a ProblemJudger rooted at baseDir with the
// given job queue depth and outbound event buffer size.
func NewProblemJudger(baseDir string, queueDepth, eventBuffer int) *ProblemJudger {
	return &ProblemJudger{
		baseDir: baseDir,
		runner:  NewJobRunner(queueDepth),
		results: make(map[string]Result),
		logs:    make(map[string][]task.LogMessage),
		events:  make(chan Event, eventBuffer),
	}
}

// Events returns the outbound channel of finished reports.
func (p *ProblemJudger) Events() <-chan Event { return p.events }

// NewSubmissionID mints a fresh submission id for callers that don't
// already track one of their own (e.g. a transport layer minting one
// per inbound request before calling Submit).
func NewSubmissionID() string { return uuid.NewString() }

// Submit enqueues a judge run for sid. meta/data/subm are passed straight
// through to judge.Run; sandboxExe/cacheRoot/defaultLimit configure the
// Judger used for this run (defaultLimit in the seven-colon grammar,
// empty for the built-in default).
func (p *ProblemJudger) Submit(ctx context.Context, sid, sandboxExe, storeDir, cacheRoot, defaultLimit string, impl judge.JudgeTask, meta any, data task.Taskset, subm any) {
	p.runner.AddJob(func() {
		p.run(ctx, sid, sandboxExe, storeDir, cacheRoot, defaultLimit, impl, meta, data, subm)
	})
}

func (p *ProblemJudger) run(ctx context.Context, sid, sandboxExe, storeDir, cacheRoot, defaultLimit string, impl judge.JudgeTask, meta any, data task.Taskset, subm any) {
	ctx = context.WithValue(ctx, contextkey.SubmissionID, sid)
	workDir := filepath.Join(p.baseDir, sid)

	p.resultsMu.Lock()
	delete(p.results, sid)
	p.resultsMu.Unlock()
	p.logsMu.Lock()
	delete(p.logs, sid)
	p.logsMu.Unlock()

	logSink := func(msg task.LogMessage) {
		p.logsMu.Lock()
		p.logs[sid] = append(p.logs[sid], msg)
		p.logsMu.Unlock()
	}

	var report task.JudgeReport
	err := prepareWorkDir(workDir)
	if err != nil {
		logger.Errorf(ctx, "judge run failed for submission %s: %v", sid, err)
	} else {
		j := judger.NewDefaultJudger(workDir, storeDir, cacheRoot, sandboxExe, defaultLimit, logSink)
		report, err = judge.Run(ctx, j, impl, meta, data, subm)
		if err != nil {
			logger.Errorf(ctx, "judge run failed for submission %s: %v", sid, err)
		}
	}

	p.logsMu.RLock()
	logs := append([]task.LogMessage(nil), p.logs[sid]...)
	p.logsMu.RUnlock()

	full := task.FullJudgeReport{Report: report, Logs: logs}

	p.resultsMu.Lock()
	p.results[sid] = Result{Report: full, Err: err}
	p.resultsMu.Unlock()

	if err != nil {
		return
	}
	p.logsMu.Lock()
	delete(p.logs, sid)
	p.logsMu.Unlock()

	p.events <- Event{SubmissionID: sid, Report: full}
}

// prepareWorkDir resets dir to a fresh, empty directory: any leftovers from
// a previous submission that reused this path are discarded before the
// judger starts staging files into it.
func prepareWorkDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("prepare working dir: remove %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("prepare working dir: create %s: %w", dir, err)
	}
	return nil
}

// Result returns the current result for sid, if any.
func (p *ProblemJudger) Result(sid string) (Result, bool) {
	p.resultsMu.RLock()
	defer p.resultsMu.RUnlock()
	r, ok := p.results[sid]
	return r, ok
}

// Logs returns a snapshot of the live log trail for sid.
func (p *ProblemJudger) Logs(sid string) []task.LogMessage {
	p.logsMu.RLock()
	defer p.logsMu.RUnlock()
	return append([]task.LogMessage(nil), p.logs[sid]...)
}

// Close terminates the job runner and closes the event channel. Callers
// must not call Submit after Close.
func (p *ProblemJudger) Close() error {
	p.runner.Terminate()
	close(p.events)
	return nil
}
