// Package task holds the judge run's data model: task/subtask structure,
// status classification, and the reports a judge run produces.
package task

import (
	"judgecore/internal/sandbox"
)

// JudgerStatus classifies the final verdict of one judged test. Kept
// distinct from sandbox.Status: it adds judge-level verdicts (WrongAnswer,
// CompileError, PresentationError, OutputLimitExceeded, DangerousSyscall)
// that the sandbox itself can't classify.
type JudgerStatus int

const (
	Good JudgerStatus = iota
	CompileError
	DangerousSyscall
	MemoryLimitExceeded
	OutputLimitExceeded
	PresentationError
	RuntimeError
	TimeLimitExceeded
	WrongAnswer
)

func (s JudgerStatus) String() string {
	switch s {
	case Good:
		return "Good"
	case CompileError:
		return "CompileError"
	case DangerousSyscall:
		return "DangerousSyscall"
	case MemoryLimitExceeded:
		return "MemoryLimitExceeded"
	case OutputLimitExceeded:
		return "OutputLimitExceeded"
	case PresentationError:
		return "PresentationError"
	case RuntimeError:
		return "RuntimeError"
	case TimeLimitExceeded:
		return "TimeLimitExceeded"
	case WrongAnswer:
		return "WrongAnswer"
	default:
		return "Unknown"
	}
}

// FromSandboxStatus maps a sandbox verdict onto the judge-level status
// space used before any answer checking happens.
func FromSandboxStatus(s sandbox.Status) JudgerStatus {
	switch s {
	case sandbox.Ok:
		return Good
	case sandbox.RuntimeError:
		return RuntimeError
	case sandbox.MemoryLimitExceeded:
		return MemoryLimitExceeded
	case sandbox.TimeLimitExceeded:
		return TimeLimitExceeded
	default:
		return RuntimeError
	}
}

// update folds a later status into an accumulator: the most recent
// non-Good status wins; a Good result leaves the accumulator unchanged.
func (s JudgerStatus) update(next JudgerStatus) JudgerStatus {
	if next != Good {
		return next
	}
	return s
}

// directScoreRate returns the score multiplier implied purely by the
// status, for statuses that pre-empt any checker comparison (everything
// except Good and WrongAnswer, whose rate comes from the checker).
func (s JudgerStatus) directScoreRate() (rate float64, applies bool) {
	switch s {
	case Good, WrongAnswer:
		return 0, false
	default:
		return 0, true
	}
}

// TaskMeta is one test's scored outcome.
type TaskMeta struct {
	ScoreRate float64         `json:"score_rate"`
	Status    JudgerStatus    `json:"status"`
	Time      sandbox.Elapse  `json:"time"`
	Memory    sandbox.Memory  `json:"memory"`
}

// NewStatusMeta builds a TaskMeta for a status that pre-empts any checker
// comparison, deriving its score rate from the status itself. Good and
// WrongAnswer don't pre-empt anything; build those TaskMeta values
// directly from the checker's own rate instead.
func NewStatusMeta(status JudgerStatus, time sandbox.Elapse, memory sandbox.Memory) TaskMeta {
	rate, _ := status.directScoreRate()
	return TaskMeta{ScoreRate: rate, Status: status, Time: time, Memory: memory}
}

var truncLimit = 64 * 1024

// SetTruncLimit overrides the payload truncation limit (bytes). Intended
// to be called once at startup from the sandbox's configured
// stdoutStderrCap; n <= 0 is ignored.
func SetTruncLimit(n int) {
	if n > 0 {
		truncLimit = n
	}
}

// TruncStr truncates s to the configured truncation limit, appending a
// marker if cut.
func TruncStr(s string) string {
	if len(s) <= truncLimit {
		return s
	}
	return s[:truncLimit] + "...(truncated)"
}

// TaskReport is the full outcome of one judged test: its meta plus
// truncated payload excerpts (compile log, stdout, stderr, checker
// message) useful for diagnostics.
type TaskReport struct {
	Meta    TaskMeta          `json:"meta"`
	Payload map[string]string `json:"payload,omitempty"`
}

// NewTaskReport builds a report from a meta with no payload.
func NewTaskReport(meta TaskMeta) TaskReport {
	return TaskReport{Meta: meta}
}

// AddPayloadStr attaches a named, truncated string payload.
func (r *TaskReport) AddPayloadStr(key, value string) {
	if r.Payload == nil {
		r.Payload = make(map[string]string)
	}
	r.Payload[key] = TruncStr(value)
}
