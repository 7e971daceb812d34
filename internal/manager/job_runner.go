// Package manager hosts the judge worker: a serial job queue per process
// (JobRunner) and the per-submission state/log tracking built on top of it
// (ProblemJudger).
package manager

import "sync"

// JobRunner is a single background worker goroutine owning a buffered job
// channel. Jobs run serially, in the order they were enqueued.
type JobRunner struct {
	jobs     chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// NewJobRunner starts the worker goroutine with the given queue depth.
func NewJobRunner(queueDepth int) *JobRunner {
	r := &JobRunner{
		jobs: make(chan func(), queueDepth),
		done: make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *JobRunner) loop() {
	defer close(r.done)
	for job := range r.jobs {
		job()
	}
}

// AddJob enqueues f. Blocks if the queue is full.
func (r *JobRunner) AddJob(f func()) {
	r.jobs <- f
}

// Terminate closes the queue and waits for the worker to drain and exit.
func (r *JobRunner) Terminate() {
	r.stopOnce.Do(func() {
		close(r.jobs)
	})
	<-r.done
}
