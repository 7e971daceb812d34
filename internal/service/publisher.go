// Package service wires the judge worker (internal/manager) to the
// outside world: a Kafka producer that drains ProblemJudger's finished-
// report channel and publishes each one to a topic.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"judgecore/internal/config"
	"judgecore/internal/manager"
	"judgecore/pkg/utils/logger"
)

// ReportPublisher drains a ProblemJudger's event channel and publishes
// each finished report to Kafka, keyed by submission id.
type ReportPublisher struct {
	writer *kafka.Writer
	done   chan struct{}
}

// NewReportPublisher builds a publisher from queue config. The caller
// must call Run to start draining events.
func NewReportPublisher(cfg config.QueueConfig) *ReportPublisher {
	return &ReportPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.Topic,
			Balancer: &kafka.Hash{},
		},
		done: make(chan struct{}),
	}
}

// Run drains judger.Events() until the channel closes, publishing each
// event. Intended to run in its own goroutine; it returns when the
// channel closes or ctx is cancelled.
func (p *ReportPublisher) Run(ctx context.Context, judger *manager.ProblemJudger) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-judger.Events():
			if !ok {
				return
			}
			p.publish(ctx, ev)
		}
	}
}

func (p *ReportPublisher) publish(ctx context.Context, ev manager.Event) {
	payload, err := json.Marshal(ev.Report)
	if err != nil {
		logger.Errorf(ctx, "publisher: marshal report for %s: %v", ev.SubmissionID, err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(ev.SubmissionID),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Errorf(ctx, "publisher: write message for %s: %v", ev.SubmissionID, err)
	}
}

// Close flushes and closes the underlying Kafka writer. Call this only
// after Run has returned (i.e. after the judger's event channel has been
// closed via ProblemJudger.Close), so no in-flight publish races a writer
// close.
func (p *ReportPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("publisher: close writer: %w", err)
	}
	return nil
}

// Done returns a channel closed once Run has returned.
func (p *ReportPublisher) Done() <-chan struct{} { return p.done }
