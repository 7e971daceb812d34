// Command judge-service hosts the judge worker: it loads configuration,
// starts a ProblemJudger, and publishes finished reports to Kafka. It has
// no HTTP surface of its own; submissions are expected to be fed in by an
// embedding caller (see internal/manager.ProblemJudger.Submit) or a
// future transport-layer adapter outside this module's scope.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"judgecore/internal/config"
	"judgecore/internal/manager"
	"judgecore/internal/service"
	"judgecore/internal/task"
	"judgecore/pkg/utils/logger"
)

func main() {
	configPath := flag.String("f", "config.yaml", "path to the judge service config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "judge-service:", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		OutputPath: cfg.Logger.Output,
		Service:    cfg.Logger.Service,
		Env:        cfg.Logger.Env,
		Cluster:    cfg.Logger.Cluster,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "judge-service: init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	task.SetTruncLimit(int(cfg.Sandbox.StdoutStderrCap))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	judger := manager.NewProblemJudger(cfg.BaseWorkDir, cfg.QueueDepth, cfg.EventBuffer)
	publisher := service.NewReportPublisher(cfg.Queue)
	go publisher.Run(ctx, judger)

	logger.Info(ctx, "judge-service started")
	<-ctx.Done()

	logger.Info(ctx, "judge-service shutting down")
	if err := judger.Close(); err != nil {
		logger.Errorf(ctx, "close judger: %v", err)
	}
	<-publisher.Done()
	if err := publisher.Close(); err != nil {
		logger.Errorf(ctx, "close publisher: %v", err)
	}
}
