package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/griha-erp/griha-erp/internal/app"
	"github.com/griha-erp/griha-erp/internal/billing"
	jobmetrics "github.com/griha-erp/griha-erp/internal/jobs"
	"github.com/griha-erp/griha-erp/internal/platform/cache"
	"github.com/griha-erp/griha-erp/internal/platform/db"
	"github.com/griha-erp/griha-erp/internal/registry/blocks"
	"github.com/griha-erp/griha-erp/internal/registry/properties"
	"github.com/griha-erp/griha-erp/internal/reports"
	"github.com/griha-erp/griha-erp/jobs"
	"github.com/griha-erp/griha-erp/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)

	blocksService := blocks.NewService(blocks.NewRepository(pool))
	propertiesService := properties.NewService(properties.NewRepository(pool), blocksService)

	reportsCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsService := reports.NewService(reports.NewRepository(pool), reportsCache)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	fineRules := billing.NewFineRuleStore(pool, redisClient, cfg.FineCacheTTL, logger)
	billingService := billing.NewService(
		billing.NewRepository(pool),
		properties.NewBillingDirectory(propertiesService),
		fineRules,
		jobsClient,
		reportsService,
		logger,
	)

	reportClient := report.NewClient(cfg.GotenbergURL)

	cycleJob := jobs.NewBillingCycleJob(billingService, logger, metrics, cfg.BillDueDay)
	receiptJob := jobs.NewReceiptRenderJob(billingService, reportClient, redisClient, logger, metrics)
	refreshJob := jobs.NewReportsRefreshJob(reportsService, logger, metrics)

	cycleTask, err := jobs.NewBillingCycleTask(jobs.BillingCyclePayload{})
	if err != nil {
		logger.Error("build cycle task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskBillingCycle, Handler: cycleJob.HandleTask},
			{Type: jobs.TaskReceiptRender, Handler: receiptJob.HandleTask},
			{Type: jobs.TaskReportsRefresh, Handler: refreshJob.HandleTask},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.BillCycleCron, Task: cycleTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 2 1 * *", Task: jobs.NewReportsRefreshTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker")
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
