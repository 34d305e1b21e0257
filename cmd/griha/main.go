package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/griha-erp/griha-erp/internal/app"
	"github.com/griha-erp/griha-erp/internal/billing"
	"github.com/griha-erp/griha-erp/internal/complaints"
	"github.com/griha-erp/griha-erp/internal/forms"
	"github.com/griha-erp/griha-erp/internal/observability"
	"github.com/griha-erp/griha-erp/internal/platform/cache"
	"github.com/griha-erp/griha-erp/internal/platform/db"
	"github.com/griha-erp/griha-erp/internal/registry/blocks"
	"github.com/griha-erp/griha-erp/internal/registry/properties"
	"github.com/griha-erp/griha-erp/internal/reports"
	reporthttp "github.com/griha-erp/griha-erp/internal/reports/http"
	"github.com/griha-erp/griha-erp/internal/shared"
	"github.com/griha-erp/griha-erp/jobs"
	"github.com/griha-erp/griha-erp/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionTTL)
	metrics := observability.NewMetrics()

	blocksRepo := blocks.NewRepository(dbpool)
	blocksService := blocks.NewService(blocksRepo)
	blocksHandler := blocks.NewHandler(logger, blocksService)

	propertiesRepo := properties.NewRepository(dbpool)
	propertiesService := properties.NewService(propertiesRepo, blocksService)
	propertiesHandler := properties.NewHandler(logger, propertiesService)

	formsRepo := forms.NewRepository(dbpool)
	formsService := forms.NewService(formsRepo)
	formsHandler := forms.NewHandler(logger, formsService)

	reportsRepo := reports.NewRepository(dbpool)
	reportsCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsService := reports.NewService(reportsRepo, reportsCache)
	if err := reportsCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("report cache invalidation listener", slog.Any("error", err))
	}
	reportsHandler := reporthttp.NewHandler(logger, reportsService)

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

	fineRules := billing.NewFineRuleStore(dbpool, redisClient, cfg.FineCacheTTL, logger)
	billingRepo := billing.NewRepository(dbpool)
	billingService := billing.NewService(
		billingRepo,
		properties.NewBillingDirectory(propertiesService),
		fineRules,
		jobsClient,
		reportsService,
		logger,
	)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, logger)
	billingHandler := billing.NewHandler(logger, billingService, fineRules, reportClient, metrics)

	complaintsRepo := complaints.NewRepository(dbpool)
	complaintsService := complaints.NewService(complaintsRepo, propertiesService, logger)
	complaintsHandler := complaints.NewHandler(logger, complaintsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		BlocksHandler:     blocksHandler,
		PropertiesHandler: propertiesHandler,
		FormsHandler:      formsHandler,
		BillingHandler:    billingHandler,
		ComplaintsHandler: complaintsHandler,
		ReportsHandler:    reportsHandler,
		ReportHandler:     reportHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
