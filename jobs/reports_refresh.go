package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/griha-erp/griha-erp/internal/jobs"
	"github.com/griha-erp/griha-erp/internal/reports"
	"github.com/griha-erp/griha-erp/internal/shared"
)

// ReportService rebuilds the cached reports during off-peak hours.
type ReportService interface {
	Collection(ctx context.Context, period shared.Period) (reports.CollectionReport, error)
	Defaulters(ctx context.Context) (reports.DefaultersReport, error)
}

// ReportsRefreshJob warms the report caches so the first office login of
// the day does not pay the build cost.
type ReportsRefreshJob struct {
	Service ReportService
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportsRefreshJob constructs the job handler.
func NewReportsRefreshJob(service ReportService, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsRefreshJob {
	return &ReportsRefreshJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// HandleTask processes TaskReportsRefresh tasks.
func (j *ReportsRefreshJob) HandleTask(ctx context.Context, _ *asynq.Task) error {
	tracker := j.Metrics.Track("reports_refresh")

	period := shared.PeriodOf(j.clock())
	if _, err := j.Service.Collection(ctx, period); err != nil {
		j.Logger.Error("warm collection report failed", slog.Any("error", err), slog.String("period", period.String()))
		return tracker.End(err)
	}
	if _, err := j.Service.Defaulters(ctx); err != nil {
		j.Logger.Error("warm defaulters report failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.Logger.Info("report caches warmed", slog.String("period", period.String()))
	return tracker.End(nil)
}
