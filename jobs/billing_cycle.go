package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/griha-erp/griha-erp/internal/jobs"
	"github.com/griha-erp/griha-erp/internal/shared"
)

// BillingService describes the behaviour required to generate a billing cycle.
type BillingService interface {
	RunBillingCycle(ctx context.Context, period shared.Period, issueDate, dueDate time.Time) (int, error)
}

// BillingCycleJob generates the monthly bills for all active properties.
type BillingCycleJob struct {
	Service BillingService
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	DueDay  int
	clock   func() time.Time
}

// NewBillingCycleJob constructs the job handler. Bills fall due on
// dueDay of the billed month; zero defaults to the 10th.
func NewBillingCycleJob(service BillingService, logger *slog.Logger, metrics *jobmetrics.Metrics, dueDay int) *BillingCycleJob {
	if dueDay <= 0 || dueDay > 28 {
		dueDay = 10
	}
	return &BillingCycleJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		DueDay:  dueDay,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// HandleTask processes TaskBillingCycle tasks.
func (j *BillingCycleJob) HandleTask(ctx context.Context, t *asynq.Task) error {
	tracker := j.Metrics.Track("billing_cycle")

	var payload BillingCyclePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			j.Logger.Error("billing cycle payload invalid", slog.Any("error", err))
			return tracker.End(asynq.SkipRetry)
		}
	}

	now := j.clock()
	period := shared.Period{Month: payload.Month, Year: payload.Year}
	if payload.Month == 0 && payload.Year == 0 {
		period = shared.PeriodOf(now)
	}
	if err := period.Validate(); err != nil {
		j.Logger.Error("billing cycle period invalid", slog.Any("error", err), slog.String("period", period.String()))
		return tracker.End(asynq.SkipRetry)
	}

	dueDate := time.Date(period.Year, time.Month(period.Month), j.DueDay, 0, 0, 0, 0, time.UTC)
	created, err := j.Service.RunBillingCycle(ctx, period, now, dueDate)
	if err != nil {
		j.Logger.Error("billing cycle failed", slog.Any("error", err), slog.String("period", period.String()))
		return tracker.End(err)
	}
	j.Logger.Info("billing cycle completed",
		slog.String("period", period.String()),
		slog.Int("bills_created", created))
	return tracker.End(nil)
}
