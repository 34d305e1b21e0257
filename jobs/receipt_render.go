package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	jobmetrics "github.com/griha-erp/griha-erp/internal/jobs"
	"github.com/griha-erp/griha-erp/report"
)

const receiptCacheTTL = 7 * 24 * time.Hour

// ReceiptSource assembles the receipt data for a payment.
type ReceiptSource interface {
	Receipt(ctx context.Context, paymentID int64) (report.Receipt, error)
}

// ReceiptRenderer converts a receipt into PDF bytes.
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, rc report.Receipt) ([]byte, error)
}

// ReceiptRenderJob pre-renders payment receipts so the download endpoint
// serves them without waiting on Gotenberg.
type ReceiptRenderJob struct {
	Source   ReceiptSource
	Renderer ReceiptRenderer
	Cache    *redis.Client
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewReceiptRenderJob constructs the job handler.
func NewReceiptRenderJob(source ReceiptSource, renderer ReceiptRenderer, cache *redis.Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReceiptRenderJob {
	return &ReceiptRenderJob{
		Source:   source,
		Renderer: renderer,
		Cache:    cache,
		Logger:   logger,
		Metrics:  metrics,
	}
}

// HandleTask processes TaskReceiptRender tasks.
func (j *ReceiptRenderJob) HandleTask(ctx context.Context, t *asynq.Task) error {
	tracker := j.Metrics.Track("receipt_render")

	var payload ReceiptRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.Logger.Error("receipt payload invalid", slog.Any("error", err))
		return tracker.End(asynq.SkipRetry)
	}

	rc, err := j.Source.Receipt(ctx, payload.PaymentID)
	if err != nil {
		j.Logger.Error("assemble receipt failed", slog.Any("error", err), slog.Int64("payment_id", payload.PaymentID))
		return tracker.End(err)
	}
	pdf, err := j.Renderer.RenderReceipt(ctx, rc)
	if err != nil {
		j.Logger.Error("render receipt failed", slog.Any("error", err), slog.Int64("payment_id", payload.PaymentID))
		return tracker.End(err)
	}

	if j.Cache != nil {
		key := ReceiptCacheKey(payload.PaymentID)
		if err := j.Cache.Set(ctx, key, pdf, receiptCacheTTL).Err(); err != nil {
			j.Logger.Warn("cache receipt failed", slog.Any("error", err), slog.String("key", key))
		}
	}
	j.Logger.Info("receipt rendered",
		slog.Int64("payment_id", payload.PaymentID),
		slog.String("receipt", rc.Number),
		slog.Int("bytes", len(pdf)))
	return tracker.End(nil)
}

// ReceiptCacheKey is the Redis key a rendered receipt PDF is stored under.
func ReceiptCacheKey(paymentID int64) string {
	return "receipt:pdf:" + itoa(int(paymentID))
}
