package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBillingCycle generates the monthly bills for every active property.
	TaskBillingCycle = "billing:cycle"
	// TaskReceiptRender renders the PDF receipt for a recorded payment.
	TaskReceiptRender = "billing:receipt"
	// TaskReportsRefresh rebuilds the cached collection and defaulters reports.
	TaskReportsRefresh = "reports:refresh"
)

// BillingCyclePayload selects the period the cycle runs for. A zero
// month and year means the period the job fires in.
type BillingCyclePayload struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// ReceiptRenderPayload identifies the payment to render.
type ReceiptRenderPayload struct {
	PaymentID int64 `json:"payment_id"`
}

// NewBillingCycleTask constructs the monthly cycle task.
func NewBillingCycleTask(payload BillingCyclePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBillingCycle, data), nil
}

// NewReceiptRenderTask constructs a receipt rendering task.
func NewReceiptRenderTask(payload ReceiptRenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReceiptRender, data), nil
}

// NewReportsRefreshTask constructs a report warmup task.
func NewReportsRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskReportsRefresh, nil)
}
