package billing

import (
	"fmt"
	"time"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
	"github.com/griha-erp/griha-erp/internal/shared"
)

// BillStatus enumerates bill lifecycle states.
type BillStatus string

const (
	StatusPending   BillStatus = "pending"
	StatusPartially BillStatus = "partially"
	StatusPaid      BillStatus = "paid"
)

// PaymentMethod enumerates how a payment was received.
type PaymentMethod string

const (
	MethodCash PaymentMethod = "Cash"
	MethodBank PaymentMethod = "Bank"
)

// ChargeMap holds the dynamic charge fields of one bill, keyed by the
// field name defined in the bill form configuration.
type ChargeMap map[string]float64

// BillRecord is one billing cycle for one property.
type BillRecord struct {
	ID                int64      `json:"id"`
	PropertyNumber    string     `json:"property_number"`
	BlockID           int64      `json:"block_id"`
	BlockName         string     `json:"block_name"`
	Month             int        `json:"month"`
	Year              int        `json:"year"`
	IssueDate         time.Time  `json:"issue_date"`
	DueDate           time.Time  `json:"due_date"`
	Charges           ChargeMap  `json:"charges"`
	MonthlyRent       float64    `json:"monthly_rent"`
	PriorBalance      float64    `json:"prior_balance"`
	TotalCurrentBills float64    `json:"total_current_bills"`
	Balance           float64    `json:"balance"`
	Status            BillStatus `json:"bill_status"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IsRental reports whether the bill belongs to a rented unit.
func (b BillRecord) IsRental() bool {
	return b.MonthlyRent > 0
}

// Period returns the billing period of the record.
func (b BillRecord) Period() shared.Period {
	return shared.Period{Month: b.Month, Year: b.Year}
}

// PaymentTransaction is a reconciliation event against a BillRecord.
type PaymentTransaction struct {
	ID              int64         `json:"id"`
	BillID          int64         `json:"bill_id"`
	Number          string        `json:"number"`
	ReceivedAmount  float64       `json:"received_amount"`
	Discount        float64       `json:"discount"`
	Method          PaymentMethod `json:"payment_by"`
	ReferenceNo     string        `json:"reference_no,omitempty"`
	Description     string        `json:"description,omitempty"`
	TotalBills      float64       `json:"total_bills"`
	FineAmount      float64       `json:"fine_amount"`
	AfterPayBalance float64       `json:"after_pay_balance"`
	Status          BillStatus    `json:"status"`
	IsFirstPayment  bool          `json:"is_first_payment"`
	PaidAt          time.Time     `json:"paid_at"`
	CreatedAt       time.Time     `json:"created_at"`
}

// FineRule is the single global late-payment percentage.
type FineRule struct {
	Percentage float64   `json:"fine"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidStatusTransition checks the monotonic bill lifecycle: a bill never
// un-pays without an explicit new charge cycle.
func ValidStatusTransition(from, to BillStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusPartially || to == StatusPaid
	case StatusPartially:
		return to == StatusPartially || to == StatusPaid
	default:
		return false
	}
}

// BillInput carries the fields required to create a bill record.
type BillInput struct {
	PropertyNumber    string
	BlockID           int64
	Month             int
	Year              int
	IssueDate         time.Time
	DueDate           time.Time
	Charges           ChargeMap
	MonthlyRent       float64
	PriorBalance      float64
	TotalCurrentBills float64
}

// PaymentInput carries the fields persisted when a payment is recorded.
type PaymentInput struct {
	BillID          int64
	Number          string
	ReceivedAmount  float64
	Discount        float64
	Method          PaymentMethod
	ReferenceNo     string
	Description     string
	TotalBills      float64
	FineAmount      float64
	AfterPayBalance float64
	Status          BillStatus
	IsFirstPayment  bool
	PaidAt          time.Time
}

// ListBillsRequest filters bill listings.
type ListBillsRequest struct {
	PropertyNumber string
	BlockID        int64
	Month          int
	Year           int
	Status         BillStatus
	Page           int
	PerPage        int
}

// Validation sentinels, wrapping the platform errors so handlers map them
// to HTTP responses with errors.Is.
var (
	ErrBillNotFound      = fmt.Errorf("%w: bill", httpx.ErrNotFound)
	ErrPaymentNotFound   = fmt.Errorf("%w: payment", httpx.ErrNotFound)
	ErrDuplicateCycle    = fmt.Errorf("%w: bill already exists for property and period", httpx.ErrDuplicate)
	ErrReceivedRequired  = fmt.Errorf("%w: received amount must be greater than zero", httpx.ErrValidation)
	ErrReferenceRequired = fmt.Errorf("%w: reference number required for bank payments", httpx.ErrValidation)
	ErrAmountExceedsDue  = fmt.Errorf("%w: received amount plus discount exceeds total due", httpx.ErrValidation)
	ErrPastMonthRental   = fmt.Errorf("%w: rental bill for a past month", httpx.ErrPaymentDisabled)
	ErrStatusReversal    = fmt.Errorf("%w", httpx.ErrStatusReversal)
)
