package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
	"github.com/griha-erp/griha-erp/internal/shared"
)

// RepositoryPort defines data access methods for billing.
type RepositoryPort interface {
	CreateBill(ctx context.Context, input BillInput) (*BillRecord, error)
	GetBill(ctx context.Context, id int64) (*BillRecord, error)
	ListBills(ctx context.Context, req ListBillsRequest) ([]BillRecord, int, error)
	LatestUnpaidBill(ctx context.Context, propertyNumber string, rental *bool) (*BillRecord, error)
	RecordPayment(ctx context.Context, billID int64, input PaymentInput) (*PaymentTransaction, error)
	GetPayment(ctx context.Context, id int64) (*PaymentTransaction, error)
	ListPayments(ctx context.Context, billID int64) ([]PaymentTransaction, error)
	ListPaymentsByProperty(ctx context.Context, propertyNumber string) ([]PaymentTransaction, error)
}

// PropertyInfo is the slice of the property registry billing needs.
type PropertyInfo struct {
	Number      string
	BlockID     int64
	MonthlyRent float64
	Rental      bool
	Active      bool
}

// PropertyDirectory resolves properties for bill setup and cycle runs.
type PropertyDirectory interface {
	GetByNumber(ctx context.Context, number string) (PropertyInfo, error)
	ListActive(ctx context.Context) ([]PropertyInfo, error)
}

// ReceiptEnqueuer schedules receipt rendering after a payment.
type ReceiptEnqueuer interface {
	EnqueueReceipt(ctx context.Context, paymentID int64) error
}

// CacheBumper invalidates derived report caches.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// FineRuleSource supplies the global fine percentage, failing open to
// zero when the rule is unavailable.
type FineRuleSource interface {
	PercentageFailOpen(ctx context.Context) float64
}

// Service handles billing business logic.
type Service struct {
	repo       RepositoryPort
	properties PropertyDirectory
	fineRules  FineRuleSource
	receipts   ReceiptEnqueuer
	reports    CacheBumper
	balanceSeq *shared.SeqGuard
	logger     *slog.Logger
	now        func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, properties PropertyDirectory, fineRules FineRuleSource, receipts ReceiptEnqueuer, reports CacheBumper, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		properties: properties,
		fineRules:  fineRules,
		receipts:   receipts,
		reports:    reports,
		balanceSeq: shared.NewSeqGuard(),
		logger:     logger,
		now:        time.Now,
	}
}

// SetupBillInput carries a bill setup request.
type SetupBillInput struct {
	PropertyNumber string
	Month          int
	Year           int
	IssueDate      time.Time
	DueDate        time.Time
	Charges        ChargeMap
}

// SetupBill creates the bill record for one property and period, folding
// in the balance carried from the previous unpaid cycle.
func (s *Service) SetupBill(ctx context.Context, input SetupBillInput) (*BillRecord, error) {
	period := shared.Period{Month: input.Month, Year: input.Year}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	prop, err := s.properties.GetByNumber(ctx, input.PropertyNumber)
	if err != nil {
		return nil, fmt.Errorf("billing: resolve property %s: %w", input.PropertyNumber, err)
	}

	prior := s.carriedBalance(ctx, prop.Number)
	charges := input.Charges
	if charges == nil {
		charges = ChargeMap{}
	}
	total := ComputeTotalCurrentBills(charges, prop.MonthlyRent, prior)

	return s.repo.CreateBill(ctx, BillInput{
		PropertyNumber:    prop.Number,
		BlockID:           prop.BlockID,
		Month:             input.Month,
		Year:              input.Year,
		IssueDate:         input.IssueDate,
		DueDate:           input.DueDate,
		Charges:           charges,
		MonthlyRent:       prop.MonthlyRent,
		PriorBalance:      prior,
		TotalCurrentBills: total,
	})
}

// carriedBalance returns the outstanding balance of the newest unpaid
// bill, or zero when the property has no open cycle.
func (s *Service) carriedBalance(ctx context.Context, propertyNumber string) float64 {
	prev, err := s.repo.LatestUnpaidBill(ctx, propertyNumber, nil)
	if err != nil {
		return 0
	}
	return prev.Balance
}

// GetBill returns one bill.
func (s *Service) GetBill(ctx context.Context, id int64) (*BillRecord, error) {
	return s.repo.GetBill(ctx, id)
}

// ListBills returns bills matching the filter, with pagination metadata.
func (s *Service) ListBills(ctx context.Context, req ListBillsRequest) ([]BillRecord, shared.Pagination, error) {
	bills, total, err := s.repo.ListBills(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return bills, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// ListPayments returns the payment history of a bill.
func (s *Service) ListPayments(ctx context.Context, billID int64) ([]PaymentTransaction, error) {
	return s.repo.ListPayments(ctx, billID)
}

// PaymentHistory returns all payments recorded against a property,
// newest first.
func (s *Service) PaymentHistory(ctx context.Context, propertyNumber string) ([]PaymentTransaction, error) {
	if propertyNumber == "" {
		return nil, fmt.Errorf("%w: property_number required", httpx.ErrValidation)
	}
	return s.repo.ListPaymentsByProperty(ctx, propertyNumber)
}

// BalanceResult is the outcome of a balance lookup.
type BalanceResult struct {
	PropertyNumber string  `json:"property_number"`
	Balance        float64 `json:"balance"`
	IsFirstPayment bool    `json:"is_first_payment"`
	Degraded       bool    `json:"degraded"`
}

// CurrentBalance fetches the outstanding balance for a property. For
// pending bills the live total-with-fine is returned; once a partial
// payment exists the stored after-pay balance is authoritative. When the
// lookup fails the bill total is assumed unpaid rather than failing the
// caller.
func (s *Service) CurrentBalance(ctx context.Context, propertyNumber string, rental bool) (BalanceResult, error) {
	seq := s.balanceSeq.Begin(propertyNumber)

	bill, err := s.repo.LatestUnpaidBill(ctx, propertyNumber, &rental)
	if err != nil {
		return BalanceResult{}, err
	}

	balance, known := s.balanceForBill(ctx, bill)

	if !s.balanceSeq.Commit(propertyNumber, seq) {
		return BalanceResult{}, shared.ErrStaleResponse
	}

	finePct := s.fineRules.PercentageFailOpen(ctx)
	totalDue := TotalWithFine(*bill, finePct, s.now())
	return BalanceResult{
		PropertyNumber: propertyNumber,
		Balance:        balance,
		IsFirstPayment: IsFirstPayment(balance, totalDue, known),
		Degraded:       !known,
	}, nil
}

// balanceForBill resolves the amount still owed on a bill. The degraded
// path assumes nothing has been paid.
func (s *Service) balanceForBill(ctx context.Context, bill *BillRecord) (float64, bool) {
	switch bill.Status {
	case StatusPending:
		finePct := s.fineRules.PercentageFailOpen(ctx)
		return TotalWithFine(*bill, finePct, s.now()), true
	case StatusPartially:
		return bill.Balance, true
	default:
		return bill.TotalCurrentBills, false
	}
}

// PayBillRequest carries one payment submission.
type PayBillRequest struct {
	BillID         int64
	ReceivedAmount float64
	Discount       float64
	Method         PaymentMethod
	ReferenceNo    string
	Description    string
}

// PayBill validates and reconciles a payment, persisting the transaction
// and the new bill state atomically. On success a receipt render is
// enqueued and report caches are invalidated; neither failure aborts the
// payment.
func (s *Service) PayBill(ctx context.Context, req PayBillRequest) (*PaymentTransaction, error) {
	bill, err := s.repo.GetBill(ctx, req.BillID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := PaymentAllowed(*bill, now); err != nil {
		return nil, err
	}

	finePct := s.fineRules.PercentageFailOpen(ctx)
	fine := ComputeFine(*bill, finePct, now)
	totalDue := bill.TotalCurrentBills + fine

	initial, known := s.balanceForBill(ctx, bill)
	if !known {
		initial = totalDue
	}
	first := IsFirstPayment(initial, totalDue, known)

	if err := ValidatePayment(req.ReceivedAmount, req.Discount, initial, req.Method, req.ReferenceNo); err != nil {
		return nil, err
	}

	rec := ReconcilePayment(initial, req.ReceivedAmount, req.Discount)
	if !ValidStatusTransition(bill.Status, rec.Status) {
		return nil, ErrStatusReversal
	}

	payment, err := s.repo.RecordPayment(ctx, bill.ID, PaymentInput{
		BillID:          bill.ID,
		Number:          "RCP-" + uuid.NewString(),
		ReceivedAmount:  req.ReceivedAmount,
		Discount:        req.Discount,
		Method:          req.Method,
		ReferenceNo:     req.ReferenceNo,
		Description:     req.Description,
		TotalBills:      totalDue,
		FineAmount:      fine,
		AfterPayBalance: rec.AfterPayBalance,
		Status:          rec.Status,
		IsFirstPayment:  first,
		PaidAt:          now,
	})
	if err != nil {
		return nil, err
	}

	if s.receipts != nil {
		if err := s.receipts.EnqueueReceipt(ctx, payment.ID); err != nil {
			s.logger.Warn("enqueue receipt", slog.Int64("payment_id", payment.ID), slog.Any("error", err))
		}
	}
	if s.reports != nil {
		if err := s.reports.Bump(ctx); err != nil {
			s.logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	return payment, nil
}

// RunBillingCycle creates the period's bill for every active property
// that does not have one yet, carrying forward unpaid balances. Charges
// are copied from the property's newest bill so recurring fees roll over;
// the admin adjusts them afterwards through bill setup.
func (s *Service) RunBillingCycle(ctx context.Context, period shared.Period, issueDate, dueDate time.Time) (int, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}
	properties, err := s.properties.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("billing: list properties: %w", err)
	}

	created := 0
	for _, prop := range properties {
		charges := ChargeMap{}
		prior := 0.0
		if prev, err := s.repo.LatestUnpaidBill(ctx, prop.Number, nil); err == nil {
			prior = prev.Balance
			for name, amount := range prev.Charges {
				charges[name] = amount
			}
		}
		total := ComputeTotalCurrentBills(charges, prop.MonthlyRent, prior)
		_, err := s.repo.CreateBill(ctx, BillInput{
			PropertyNumber:    prop.Number,
			BlockID:           prop.BlockID,
			Month:             period.Month,
			Year:              period.Year,
			IssueDate:         issueDate,
			DueDate:           dueDate,
			Charges:           charges,
			MonthlyRent:       prop.MonthlyRent,
			PriorBalance:      prior,
			TotalCurrentBills: total,
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrDuplicateCycle):
			continue
		default:
			s.logger.Error("billing cycle create", slog.String("property", prop.Number), slog.Any("error", err))
		}
	}
	return created, nil
}
