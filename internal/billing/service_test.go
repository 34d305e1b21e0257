package billing

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
	"github.com/griha-erp/griha-erp/internal/shared"
)

type memoryBillRepo struct {
	bills      map[int64]*BillRecord
	payments   map[int64][]PaymentTransaction
	nextBillID int64
	nextPayID  int64
}

func newMemoryBillRepo() *memoryBillRepo {
	return &memoryBillRepo{
		bills:    make(map[int64]*BillRecord),
		payments: make(map[int64][]PaymentTransaction),
	}
}

func (r *memoryBillRepo) CreateBill(ctx context.Context, input BillInput) (*BillRecord, error) {
	for _, b := range r.bills {
		if b.PropertyNumber == input.PropertyNumber && b.Month == input.Month && b.Year == input.Year {
			return nil, ErrDuplicateCycle
		}
	}
	r.nextBillID++
	bill := &BillRecord{
		ID:                r.nextBillID,
		PropertyNumber:    input.PropertyNumber,
		BlockID:           input.BlockID,
		Month:             input.Month,
		Year:              input.Year,
		IssueDate:         input.IssueDate,
		DueDate:           input.DueDate,
		Charges:           input.Charges,
		MonthlyRent:       input.MonthlyRent,
		PriorBalance:      input.PriorBalance,
		TotalCurrentBills: input.TotalCurrentBills,
		Balance:           input.TotalCurrentBills,
		Status:            StatusPending,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	r.bills[bill.ID] = bill
	return bill, nil
}

func (r *memoryBillRepo) GetBill(ctx context.Context, id int64) (*BillRecord, error) {
	bill, ok := r.bills[id]
	if !ok {
		return nil, ErrBillNotFound
	}
	return bill, nil
}

func (r *memoryBillRepo) ListBills(ctx context.Context, req ListBillsRequest) ([]BillRecord, int, error) {
	var out []BillRecord
	for _, b := range r.bills {
		if req.PropertyNumber != "" && b.PropertyNumber != req.PropertyNumber {
			continue
		}
		if req.Status != "" && b.Status != req.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (r *memoryBillRepo) LatestUnpaidBill(ctx context.Context, propertyNumber string, rental *bool) (*BillRecord, error) {
	var latest *BillRecord
	for _, b := range r.bills {
		if b.PropertyNumber != propertyNumber || b.Status == StatusPaid {
			continue
		}
		if rental != nil && *rental != b.IsRental() {
			continue
		}
		if latest == nil || latest.Period().Before(b.Period()) {
			latest = b
		}
	}
	if latest == nil {
		return nil, ErrBillNotFound
	}
	return latest, nil
}

func (r *memoryBillRepo) RecordPayment(ctx context.Context, billID int64, input PaymentInput) (*PaymentTransaction, error) {
	bill, ok := r.bills[billID]
	if !ok {
		return nil, ErrBillNotFound
	}
	if !ValidStatusTransition(bill.Status, input.Status) {
		return nil, ErrStatusReversal
	}
	r.nextPayID++
	payment := PaymentTransaction{
		ID:              r.nextPayID,
		BillID:          billID,
		Number:          input.Number,
		ReceivedAmount:  input.ReceivedAmount,
		Discount:        input.Discount,
		Method:          input.Method,
		ReferenceNo:     input.ReferenceNo,
		Description:     input.Description,
		TotalBills:      input.TotalBills,
		FineAmount:      input.FineAmount,
		AfterPayBalance: input.AfterPayBalance,
		Status:          input.Status,
		IsFirstPayment:  input.IsFirstPayment,
		PaidAt:          input.PaidAt,
		CreatedAt:       time.Now(),
	}
	r.payments[billID] = append(r.payments[billID], payment)
	bill.Status = input.Status
	bill.Balance = input.AfterPayBalance
	return &payment, nil
}

func (r *memoryBillRepo) GetPayment(ctx context.Context, id int64) (*PaymentTransaction, error) {
	for _, list := range r.payments {
		for _, p := range list {
			if p.ID == id {
				payment := p
				return &payment, nil
			}
		}
	}
	return nil, ErrPaymentNotFound
}

func (r *memoryBillRepo) ListPayments(ctx context.Context, billID int64) ([]PaymentTransaction, error) {
	return r.payments[billID], nil
}

func (r *memoryBillRepo) ListPaymentsByProperty(ctx context.Context, propertyNumber string) ([]PaymentTransaction, error) {
	var out []PaymentTransaction
	for billID, list := range r.payments {
		bill, ok := r.bills[billID]
		if !ok || bill.PropertyNumber != propertyNumber {
			continue
		}
		out = append(out, list...)
	}
	return out, nil
}

type staticProperties map[string]PropertyInfo

func (p staticProperties) GetByNumber(ctx context.Context, number string) (PropertyInfo, error) {
	info, ok := p[number]
	if !ok {
		return PropertyInfo{}, errors.New("property not found")
	}
	return info, nil
}

func (p staticProperties) ListActive(ctx context.Context) ([]PropertyInfo, error) {
	var out []PropertyInfo
	for _, info := range p {
		if info.Active {
			out = append(out, info)
		}
	}
	return out, nil
}

type staticFineRule float64

func (f staticFineRule) PercentageFailOpen(ctx context.Context) float64 {
	return float64(f)
}

type recordingEnqueuer struct {
	paymentIDs []int64
	err        error
}

func (e *recordingEnqueuer) EnqueueReceipt(ctx context.Context, paymentID int64) error {
	if e.err != nil {
		return e.err
	}
	e.paymentIDs = append(e.paymentIDs, paymentID)
	return nil
}

type countingBumper struct{ bumps int }

func (b *countingBumper) Bump(ctx context.Context) error {
	b.bumps++
	return nil
}

func newTestService(repo *memoryBillRepo, props staticProperties, fine staticFineRule) (*Service, *recordingEnqueuer, *countingBumper) {
	enq := &recordingEnqueuer{}
	bump := &countingBumper{}
	svc := NewService(repo, props, fine, enq, bump, slog.Default())
	return svc, enq, bump
}

func fixedNow() time.Time {
	return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
}

func TestSetupBillCarriesForwardUnpaidBalance(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBillRepo()
	props := staticProperties{
		"A-101": {Number: "A-101", BlockID: 1, MonthlyRent: 0, Active: true},
	}
	svc, _, _ := newTestService(repo, props, 10)
	svc.now = fixedNow

	first, err := svc.SetupBill(ctx, SetupBillInput{
		PropertyNumber: "A-101",
		Month:          8, Year: 2026,
		IssueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Charges:   ChargeMap{"water_charges": 300, "maintenance": 700},
	})
	require.NoError(t, err)
	require.Equal(t, 1000.0, first.TotalCurrentBills)
	require.Equal(t, StatusPending, first.Status)

	second, err := svc.SetupBill(ctx, SetupBillInput{
		PropertyNumber: "A-101",
		Month:          9, Year: 2026,
		IssueDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Charges:   ChargeMap{"water_charges": 300},
	})
	require.NoError(t, err)
	require.Equal(t, 1000.0, second.PriorBalance)
	require.Equal(t, 1300.0, second.TotalCurrentBills)
}

func TestSetupBillRejectsDuplicatePeriod(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBillRepo()
	props := staticProperties{"A-101": {Number: "A-101", BlockID: 1, Active: true}}
	svc, _, _ := newTestService(repo, props, 0)

	input := SetupBillInput{PropertyNumber: "A-101", Month: 9, Year: 2026}
	_, err := svc.SetupBill(ctx, input)
	require.NoError(t, err)

	_, err = svc.SetupBill(ctx, input)
	require.ErrorIs(t, err, ErrDuplicateCycle)
}

func TestSetupBillRejectsInvalidPeriod(t *testing.T) {
	repo := newMemoryBillRepo()
	svc, _, _ := newTestService(repo, staticProperties{}, 0)

	_, err := svc.SetupBill(context.Background(), SetupBillInput{PropertyNumber: "A-101", Month: 13, Year: 2026})
	require.ErrorIs(t, err, shared.ErrInvalidPeriod)
}

func TestPayBillFullSettlement(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBillRepo()
	props := staticProperties{"A-101": {Number: "A-101", BlockID: 1, Active: true}}
	svc, enq, bump := newTestService(repo, props, 10)
	svc.now = fixedNow

	bill, err := svc.SetupBill(ctx, SetupBillInput{
		PropertyNumber: "A-101", Month: 9, Year: 2026,
		DueDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Charges: ChargeMap{"maintenance": 1000},
	})
	require.NoError(t, err)

	payment, err := svc.PayBill(ctx, PayBillRequest{
		BillID:         bill.ID,
		ReceivedAmount: 1000,
		Method:         MethodCash,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, payment.Status)
	require.Equal(t, 0.0, payment.AfterPayBalance)
	require.True(t, payment.IsFirstPayment)
	require.Equal(t, 0.0, payment.FineAmount)
	require.Equal(t, []int64{payment.ID}, enq.paymentIDs)
	require.Equal(t, 1, bump.bumps)

	stored, err := svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, stored.Status)
}

func TestPayBillPartialThenSettle(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBillRepo()
	props := staticProperties{"A-101": {Number: "A-101", BlockID: 1, Active: true}}
	svc, _, _ := newTestService(repo, props, 0)
	svc.now = fixedNow

	bill, err := svc.SetupBill(ctx, SetupBillInput{
		PropertyNumber: "A-101", Month: 9, Year: 2026,
		Charges: ChargeMap{"maintenance": 1000},
	})
	require.NoError(t, err)

	partial, err := svc.PayBill(ctx, PayBillRequest{BillID: bill.ID, ReceivedAmount: 400, Method: MethodCash})
	require.NoError(t, err)
	require.Equal(t, StatusPartially, partial.Status)
	require.Equal(t, 600.0, partial.AfterPayBalance)
	require.True(t, partial.IsFirstPayment)

	rest, err := svc.PayBill(ctx, PayBillRequest{BillID: bill.ID, ReceivedAmount: 600, Method: MethodCash})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, rest.Status)
	require.False(t, rest.IsFirstPayment)

	payments, err := svc.ListPayments(ctx, bill.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)

	history, err := svc.PaymentHistory(ctx, "A-101")
	require.NoError(t, err)
	require.Len(t, history, 2)

	_, err = svc.PaymentHistory(ctx, "")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestPayBillAppliesFineToOverdueBill(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBillRepo()
	props := staticProperties{"A-101": {Number: "A-101", BlockID: 1, Active: true}}
	svc, _, _ := newTestService(repo, props, 10)
	svc.now = fixedNow

	bill, err := svc.SetupBill(ctx, SetupBillInput{
		PropertyNumber: "A-101", Month: 8, Year: 2026,
		DueDate: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Charges: ChargeMap{"maintenance": 1000},
	})
	require.NoError(t, err)

	payment, err := svc.PayBill(ctx, PayBillRequest{BillID: bill.ID, ReceivedAmount: 1100, Method: MethodCash})
	require.NoError(t, err)
	require.Equal(t, 100.0, payment.FineAmount)
	require.Equal(t, 1100.0, payment.TotalBills)
	require.Equal(t, StatusPaid, payment.Status)
}

func TestPayBillRejectsOverpayment(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBillRepo()
	props := staticProperties{"A-101": {Number: "A-101", BlockID: 1, Active: true}}
	svc, enq, _ := newTestService(repo, props, 0)
	svc.now = fixedNow

	bill, err := svc.SetupBill(ctx, SetupBillInput{
		PropertyNumber: "A-101", Month: 9, Year: 2026,
		Charges: ChargeMap{"maintenance": 1000},
	})
	require.NoError(t, err)

	_, err = svc.PayBill(ctx, PayBillRequest{BillID: bill.ID, ReceivedAmount: 900, Discount: 200, Method: MethodCash})
	require.ErrorIs(t, err, ErrAmountExceedsDue)
	require.Empty(t, enq.paymentIDs)
}

func TestPayBillRejectsBankWithoutReference(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBillRepo()
	props := staticProperties{"A-101": {Number: "A-101", BlockID: 1, Active: true}}
	svc, _, _ := newTestService(repo, props, 0)
	svc.now = fixedNow

	bill, err := svc.SetupBill(ctx, SetupBillInput{
		PropertyNumber: "A-101", Month: 9, Year: 2026,
		Charges: ChargeMap{"maintenance": 500},
	})
	require.NoError(t, err)

	_, err = svc.PayBill(ctx, PayBillRequest{BillID: bill.ID, ReceivedAmount: 500, Method: MethodBank})
	require.ErrorIs(t, err, ErrReferenceRequired)
}

func TestPayBillBlocksPastMonthRental(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBillRepo()
	props := staticProperties{"R-7": {Number: "R-7", BlockID: 2, MonthlyRent: 8000, Rental: true, Active: true}}
	svc, enq, _ := newTestService(repo, props, 0)
	svc.now = fixedNow

	bill, err := svc.SetupBill(ctx, SetupBillInput{
		PropertyNumber: "R-7", Month: 8, Year: 2026,
		Charges: ChargeMap{"water_charges": 200},
	})
	require.NoError(t, err)

	_, err = svc.PayBill(ctx, PayBillRequest{BillID: bill.ID, ReceivedAmount: 100, Method: MethodCash})
	require.ErrorIs(t, err, ErrPastMonthRental)
	require.Empty(t, enq.paymentIDs)
}

func TestPayBillRejectsAlreadyPaidBill(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBillRepo()
	props := staticProperties{"A-101": {Number: "A-101", BlockID: 1, Active: true}}
	svc, _, _ := newTestService(repo, props, 0)
	svc.now = fixedNow

	bill, err := svc.SetupBill(ctx, SetupBillInput{
		PropertyNumber: "A-101", Month: 9, Year: 2026,
		Charges: ChargeMap{"maintenance": 100},
	})
	require.NoError(t, err)

	_, err = svc.PayBill(ctx, PayBillRequest{BillID: bill.ID, ReceivedAmount: 100, Method: MethodCash})
	require.NoError(t, err)

	_, err = svc.PayBill(ctx, PayBillRequest{BillID: bill.ID, ReceivedAmount: 50, Method: MethodCash})
	require.ErrorIs(t, err, ErrStatusReversal)
}

func TestCurrentBalancePendingBillIncludesFine(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBillRepo()
	props := staticProperties{"A-101": {Number: "A-101", BlockID: 1, Active: true}}
	svc, _, _ := newTestService(repo, props, 10)
	svc.now = fixedNow

	_, err := svc.SetupBill(ctx, SetupBillInput{
		PropertyNumber: "A-101", Month: 8, Year: 2026,
		DueDate: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Charges: ChargeMap{"maintenance": 1000},
	})
	require.NoError(t, err)

	result, err := svc.CurrentBalance(ctx, "A-101", false)
	require.NoError(t, err)
	require.Equal(t, 1100.0, result.Balance)
	require.True(t, result.IsFirstPayment)
	require.False(t, result.Degraded)
}

func TestCurrentBalanceAfterPartialPayment(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBillRepo()
	props := staticProperties{"A-101": {Number: "A-101", BlockID: 1, Active: true}}
	svc, _, _ := newTestService(repo, props, 0)
	svc.now = fixedNow

	bill, err := svc.SetupBill(ctx, SetupBillInput{
		PropertyNumber: "A-101", Month: 9, Year: 2026,
		Charges: ChargeMap{"maintenance": 1000},
	})
	require.NoError(t, err)

	_, err = svc.PayBill(ctx, PayBillRequest{BillID: bill.ID, ReceivedAmount: 400, Method: MethodCash})
	require.NoError(t, err)

	result, err := svc.CurrentBalance(ctx, "A-101", false)
	require.NoError(t, err)
	require.Equal(t, 600.0, result.Balance)
	require.False(t, result.IsFirstPayment)
}

func TestRunBillingCycleSkipsExistingAndCarriesBalance(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBillRepo()
	props := staticProperties{
		"A-101": {Number: "A-101", BlockID: 1, Active: true},
		"A-102": {Number: "A-102", BlockID: 1, Active: true},
		"A-103": {Number: "A-103", BlockID: 1, Active: false},
	}
	svc, _, _ := newTestService(repo, props, 0)
	svc.now = fixedNow

	// A-101 already has an unpaid August bill and its September bill
	// was set up manually.
	_, err := svc.SetupBill(ctx, SetupBillInput{
		PropertyNumber: "A-102", Month: 8, Year: 2026,
		Charges: ChargeMap{"maintenance": 900},
	})
	require.NoError(t, err)
	_, err = svc.SetupBill(ctx, SetupBillInput{
		PropertyNumber: "A-101", Month: 9, Year: 2026,
		Charges: ChargeMap{"maintenance": 500},
	})
	require.NoError(t, err)

	period := shared.Period{Month: 9, Year: 2026}
	created, err := svc.RunBillingCycle(ctx, period,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	// Only A-102 gets a new bill: A-101 already has one, A-103 is inactive.
	require.Equal(t, 1, created)

	bill, err := repo.LatestUnpaidBill(ctx, "A-102", nil)
	require.NoError(t, err)
	require.Equal(t, 9, bill.Month)
	require.Equal(t, 900.0, bill.PriorBalance)
	require.Equal(t, ChargeMap{"maintenance": 900}, bill.Charges)
	require.Equal(t, 1800.0, bill.TotalCurrentBills)
}
