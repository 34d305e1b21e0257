package billing

import (
	"math"
	"time"

	"github.com/griha-erp/griha-erp/internal/shared"
)

// ComputeTotalCurrentBills sums every dynamic charge plus monthly rent
// plus the balance carried from the previous cycle. No rounding is
// applied; callers format for display.
func ComputeTotalCurrentBills(charges ChargeMap, monthlyRent, priorBalance float64) float64 {
	total := monthlyRent + priorBalance
	for _, amount := range charges {
		total += amount
	}
	return total
}

// ComputeFine returns the late-payment fine for a bill. A fine applies
// only when the bill is still pending, a due date is set, and now is
// strictly past it. The result is rounded to two decimals.
func ComputeFine(bill BillRecord, finePercentage float64, now time.Time) float64 {
	if bill.Status != StatusPending {
		return 0
	}
	if bill.DueDate.IsZero() || !now.After(bill.DueDate) {
		return 0
	}
	return round2(bill.TotalCurrentBills * finePercentage / 100)
}

// TotalWithFine returns the amount due including any late fine.
func TotalWithFine(bill BillRecord, finePercentage float64, now time.Time) float64 {
	return bill.TotalCurrentBills + ComputeFine(bill, finePercentage, now)
}

// Reconciliation is the outcome of applying a payment to a balance.
type Reconciliation struct {
	AfterPayBalance float64
	Status          BillStatus
}

// ReconcilePayment applies a received amount and discount to the
// outstanding balance and classifies the result.
func ReconcilePayment(initialBalance, receivedAmount, discount float64) Reconciliation {
	balance := initialBalance - receivedAmount - discount
	status := StatusPartially
	if balance <= 0 {
		status = StatusPaid
	}
	return Reconciliation{AfterPayBalance: balance, Status: status}
}

// ValidatePayment enforces the client-side rules that must hold before a
// payment reaches the backend. totalDue is the bill total including fine.
func ValidatePayment(receivedAmount, discount, totalDue float64, method PaymentMethod, referenceNo string) error {
	if receivedAmount <= 0 {
		return ErrReceivedRequired
	}
	if method == MethodBank && referenceNo == "" {
		return ErrReferenceRequired
	}
	if receivedAmount+discount > totalDue {
		return ErrAmountExceedsDue
	}
	return nil
}

// PaymentAllowed rejects payments against rental bills whose period lies
// strictly before the current month. Backdated rent collection is not
// permitted.
func PaymentAllowed(bill BillRecord, now time.Time) error {
	if bill.IsRental() && bill.Period().Before(shared.PeriodOf(now)) {
		return ErrPastMonthRental
	}
	return nil
}

// IsFirstPayment reports whether nothing has been paid against the bill
// yet: the fetched balance equals the full total with fine, or the
// balance could not be fetched at all. Informational only.
func IsFirstPayment(balance, totalWithFine float64, balanceKnown bool) bool {
	if !balanceKnown {
		return true
	}
	return balance == totalWithFine
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
