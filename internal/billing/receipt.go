package billing

import (
	"context"
	"fmt"

	"github.com/griha-erp/griha-erp/report"
)

// Receipt assembles the printable receipt for one payment.
func (s *Service) Receipt(ctx context.Context, paymentID int64) (report.Receipt, error) {
	payment, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return report.Receipt{}, err
	}
	bill, err := s.repo.GetBill(ctx, payment.BillID)
	if err != nil {
		return report.Receipt{}, fmt.Errorf("billing: receipt %d: %w", paymentID, err)
	}

	return report.Receipt{
		Number:         payment.Number,
		PropertyNumber: bill.PropertyNumber,
		BlockName:      bill.BlockName,
		Period:         bill.Period().String(),
		PaidAt:         payment.PaidAt,
		Charges:        report.ChargesFromMap(bill.Charges),
		MonthlyRent:    bill.MonthlyRent,
		PriorBalance:   bill.PriorBalance,
		TotalBills:     payment.TotalBills,
		FineAmount:     payment.FineAmount,
		Received:       payment.ReceivedAmount,
		Discount:       payment.Discount,
		BalanceDue:     payment.AfterPayBalance,
		Method:         string(payment.Method),
		ReferenceNo:    payment.ReferenceNo,
		FirstPayment:   payment.IsFirstPayment,
	}, nil
}
