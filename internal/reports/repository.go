package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/griha-erp/griha-erp/internal/shared"
)

// OutstandingBill is the raw row the defaulters report is built from.
type OutstandingBill struct {
	PropertyNumber string
	BlockName      string
	Balance        float64
	DueDate        *time.Time
}

type Repository interface {
	CollectionSummary(ctx context.Context, period shared.Period) (CollectionReport, error)
	ListOutstanding(ctx context.Context) ([]OutstandingBill, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) CollectionSummary(ctx context.Context, period shared.Period) (CollectionReport, error) {
	report := CollectionReport{Period: period}

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_current_bills), 0),
		       COUNT(*) FILTER (WHERE status = 'paid'),
		       COUNT(*) FILTER (WHERE status <> 'paid'),
		       COALESCE(SUM(balance) FILTER (WHERE status <> 'paid'), 0)
		FROM bill_records
		WHERE month = $1 AND year = $2`,
		period.Month, period.Year).
		Scan(&report.BillCount, &report.TotalBilled, &report.PaidBills, &report.UnpaidBills, &report.Outstanding)
	if err != nil {
		return CollectionReport{}, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(p.received_amount), 0), COALESCE(SUM(p.discount), 0)
		FROM payment_transactions p
		JOIN bill_records b ON b.id = p.bill_id
		WHERE b.month = $1 AND b.year = $2`,
		period.Month, period.Year).
		Scan(&report.Collected, &report.Discounted)
	if err != nil {
		return CollectionReport{}, err
	}
	return report, nil
}

func (r *repository) ListOutstanding(ctx context.Context) ([]OutstandingBill, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT property_number, COALESCE(block_name, ''), balance, due_date
		FROM bill_records
		WHERE status <> 'paid'
		ORDER BY property_number, year, month`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutstandingBill
	for rows.Next() {
		var b OutstandingBill
		if err := rows.Scan(&b.PropertyNumber, &b.BlockName, &b.Balance, &b.DueDate); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
