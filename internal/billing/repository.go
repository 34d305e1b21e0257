package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/griha-erp/griha-erp/internal/platform/db"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the Postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) RepositoryPort {
	return &repository{pool: pool}
}

const billColumns = `id, property_number, block_id, COALESCE(block_name, ''), month, year,
	issue_date, due_date, charges, monthly_rent, prior_balance,
	total_current_bills, balance, status, created_at, updated_at`

func scanBill(row pgx.Row) (*BillRecord, error) {
	var (
		bill       BillRecord
		rawCharges []byte
	)
	err := row.Scan(
		&bill.ID, &bill.PropertyNumber, &bill.BlockID, &bill.BlockName,
		&bill.Month, &bill.Year, &bill.IssueDate, &bill.DueDate,
		&rawCharges, &bill.MonthlyRent, &bill.PriorBalance,
		&bill.TotalCurrentBills, &bill.Balance, &bill.Status,
		&bill.CreatedAt, &bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(rawCharges) > 0 {
		if err := json.Unmarshal(rawCharges, &bill.Charges); err != nil {
			return nil, fmt.Errorf("billing: decode charges: %w", err)
		}
	}
	if bill.Charges == nil {
		bill.Charges = ChargeMap{}
	}
	return &bill, nil
}

func (r *repository) CreateBill(ctx context.Context, input BillInput) (*BillRecord, error) {
	charges, err := json.Marshal(input.Charges)
	if err != nil {
		return nil, fmt.Errorf("billing: encode charges: %w", err)
	}
	now := time.Now()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO bill_records (property_number, block_id, month, year, issue_date, due_date,
			charges, monthly_rent, prior_balance, total_current_bills, balance, status,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10, $11, $12, $12)
		RETURNING `+billColumns,
		input.PropertyNumber, input.BlockID, input.Month, input.Year,
		input.IssueDate, input.DueDate, charges, input.MonthlyRent,
		input.PriorBalance, input.TotalCurrentBills, StatusPending, now,
	)
	bill, err := scanBill(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateCycle
		}
		return nil, fmt.Errorf("billing: create bill: %w", err)
	}
	return bill, nil
}

func (r *repository) GetBill(ctx context.Context, id int64) (*BillRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+billColumns+` FROM bill_records WHERE id = $1`, id)
	bill, err := scanBill(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBillNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("billing: get bill: %w", err)
	}
	return bill, nil
}

func (r *repository) ListBills(ctx context.Context, req ListBillsRequest) ([]BillRecord, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	argc := 0

	add := func(clause string, value any) {
		argc++
		where += " AND " + clause + "$" + strconv.Itoa(argc)
		args = append(args, value)
	}

	if req.PropertyNumber != "" {
		add("property_number = ", req.PropertyNumber)
	}
	if req.BlockID != 0 {
		add("block_id = ", req.BlockID)
	}
	if req.Month != 0 {
		add("month = ", req.Month)
	}
	if req.Year != 0 {
		add("year = ", req.Year)
	}
	if req.Status != "" {
		add("status = ", string(req.Status))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bill_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("billing: count bills: %w", err)
	}

	query := `SELECT ` + billColumns + ` FROM bill_records` + where + ` ORDER BY year DESC, month DESC, property_number`
	if req.PerPage > 0 {
		argc++
		query += ` LIMIT $` + strconv.Itoa(argc)
		args = append(args, req.PerPage)
		argc++
		query += ` OFFSET $` + strconv.Itoa(argc)
		offset := (req.Page - 1) * req.PerPage
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("billing: list bills: %w", err)
	}
	defer rows.Close()

	var bills []BillRecord
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, 0, err
		}
		bills = append(bills, *bill)
	}
	return bills, total, rows.Err()
}

func (r *repository) LatestUnpaidBill(ctx context.Context, propertyNumber string, rental *bool) (*BillRecord, error) {
	query := `SELECT ` + billColumns + ` FROM bill_records
		WHERE property_number = $1 AND status <> 'paid'`
	args := []any{propertyNumber}
	if rental != nil {
		if *rental {
			query += ` AND monthly_rent > 0`
		} else {
			query += ` AND monthly_rent = 0`
		}
	}
	query += ` ORDER BY year DESC, month DESC LIMIT 1`

	bill, err := scanBill(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBillNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("billing: latest unpaid bill: %w", err)
	}
	return bill, nil
}

// RecordPayment persists the payment and the resulting bill state in one
// transaction. The bill row is locked to keep concurrent payments from
// both observing the pre-payment balance.
func (r *repository) RecordPayment(ctx context.Context, billID int64, input PaymentInput) (*PaymentTransaction, error) {
	var payment PaymentTransaction
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var currentStatus BillStatus
		err := tx.QueryRow(ctx, `SELECT status FROM bill_records WHERE id = $1 FOR UPDATE`, billID).Scan(&currentStatus)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBillNotFound
		}
		if err != nil {
			return fmt.Errorf("billing: lock bill: %w", err)
		}
		if !ValidStatusTransition(currentStatus, input.Status) {
			return ErrStatusReversal
		}

		now := time.Now()
		err = tx.QueryRow(ctx, `
			INSERT INTO payment_transactions (bill_id, number, received_amount, discount, method,
				reference_no, description, total_bills, fine_amount, after_pay_balance,
				status, is_first_payment, paid_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id, bill_id, number, received_amount, discount, method,
				COALESCE(reference_no, ''), COALESCE(description, ''), total_bills,
				fine_amount, after_pay_balance, status, is_first_payment, paid_at, created_at`,
			billID, input.Number, input.ReceivedAmount, input.Discount, input.Method,
			input.ReferenceNo, input.Description, input.TotalBills, input.FineAmount,
			input.AfterPayBalance, input.Status, input.IsFirstPayment, input.PaidAt, now,
		).Scan(
			&payment.ID, &payment.BillID, &payment.Number, &payment.ReceivedAmount,
			&payment.Discount, &payment.Method, &payment.ReferenceNo, &payment.Description,
			&payment.TotalBills, &payment.FineAmount, &payment.AfterPayBalance,
			&payment.Status, &payment.IsFirstPayment, &payment.PaidAt, &payment.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("billing: insert payment: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE bill_records SET status = $1, balance = $2, updated_at = $3 WHERE id = $4`,
			input.Status, input.AfterPayBalance, now, billID)
		if err != nil {
			return fmt.Errorf("billing: update bill: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetPayment(ctx context.Context, id int64) (*PaymentTransaction, error) {
	var p PaymentTransaction
	err := r.pool.QueryRow(ctx, `
		SELECT id, bill_id, number, received_amount, discount, method,
			COALESCE(reference_no, ''), COALESCE(description, ''), total_bills,
			fine_amount, after_pay_balance, status, is_first_payment, paid_at, created_at
		FROM payment_transactions WHERE id = $1`, id).
		Scan(
			&p.ID, &p.BillID, &p.Number, &p.ReceivedAmount, &p.Discount, &p.Method,
			&p.ReferenceNo, &p.Description, &p.TotalBills, &p.FineAmount,
			&p.AfterPayBalance, &p.Status, &p.IsFirstPayment, &p.PaidAt, &p.CreatedAt,
		)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("billing: get payment: %w", err)
	}
	return &p, nil
}

func (r *repository) ListPayments(ctx context.Context, billID int64) ([]PaymentTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, bill_id, number, received_amount, discount, method,
			COALESCE(reference_no, ''), COALESCE(description, ''), total_bills,
			fine_amount, after_pay_balance, status, is_first_payment, paid_at, created_at
		FROM payment_transactions WHERE bill_id = $1 ORDER BY paid_at`, billID)
	if err != nil {
		return nil, fmt.Errorf("billing: list payments: %w", err)
	}
	defer rows.Close()

	var payments []PaymentTransaction
	for rows.Next() {
		var p PaymentTransaction
		err := rows.Scan(
			&p.ID, &p.BillID, &p.Number, &p.ReceivedAmount, &p.Discount, &p.Method,
			&p.ReferenceNo, &p.Description, &p.TotalBills, &p.FineAmount,
			&p.AfterPayBalance, &p.Status, &p.IsFirstPayment, &p.PaidAt, &p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *repository) ListPaymentsByProperty(ctx context.Context, propertyNumber string) ([]PaymentTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.bill_id, p.number, p.received_amount, p.discount, p.method,
			COALESCE(p.reference_no, ''), COALESCE(p.description, ''), p.total_bills,
			p.fine_amount, p.after_pay_balance, p.status, p.is_first_payment, p.paid_at, p.created_at
		FROM payment_transactions p
		JOIN bill_records b ON b.id = p.bill_id
		WHERE b.property_number = $1
		ORDER BY p.paid_at DESC`, propertyNumber)
	if err != nil {
		return nil, fmt.Errorf("billing: list property payments: %w", err)
	}
	defer rows.Close()

	var payments []PaymentTransaction
	for rows.Next() {
		var p PaymentTransaction
		err := rows.Scan(
			&p.ID, &p.BillID, &p.Number, &p.ReceivedAmount, &p.Discount, &p.Method,
			&p.ReferenceNo, &p.Description, &p.TotalBills, &p.FineAmount,
			&p.AfterPayBalance, &p.Status, &p.IsFirstPayment, &p.PaidAt, &p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
