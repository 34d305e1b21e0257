package complaints

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
)

type Repository interface {
	Create(ctx context.Context, c Complaint) (Complaint, error)
	Get(ctx context.Context, id int64) (Complaint, error)
	List(ctx context.Context, req ListRequest) ([]Complaint, int, error)
	UpdateStatus(ctx context.Context, id int64, status Status, resolution string) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const complaintColumns = `id, property_number, category, description, status, created_at, resolved_at, resolution`

func scanComplaint(row pgx.Row) (Complaint, error) {
	var c Complaint
	var resolution *string
	err := row.Scan(&c.ID, &c.PropertyNumber, &c.Category, &c.Description, &c.Status, &c.CreatedAt, &c.ResolvedAt, &resolution)
	if resolution != nil {
		c.Resolution = *resolution
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c Complaint) (Complaint, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO complaints (property_number, category, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		c.PropertyNumber, c.Category, c.Description, StatusOpen).
		Scan(&c.ID, &c.CreatedAt)
	c.Status = StatusOpen
	return c, err
}

func (r *repository) Get(ctx context.Context, id int64) (Complaint, error) {
	c, err := scanComplaint(r.pool.QueryRow(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Complaint{}, httpx.ErrNotFound
	}
	return c, err
}

func (r *repository) List(ctx context.Context, req ListRequest) ([]Complaint, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}

	if req.PropertyNumber != "" {
		args = append(args, req.PropertyNumber)
		where += ` AND property_number = $` + strconv.Itoa(len(args))
	}
	if req.Status != "" {
		args = append(args, req.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + complaintColumns + ` FROM complaints` + where + ` ORDER BY created_at DESC`
	if req.Limit > 0 {
		args = append(args, req.Limit, (req.Page-1)*req.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status, resolution string) error {
	var query string
	var args []interface{}
	if status == StatusResolved {
		query = `UPDATE complaints SET status = $1, resolution = $2, resolved_at = NOW() WHERE id = $3`
		args = []interface{}{status, resolution, id}
	} else {
		query = `UPDATE complaints SET status = $1 WHERE id = $2`
		args = []interface{}{status, id}
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
