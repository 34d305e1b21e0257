package forms

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/griha-erp/griha-erp/internal/platform/db"
	"github.com/griha-erp/griha-erp/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]Field, error)
	Get(ctx context.Context, id int64) (Field, error)
	Create(ctx context.Context, field Field) (Field, error)
	Update(ctx context.Context, id int64, field Field) error
	Deactivate(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const fieldColumns = `id, name, label, type, required, position, active, created_at, updated_at`

func scanField(row pgx.Row) (Field, error) {
	var f Field
	err := row.Scan(&f.ID, &f.Name, &f.Label, &f.Type, &f.Required, &f.Position, &f.Active, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Field, error) {
	query := `SELECT ` + fieldColumns + ` FROM bill_form_fields`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY position, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Field
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Field, error) {
	f, err := scanField(r.pool.QueryRow(ctx,
		`SELECT `+fieldColumns+` FROM bill_form_fields WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Field{}, httpx.ErrNotFound
	}
	return f, err
}

func (r *repository) Create(ctx context.Context, field Field) (Field, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO bill_form_fields (name, label, type, required, position, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id, created_at, updated_at`,
		field.Name, field.Label, field.Type, field.Required, field.Position).
		Scan(&field.ID, &field.CreatedAt, &field.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return Field{}, httpx.ErrDuplicate
	}
	field.Active = true
	return field, err
}

func (r *repository) Update(ctx context.Context, id int64, field Field) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bill_form_fields
		SET label = $1, type = $2, required = $3, position = $4, updated_at = NOW()
		WHERE id = $5`,
		field.Label, field.Type, field.Required, field.Position, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bill_form_fields SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
