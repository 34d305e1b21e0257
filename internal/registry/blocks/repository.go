package blocks

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/griha-erp/griha-erp/internal/platform/db"
	"github.com/griha-erp/griha-erp/internal/platform/httpx"
	"github.com/griha-erp/griha-erp/internal/registry/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Block, int, error)
	Get(ctx context.Context, id int64) (Block, error)
	Create(ctx context.Context, block Block) (Block, error)
	Update(ctx context.Context, id int64, block Block) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Block, int, error) {
	query := `SELECT id, name, prefix FROM blocks WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM blocks WHERE 1=1`
	args := []interface{}{}
	countArgs := []interface{}{}

	if filters.Search != "" {
		query += ` AND (name ILIKE $1 OR prefix ILIKE $1)`
		countQuery += ` AND (name ILIKE $1 OR prefix ILIKE $1)`
		args = append(args, "%"+filters.Search+"%")
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name`
	if filters.Limit > 0 {
		argc := len(args)
		query += ` LIMIT $` + strconv.Itoa(argc+1) + ` OFFSET $` + strconv.Itoa(argc+2)
		args = append(args, filters.Limit, filters.Offset())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Block
	for rows.Next() {
		var b Block
		if err := rows.Scan(&b.ID, &b.Name, &b.Prefix); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Block, error) {
	var b Block
	err := r.pool.QueryRow(ctx, `SELECT id, name, prefix FROM blocks WHERE id = $1`, id).
		Scan(&b.ID, &b.Name, &b.Prefix)
	if errors.Is(err, pgx.ErrNoRows) {
		return Block{}, httpx.ErrNotFound
	}
	return b, err
}

func (r *repository) Create(ctx context.Context, block Block) (Block, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO blocks (name, prefix) VALUES ($1, $2) RETURNING id`,
		block.Name, block.Prefix).Scan(&block.ID)
	if db.IsUniqueViolation(err) {
		return Block{}, httpx.ErrDuplicate
	}
	return block, err
}

func (r *repository) Update(ctx context.Context, id int64, block Block) error {
	tag, err := r.pool.Exec(ctx, `UPDATE blocks SET name = $1, prefix = $2 WHERE id = $3`,
		block.Name, block.Prefix, id)
	if db.IsUniqueViolation(err) {
		return httpx.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blocks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
