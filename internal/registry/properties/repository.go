package properties

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
	"github.com/griha-erp/griha-erp/internal/registry/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Property, int, error)
	Get(ctx context.Context, id int64) (Property, error)
	GetByNumber(ctx context.Context, number string) (Property, error)
	ListActive(ctx context.Context) ([]Property, error)
	Create(ctx context.Context, prop Property) (Property, error)
	Update(ctx context.Context, id int64, prop Property) error
	Deactivate(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const propertyColumns = `id, number, block_id, occupancy, monthly_rent, owner_name,
	COALESCE(owner_phone, ''), COALESCE(tenant_name, ''), COALESCE(tenant_phone, ''),
	active, registered_at`

func scanProperty(row pgx.Row) (Property, error) {
	var p Property
	err := row.Scan(&p.ID, &p.Number, &p.BlockID, &p.Occupancy, &p.MonthlyRent,
		&p.OwnerName, &p.OwnerPhone, &p.TenantName, &p.TenantPhone,
		&p.Active, &p.RegisteredAt)
	return p, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Property, int, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM properties WHERE 1=1`
	args := []interface{}{}
	countArgs := []interface{}{}

	if filters.Search != "" {
		query += ` AND (number ILIKE $1 OR owner_name ILIKE $1 OR tenant_name ILIKE $1)`
		countQuery += ` AND (number ILIKE $1 OR owner_name ILIKE $1 OR tenant_name ILIKE $1)`
		args = append(args, "%"+filters.Search+"%")
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY number`
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

	var out []Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Property, error) {
	p, err := scanProperty(r.pool.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) GetByNumber(ctx context.Context, number string) (Property, error) {
	p, err := scanProperty(r.pool.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE number = $1`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) ListActive(ctx context.Context) ([]Property, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE active ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, prop Property) (Property, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO properties (number, block_id, occupancy, monthly_rent, owner_name,
			owner_phone, tenant_name, tenant_phone, active, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, NOW())
		RETURNING id, active, registered_at`,
		prop.Number, prop.BlockID, prop.Occupancy, prop.MonthlyRent,
		prop.OwnerName, prop.OwnerPhone, prop.TenantName, prop.TenantPhone,
	).Scan(&prop.ID, &prop.Active, &prop.RegisteredAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.ConstraintName == "uq_properties_number" {
			return Property{}, httpx.ErrDuplicate
		}
		return Property{}, err
	}
	return prop, nil
}

func (r *repository) Update(ctx context.Context, id int64, prop Property) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE properties SET occupancy = $1, monthly_rent = $2, owner_name = $3,
			owner_phone = $4, tenant_name = $5, tenant_phone = $6
		WHERE id = $7`,
		prop.Occupancy, prop.MonthlyRent, prop.OwnerName,
		prop.OwnerPhone, prop.TenantName, prop.TenantPhone, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Deactivate retires a property from billing cycles without deleting its
// billing history.
func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE properties SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
