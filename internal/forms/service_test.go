package forms

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
)

type memoryFieldRepo struct {
	fields map[int64]Field
	nextID int64
}

func newMemoryFieldRepo() *memoryFieldRepo {
	return &memoryFieldRepo{fields: make(map[int64]Field)}
}

func (r *memoryFieldRepo) List(ctx context.Context, activeOnly bool) ([]Field, error) {
	var out []Field
	for _, f := range r.fields {
		if activeOnly && !f.Active {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *memoryFieldRepo) Get(ctx context.Context, id int64) (Field, error) {
	f, ok := r.fields[id]
	if !ok {
		return Field{}, httpx.ErrNotFound
	}
	return f, nil
}

func (r *memoryFieldRepo) Create(ctx context.Context, field Field) (Field, error) {
	for _, existing := range r.fields {
		if existing.Name == field.Name {
			return Field{}, httpx.ErrDuplicate
		}
	}
	r.nextID++
	field.ID = r.nextID
	field.Active = true
	field.CreatedAt = time.Now()
	field.UpdatedAt = field.CreatedAt
	r.fields[field.ID] = field
	return field, nil
}

func (r *memoryFieldRepo) Update(ctx context.Context, id int64, field Field) error {
	existing, ok := r.fields[id]
	if !ok {
		return httpx.ErrNotFound
	}
	field.ID = id
	field.Name = existing.Name
	field.Active = existing.Active
	r.fields[id] = field
	return nil
}

func (r *memoryFieldRepo) Deactivate(ctx context.Context, id int64) error {
	f, ok := r.fields[id]
	if !ok {
		return httpx.ErrNotFound
	}
	f.Active = false
	r.fields[id] = f
	return nil
}

func TestCreateFieldValidatesName(t *testing.T) {
	svc := NewService(newMemoryFieldRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Field{Name: "Water Charges", Label: "Water", Type: FieldNumber})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, Field{Name: "water_charges", Label: "", Type: FieldNumber})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, Field{Name: "water_charges", Label: "Water", Type: "date"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	field, err := svc.Create(ctx, Field{Name: "water_charges", Label: "Water", Type: FieldNumber, Required: true})
	require.NoError(t, err)
	require.True(t, field.Active)
}

func TestChargeKeysReturnsOnlyActiveFields(t *testing.T) {
	repo := newMemoryFieldRepo()
	svc := NewService(repo)
	ctx := context.Background()

	water, err := svc.Create(ctx, Field{Name: "water_charges", Label: "Water", Type: FieldNumber})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Field{Name: "maintenance", Label: "Maintenance", Type: FieldNumber})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, water.ID))

	keys, err := svc.ChargeKeys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"maintenance"}, keys)
}

func TestUpdateFieldKeepsNameStable(t *testing.T) {
	repo := newMemoryFieldRepo()
	svc := NewService(repo)
	ctx := context.Background()

	field, err := svc.Create(ctx, Field{Name: "water_charges", Label: "Water", Type: FieldNumber})
	require.NoError(t, err)

	err = svc.Update(ctx, field.ID, Field{Name: "water_charges", Label: "Water Supply", Type: FieldNumber, Position: 2})
	require.NoError(t, err)

	got, err := svc.Get(ctx, field.ID)
	require.NoError(t, err)
	require.Equal(t, "water_charges", got.Name)
	require.Equal(t, "Water Supply", got.Label)
}
