package properties

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
	"github.com/griha-erp/griha-erp/internal/registry/blocks"
	"github.com/griha-erp/griha-erp/internal/registry/shared"
)

type memoryPropertyRepo struct {
	props  map[int64]Property
	nextID int64
}

func newMemoryPropertyRepo() *memoryPropertyRepo {
	return &memoryPropertyRepo{props: make(map[int64]Property)}
}

func (r *memoryPropertyRepo) List(ctx context.Context, filters shared.ListFilters) ([]Property, int, error) {
	var out []Property
	for _, p := range r.props {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *memoryPropertyRepo) Get(ctx context.Context, id int64) (Property, error) {
	p, ok := r.props[id]
	if !ok {
		return Property{}, httpx.ErrNotFound
	}
	return p, nil
}

func (r *memoryPropertyRepo) GetByNumber(ctx context.Context, number string) (Property, error) {
	for _, p := range r.props {
		if p.Number == number {
			return p, nil
		}
	}
	return Property{}, httpx.ErrNotFound
}

func (r *memoryPropertyRepo) ListActive(ctx context.Context) ([]Property, error) {
	var out []Property
	for _, p := range r.props {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryPropertyRepo) Create(ctx context.Context, prop Property) (Property, error) {
	for _, existing := range r.props {
		if existing.Number == prop.Number {
			return Property{}, httpx.ErrDuplicate
		}
	}
	r.nextID++
	prop.ID = r.nextID
	prop.Active = true
	prop.RegisteredAt = time.Now()
	r.props[prop.ID] = prop
	return prop, nil
}

func (r *memoryPropertyRepo) Update(ctx context.Context, id int64, prop Property) error {
	existing, ok := r.props[id]
	if !ok {
		return httpx.ErrNotFound
	}
	prop.ID = id
	prop.Number = existing.Number
	prop.BlockID = existing.BlockID
	prop.Active = existing.Active
	r.props[id] = prop
	return nil
}

func (r *memoryPropertyRepo) Deactivate(ctx context.Context, id int64) error {
	p, ok := r.props[id]
	if !ok {
		return httpx.ErrNotFound
	}
	p.Active = false
	r.props[id] = p
	return nil
}

type memoryBlockRepo struct {
	blocks map[int64]blocks.Block
}

func (r *memoryBlockRepo) List(ctx context.Context, filters shared.ListFilters) ([]blocks.Block, int, error) {
	return nil, 0, nil
}

func (r *memoryBlockRepo) Get(ctx context.Context, id int64) (blocks.Block, error) {
	b, ok := r.blocks[id]
	if !ok {
		return blocks.Block{}, httpx.ErrNotFound
	}
	return b, nil
}

func (r *memoryBlockRepo) Create(ctx context.Context, block blocks.Block) (blocks.Block, error) {
	return block, nil
}

func (r *memoryBlockRepo) Update(ctx context.Context, id int64, block blocks.Block) error {
	return nil
}

func (r *memoryBlockRepo) Delete(ctx context.Context, id int64) error {
	return nil
}

func newTestService() (*Service, *memoryPropertyRepo) {
	repo := newMemoryPropertyRepo()
	blockRepo := &memoryBlockRepo{blocks: map[int64]blocks.Block{
		1: {ID: 1, Name: "Block A", Prefix: "A"},
	}}
	return NewService(repo, blocks.NewService(blockRepo)), repo
}

func TestRegisterOwnerOccupiedProperty(t *testing.T) {
	svc, _ := newTestService()

	prop, err := svc.Register(context.Background(), Property{
		Number:    "A-101",
		BlockID:   1,
		Occupancy: OccupancyOwner,
		OwnerName: "S. Ahmed",
	})
	require.NoError(t, err)
	require.True(t, prop.Active)
	require.False(t, prop.IsRental())
}

func TestRegisterRejectsNumberWithoutBlockPrefix(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), Property{
		Number:    "B-101",
		BlockID:   1,
		Occupancy: OccupancyOwner,
		OwnerName: "S. Ahmed",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRegisterRejectsMalformedNumber(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), Property{
		Number:    "A101",
		BlockID:   1,
		Occupancy: OccupancyOwner,
		OwnerName: "S. Ahmed",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRegisterRentedRequiresRentAndTenant(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), Property{
		Number:    "A-102",
		BlockID:   1,
		Occupancy: OccupancyRented,
		OwnerName: "S. Ahmed",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	prop, err := svc.Register(context.Background(), Property{
		Number:      "A-102",
		BlockID:     1,
		Occupancy:   OccupancyRented,
		MonthlyRent: 15000,
		OwnerName:   "S. Ahmed",
		TenantName:  "R. Khan",
	})
	require.NoError(t, err)
	require.True(t, prop.IsRental())
}

func TestRegisterRejectsOwnerOccupiedWithRent(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), Property{
		Number:      "A-103",
		BlockID:     1,
		Occupancy:   OccupancyOwner,
		MonthlyRent: 9000,
		OwnerName:   "S. Ahmed",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestBillingDirectoryMapsProperties(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, Property{
		Number:      "A-104",
		BlockID:     1,
		Occupancy:   OccupancyRented,
		MonthlyRent: 12000,
		OwnerName:   "S. Ahmed",
		TenantName:  "R. Khan",
	})
	require.NoError(t, err)

	dir := NewBillingDirectory(svc)
	info, err := dir.GetByNumber(ctx, "A-104")
	require.NoError(t, err)
	require.True(t, info.Rental)
	require.Equal(t, 12000.0, info.MonthlyRent)

	active, err := dir.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
}
