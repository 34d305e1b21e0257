package complaints

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
)

type memoryComplaintRepo struct {
	complaints map[int64]Complaint
	nextID     int64
}

func newMemoryComplaintRepo() *memoryComplaintRepo {
	return &memoryComplaintRepo{complaints: make(map[int64]Complaint)}
}

func (r *memoryComplaintRepo) Create(ctx context.Context, c Complaint) (Complaint, error) {
	r.nextID++
	c.ID = r.nextID
	c.Status = StatusOpen
	c.CreatedAt = time.Now()
	r.complaints[c.ID] = c
	return c, nil
}

func (r *memoryComplaintRepo) Get(ctx context.Context, id int64) (Complaint, error) {
	c, ok := r.complaints[id]
	if !ok {
		return Complaint{}, httpx.ErrNotFound
	}
	return c, nil
}

func (r *memoryComplaintRepo) List(ctx context.Context, req ListRequest) ([]Complaint, int, error) {
	var out []Complaint
	for _, c := range r.complaints {
		if req.PropertyNumber != "" && c.PropertyNumber != req.PropertyNumber {
			continue
		}
		if req.Status != "" && c.Status != req.Status {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (r *memoryComplaintRepo) UpdateStatus(ctx context.Context, id int64, status Status, resolution string) error {
	c, ok := r.complaints[id]
	if !ok {
		return httpx.ErrNotFound
	}
	c.Status = status
	if status == StatusResolved {
		now := time.Now()
		c.ResolvedAt = &now
		c.Resolution = resolution
	}
	r.complaints[id] = c
	return nil
}

type staticPropertyChecker struct {
	known map[string]bool
}

func (c staticPropertyChecker) Exists(ctx context.Context, number string) (bool, error) {
	return c.known[number], nil
}

func newComplaintsService() (*Service, *memoryComplaintRepo) {
	repo := newMemoryComplaintRepo()
	checker := staticPropertyChecker{known: map[string]bool{"A-101": true}}
	return NewService(repo, checker, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func TestFileComplaint(t *testing.T) {
	svc, _ := newComplaintsService()

	c, err := svc.File(context.Background(), Complaint{
		PropertyNumber: "A-101",
		Category:       "plumbing",
		Description:    "Water leakage in the main line",
	})
	require.NoError(t, err)
	require.Equal(t, StatusOpen, c.Status)
	require.NotZero(t, c.ID)
}

func TestFileComplaintRejectsUnknownProperty(t *testing.T) {
	svc, _ := newComplaintsService()

	_, err := svc.File(context.Background(), Complaint{
		PropertyNumber: "Z-999",
		Category:       "plumbing",
		Description:    "Leak",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestComplaintWorkflowMovesForwardOnly(t *testing.T) {
	svc, _ := newComplaintsService()
	ctx := context.Background()

	c, err := svc.File(ctx, Complaint{
		PropertyNumber: "A-101",
		Category:       "electrical",
		Description:    "Street light out near gate 2",
	})
	require.NoError(t, err)

	c, err = svc.Advance(ctx, c.ID, StatusInProgress, "")
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, c.Status)

	c, err = svc.Advance(ctx, c.ID, StatusResolved, "Replaced the bulb")
	require.NoError(t, err)
	require.Equal(t, StatusResolved, c.Status)
	require.NotNil(t, c.ResolvedAt)

	_, err = svc.Advance(ctx, c.ID, StatusInProgress, "")
	require.ErrorIs(t, err, ErrStatusReversal)
}

func TestAdvanceRequiresResolutionNote(t *testing.T) {
	svc, _ := newComplaintsService()
	ctx := context.Background()

	c, err := svc.File(ctx, Complaint{
		PropertyNumber: "A-101",
		Category:       "security",
		Description:    "Gate left open at night",
	})
	require.NoError(t, err)

	_, err = svc.Advance(ctx, c.ID, StatusResolved, "")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestOpenToResolvedDirectly(t *testing.T) {
	svc, _ := newComplaintsService()
	ctx := context.Background()

	c, err := svc.File(ctx, Complaint{
		PropertyNumber: "A-101",
		Category:       "plumbing",
		Description:    "Dripping tap in common washroom",
	})
	require.NoError(t, err)

	c, err = svc.Advance(ctx, c.ID, StatusResolved, "Washer replaced")
	require.NoError(t, err)
	require.Equal(t, StatusResolved, c.Status)
}
