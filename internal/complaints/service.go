package complaints

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
)

// PropertyChecker verifies that a complaint references a real property.
type PropertyChecker interface {
	Exists(ctx context.Context, propertyNumber string) (bool, error)
}

type Service struct {
	repo       Repository
	properties PropertyChecker
	logger     *slog.Logger
}

func NewService(repo Repository, properties PropertyChecker, logger *slog.Logger) *Service {
	return &Service{repo: repo, properties: properties, logger: logger}
}

func (s *Service) File(ctx context.Context, c Complaint) (Complaint, error) {
	if c.PropertyNumber == "" {
		return Complaint{}, fmt.Errorf("%w: property number is required", httpx.ErrValidation)
	}
	if c.Category == "" {
		return Complaint{}, fmt.Errorf("%w: category is required", httpx.ErrValidation)
	}
	if c.Description == "" {
		return Complaint{}, fmt.Errorf("%w: description is required", httpx.ErrValidation)
	}

	ok, err := s.properties.Exists(ctx, c.PropertyNumber)
	if err != nil {
		return Complaint{}, fmt.Errorf("complaints: check property: %w", err)
	}
	if !ok {
		return Complaint{}, fmt.Errorf("%w: unknown property %s", httpx.ErrValidation, c.PropertyNumber)
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return Complaint{}, fmt.Errorf("complaints: create: %w", err)
	}
	s.logger.Info("complaint filed", "complaint_id", created.ID, "property", created.PropertyNumber, "category", created.Category)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Complaint, error) {
	if id <= 0 {
		return Complaint{}, fmt.Errorf("%w: invalid complaint ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListRequest) ([]Complaint, int, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 10
	}
	if req.Status != "" {
		switch req.Status {
		case StatusOpen, StatusInProgress, StatusResolved:
		default:
			return nil, 0, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, req.Status)
		}
	}
	return s.repo.List(ctx, req)
}

// Advance moves a complaint forward in its workflow. A resolution note
// is required when marking it resolved.
func (s *Service) Advance(ctx context.Context, id int64, to Status, resolution string) (Complaint, error) {
	switch to {
	case StatusInProgress, StatusResolved:
	default:
		return Complaint{}, fmt.Errorf("%w: cannot move complaint to %q", httpx.ErrValidation, to)
	}
	if to == StatusResolved && resolution == "" {
		return Complaint{}, fmt.Errorf("%w: resolution note is required", httpx.ErrValidation)
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Complaint{}, err
	}
	if !ValidTransition(current.Status, to) {
		return Complaint{}, ErrStatusReversal
	}
	if err := s.repo.UpdateStatus(ctx, id, to, resolution); err != nil {
		return Complaint{}, fmt.Errorf("complaints: update status: %w", err)
	}
	s.logger.Info("complaint status changed", "complaint_id", id, "from", current.Status, "to", to)
	return s.repo.Get(ctx, id)
}
