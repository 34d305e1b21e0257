package properties

import (
	"context"
	"errors"
	"fmt"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
	"github.com/griha-erp/griha-erp/internal/registry/blocks"
	"github.com/griha-erp/griha-erp/internal/registry/shared"
)

type Service struct {
	repo   Repository
	blocks *blocks.Service
}

func NewService(repo Repository, blockSvc *blocks.Service) *Service {
	return &Service{repo: repo, blocks: blockSvc}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Property, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Property, error) {
	if id <= 0 {
		return Property{}, fmt.Errorf("%w: invalid property ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (Property, error) {
	if number == "" {
		return Property{}, fmt.Errorf("%w: property number required", httpx.ErrValidation)
	}
	return s.repo.GetByNumber(ctx, number)
}

func (s *Service) ListActive(ctx context.Context) ([]Property, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) Exists(ctx context.Context, number string) (bool, error) {
	_, err := s.repo.GetByNumber(ctx, number)
	if errors.Is(err, httpx.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) Register(ctx context.Context, prop Property) (Property, error) {
	block, err := s.blocks.Get(ctx, prop.BlockID)
	if err != nil {
		return Property{}, fmt.Errorf("%w: block %d not found", httpx.ErrValidation, prop.BlockID)
	}
	if err := s.validate(prop, block.Prefix); err != nil {
		return Property{}, err
	}
	return s.repo.Create(ctx, prop)
}

func (s *Service) Update(ctx context.Context, id int64, prop Property) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid property ID", httpx.ErrValidation)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	prop.Number = current.Number
	prop.BlockID = current.BlockID
	if err := s.validateOccupancy(prop); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, prop)
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid property ID", httpx.ErrValidation)
	}
	return s.repo.Deactivate(ctx, id)
}
