package blocks

import (
	"context"
	"fmt"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
	"github.com/griha-erp/griha-erp/internal/registry/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Block, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Block, error) {
	if id <= 0 {
		return Block{}, fmt.Errorf("%w: invalid block ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, block Block) (Block, error) {
	if err := s.validate(block); err != nil {
		return Block{}, err
	}
	return s.repo.Create(ctx, block)
}

func (s *Service) Update(ctx context.Context, id int64, block Block) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid block ID", httpx.ErrValidation)
	}
	if err := s.validate(block); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, block)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid block ID", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}
