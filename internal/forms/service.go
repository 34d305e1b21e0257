package forms

import (
	"context"
	"fmt"
	"regexp"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
)

// Field names become charge-map keys, so they must be stable machine
// identifiers rather than display text.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]Field, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) Get(ctx context.Context, id int64) (Field, error) {
	if id <= 0 {
		return Field{}, fmt.Errorf("%w: invalid field ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, field Field) (Field, error) {
	if err := s.validate(field); err != nil {
		return Field{}, err
	}
	return s.repo.Create(ctx, field)
}

func (s *Service) Update(ctx context.Context, id int64, field Field) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid field ID", httpx.ErrValidation)
	}
	if err := s.validate(field); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, field)
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid field ID", httpx.ErrValidation)
	}
	return s.repo.Deactivate(ctx, id)
}

// ChargeKeys returns the names of active fields, the set of charge keys
// bill setup accepts.
func (s *Service) ChargeKeys(ctx context.Context) ([]string, error) {
	fields, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Name)
	}
	return keys, nil
}

func (s *Service) validate(field Field) error {
	if field.Name == "" {
		return fmt.Errorf("%w: field name is required", httpx.ErrValidation)
	}
	if !namePattern.MatchString(field.Name) {
		return fmt.Errorf("%w: field name must be a lowercase identifier", httpx.ErrValidation)
	}
	if field.Label == "" {
		return fmt.Errorf("%w: field label is required", httpx.ErrValidation)
	}
	switch field.Type {
	case FieldNumber, FieldText:
	default:
		return fmt.Errorf("%w: unknown field type %q", httpx.ErrValidation, field.Type)
	}
	if field.Position < 0 {
		return fmt.Errorf("%w: position must not be negative", httpx.ErrValidation)
	}
	return nil
}
