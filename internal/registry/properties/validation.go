package properties

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
)

// Property numbers follow <block-prefix>-<number>, e.g. A-101.
var numberPattern = regexp.MustCompile(`^[A-Za-z0-9]+-[0-9]+$`)

func (s *Service) validate(p Property, blockPrefix string) error {
	if !numberPattern.MatchString(p.Number) {
		return fmt.Errorf("%w: property number must look like %s-101", httpx.ErrValidation, blockPrefix)
	}
	if !strings.HasPrefix(p.Number, blockPrefix+"-") {
		return fmt.Errorf("%w: property number must start with block prefix %q", httpx.ErrValidation, blockPrefix)
	}
	if strings.TrimSpace(p.OwnerName) == "" {
		return fmt.Errorf("%w: owner name is required", httpx.ErrValidation)
	}
	return s.validateOccupancy(p)
}

func (s *Service) validateOccupancy(p Property) error {
	switch p.Occupancy {
	case OccupancyOwner:
		if p.MonthlyRent != 0 {
			return fmt.Errorf("%w: owner-occupied units cannot carry rent", httpx.ErrValidation)
		}
	case OccupancyRented:
		if p.MonthlyRent <= 0 {
			return fmt.Errorf("%w: rented units require a positive monthly rent", httpx.ErrValidation)
		}
		if strings.TrimSpace(p.TenantName) == "" {
			return fmt.Errorf("%w: tenant name is required for rented units", httpx.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: occupancy must be owner or rented", httpx.ErrValidation)
	}
	return nil
}
