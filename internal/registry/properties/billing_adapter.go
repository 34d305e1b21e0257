package properties

import (
	"context"

	"github.com/griha-erp/griha-erp/internal/billing"
)

// BillingDirectory adapts the property registry to the billing module's
// PropertyDirectory port.
type BillingDirectory struct {
	service *Service
}

// NewBillingDirectory wraps the registry service.
func NewBillingDirectory(service *Service) *BillingDirectory {
	return &BillingDirectory{service: service}
}

func toInfo(p Property) billing.PropertyInfo {
	return billing.PropertyInfo{
		Number:      p.Number,
		BlockID:     p.BlockID,
		MonthlyRent: p.MonthlyRent,
		Rental:      p.IsRental(),
		Active:      p.Active,
	}
}

// GetByNumber resolves one property for bill setup.
func (d *BillingDirectory) GetByNumber(ctx context.Context, number string) (billing.PropertyInfo, error) {
	prop, err := d.service.GetByNumber(ctx, number)
	if err != nil {
		return billing.PropertyInfo{}, err
	}
	return toInfo(prop), nil
}

// ListActive returns every property eligible for the billing cycle.
func (d *BillingDirectory) ListActive(ctx context.Context) ([]billing.PropertyInfo, error) {
	props, err := d.service.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]billing.PropertyInfo, 0, len(props))
	for _, p := range props {
		infos = append(infos, toInfo(p))
	}
	return infos, nil
}
