package properties

import "time"

// OccupancyType distinguishes owner-occupied units from rented ones.
type OccupancyType string

const (
	OccupancyOwner  OccupancyType = "owner"
	OccupancyRented OccupancyType = "rented"
)

// Property is one unit in the society registry.
type Property struct {
	ID           int64         `json:"id"`
	Number       string        `json:"property_number"`
	BlockID      int64         `json:"block_id"`
	Occupancy    OccupancyType `json:"occupancy"`
	MonthlyRent  float64       `json:"monthly_rent"`
	OwnerName    string        `json:"owner_name"`
	OwnerPhone   string        `json:"owner_phone,omitempty"`
	TenantName   string        `json:"tenant_name,omitempty"`
	TenantPhone  string        `json:"tenant_phone,omitempty"`
	Active       bool          `json:"active"`
	RegisteredAt time.Time     `json:"registered_at"`
}

// IsRental reports whether the unit is rented out.
func (p Property) IsRental() bool {
	return p.Occupancy == OccupancyRented
}
