package billing

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// The admin console and older API clients send loosely typed payloads:
// charge amounts arrive as strings or numbers, block references as either
// a raw id or an embedded object. Everything is normalized here, at one
// boundary, into the strict shapes the rest of the package works with.

// ParseAmount coerces an arbitrary JSON value into a float64. Missing or
// non-numeric values count as zero.
func ParseAmount(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// NormalizeCharges converts a raw charges payload into a ChargeMap,
// applying ParseAmount to every value.
func NormalizeCharges(raw map[string]any) ChargeMap {
	charges := make(ChargeMap, len(raw))
	for name, value := range raw {
		charges[name] = ParseAmount(value)
	}
	return charges
}

// blockRef accepts both a raw id and an embedded {id, name} object.
type blockRef struct {
	ID   int64
	Name string
}

func (b *blockRef) UnmarshalJSON(data []byte) error {
	var obj struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.ID != 0 {
		b.ID = obj.ID
		b.Name = obj.Name
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err == nil {
		b.ID = id
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, perr := strconv.ParseInt(s, 10, 64); perr == nil {
			b.ID = parsed
		} else {
			b.Name = s
		}
		return nil
	}
	return nil
}

// RawBill mirrors the duck-typed bill payload as received on the wire.
type RawBill struct {
	ID             int64          `json:"id"`
	PropertyNumber string         `json:"property_number"`
	Block          blockRef       `json:"block_name"`
	Month          int            `json:"month"`
	Year           int            `json:"year"`
	IssueDate      time.Time      `json:"issue_date"`
	DueDate        time.Time      `json:"due_date"`
	ChargesFields  map[string]any `json:"bills_fields"`
	MonthlyRent    any            `json:"monthly_rent"`
	PriorBalance   any            `json:"balance"`
	Status         string         `json:"bill_status"`
}

// Normalize maps a raw payload into a strict BillRecord. The derived
// total is recomputed rather than trusted from the payload.
func (r RawBill) Normalize() BillRecord {
	charges := NormalizeCharges(r.ChargesFields)
	rent := ParseAmount(r.MonthlyRent)
	prior := ParseAmount(r.PriorBalance)
	status := BillStatus(r.Status)
	switch status {
	case StatusPending, StatusPartially, StatusPaid:
	default:
		status = StatusPending
	}
	return BillRecord{
		ID:                r.ID,
		PropertyNumber:    r.PropertyNumber,
		BlockID:           r.Block.ID,
		BlockName:         r.Block.Name,
		Month:             r.Month,
		Year:              r.Year,
		IssueDate:         r.IssueDate,
		DueDate:           r.DueDate,
		Charges:           charges,
		MonthlyRent:       rent,
		PriorBalance:      prior,
		TotalCurrentBills: ComputeTotalCurrentBills(charges, rent, prior),
		Status:            status,
	}
}
