package reports

import "github.com/griha-erp/griha-erp/internal/shared"

// CollectionReport summarises billing against receipts for one period.
type CollectionReport struct {
	Period      shared.Period `json:"period"`
	BillCount   int           `json:"bill_count"`
	TotalBilled float64       `json:"total_billed"`
	Collected   float64       `json:"collected"`
	Discounted  float64       `json:"discounted"`
	Outstanding float64       `json:"outstanding"`
	PaidBills   int           `json:"paid_bills"`
	UnpaidBills int           `json:"unpaid_bills"`
}

// DefaulterRow is one property with unpaid dues, aged from the oldest
// overdue bill.
type DefaulterRow struct {
	PropertyNumber string  `json:"property_number"`
	BlockName      string  `json:"block_name"`
	UnpaidBills    int     `json:"unpaid_bills"`
	Outstanding    float64 `json:"outstanding"`
	OldestDue      string  `json:"oldest_due"`
	DaysOverdue    int     `json:"days_overdue"`
}

// AgingBucket summarises outstanding amounts by overdue age.
type AgingBucket struct {
	Current   float64 `json:"current"`
	Bucket30  float64 `json:"bucket_30"`
	Bucket60  float64 `json:"bucket_60"`
	Bucket90  float64 `json:"bucket_90"`
	Bucket120 float64 `json:"bucket_120_plus"`
}

// DefaultersReport lists defaulting properties plus the aging rollup.
type DefaultersReport struct {
	AsOf       string         `json:"as_of"`
	Defaulters []DefaulterRow `json:"defaulters"`
	Aging      AgingBucket    `json:"aging"`
}
