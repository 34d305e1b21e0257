package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildReceiptHTML(t *testing.T) {
	html := BuildReceiptHTML(Receipt{
		Number:         "RCP-1234",
		PropertyNumber: "A-101",
		BlockName:      "Block A",
		Period:         "2026-08",
		PaidAt:         time.Date(2026, time.September, 1, 10, 30, 0, 0, time.UTC),
		Charges: []ChargeLine{
			{Label: "Maintenance", Amount: 2500},
			{Label: "Water Charges", Amount: 800},
		},
		MonthlyRent:  15000,
		PriorBalance: 1200,
		TotalBills:   19500,
		FineAmount:   1950,
		Received:     21450,
		Discount:     0,
		BalanceDue:   0,
		Method:       "Bank",
		ReferenceNo:  "TXN-88",
		FirstPayment: true,
	})

	require.Contains(t, html, "RCP-1234")
	require.Contains(t, html, "A-101")
	require.Contains(t, html, "2026-08")
	require.Contains(t, html, "Maintenance")
	require.Contains(t, html, "Rs 2,500.00")
	require.Contains(t, html, "Rs 21,450.00")
	require.Contains(t, html, "Late Payment Fine")
	require.Contains(t, html, "TXN-88")
	require.Contains(t, html, "First payment")
	require.NotContains(t, html, "Discount")
}

func TestBuildReceiptHTMLEscapesValues(t *testing.T) {
	html := BuildReceiptHTML(Receipt{
		Number:         "RCP-1",
		PropertyNumber: "<script>",
		Period:         "2026-08",
		Method:         "Cash",
		PaidAt:         time.Now(),
	})
	require.NotContains(t, html, "<script>")
	require.Contains(t, html, "&lt;script&gt;")
}

func TestChargesFromMap(t *testing.T) {
	lines := ChargesFromMap(map[string]float64{
		"water_charges": 800,
		"maintenance":   2500,
	})
	require.Len(t, lines, 2)
	require.Equal(t, "Maintenance", lines[0].Label)
	require.Equal(t, "Water Charges", lines[1].Label)
}
