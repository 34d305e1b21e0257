package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/griha-erp/griha-erp/internal/reports"
	"github.com/griha-erp/griha-erp/internal/shared"
)

func TestWriteCollectionCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCollectionCSV(&buf, reports.CollectionReport{
		Period:      shared.Period{Month: 8, Year: 2026},
		BillCount:   12,
		TotalBilled: 60000,
		Collected:   45000.5,
		Outstanding: 14999.5,
		PaidBills:   9,
		UnpaidBills: 3,
	})
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "Period,2026-08")
	require.Contains(t, out, "Total Billed,60000.00")
	require.Contains(t, out, "Collected,45000.50")
	require.Contains(t, out, "Unpaid Bills,3")
}

func TestWriteDefaultersCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDefaultersCSV(&buf, reports.DefaultersReport{
		AsOf: "2026-09-01",
		Defaulters: []reports.DefaulterRow{
			{PropertyNumber: "A-101", BlockName: "Block A", UnpaidBills: 2, Outstanding: 1200, OldestDue: "2026-07-10", DaysOverdue: 53},
		},
		Aging: reports.AgingBucket{Bucket60: 1200},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Contains(t, lines[0], "Property,Block")
	require.Contains(t, lines[1], "A-101,Block A,2,1200.00,2026-07-10,53")
	require.Contains(t, buf.String(), "31-60 Days,1200.00")
}
