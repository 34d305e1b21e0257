package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/griha-erp/griha-erp/internal/reports"
)

// WriteCollectionCSV serialises a collection report to CSV.
func WriteCollectionCSV(w io.Writer, report reports.CollectionReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Period", report.Period.String()},
		{"Bills Issued", strconv.Itoa(report.BillCount)},
		{"Total Billed", formatFloat(report.TotalBilled)},
		{"Collected", formatFloat(report.Collected)},
		{"Discounted", formatFloat(report.Discounted)},
		{"Outstanding", formatFloat(report.Outstanding)},
		{"Paid Bills", strconv.Itoa(report.PaidBills)},
		{"Unpaid Bills", strconv.Itoa(report.UnpaidBills)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDefaultersCSV emits one row per defaulting property followed by
// the aging rollup.
func WriteDefaultersCSV(w io.Writer, report reports.DefaultersReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Property", "Block", "Unpaid Bills", "Outstanding", "Oldest Due", "Days Overdue"}); err != nil {
		return err
	}
	for _, row := range report.Defaulters {
		if err := writer.Write([]string{
			row.PropertyNumber,
			row.BlockName,
			strconv.Itoa(row.UnpaidBills),
			formatFloat(row.Outstanding),
			row.OldestDue,
			strconv.Itoa(row.DaysOverdue),
		}); err != nil {
			return err
		}
	}

	if err := writer.Write([]string{"Aging Bucket", "Amount"}); err != nil {
		return err
	}
	aging := [][]string{
		{"Current", formatFloat(report.Aging.Current)},
		{"1-30 Days", formatFloat(report.Aging.Bucket30)},
		{"31-60 Days", formatFloat(report.Aging.Bucket60)},
		{"61-90 Days", formatFloat(report.Aging.Bucket90)},
		{"Over 90 Days", formatFloat(report.Aging.Bucket120)},
	}
	for _, record := range aging {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
