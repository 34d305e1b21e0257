package report

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ChargeLine is one labelled amount on a receipt.
type ChargeLine struct {
	Label  string
	Amount float64
}

// Receipt carries everything printed on a payment receipt.
type Receipt struct {
	Number         string
	PropertyNumber string
	BlockName      string
	Period         string
	PaidAt         time.Time
	Charges        []ChargeLine
	MonthlyRent    float64
	PriorBalance   float64
	TotalBills     float64
	FineAmount     float64
	Received       float64
	Discount       float64
	BalanceDue     float64
	Method         string
	ReferenceNo    string
	FirstPayment   bool
}

var money = message.NewPrinter(language.English)

func formatMoney(v float64) string {
	return money.Sprintf("Rs %.2f", v)
}

// ChargesFromMap turns a charge map into sorted receipt lines.
func ChargesFromMap(charges map[string]float64) []ChargeLine {
	lines := make([]ChargeLine, 0, len(charges))
	for name, amount := range charges {
		lines = append(lines, ChargeLine{Label: chargeLabel(name), Amount: amount})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Label < lines[j].Label })
	return lines
}

func chargeLabel(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// BuildReceiptHTML renders the receipt to the HTML document Gotenberg
// converts to PDF.
func BuildReceiptHTML(rc Receipt) string {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><title>Payment Receipt</title>")
	b.WriteString("<style>body{font-family:sans-serif;margin:32px}h1{font-size:20px}table{width:100%;border-collapse:collapse}")
	b.WriteString("td,th{border:1px solid #ccc;padding:6px;text-align:left}.amount{text-align:right}.total td{font-weight:bold}</style>")
	b.WriteString("</head><body>")

	b.WriteString("<h1>Griha Housing Society</h1>")
	b.WriteString("<p>Receipt ")
	b.WriteString(htmlEscape(rc.Number))
	b.WriteString(" · Property ")
	b.WriteString(htmlEscape(rc.PropertyNumber))
	if rc.BlockName != "" {
		b.WriteString(" (")
		b.WriteString(htmlEscape(rc.BlockName))
		b.WriteString(")")
	}
	b.WriteString(" · Billing period ")
	b.WriteString(htmlEscape(rc.Period))
	b.WriteString("</p>")
	b.WriteString("<p>Paid on ")
	b.WriteString(rc.PaidAt.Format("02 Jan 2006 15:04"))
	b.WriteString(" by ")
	b.WriteString(htmlEscape(rc.Method))
	if rc.ReferenceNo != "" {
		b.WriteString(", reference ")
		b.WriteString(htmlEscape(rc.ReferenceNo))
	}
	b.WriteString("</p>")

	b.WriteString("<table><tr><th>Item</th><th class=\"amount\">Amount</th></tr>")
	for _, line := range rc.Charges {
		writeAmountRow(&b, line.Label, line.Amount)
	}
	if rc.MonthlyRent > 0 {
		writeAmountRow(&b, "Monthly Rent", rc.MonthlyRent)
	}
	if rc.PriorBalance != 0 {
		writeAmountRow(&b, "Previous Balance", rc.PriorBalance)
	}
	if rc.FineAmount > 0 {
		writeAmountRow(&b, "Late Payment Fine", rc.FineAmount)
	}
	b.WriteString("<tr class=\"total\">")
	b.WriteString("<td>Total Due</td><td class=\"amount\">")
	b.WriteString(formatMoney(rc.TotalBills + rc.FineAmount))
	b.WriteString("</td></tr>")
	writeAmountRow(&b, "Amount Received", rc.Received)
	if rc.Discount > 0 {
		writeAmountRow(&b, "Discount", rc.Discount)
	}
	b.WriteString("<tr class=\"total\">")
	b.WriteString("<td>Balance Due</td><td class=\"amount\">")
	b.WriteString(formatMoney(rc.BalanceDue))
	b.WriteString("</td></tr>")
	b.WriteString("</table>")

	if rc.FirstPayment {
		b.WriteString("<p>First payment against this bill.</p>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

func writeAmountRow(b *strings.Builder, label string, amount float64) {
	b.WriteString("<tr><td>")
	b.WriteString(htmlEscape(label))
	b.WriteString("</td><td class=\"amount\">")
	b.WriteString(formatMoney(amount))
	b.WriteString("</td></tr>")
}

func htmlEscape(v string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(v)
}

// RenderReceipt builds the receipt document and converts it to PDF.
func (c *Client) RenderReceipt(ctx context.Context, rc Receipt) ([]byte, error) {
	return c.RenderHTML(ctx, BuildReceiptHTML(rc))
}
