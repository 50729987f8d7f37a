package export

import (
	"fmt"
	"math"
	"strconv"

	"procure/internal/matching"
	"procure/internal/money"
	"procure/internal/scoring"
)

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func pct(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "n/a"
	}
	return num(v) + "%"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// MatchReportTable lays out one row per PO line of a three-way match.
func MatchReportTable(r matching.MatchReport) Table {
	t := Table{
		Title: "Match " + r.PODocNo,
		Headers: []string{
			"PO Line", "Item", "Ordered", "Received", "Invoiced",
			"PO Price", "Invoice Price", "Qty Delta %", "Price Delta %", "Status",
		},
		Rows: make([][]string, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		t.Rows = append(t.Rows, []string{
			l.POLineID, l.ItemName,
			num(l.OrderedQty), num(l.ReceivedQty), num(l.InvoicedQty),
			num(l.POPrice), num(l.InvoicedPrice),
			pct(l.QtyCheck.DeltaPercent), pct(l.PriceCheck.DeltaPercent),
			l.Status,
		})
	}

	t.Footer = []string{
		fmt.Sprintf("Tolerance: %s%%", num(r.Tolerance)),
		fmt.Sprintf("PO total: %s", money.FormatIDR(r.POTotal)),
	}
	if r.InvoiceTotal != nil {
		t.Footer = append(t.Footer, fmt.Sprintf("Invoice total: %s", money.FormatIDR(*r.InvoiceTotal)))
	}
	t.Footer = append(t.Footer, fmt.Sprintf("Fully matched: %s", yesNo(r.IsFullyMatched)))
	return t
}

// TabulationTable lays out one row per scored bid across all RFQ lines.
func TabulationTable(rfqDocNo string, tabs []scoring.LineTabulation) Table {
	t := Table{
		Title: "Tabulation " + rfqDocNo,
		Headers: []string{
			"Line", "Item", "Vendor", "Price", "Lead Time",
			"Price Score", "Lead Score", "Quality Score", "Total", "Recommended",
		},
		Rows: [][]string{},
	}
	for _, tab := range tabs {
		for i, s := range tab.Scores {
			b := tab.Bids[i]
			t.Rows = append(t.Rows, []string{
				tab.Line.ID, tab.Line.ItemName, s.VendorID,
				num(b.Price), num(b.LeadTimeDays),
				num(s.PriceScore), num(s.LeadTimeScore), num(s.QualityScore), num(s.TotalScore),
				yesNo(s.Recommended),
			})
		}
	}
	return t
}
