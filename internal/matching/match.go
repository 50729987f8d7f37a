package matching

import (
	"procure/internal/models"
)

// Line statuses reported in a MatchLine.
const (
	LineMatched     = "matched"
	LineVariance    = "variance"
	LineNotInvoiced = "not_invoiced"
)

// MatchLine is the three-way comparison for one PO line.
type MatchLine struct {
	POLineID         string          `json:"po_line_id"`
	ItemName         string          `json:"item_name"`
	OrderedQty       float64         `json:"ordered_qty"`
	ReceivedQty      float64         `json:"received_qty"`
	InvoicedQty      float64         `json:"invoiced_qty"`
	POPrice          float64         `json:"po_price"`
	InvoicedPrice    float64         `json:"invoiced_price"`
	InvoiceLineID    string          `json:"invoice_line_id,omitempty"`
	NotInvoiced      bool            `json:"not_invoiced"`
	QtyCheck         ToleranceResult `json:"qty_check"`
	InvoicedQtyCheck ToleranceResult `json:"invoiced_qty_check"`
	PriceCheck       ToleranceResult `json:"price_check"`
	Status           string          `json:"status"`
}

// Matched reports whether all three checks on the line passed.
func (l MatchLine) Matched() bool {
	return l.QtyCheck.IsWithin && l.InvoicedQtyCheck.IsWithin && l.PriceCheck.IsWithin
}

// MatchReport is the document-level outcome of a three-way match.
type MatchReport struct {
	POID              string      `json:"po_id"`
	PODocNo           string      `json:"po_doc_no"`
	InvoiceID         string      `json:"invoice_id,omitempty"`
	Tolerance         float64     `json:"tolerance"`
	Lines             []MatchLine `json:"lines"`
	QtyMatched        bool        `json:"qty_matched"`
	PriceMatched      bool        `json:"price_matched"`
	InvoiceQtyMatched bool        `json:"invoice_qty_matched"`
	IsFullyMatched    bool        `json:"is_fully_matched"`
	POTotal           float64     `json:"po_total"`
	InvoiceTotal      *float64    `json:"invoice_total,omitempty"`
	TotalDelta        *float64    `json:"total_delta,omitempty"`
}

// EvaluateMatch compares a purchase order with its goods receipts and an
// invoice. invoice may be nil. Received quantities are summed across every
// receipt line pointing at a PO line; the first invoice line pointing at a
// PO line is the one compared. A PO line with no invoice line is compared
// against zero and flagged NotInvoiced.
func EvaluateMatch(po models.PurchaseOrder, receipts []models.GoodsReceipt, invoice *models.Invoice) MatchReport {
	tol := po.TolerancePercent()
	received := make(map[string]float64)
	for _, r := range receipts {
		for _, rl := range r.Lines {
			received[rl.POLineID] += rl.ReceivedQty
		}
	}

	invoiced := make(map[string]models.InvoiceLine)
	if invoice != nil {
		for _, il := range invoice.Lines {
			if _, seen := invoiced[il.POLineID]; !seen {
				invoiced[il.POLineID] = il
			}
		}
	}

	report := MatchReport{
		POID:              po.ID,
		PODocNo:           po.DocNo,
		Tolerance:         tol,
		Lines:             make([]MatchLine, 0, len(po.Lines)),
		QtyMatched:        true,
		PriceMatched:      true,
		InvoiceQtyMatched: true,
		POTotal:           po.GrandTotal,
	}

	for _, pl := range po.Lines {
		totalReceived := received[pl.ID]
		il, ok := invoiced[pl.ID]

		line := MatchLine{
			POLineID:         pl.ID,
			ItemName:         pl.ItemName,
			OrderedQty:       pl.Quantity,
			ReceivedQty:      totalReceived,
			InvoicedQty:      il.Quantity,
			POPrice:          pl.Price,
			InvoicedPrice:    il.Price,
			InvoiceLineID:    il.ID,
			NotInvoiced:      !ok,
			QtyCheck:         CheckTolerance(pl.Quantity, totalReceived, tol),
			InvoicedQtyCheck: CheckTolerance(totalReceived, il.Quantity, 0),
			PriceCheck:       CheckTolerance(pl.Price, il.Price, tol),
		}

		switch {
		case line.Matched():
			line.Status = LineMatched
		case !ok:
			line.Status = LineNotInvoiced
		default:
			line.Status = LineVariance
		}

		report.QtyMatched = report.QtyMatched && line.QtyCheck.IsWithin
		report.PriceMatched = report.PriceMatched && line.PriceCheck.IsWithin
		report.InvoiceQtyMatched = report.InvoiceQtyMatched && line.InvoicedQtyCheck.IsWithin
		report.Lines = append(report.Lines, line)
	}

	report.IsFullyMatched = report.QtyMatched && report.PriceMatched && report.InvoiceQtyMatched

	if invoice != nil {
		report.InvoiceID = invoice.ID
		total := invoice.GrandTotal
		delta := total - po.GrandTotal
		report.InvoiceTotal = &total
		report.TotalDelta = &delta
	}
	return report
}
