package reports

import (
	"math"
	"sort"
	"time"

	"procure/internal/models"
)

const dateLayout = "2006-01-02"

// AP aging buckets.
const (
	Bucket0To30  = "0-30"
	Bucket31To60 = "31-60"
	Bucket61To90 = "61-90"
	BucketOver90 = ">90"
)

// Buckets lists the AP aging buckets in display order.
var Buckets = []string{Bucket0To30, Bucket31To60, Bucket61To90, BucketOver90}

type OpenPORow struct {
	POID         string  `json:"po_id"`
	PODocNo      string  `json:"po_doc_no"`
	PODate       string  `json:"po_date"`
	VendorID     string  `json:"vendor_id"`
	VendorName   string  `json:"vendor_name"`
	LineID       string  `json:"line_id"`
	ItemName     string  `json:"item_name"`
	OrderedQty   float64 `json:"ordered_qty"`
	ReceivedQty  float64 `json:"received_qty"`
	RemainingQty float64 `json:"remaining_qty"`
	ETA          string  `json:"eta"`
}

// OpenPO lists PO lines that still have quantity to receive. ETA is the
// earliest delivery schedule date on the line.
func OpenPO(pos []models.PurchaseOrder, receipts []models.GoodsReceipt, vendorNames map[string]string) []OpenPORow {
	received := make(map[string]float64)
	for _, r := range receipts {
		for _, rl := range r.Lines {
			received[rl.POLineID] += rl.ReceivedQty
		}
	}

	rows := []OpenPORow{}
	for _, po := range pos {
		if po.Status == models.StatusCanceled || po.Status == models.StatusClosed {
			continue
		}
		for _, l := range po.Lines {
			remaining := l.Quantity - received[l.ID]
			if remaining <= 0 {
				continue
			}
			rows = append(rows, OpenPORow{
				POID:         po.ID,
				PODocNo:      po.DocNo,
				PODate:       po.DocDate,
				VendorID:     po.VendorID,
				VendorName:   vendorNames[po.VendorID],
				LineID:       l.ID,
				ItemName:     l.ItemName,
				OrderedQty:   l.Quantity,
				ReceivedQty:  received[l.ID],
				RemainingQty: remaining,
				ETA:          earliestSchedule(l.Schedules),
			})
		}
	}
	return rows
}

func earliestSchedule(schedules []models.POSchedule) string {
	eta := ""
	for _, s := range schedules {
		if s.DeliveryDate != "" && (eta == "" || s.DeliveryDate < eta) {
			eta = s.DeliveryDate
		}
	}
	return eta
}

type APAgingRow struct {
	InvoiceID   string  `json:"invoice_id"`
	InvoiceNo   string  `json:"invoice_no"`
	VendorName  string  `json:"vendor_name"`
	DueDate     string  `json:"due_date"`
	Amount      float64 `json:"amount"`
	Bucket      string  `json:"bucket"`
	DaysOverdue int     `json:"days_overdue"`
}

// APAging ages every unpaid or partially paid invoice against asOf.
// Invoices not yet due land in the 0-30 bucket with zero days overdue.
// Invoices with an unparseable due date are skipped.
func APAging(invoices []models.Invoice, vendorNames map[string]string, asOf time.Time) []APAgingRow {
	asOf = truncateDay(asOf)
	rows := []APAgingRow{}
	for _, inv := range invoices {
		if inv.PaymentStatus == models.PaymentPaid {
			continue
		}
		due, err := time.Parse(dateLayout, inv.DueDate)
		if err != nil {
			continue
		}
		days := int(math.Floor(asOf.Sub(due).Hours() / 24))
		if days < 0 {
			days = 0
		}
		rows = append(rows, APAgingRow{
			InvoiceID:   inv.ID,
			InvoiceNo:   inv.VendorInvoiceNo,
			VendorName:  vendorNames[inv.VendorID],
			DueDate:     inv.DueDate,
			Amount:      inv.GrandTotal,
			Bucket:      AgingBucket(days),
			DaysOverdue: days,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].DaysOverdue > rows[j].DaysOverdue })
	return rows
}

// AgingBucket maps days overdue to its bucket.
func AgingBucket(daysOverdue int) string {
	switch {
	case daysOverdue <= 30:
		return Bucket0To30
	case daysOverdue <= 60:
		return Bucket31To60
	case daysOverdue <= 90:
		return Bucket61To90
	}
	return BucketOver90
}

// AgingTotals sums row amounts per bucket. Every bucket is present.
func AgingTotals(rows []APAgingRow) map[string]float64 {
	totals := make(map[string]float64, len(Buckets))
	for _, b := range Buckets {
		totals[b] = 0
	}
	for _, r := range rows {
		totals[r.Bucket] += r.Amount
	}
	return totals
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
