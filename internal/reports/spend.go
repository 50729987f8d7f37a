package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"procure/internal/models"
)

type SpendByMonth struct {
	Month       int     `json:"month"`
	TotalAmount float64 `json:"total_amount"`
}

type SpendRow struct {
	VendorID    string         `json:"vendor_id"`
	Category    string         `json:"category"`
	TotalAmount float64        `json:"total_amount"`
	ByMonth     []SpendByMonth `json:"by_month"`
}

// spendStatuses are the PO states that commit money.
var spendStatuses = map[string]bool{
	models.StatusApproved: true,
	models.StatusReleased: true,
	models.StatusPosted:   true,
	models.StatusClosed:   true,
}

// SpendAnalysis totals PO grand totals per vendor for one calendar year,
// bucketed by the month of the PO date. Every row carries all twelve
// months. Rows are ordered by total spend, largest first; vendors without
// a name are listed under their id.
func SpendAnalysis(pos []models.PurchaseOrder, vendorNames map[string]string, year int) []SpendRow {
	type acc struct {
		total  decimal.Decimal
		months [12]decimal.Decimal
	}
	byVendor := make(map[string]*acc)
	for _, po := range pos {
		if !spendStatuses[po.Status] {
			continue
		}
		d, err := time.Parse(dateLayout, po.DocDate)
		if err != nil || d.Year() != year {
			continue
		}
		a, ok := byVendor[po.VendorID]
		if !ok {
			a = &acc{}
			byVendor[po.VendorID] = a
		}
		amount := decimal.NewFromFloat(po.GrandTotal)
		a.total = a.total.Add(amount)
		a.months[d.Month()-1] = a.months[d.Month()-1].Add(amount)
	}

	rows := make([]SpendRow, 0, len(byVendor))
	for id, a := range byVendor {
		name := vendorNames[id]
		if name == "" {
			name = id
		}
		row := SpendRow{
			VendorID:    id,
			Category:    name,
			TotalAmount: a.total.InexactFloat64(),
			ByMonth:     make([]SpendByMonth, 12),
		}
		for i, m := range a.months {
			row.ByMonth[i] = SpendByMonth{Month: i + 1, TotalAmount: m.InexactFloat64()}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalAmount != rows[j].TotalAmount {
			return rows[i].TotalAmount > rows[j].TotalAmount
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// MonthlySpend sums every row per month, for the overall chart.
func MonthlySpend(rows []SpendRow) []SpendByMonth {
	var months [12]decimal.Decimal
	for _, r := range rows {
		for _, m := range r.ByMonth {
			if m.Month >= 1 && m.Month <= 12 {
				months[m.Month-1] = months[m.Month-1].Add(decimal.NewFromFloat(m.TotalAmount))
			}
		}
	}
	out := make([]SpendByMonth, 12)
	for i, m := range months {
		out[i] = SpendByMonth{Month: i + 1, TotalAmount: m.InexactFloat64()}
	}
	return out
}
