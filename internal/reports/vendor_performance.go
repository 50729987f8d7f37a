package reports

import (
	"sort"

	"procure/internal/models"
	"procure/internal/money"
	"procure/internal/scoring"
)

type VendorPerformanceRow struct {
	VendorID                string  `json:"vendor_id"`
	VendorName              string  `json:"vendor_name"`
	OnTimeDeliveryRate      float64 `json:"on_time_delivery_rate"`
	Deliveries              int     `json:"deliveries"`
	QualityScore            float64 `json:"quality_score"`
	AvgPriceCompetitiveness float64 `json:"avg_price_competitiveness"`
	BidsConsidered          int     `json:"bids_considered"`
	TotalPOs                int     `json:"total_pos"`
}

// VendorPerformance summarises each vendor. A receipt line is on time when
// the receipt date is not after the earliest scheduled delivery of its PO
// line; lines without a schedule count as on time. Price competitiveness is
// the average of (lowest bid on the line / vendor's bid * 100) over the
// lines the vendor bid on.
func VendorPerformance(vendors []models.Vendor, pos []models.PurchaseOrder, receipts []models.GoodsReceipt, bids []models.Bid) []VendorPerformanceRow {
	poVendor := make(map[string]string)
	lineDue := make(map[string]string)
	poCount := make(map[string]int)
	for _, po := range pos {
		poVendor[po.ID] = po.VendorID
		poCount[po.VendorID]++
		for _, l := range po.Lines {
			lineDue[l.ID] = earliestSchedule(l.Schedules)
		}
	}

	onTime := make(map[string]int)
	deliveries := make(map[string]int)
	for _, r := range receipts {
		vendorID, ok := poVendor[r.POID]
		if !ok {
			continue
		}
		for _, rl := range r.Lines {
			deliveries[vendorID]++
			due := lineDue[rl.POLineID]
			if due == "" || (r.DocDate != "" && r.DocDate[:min(len(r.DocDate), len(dateLayout))] <= due) {
				onTime[vendorID]++
			}
		}
	}

	minPrice := make(map[string]float64)
	for _, b := range bids {
		if b.Price <= 0 {
			continue
		}
		if cur, ok := minPrice[b.RFQLineID]; !ok || b.Price < cur {
			minPrice[b.RFQLineID] = b.Price
		}
	}
	compSum := make(map[string]float64)
	compN := make(map[string]int)
	for _, b := range bids {
		if b.Price <= 0 {
			continue
		}
		compSum[b.VendorID] += minPrice[b.RFQLineID] / b.Price * 100
		compN[b.VendorID]++
	}

	quality := scoring.QualityFromVendors(vendors)
	rows := make([]VendorPerformanceRow, 0, len(vendors))
	for _, v := range vendors {
		row := VendorPerformanceRow{
			VendorID:       v.ID,
			VendorName:     v.Name,
			Deliveries:     deliveries[v.ID],
			QualityScore:   scoring.DefaultQualityScore,
			BidsConsidered: compN[v.ID],
			TotalPOs:       poCount[v.ID],
		}
		if q, ok := quality.QualityScore(v.ID); ok {
			row.QualityScore = q
		}
		if n := deliveries[v.ID]; n > 0 {
			row.OnTimeDeliveryRate = money.Round(float64(onTime[v.ID])/float64(n)*100, 2)
		}
		if n := compN[v.ID]; n > 0 {
			row.AvgPriceCompetitiveness = money.Round(compSum[v.ID]/float64(n), 2)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].VendorName < rows[j].VendorName })
	return rows
}
