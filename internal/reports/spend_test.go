package reports

import (
	"testing"

	"procure/internal/models"
)

func TestSpendAnalysis(t *testing.T) {
	pos := []models.PurchaseOrder{
		{ID: "po-1", VendorID: "v-1", Status: models.StatusReleased, DocDate: "2024-01-05", GrandTotal: 0.1},
		{ID: "po-2", VendorID: "v-1", Status: models.StatusClosed, DocDate: "2024-01-20", GrandTotal: 0.2},
		{ID: "po-3", VendorID: "v-1", Status: models.StatusApproved, DocDate: "2024-03-01", GrandTotal: 500},
		{ID: "po-4", VendorID: "v-2", Status: models.StatusPosted, DocDate: "2024-12-31", GrandTotal: 1000},
		{ID: "po-5", VendorID: "v-2", Status: models.StatusCanceled, DocDate: "2024-05-01", GrandTotal: 9999},
		{ID: "po-6", VendorID: "v-2", Status: models.StatusDraft, DocDate: "2024-05-01", GrandTotal: 9999},
		{ID: "po-7", VendorID: "v-1", Status: models.StatusReleased, DocDate: "2023-12-31", GrandTotal: 9999},
		{ID: "po-8", VendorID: "v-3", Status: models.StatusReleased, DocDate: "not a date", GrandTotal: 9999},
	}
	rows := SpendAnalysis(pos, map[string]string{"v-1": "Alpha"}, 2024)

	if len(rows) != 2 {
		t.Fatalf("Expected 2 vendors, got %d: %+v", len(rows), rows)
	}
	tests := []struct {
		row      SpendRow
		category string
		total    float64
		months   map[int]float64
	}{
		{rows[0], "v-2", 1000, map[int]float64{12: 1000}},
		{rows[1], "Alpha", 500.3, map[int]float64{1: 0.3, 3: 500}},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			if tt.row.Category != tt.category {
				t.Errorf("Expected category %q, got %q", tt.category, tt.row.Category)
			}
			if tt.row.TotalAmount != tt.total {
				t.Errorf("Expected total %v, got %v", tt.total, tt.row.TotalAmount)
			}
			if len(tt.row.ByMonth) != 12 {
				t.Fatalf("Expected 12 months, got %d", len(tt.row.ByMonth))
			}
			for i, m := range tt.row.ByMonth {
				if m.Month != i+1 {
					t.Errorf("Expected month %d at %d, got %d", i+1, i, m.Month)
				}
				if m.TotalAmount != tt.months[m.Month] {
					t.Errorf("Month %d: expected %v, got %v", m.Month, tt.months[m.Month], m.TotalAmount)
				}
			}
		})
	}

	overall := MonthlySpend(rows)
	if overall[0].TotalAmount != 0.3 || overall[2].TotalAmount != 500 || overall[11].TotalAmount != 1000 {
		t.Errorf("Unexpected monthly totals %+v", overall)
	}
}

func TestSpendAnalysis_Empty(t *testing.T) {
	rows := SpendAnalysis(nil, nil, 2024)
	if rows == nil || len(rows) != 0 {
		t.Errorf("Expected empty non-nil rows, got %#v", rows)
	}
	if m := MonthlySpend(rows); len(m) != 12 || m[5].TotalAmount != 0 {
		t.Errorf("Expected twelve zero months, got %+v", m)
	}
}
