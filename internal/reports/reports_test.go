package reports

import (
	"testing"
	"time"

	"procure/internal/models"
)

func samplePOs() []models.PurchaseOrder {
	return []models.PurchaseOrder{
		{
			ID: "po-1", DocNo: "PO-001", VendorID: "v-1", Status: models.StatusReleased, DocDate: "2024-01-05",
			Lines: []models.POLine{
				{ID: "pol-1", ItemName: "Cable", Quantity: 10, Schedules: []models.POSchedule{
					{DeliveryDate: "2024-02-10", Quantity: 5}, {DeliveryDate: "2024-02-01", Quantity: 5},
				}},
				{ID: "pol-2", ItemName: "Switch", Quantity: 5},
			},
		},
		{
			ID: "po-2", DocNo: "PO-002", VendorID: "v-2", Status: models.StatusCanceled,
			Lines: []models.POLine{{ID: "pol-3", Quantity: 7}},
		},
	}
}

func sampleReceipts() []models.GoodsReceipt {
	return []models.GoodsReceipt{
		{ID: "grn-1", POID: "po-1", DocDate: "2024-01-30", Lines: []models.GRLine{
			{POLineID: "pol-1", ReceivedQty: 4},
			{POLineID: "pol-2", ReceivedQty: 5},
		}},
		{ID: "grn-2", POID: "po-1", DocDate: "2024-02-15", Lines: []models.GRLine{
			{POLineID: "pol-1", ReceivedQty: 2},
		}},
	}
}

func TestOpenPO(t *testing.T) {
	rows := OpenPO(samplePOs(), sampleReceipts(), map[string]string{"v-1": "Vendor A"})
	if len(rows) != 1 {
		t.Fatalf("Expected 1 open line, got %d: %+v", len(rows), rows)
	}
	r := rows[0]
	if r.LineID != "pol-1" {
		t.Errorf("Expected pol-1, got %s", r.LineID)
	}
	if r.ReceivedQty != 6 || r.RemainingQty != 4 {
		t.Errorf("Expected received 6 remaining 4, got %v/%v", r.ReceivedQty, r.RemainingQty)
	}
	if r.ETA != "2024-02-01" {
		t.Errorf("Expected ETA 2024-02-01, got %q", r.ETA)
	}
	if r.VendorName != "Vendor A" {
		t.Errorf("Expected Vendor A, got %q", r.VendorName)
	}
}

func TestOpenPO_Empty(t *testing.T) {
	rows := OpenPO(nil, nil, nil)
	if rows == nil || len(rows) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", rows)
	}
}

func TestAgingBucket(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, Bucket0To30}, {30, Bucket0To30}, {31, Bucket31To60}, {60, Bucket31To60},
		{61, Bucket61To90}, {90, Bucket61To90}, {91, BucketOver90}, {400, BucketOver90},
	}
	for _, tt := range tests {
		if got := AgingBucket(tt.days); got != tt.want {
			t.Errorf("AgingBucket(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestAPAging(t *testing.T) {
	asOf := time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)
	invoices := []models.Invoice{
		{ID: "i1", VendorInvoiceNo: "INV-1", VendorID: "v-1", DueDate: "2024-07-15", GrandTotal: 100, PaymentStatus: models.PaymentUnpaid},
		{ID: "i2", VendorInvoiceNo: "INV-2", VendorID: "v-1", DueDate: "2024-05-01", GrandTotal: 200, PaymentStatus: models.PaymentPartial},
		{ID: "i3", VendorInvoiceNo: "INV-3", VendorID: "v-2", DueDate: "2024-01-01", GrandTotal: 300, PaymentStatus: models.PaymentUnpaid},
		{ID: "i4", VendorInvoiceNo: "INV-4", VendorID: "v-2", DueDate: "2024-01-01", GrandTotal: 999, PaymentStatus: models.PaymentPaid},
		{ID: "i5", VendorInvoiceNo: "INV-5", VendorID: "v-2", DueDate: "not a date", GrandTotal: 5, PaymentStatus: models.PaymentUnpaid},
	}

	rows := APAging(invoices, map[string]string{"v-1": "A", "v-2": "B"}, asOf)
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}

	want := map[string]struct {
		days   int
		bucket string
	}{
		"i1": {0, Bucket0To30},
		"i2": {60, Bucket31To60},
		"i3": {181, BucketOver90},
	}
	for _, r := range rows {
		w := want[r.InvoiceID]
		if r.DaysOverdue != w.days || r.Bucket != w.bucket {
			t.Errorf("%s: expected %d days in %s, got %d in %s", r.InvoiceID, w.days, w.bucket, r.DaysOverdue, r.Bucket)
		}
	}
	if rows[0].InvoiceID != "i3" {
		t.Errorf("Expected most overdue first, got %s", rows[0].InvoiceID)
	}

	totals := AgingTotals(rows)
	if totals[Bucket0To30] != 100 || totals[Bucket31To60] != 200 || totals[Bucket61To90] != 0 || totals[BucketOver90] != 300 {
		t.Errorf("Unexpected totals %v", totals)
	}
}

func TestVendorPerformance(t *testing.T) {
	q := 92.0
	vendors := []models.Vendor{{ID: "v-1", Name: "Vendor A", QualityScore: &q}, {ID: "v-2", Name: "Vendor B"}}
	bids := []models.Bid{
		{RFQLineID: "l1", VendorID: "v-1", Price: 100},
		{RFQLineID: "l1", VendorID: "v-2", Price: 125},
		{RFQLineID: "l2", VendorID: "v-2", Price: 40},
	}

	rows := VendorPerformance(vendors, samplePOs(), sampleReceipts(), bids)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	a, b := rows[0], rows[1]
	if a.VendorID != "v-1" {
		t.Fatalf("Expected rows sorted by name, got %s first", a.VendorID)
	}
	// grn-1 pol-1 on time (01-30 <= 02-01), grn-1 pol-2 unscheduled, grn-2 pol-1 late.
	if a.Deliveries != 3 {
		t.Errorf("Expected 3 deliveries, got %d", a.Deliveries)
	}
	if a.OnTimeDeliveryRate != 66.67 {
		t.Errorf("Expected on-time rate 66.67, got %v", a.OnTimeDeliveryRate)
	}
	if a.QualityScore != 92 {
		t.Errorf("Expected quality 92, got %v", a.QualityScore)
	}
	if a.AvgPriceCompetitiveness != 100 {
		t.Errorf("Expected competitiveness 100, got %v", a.AvgPriceCompetitiveness)
	}
	if a.TotalPOs != 1 {
		t.Errorf("Expected 1 PO, got %d", a.TotalPOs)
	}

	// (100/125*100 + 40/40*100) / 2 = 90
	if b.AvgPriceCompetitiveness != 90 {
		t.Errorf("Expected competitiveness 90, got %v", b.AvgPriceCompetitiveness)
	}
	if b.QualityScore != 70 {
		t.Errorf("Expected default quality 70, got %v", b.QualityScore)
	}
	if b.Deliveries != 0 || b.OnTimeDeliveryRate != 0 {
		t.Errorf("Expected no deliveries for v-2, got %d/%v", b.Deliveries, b.OnTimeDeliveryRate)
	}
}
