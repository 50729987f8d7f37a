package testutil

import (
	"context"
	"testing"

	"procure/internal/models"
	"procure/internal/money"
	"procure/internal/store"
)

// SetupTestStore creates a migrated in-memory SQLite store with foreign
// keys enabled. The database is closed when the test ends.
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := store.New(db)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test DB: %v", err)
	}
	return s
}

func ptr(f float64) *float64 { return &f }

// Fixture holds the ids of the records created by SeedFixture.
type Fixture struct {
	VendorA, VendorB, VendorC string
	PO                        string
	POLineCable, POLineSwitch string
	Receipt                   string
	Invoice                   string
	RFQ                       string
	RFQLineLaptop             string
	RFQLineMonitor            string
	Tax                       string
	Withholding               string
	CostCenter                string
}

// SeedFixture loads a small procurement dataset:
//
//   - PO-TEST-001 from vendor A at 5% tolerance: 10 cables at 100 and 5
//     switches at 200, both taxed at 11%.
//   - One receipt for 10 cables and 5 switches.
//   - One invoice billing 10 cables at 104 and 5 switches at 200.
//   - RFQ-TEST-001: laptops bid by vendors A (100, 10 days) and B (90, 14
//     days), monitors bid by vendor C, which has no quality score.
//   - Cost center CC-OPS with 10,000,000 budget, 3,000,000 committed and
//     2,000,000 actual.
func SeedFixture(t *testing.T, s *store.Store) Fixture {
	t.Helper()
	ctx := context.Background()
	f := Fixture{
		VendorA: "V-A", VendorB: "V-B", VendorC: "V-C",
		PO: "PO-1", POLineCable: "POL-1", POLineSwitch: "POL-2",
		Receipt: "GRN-1", Invoice: "INV-1",
		RFQ: "RFQ-1", RFQLineLaptop: "RFQL-1", RFQLineMonitor: "RFQL-2",
		Tax: "VAT11", Withholding: "WHT2", CostCenter: "CC-OPS",
	}

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	must(s.CreateVendor(ctx, &models.Vendor{ID: f.VendorA, Name: "Alpha Supply", QualityScore: ptr(90)}))
	must(s.CreateVendor(ctx, &models.Vendor{ID: f.VendorB, Name: "Beta Trading", QualityScore: ptr(70)}))
	must(s.CreateVendor(ctx, &models.Vendor{ID: f.VendorC, Name: "Gamma Parts"}))
	must(s.CreateTax(ctx, &models.Tax{ID: f.Tax, Name: "VAT 11%", Rate: 0.11}))
	must(s.CreateWithholding(ctx, &models.Withholding{ID: f.Withholding, Name: "PPh 23", Rate: 0.02}))
	must(s.UpsertBudget(ctx, money.BudgetSummary{
		CostCenterID: f.CostCenter, TotalBudget: 10000000, TotalCommitted: 3000000, TotalActual: 2000000,
	}))

	must(s.CreatePurchaseOrder(ctx, &models.PurchaseOrder{
		ID: f.PO, DocNo: "PO-TEST-001", Status: models.StatusReleased, VendorID: f.VendorA,
		Tolerance: ptr(5), Subtotal: 2000, TaxAmount: 220, GrandTotal: 2220, DocDate: "2024-01-05",
		Lines: []models.POLine{
			{ID: f.POLineCable, ItemName: "Cable", Quantity: 10, Price: 100, Total: 1000, TaxID: f.Tax,
				Schedules: []models.POSchedule{{DeliveryDate: "2024-01-20", Quantity: 10}}},
			{ID: f.POLineSwitch, ItemName: "Switch", Quantity: 5, Price: 200, Total: 1000, TaxID: f.Tax},
		},
	}))
	must(s.CreateReceipt(ctx, &models.GoodsReceipt{
		ID: f.Receipt, DocNo: "GRN-TEST-001", POID: f.PO, DocDate: "2024-01-18",
		Lines: []models.GRLine{
			{POLineID: f.POLineCable, ReceivedQty: 10},
			{POLineID: f.POLineSwitch, ReceivedQty: 5},
		},
	}))
	must(s.CreateInvoice(ctx, &models.Invoice{
		ID: f.Invoice, VendorInvoiceNo: "INV-TEST-001", VendorID: f.VendorA, POID: f.PO,
		Subtotal: 2040, TaxAmount: 224.4, WithholdingAmount: 40.8, GrandTotal: 2223.6, DueDate: "2024-02-15",
		Lines: []models.InvoiceLine{
			{POLineID: f.POLineCable, Quantity: 10, Price: 104, Total: 1040},
			{POLineID: f.POLineSwitch, Quantity: 5, Price: 200, Total: 1000},
		},
	}))

	must(s.CreateRFQ(ctx, &models.RFQ{
		ID: f.RFQ, DocNo: "RFQ-TEST-001", Status: models.StatusSubmitted, Deadline: "2024-03-01",
		Lines: []models.RFQLine{
			{ID: f.RFQLineLaptop, ItemName: "Laptop", Quantity: 10, UOM: "pcs"},
			{ID: f.RFQLineMonitor, ItemName: "Monitor", Quantity: 4, UOM: "pcs"},
		},
	}))
	must(s.CreateBid(ctx, &models.Bid{ID: "BID-1", RFQLineID: f.RFQLineLaptop, VendorID: f.VendorA, Price: 100, LeadTimeDays: 10}))
	must(s.CreateBid(ctx, &models.Bid{ID: "BID-2", RFQLineID: f.RFQLineLaptop, VendorID: f.VendorB, Price: 90, LeadTimeDays: 14}))
	must(s.CreateBid(ctx, &models.Bid{ID: "BID-3", RFQLineID: f.RFQLineMonitor, VendorID: f.VendorC, Price: 50, LeadTimeDays: 5}))

	return f
}
