package store_test

import (
	"context"
	"errors"
	"testing"

	"procure/internal/models"
	"procure/internal/store"
	"procure/internal/testutil"
)

func TestGetPurchaseOrder(t *testing.T) {
	s := testutil.SetupTestStore(t)
	f := testutil.SeedFixture(t, s)

	po, err := s.GetPurchaseOrder(context.Background(), f.PO)
	if err != nil {
		t.Fatalf("GetPurchaseOrder: %v", err)
	}
	if po.DocNo != "PO-TEST-001" || po.Tolerance == nil || *po.Tolerance != 5 {
		t.Errorf("Unexpected header %+v", po)
	}
	if len(po.Lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(po.Lines))
	}
	if po.Lines[0].ID != f.POLineCable {
		t.Errorf("Expected insertion order, got %s first", po.Lines[0].ID)
	}
	if len(po.Lines[0].Schedules) != 1 || po.Lines[0].Schedules[0].DeliveryDate != "2024-01-20" {
		t.Errorf("Expected one schedule on cable line, got %+v", po.Lines[0].Schedules)
	}
	if po.Lines[1].Schedules == nil {
		t.Error("Expected empty non-nil schedules")
	}
	if po.CreatedAt == "" {
		t.Error("Expected created_at default")
	}
}

func TestGetPurchaseOrder_NotFound(t *testing.T) {
	s := testutil.SetupTestStore(t)
	_, err := s.GetPurchaseOrder(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListPurchaseOrders(t *testing.T) {
	s := testutil.SetupTestStore(t)
	f := testutil.SeedFixture(t, s)
	ctx := context.Background()

	err := s.CreatePurchaseOrder(ctx, &models.PurchaseOrder{
		DocNo: "PO-TEST-002", VendorID: f.VendorB, DocDate: "2024-02-01",
		Lines: []models.POLine{{ItemName: "Rack", Quantity: 1, Price: 500}},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder: %v", err)
	}

	pos, err := s.ListPurchaseOrders(ctx)
	if err != nil {
		t.Fatalf("ListPurchaseOrders: %v", err)
	}
	if len(pos) != 2 {
		t.Fatalf("Expected 2 POs, got %d", len(pos))
	}
	if len(pos[0].Lines) != 2 || len(pos[1].Lines) != 1 {
		t.Errorf("Lines attached to wrong orders: %d/%d", len(pos[0].Lines), len(pos[1].Lines))
	}
	if pos[1].Status != models.StatusDraft {
		t.Errorf("Expected default draft status, got %q", pos[1].Status)
	}
	if pos[1].Tolerance != nil {
		t.Errorf("Expected unset tolerance to stay NULL, got %v", *pos[1].Tolerance)
	}
	if pos[1].Lines[0].ID == "" {
		t.Error("Expected generated line id")
	}
}

func TestCreatePurchaseOrder_RollsBackOnError(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()
	// vendor does not exist, foreign key fails
	err := s.CreatePurchaseOrder(ctx, &models.PurchaseOrder{DocNo: "PO-X", VendorID: "ghost"})
	if err == nil {
		t.Fatal("Expected foreign key error")
	}
	pos, _ := s.ListPurchaseOrders(ctx)
	if len(pos) != 0 {
		t.Errorf("Expected no orders after rollback, got %d", len(pos))
	}
}

func TestReceiptsAndInvoices(t *testing.T) {
	s := testutil.SetupTestStore(t)
	f := testutil.SeedFixture(t, s)
	ctx := context.Background()

	receipts, err := s.ListReceiptsForPO(ctx, f.PO)
	if err != nil {
		t.Fatalf("ListReceiptsForPO: %v", err)
	}
	if len(receipts) != 1 || len(receipts[0].Lines) != 2 {
		t.Fatalf("Expected one receipt with 2 lines, got %+v", receipts)
	}
	if receipts[0].Lines[0].QCResult != models.QCPass {
		t.Errorf("Expected default QC PASS, got %q", receipts[0].Lines[0].QCResult)
	}

	none, err := s.ListReceiptsForPO(ctx, "other")
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("Expected empty receipts, got %v (%v)", none, err)
	}

	inv, err := s.GetInvoiceForPO(ctx, f.PO)
	if err != nil {
		t.Fatalf("GetInvoiceForPO: %v", err)
	}
	if inv.ID != f.Invoice || len(inv.Lines) != 2 {
		t.Errorf("Unexpected invoice %+v", inv)
	}
	if inv.PaymentStatus != models.PaymentUnpaid {
		t.Errorf("Expected UNPAID, got %q", inv.PaymentStatus)
	}

	if _, err := s.GetInvoiceForPO(ctx, "other"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetInvoice(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	all, err := s.ListInvoices(ctx)
	if err != nil || len(all) != 1 {
		t.Errorf("Expected 1 invoice, got %d (%v)", len(all), err)
	}
}

func TestGetInvoiceForPO_Latest(t *testing.T) {
	s := testutil.SetupTestStore(t)
	f := testutil.SeedFixture(t, s)
	ctx := context.Background()

	err := s.CreateInvoice(ctx, &models.Invoice{ID: "INV-2", VendorID: f.VendorA, POID: f.PO,
		Lines: []models.InvoiceLine{{POLineID: f.POLineCable, Quantity: 1, Price: 100}}})
	if err != nil {
		t.Fatal(err)
	}
	inv, err := s.GetInvoiceForPO(ctx, f.PO)
	if err != nil {
		t.Fatal(err)
	}
	if inv.ID != "INV-2" {
		t.Errorf("Expected latest invoice INV-2, got %s", inv.ID)
	}
}

func TestRFQAndBids(t *testing.T) {
	s := testutil.SetupTestStore(t)
	f := testutil.SeedFixture(t, s)
	ctx := context.Background()

	rfq, err := s.GetRFQ(ctx, f.RFQ)
	if err != nil {
		t.Fatalf("GetRFQ: %v", err)
	}
	if len(rfq.Lines) != 2 {
		t.Errorf("Expected 2 RFQ lines, got %d", len(rfq.Lines))
	}
	bids, err := s.ListBidsForRFQ(ctx, f.RFQ)
	if err != nil {
		t.Fatalf("ListBidsForRFQ: %v", err)
	}
	if len(bids) != 3 {
		t.Errorf("Expected 3 bids, got %d", len(bids))
	}
	if _, err := s.GetRFQ(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	dup := models.Bid{RFQLineID: f.RFQLineLaptop, VendorID: f.VendorA, Price: 1, LeadTimeDays: 1}
	if err := s.CreateBid(ctx, &dup); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for a second bid by the same vendor, got %v", err)
	}
}

func TestVendorQuality(t *testing.T) {
	s := testutil.SetupTestStore(t)
	f := testutil.SeedFixture(t, s)

	q, err := s.VendorQuality(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if q[f.VendorA] != 90 || q[f.VendorB] != 70 {
		t.Errorf("Unexpected scores %v", q)
	}
	if _, ok := q[f.VendorC]; ok {
		t.Error("Expected vendor without score to be absent")
	}

	vendors, err := s.ListVendors(context.Background())
	if err != nil || len(vendors) != 3 {
		t.Fatalf("Expected 3 vendors, got %d (%v)", len(vendors), err)
	}
	if vendors[2].QualityScore != nil {
		t.Errorf("Expected nil quality for Gamma, got %v", *vendors[2].QualityScore)
	}
}

func TestSaveAwards_ReplacesPerLine(t *testing.T) {
	s := testutil.SetupTestStore(t)
	f := testutil.SeedFixture(t, s)
	ctx := context.Background()

	first := []models.Award{
		{ID: "A1", RFQLineID: f.RFQLineLaptop, VendorID: f.VendorA, AwardedQty: 10, AwardedAt: "2024-03-02T00:00:00Z"},
		{ID: "A2", RFQLineID: f.RFQLineMonitor, VendorID: f.VendorC, AwardedQty: 4, AwardedAt: "2024-03-02T00:00:00Z"},
	}
	if err := s.SaveAwards(ctx, first); err != nil {
		t.Fatalf("SaveAwards: %v", err)
	}
	second := []models.Award{
		{ID: "A3", RFQLineID: f.RFQLineLaptop, VendorID: f.VendorB, AwardedQty: 8, AwardedAt: "2024-03-03T00:00:00Z"},
	}
	if err := s.SaveAwards(ctx, second); err != nil {
		t.Fatalf("SaveAwards: %v", err)
	}

	awards, err := s.ListAwards(ctx, f.RFQ)
	if err != nil {
		t.Fatal(err)
	}
	if len(awards) != 2 {
		t.Fatalf("Expected 2 awards, got %d", len(awards))
	}
	byLine := map[string]models.Award{}
	for _, a := range awards {
		byLine[a.RFQLineID] = a
	}
	if byLine[f.RFQLineLaptop].ID != "A3" {
		t.Errorf("Expected laptop award replaced by A3, got %s", byLine[f.RFQLineLaptop].ID)
	}
	if byLine[f.RFQLineMonitor].ID != "A2" {
		t.Errorf("Expected monitor award kept, got %s", byLine[f.RFQLineMonitor].ID)
	}
}

func TestSaveAwards_AssignsIDAndTime(t *testing.T) {
	s := testutil.SetupTestStore(t)
	f := testutil.SeedFixture(t, s)

	awards := []models.Award{{RFQLineID: f.RFQLineMonitor, VendorID: f.VendorC, AwardedQty: 4}}
	if err := s.SaveAwards(context.Background(), awards); err != nil {
		t.Fatalf("SaveAwards: %v", err)
	}
	if awards[0].ID == "" || awards[0].AwardedAt == "" {
		t.Errorf("Expected id and award time written back, got %+v", awards[0])
	}

	stored, err := s.ListAwards(context.Background(), f.RFQ)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].ID != awards[0].ID || stored[0].AwardedAt != awards[0].AwardedAt {
		t.Errorf("Expected stored award %+v, got %+v", awards[0], stored)
	}
}

func TestSaveAwards_AtomicOnFailure(t *testing.T) {
	s := testutil.SetupTestStore(t)
	f := testutil.SeedFixture(t, s)
	ctx := context.Background()

	if err := s.SaveAwards(ctx, []models.Award{{ID: "A1", RFQLineID: f.RFQLineLaptop, VendorID: f.VendorA, AwardedQty: 10, AwardedAt: "x"}}); err != nil {
		t.Fatal(err)
	}
	bad := []models.Award{
		{ID: "A2", RFQLineID: f.RFQLineLaptop, VendorID: f.VendorB, AwardedQty: 5, AwardedAt: "x"},
		{ID: "A3", RFQLineID: f.RFQLineMonitor, VendorID: "ghost", AwardedQty: 4, AwardedAt: "x"},
	}
	if err := s.SaveAwards(ctx, bad); err == nil {
		t.Fatal("Expected error for unknown vendor")
	}
	awards, _ := s.ListAwards(ctx, f.RFQ)
	if len(awards) != 1 || awards[0].ID != "A1" {
		t.Errorf("Expected original award to survive, got %+v", awards)
	}
}

func TestRatesAndBudget(t *testing.T) {
	s := testutil.SetupTestStore(t)
	f := testutil.SeedFixture(t, s)
	ctx := context.Background()

	rates, err := s.TaxRates(ctx)
	if err != nil || rates[f.Tax] != 0.11 {
		t.Errorf("Expected VAT 0.11, got %v (%v)", rates, err)
	}
	if r, err := s.TaxRate(ctx, f.Tax); err != nil || r != 0.11 {
		t.Errorf("Expected 0.11, got %v (%v)", r, err)
	}
	if r, err := s.WithholdingRate(ctx, f.Withholding); err != nil || r != 0.02 {
		t.Errorf("Expected 0.02, got %v (%v)", r, err)
	}
	if _, err := s.WithholdingRate(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	b, err := s.GetBudget(ctx, f.CostCenter)
	if err != nil {
		t.Fatal(err)
	}
	if b.Remaining() != 5000000 {
		t.Errorf("Expected remaining 5000000, got %v", b.Remaining())
	}
}

func TestAuditLog(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()

	if err := s.InsertAuditLog(ctx, models.AuditEntry{Action: "AWARD", Module: "rfq", RecordID: "RFQ-1", Summary: "awarded"}); err != nil {
		t.Fatal(err)
	}
	entries, err := s.ListAuditLog(ctx, "rfq")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Username != "system" {
		t.Errorf("Expected default username system, got %q", entries[0].Username)
	}
}
