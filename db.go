package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"procure/internal/config"
	"procure/internal/models"
	"procure/internal/money"
	"procure/internal/store"
)

// initDB opens and migrates the database, then loads demo data into an
// empty database when seeding is enabled.
func initDB(ctx context.Context, cfg config.DBConfig, log *zap.Logger) (*sqlx.DB, *store.Store, error) {
	db, err := store.Open(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	s := store.New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	if cfg.Seed {
		seeded, err := seedDB(ctx, s)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("seed: %w", err)
		}
		if seeded {
			log.Info("seeded demo data", zap.String("path", cfg.Path))
		}
	}
	return db, s, nil
}

func f64(v float64) *float64 { return &v }

// seedDB loads a small demo dataset. It does nothing when vendors already
// exist and reports whether anything was written.
func seedDB(ctx context.Context, s *store.Store) (bool, error) {
	vendors, err := s.ListVendors(ctx)
	if err != nil {
		return false, err
	}
	if len(vendors) > 0 {
		return false, nil
	}

	for _, v := range []models.Vendor{
		{ID: "V-001", Name: "PT Sinar Elektrik", Email: "sales@sinar.example", QualityScore: f64(88)},
		{ID: "V-002", Name: "CV Mitra Teknik", Email: "order@mitra.example", QualityScore: f64(75)},
		{ID: "V-003", Name: "PT Nusantara Supply", Email: "rfq@nusantara.example"},
	} {
		if err := s.CreateVendor(ctx, &v); err != nil {
			return false, err
		}
	}
	if err := s.CreateTax(ctx, &models.Tax{ID: "PPN11", Name: "PPN 11%", Rate: 0.11}); err != nil {
		return false, err
	}
	if err := s.CreateWithholding(ctx, &models.Withholding{ID: "PPH23", Name: "PPh 23", Rate: 0.02}); err != nil {
		return false, err
	}
	if err := s.UpsertBudget(ctx, money.BudgetSummary{
		CostCenterID: "CC-IT", TotalBudget: 250000000, TotalCommitted: 80000000, TotalActual: 45000000,
	}); err != nil {
		return false, err
	}

	rates := map[string]float64{"PPN11": 0.11}

	// A fully matched PO and one with a price variance and a short receipt.
	po1Lines := []models.POLine{
		{ID: "PO-0001-1", ItemName: "Network switch 24 port", Quantity: 4, Price: 3500000, TaxID: "PPN11",
			Schedules: []models.POSchedule{{DeliveryDate: "2024-02-10", Quantity: 4}}},
		{ID: "PO-0001-2", ItemName: "Patch cable Cat6", Quantity: 100, Price: 25000, TaxID: "PPN11"},
	}
	po2Lines := []models.POLine{
		{ID: "PO-0002-1", ItemName: "Laptop 14 inch", Quantity: 10, Price: 12000000, TaxID: "PPN11",
			Schedules: []models.POSchedule{{DeliveryDate: "2024-03-01", Quantity: 10}}},
	}
	pos := []models.PurchaseOrder{
		{ID: "PO-0001", DocNo: "PO/2024/0001", Status: models.StatusReleased, VendorID: "V-001", Tolerance: f64(2), DocDate: "2024-01-25", Lines: po1Lines},
		{ID: "PO-0002", DocNo: "PO/2024/0002", Status: models.StatusReleased, VendorID: "V-002", Tolerance: f64(1), DocDate: "2024-02-05", Lines: po2Lines},
	}
	for i := range pos {
		for j := range pos[i].Lines {
			l := &pos[i].Lines[j]
			l.Total = money.LineTotal(l.Quantity, l.Price)
		}
		t := money.POTotals(pos[i].Lines, rates)
		pos[i].Subtotal, pos[i].TaxAmount, pos[i].GrandTotal = t.Subtotal, t.TaxAmount, t.GrandTotal
		if err := s.CreatePurchaseOrder(ctx, &pos[i]); err != nil {
			return false, err
		}
	}

	receipts := []models.GoodsReceipt{
		{ID: "GRN-0001", DocNo: "GRN/2024/0001", POID: "PO-0001", DeliveryOrderNo: "DO-7781", DocDate: "2024-02-08",
			Lines: []models.GRLine{
				{POLineID: "PO-0001-1", ReceivedQty: 4, QCResult: models.QCPass},
				{POLineID: "PO-0001-2", ReceivedQty: 100, QCResult: models.QCPass},
			}},
		{ID: "GRN-0002", DocNo: "GRN/2024/0002", POID: "PO-0002", DeliveryOrderNo: "DO-3310", DocDate: "2024-03-04",
			Lines: []models.GRLine{{POLineID: "PO-0002-1", ReceivedQty: 8, QCResult: models.QCPass}}},
	}
	for i := range receipts {
		if err := s.CreateReceipt(ctx, &receipts[i]); err != nil {
			return false, err
		}
	}

	invoices := []models.Invoice{
		{ID: "INV-0001", VendorInvoiceNo: "SE/INV/1102", VendorID: "V-001", POID: "PO-0001", DueDate: "2024-03-09",
			Lines: []models.InvoiceLine{
				{POLineID: "PO-0001-1", Quantity: 4, Price: 3500000},
				{POLineID: "PO-0001-2", Quantity: 100, Price: 25000},
			}},
		{ID: "INV-0002", VendorInvoiceNo: "MT-2024-044", VendorID: "V-002", POID: "PO-0002", DueDate: "2024-04-03",
			Lines: []models.InvoiceLine{{POLineID: "PO-0002-1", Quantity: 8, Price: 12300000}}},
	}
	for i := range invoices {
		inv := &invoices[i]
		for j := range inv.Lines {
			l := &inv.Lines[j]
			l.Total = money.LineTotal(l.Quantity, l.Price)
		}
		t := money.CalculateInvoiceTotals(inv.Lines, 0.11, 0.02)
		inv.Subtotal, inv.TaxAmount, inv.WithholdingAmount, inv.GrandTotal = t.Subtotal, t.TaxAmount, t.WithholdingAmount, t.GrandTotal
		if err := s.CreateInvoice(ctx, inv); err != nil {
			return false, err
		}
	}

	rfq := models.RFQ{
		ID: "RFQ-0001", DocNo: "RFQ/2024/0001", Status: models.StatusSubmitted, Deadline: "2024-04-15",
		Lines: []models.RFQLine{
			{ID: "RFQ-0001-1", ItemName: "Monitor 27 inch", Quantity: 20, UOM: "pcs"},
			{ID: "RFQ-0001-2", ItemName: "Docking station", Quantity: 20, UOM: "pcs"},
		},
	}
	if err := s.CreateRFQ(ctx, &rfq); err != nil {
		return false, err
	}
	for _, b := range []models.Bid{
		{RFQLineID: "RFQ-0001-1", VendorID: "V-001", Price: 3100000, LeadTimeDays: 14},
		{RFQLineID: "RFQ-0001-1", VendorID: "V-002", Price: 2950000, LeadTimeDays: 21},
		{RFQLineID: "RFQ-0001-1", VendorID: "V-003", Price: 3300000, LeadTimeDays: 7},
		{RFQLineID: "RFQ-0001-2", VendorID: "V-002", Price: 1800000, LeadTimeDays: 10},
		{RFQLineID: "RFQ-0001-2", VendorID: "V-003", Price: 1750000, LeadTimeDays: 12},
	} {
		if err := s.CreateBid(ctx, &b); err != nil {
			return false, err
		}
	}
	return true, nil
}
