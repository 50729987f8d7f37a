package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"procure/internal/models"
	"procure/internal/money"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate")

type Store struct {
	DB *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{DB: db}
}

const (
	poColumns       = `id, doc_no, status, vendor_id, tolerance, subtotal, tax_amount, grand_total, doc_date, created_at`
	poLineColumns   = `id, po_id, item_name, description, quantity, price, total, tax_id`
	scheduleColumns = `id, po_line_id, delivery_date, quantity`
	receiptColumns  = `id, doc_no, status, po_id, delivery_order_no, doc_date`
	grLineColumns   = `id, receipt_id, po_line_id, received_qty, qc_result, batch_no`
	invoiceColumns  = `id, vendor_invoice_no, status, vendor_id, po_id, subtotal, tax_amount, withholding_amount, grand_total, due_date, payment_status, created_at`
	invLineColumns  = `id, invoice_id, po_line_id, grn_line_id, se_line_id, description, quantity, price, total`
	bidColumns      = `b.id, b.rfq_line_id, b.vendor_id, b.price, b.lead_time_days, b.remarks`
)

func (s *Store) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := s.DB.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// selectIn runs a query with a single IN (?) placeholder expanded over ids.
func (s *Store) selectIn(ctx context.Context, dest interface{}, query string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	return s.DB.SelectContext(ctx, dest, s.DB.Rebind(q), args...)
}

func (s *Store) GetPurchaseOrder(ctx context.Context, id string) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	if err := s.get(ctx, &po, `SELECT `+poColumns+` FROM purchase_orders WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("get purchase order %s: %w", id, err)
	}
	pos := []models.PurchaseOrder{po}
	if err := s.attachPOLines(ctx, pos); err != nil {
		return nil, err
	}
	return &pos[0], nil
}

func (s *Store) ListPurchaseOrders(ctx context.Context) ([]models.PurchaseOrder, error) {
	pos := []models.PurchaseOrder{}
	if err := s.DB.SelectContext(ctx, &pos, `SELECT `+poColumns+` FROM purchase_orders ORDER BY doc_date, doc_no`); err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	if err := s.attachPOLines(ctx, pos); err != nil {
		return nil, err
	}
	return pos, nil
}

func (s *Store) attachPOLines(ctx context.Context, pos []models.PurchaseOrder) error {
	ids := make([]string, len(pos))
	for i, po := range pos {
		ids[i] = po.ID
		pos[i].Lines = []models.POLine{}
	}

	var lines []models.POLine
	if err := s.selectIn(ctx, &lines, `SELECT `+poLineColumns+` FROM po_lines WHERE po_id IN (?) ORDER BY rowid`, ids); err != nil {
		return fmt.Errorf("load po lines: %w", err)
	}
	lineIDs := make([]string, len(lines))
	for i, l := range lines {
		lineIDs[i] = l.ID
	}
	var schedules []models.POSchedule
	if err := s.selectIn(ctx, &schedules, `SELECT `+scheduleColumns+` FROM po_schedules WHERE po_line_id IN (?) ORDER BY delivery_date`, lineIDs); err != nil {
		return fmt.Errorf("load po schedules: %w", err)
	}

	byLine := make(map[string][]models.POSchedule)
	for _, sc := range schedules {
		byLine[sc.POLineID] = append(byLine[sc.POLineID], sc)
	}
	idx := make(map[string]int, len(pos))
	for i, po := range pos {
		idx[po.ID] = i
	}
	for _, l := range lines {
		l.Schedules = byLine[l.ID]
		if l.Schedules == nil {
			l.Schedules = []models.POSchedule{}
		}
		i := idx[l.POID]
		pos[i].Lines = append(pos[i].Lines, l)
	}
	return nil
}

func (s *Store) ListReceiptsForPO(ctx context.Context, poID string) ([]models.GoodsReceipt, error) {
	receipts := []models.GoodsReceipt{}
	if err := s.DB.SelectContext(ctx, &receipts, `SELECT `+receiptColumns+` FROM goods_receipts WHERE po_id = ? ORDER BY doc_date, doc_no`, poID); err != nil {
		return nil, fmt.Errorf("list receipts for %s: %w", poID, err)
	}
	return receipts, s.attachGRLines(ctx, receipts)
}

func (s *Store) ListReceipts(ctx context.Context) ([]models.GoodsReceipt, error) {
	receipts := []models.GoodsReceipt{}
	if err := s.DB.SelectContext(ctx, &receipts, `SELECT `+receiptColumns+` FROM goods_receipts ORDER BY doc_date, doc_no`); err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	return receipts, s.attachGRLines(ctx, receipts)
}

func (s *Store) attachGRLines(ctx context.Context, receipts []models.GoodsReceipt) error {
	ids := make([]string, len(receipts))
	idx := make(map[string]int, len(receipts))
	for i, r := range receipts {
		ids[i] = r.ID
		idx[r.ID] = i
		receipts[i].Lines = []models.GRLine{}
	}
	var lines []models.GRLine
	if err := s.selectIn(ctx, &lines, `SELECT `+grLineColumns+` FROM gr_lines WHERE receipt_id IN (?) ORDER BY rowid`, ids); err != nil {
		return fmt.Errorf("load receipt lines: %w", err)
	}
	for _, l := range lines {
		i := idx[l.ReceiptID]
		receipts[i].Lines = append(receipts[i].Lines, l)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.get(ctx, &inv, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("get invoice %s: %w", id, err)
	}
	invs := []models.Invoice{inv}
	if err := s.attachInvoiceLines(ctx, invs); err != nil {
		return nil, err
	}
	return &invs[0], nil
}

// GetInvoiceForPO returns the most recently created invoice billed against
// the purchase order.
func (s *Store) GetInvoiceForPO(ctx context.Context, poID string) (*models.Invoice, error) {
	var inv models.Invoice
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE po_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`
	if err := s.get(ctx, &inv, q, poID); err != nil {
		return nil, fmt.Errorf("get invoice for %s: %w", poID, err)
	}
	invs := []models.Invoice{inv}
	if err := s.attachInvoiceLines(ctx, invs); err != nil {
		return nil, err
	}
	return &invs[0], nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	invs := []models.Invoice{}
	if err := s.DB.SelectContext(ctx, &invs, `SELECT `+invoiceColumns+` FROM invoices ORDER BY due_date, id`); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invs, s.attachInvoiceLines(ctx, invs)
}

func (s *Store) attachInvoiceLines(ctx context.Context, invs []models.Invoice) error {
	ids := make([]string, len(invs))
	idx := make(map[string]int, len(invs))
	for i, inv := range invs {
		ids[i] = inv.ID
		idx[inv.ID] = i
		invs[i].Lines = []models.InvoiceLine{}
	}
	var lines []models.InvoiceLine
	if err := s.selectIn(ctx, &lines, `SELECT `+invLineColumns+` FROM invoice_lines WHERE invoice_id IN (?) ORDER BY rowid`, ids); err != nil {
		return fmt.Errorf("load invoice lines: %w", err)
	}
	for _, l := range lines {
		i := idx[l.InvoiceID]
		invs[i].Lines = append(invs[i].Lines, l)
	}
	return nil
}

func (s *Store) GetRFQ(ctx context.Context, id string) (*models.RFQ, error) {
	var rfq models.RFQ
	if err := s.get(ctx, &rfq, `SELECT id, doc_no, status, deadline, created_at FROM rfqs WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("get rfq %s: %w", id, err)
	}
	rfq.Lines = []models.RFQLine{}
	q := `SELECT id, rfq_id, item_name, description, quantity, uom FROM rfq_lines WHERE rfq_id = ? ORDER BY rowid`
	if err := s.DB.SelectContext(ctx, &rfq.Lines, q, id); err != nil {
		return nil, fmt.Errorf("load rfq lines: %w", err)
	}
	return &rfq, nil
}

func (s *Store) ListBidsForRFQ(ctx context.Context, rfqID string) ([]models.Bid, error) {
	bids := []models.Bid{}
	q := `SELECT ` + bidColumns + ` FROM rfq_bids b JOIN rfq_lines l ON l.id = b.rfq_line_id WHERE l.rfq_id = ? ORDER BY b.rowid`
	if err := s.DB.SelectContext(ctx, &bids, q, rfqID); err != nil {
		return nil, fmt.Errorf("list bids for %s: %w", rfqID, err)
	}
	return bids, nil
}

func (s *Store) ListBids(ctx context.Context) ([]models.Bid, error) {
	bids := []models.Bid{}
	if err := s.DB.SelectContext(ctx, &bids, `SELECT `+bidColumns+` FROM rfq_bids b ORDER BY b.rowid`); err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	return bids, nil
}

func (s *Store) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	vendors := []models.Vendor{}
	q := `SELECT id, name, email, phone, address, quality_score, created_at FROM vendors ORDER BY name`
	if err := s.DB.SelectContext(ctx, &vendors, q); err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	return vendors, nil
}

// VendorNames maps vendor id to name.
func (s *Store) VendorNames(ctx context.Context) (map[string]string, error) {
	vendors, err := s.ListVendors(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(vendors))
	for _, v := range vendors {
		names[v.ID] = v.Name
	}
	return names, nil
}

// VendorQuality returns the recorded quality score per vendor. Vendors
// without a score are absent from the map.
func (s *Store) VendorQuality(ctx context.Context) (map[string]float64, error) {
	rows := []struct {
		ID    string  `db:"id"`
		Score float64 `db:"quality_score"`
	}{}
	if err := s.DB.SelectContext(ctx, &rows, `SELECT id, quality_score FROM vendors WHERE quality_score IS NOT NULL`); err != nil {
		return nil, fmt.Errorf("vendor quality: %w", err)
	}
	q := make(map[string]float64, len(rows))
	for _, r := range rows {
		q[r.ID] = r.Score
	}
	return q, nil
}

func (s *Store) ListAwards(ctx context.Context, rfqID string) ([]models.Award, error) {
	awards := []models.Award{}
	q := `SELECT a.id, a.rfq_line_id, a.vendor_id, a.awarded_qty, a.awarded_at, a.awarded_by
		FROM awards a JOIN rfq_lines l ON l.id = a.rfq_line_id
		WHERE l.rfq_id = ? ORDER BY a.rowid`
	if err := s.DB.SelectContext(ctx, &awards, q, rfqID); err != nil {
		return nil, fmt.Errorf("list awards for %s: %w", rfqID, err)
	}
	return awards, nil
}

// SaveAwards stores awards in one transaction, replacing any existing
// awards on the same RFQ lines. Awards without an id or award time get them
// here, written back into the slice.
func (s *Store) SaveAwards(ctx context.Context, awards []models.Award) error {
	if len(awards) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for i := range awards {
		awards[i].ID = newID(awards[i].ID)
		if awards[i].AwardedAt == "" {
			awards[i].AwardedAt = now
		}
	}
	seen := make(map[string]bool)
	lineIDs := []string{}
	for _, a := range awards {
		if !seen[a.RFQLineID] {
			seen[a.RFQLineID] = true
			lineIDs = append(lineIDs, a.RFQLineID)
		}
	}
	q, args, err := sqlx.In(`DELETE FROM awards WHERE rfq_line_id IN (?)`, lineIDs)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(q), args...); err != nil {
			return fmt.Errorf("clear awards: %w", err)
		}
		for _, a := range awards {
			_, err := tx.NamedExecContext(ctx, `INSERT INTO awards (id, rfq_line_id, vendor_id, awarded_qty, awarded_at, awarded_by)
				VALUES (:id, :rfq_line_id, :vendor_id, :awarded_qty, :awarded_at, :awarded_by)`, a)
			if err != nil {
				return fmt.Errorf("insert award for line %s: %w", a.RFQLineID, err)
			}
		}
		return nil
	})
}

// TaxRates maps tax id to its fractional rate.
func (s *Store) TaxRates(ctx context.Context) (map[string]float64, error) {
	taxes := []models.Tax{}
	if err := s.DB.SelectContext(ctx, &taxes, `SELECT id, name, rate FROM taxes`); err != nil {
		return nil, fmt.Errorf("tax rates: %w", err)
	}
	rates := make(map[string]float64, len(taxes))
	for _, t := range taxes {
		rates[t.ID] = t.Rate
	}
	return rates, nil
}

func (s *Store) WithholdingRate(ctx context.Context, id string) (float64, error) {
	var rate float64
	if err := s.get(ctx, &rate, `SELECT rate FROM withholdings WHERE id = ?`, id); err != nil {
		return 0, fmt.Errorf("withholding %s: %w", id, err)
	}
	return rate, nil
}

func (s *Store) TaxRate(ctx context.Context, id string) (float64, error) {
	var rate float64
	if err := s.get(ctx, &rate, `SELECT rate FROM taxes WHERE id = ?`, id); err != nil {
		return 0, fmt.Errorf("tax %s: %w", id, err)
	}
	return rate, nil
}

func (s *Store) GetBudget(ctx context.Context, costCenterID string) (*money.BudgetSummary, error) {
	var b money.BudgetSummary
	q := `SELECT cost_center_id, total_budget, total_committed, total_actual FROM budgets WHERE cost_center_id = ?`
	if err := s.get(ctx, &b, q, costCenterID); err != nil {
		return nil, fmt.Errorf("budget %s: %w", costCenterID, err)
	}
	return &b, nil
}

func (s *Store) InsertAuditLog(ctx context.Context, e models.AuditEntry) error {
	if e.Username == "" {
		e.Username = "system"
	}
	_, err := s.DB.NamedExecContext(ctx, `INSERT INTO audit_log (username, action, module, record_id, summary, ip_address)
		VALUES (:username, :action, :module, :record_id, :summary, :ip_address)`, e)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// ListAuditLog returns audit entries of one module, or all entries when
// module is empty.
func (s *Store) ListAuditLog(ctx context.Context, module string) ([]models.AuditEntry, error) {
	entries := []models.AuditEntry{}
	q := `SELECT id, username, action, module, record_id, summary, ip_address, created_at FROM audit_log
		WHERE ? = '' OR module = ? ORDER BY id`
	if err := s.DB.SelectContext(ctx, &entries, q, module, module); err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	return entries, nil
}
