package store

import (
	"context"
	"fmt"
)

const nowUTC = `(strftime('%Y-%m-%dT%H:%M:%SZ','now'))`

var schema = []string{
	`CREATE TABLE IF NOT EXISTS vendors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		quality_score REAL CHECK(quality_score IS NULL OR (quality_score >= 0 AND quality_score <= 100)),
		created_at TEXT NOT NULL DEFAULT ` + nowUTC + `
	)`,
	`CREATE TABLE IF NOT EXISTS taxes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		rate REAL NOT NULL DEFAULT 0 CHECK(rate >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS withholdings (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		rate REAL NOT NULL DEFAULT 0 CHECK(rate >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS budgets (
		cost_center_id TEXT PRIMARY KEY,
		total_budget REAL NOT NULL DEFAULT 0,
		total_committed REAL NOT NULL DEFAULT 0,
		total_actual REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_orders (
		id TEXT PRIMARY KEY,
		doc_no TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'draft',
		vendor_id TEXT NOT NULL REFERENCES vendors(id),
		tolerance REAL CHECK(tolerance >= 0),
		subtotal REAL NOT NULL DEFAULT 0,
		tax_amount REAL NOT NULL DEFAULT 0,
		grand_total REAL NOT NULL DEFAULT 0,
		doc_date TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT ` + nowUTC + `
	)`,
	`CREATE TABLE IF NOT EXISTS po_lines (
		id TEXT PRIMARY KEY,
		po_id TEXT NOT NULL REFERENCES purchase_orders(id) ON DELETE CASCADE,
		item_name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		quantity REAL NOT NULL DEFAULT 0,
		price REAL NOT NULL DEFAULT 0,
		total REAL NOT NULL DEFAULT 0,
		tax_id TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS po_schedules (
		id TEXT PRIMARY KEY,
		po_line_id TEXT NOT NULL REFERENCES po_lines(id) ON DELETE CASCADE,
		delivery_date TEXT NOT NULL DEFAULT '',
		quantity REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS goods_receipts (
		id TEXT PRIMARY KEY,
		doc_no TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'draft',
		po_id TEXT NOT NULL REFERENCES purchase_orders(id),
		delivery_order_no TEXT NOT NULL DEFAULT '',
		doc_date TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS gr_lines (
		id TEXT PRIMARY KEY,
		receipt_id TEXT NOT NULL REFERENCES goods_receipts(id) ON DELETE CASCADE,
		po_line_id TEXT NOT NULL REFERENCES po_lines(id),
		received_qty REAL NOT NULL DEFAULT 0,
		qc_result TEXT NOT NULL DEFAULT 'PASS',
		batch_no TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		vendor_invoice_no TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'draft',
		vendor_id TEXT NOT NULL REFERENCES vendors(id),
		po_id TEXT NOT NULL REFERENCES purchase_orders(id),
		subtotal REAL NOT NULL DEFAULT 0,
		tax_amount REAL NOT NULL DEFAULT 0,
		withholding_amount REAL NOT NULL DEFAULT 0,
		grand_total REAL NOT NULL DEFAULT 0,
		due_date TEXT NOT NULL DEFAULT '',
		payment_status TEXT NOT NULL DEFAULT 'UNPAID',
		created_at TEXT NOT NULL DEFAULT ` + nowUTC + `
	)`,
	`CREATE TABLE IF NOT EXISTS invoice_lines (
		id TEXT PRIMARY KEY,
		invoice_id TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		po_line_id TEXT NOT NULL DEFAULT '',
		grn_line_id TEXT NOT NULL DEFAULT '',
		se_line_id TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		quantity REAL NOT NULL DEFAULT 0,
		price REAL NOT NULL DEFAULT 0,
		total REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS rfqs (
		id TEXT PRIMARY KEY,
		doc_no TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'draft',
		deadline TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT ` + nowUTC + `
	)`,
	`CREATE TABLE IF NOT EXISTS rfq_lines (
		id TEXT PRIMARY KEY,
		rfq_id TEXT NOT NULL REFERENCES rfqs(id) ON DELETE CASCADE,
		item_name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		quantity REAL NOT NULL DEFAULT 0,
		uom TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS rfq_bids (
		id TEXT PRIMARY KEY,
		rfq_line_id TEXT NOT NULL REFERENCES rfq_lines(id) ON DELETE CASCADE,
		vendor_id TEXT NOT NULL REFERENCES vendors(id),
		price REAL NOT NULL,
		lead_time_days REAL NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		UNIQUE(rfq_line_id, vendor_id)
	)`,
	`CREATE TABLE IF NOT EXISTS awards (
		id TEXT PRIMARY KEY,
		rfq_line_id TEXT NOT NULL REFERENCES rfq_lines(id) ON DELETE CASCADE,
		vendor_id TEXT NOT NULL REFERENCES vendors(id),
		awarded_qty REAL NOT NULL CHECK(awarded_qty > 0),
		awarded_at TEXT NOT NULL,
		awarded_by TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL DEFAULT 'system',
		action TEXT NOT NULL,
		module TEXT NOT NULL,
		record_id TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT ` + nowUTC + `
	)`,
	`CREATE INDEX IF NOT EXISTS idx_po_lines_po ON po_lines(po_id)`,
	`CREATE INDEX IF NOT EXISTS idx_gr_po ON goods_receipts(po_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_po ON invoices(po_id)`,
	`CREATE INDEX IF NOT EXISTS idx_rfq_bids_line ON rfq_bids(rfq_line_id)`,
	`CREATE INDEX IF NOT EXISTS idx_awards_line ON awards(rfq_line_id)`,
}

// Migrate creates every table and index that does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, ddl := range schema {
		if _, err := s.DB.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
