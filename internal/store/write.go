package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"procure/internal/models"
	"procure/internal/money"
)

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func (s *Store) CreateVendor(ctx context.Context, v *models.Vendor) error {
	v.ID = newID(v.ID)
	_, err := s.DB.NamedExecContext(ctx, `INSERT INTO vendors (id, name, email, phone, address, quality_score)
		VALUES (:id, :name, :email, :phone, :address, :quality_score)`, v)
	if err != nil {
		return fmt.Errorf("create vendor: %w", err)
	}
	return nil
}

func (s *Store) CreateTax(ctx context.Context, t *models.Tax) error {
	t.ID = newID(t.ID)
	if _, err := s.DB.NamedExecContext(ctx, `INSERT INTO taxes (id, name, rate) VALUES (:id, :name, :rate)`, t); err != nil {
		return fmt.Errorf("create tax: %w", err)
	}
	return nil
}

func (s *Store) CreateWithholding(ctx context.Context, w *models.Withholding) error {
	w.ID = newID(w.ID)
	if _, err := s.DB.NamedExecContext(ctx, `INSERT INTO withholdings (id, name, rate) VALUES (:id, :name, :rate)`, w); err != nil {
		return fmt.Errorf("create withholding: %w", err)
	}
	return nil
}

func (s *Store) UpsertBudget(ctx context.Context, b money.BudgetSummary) error {
	_, err := s.DB.NamedExecContext(ctx, `INSERT INTO budgets (cost_center_id, total_budget, total_committed, total_actual)
		VALUES (:cost_center_id, :total_budget, :total_committed, :total_actual)
		ON CONFLICT(cost_center_id) DO UPDATE SET
			total_budget = excluded.total_budget,
			total_committed = excluded.total_committed,
			total_actual = excluded.total_actual`, b)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

// CreatePurchaseOrder inserts the order with its lines and schedules.
// Missing ids are generated and written back.
func (s *Store) CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		po.ID = newID(po.ID)
		if po.Status == "" {
			po.Status = models.StatusDraft
		}
		_, err := tx.NamedExecContext(ctx, `INSERT INTO purchase_orders
			(id, doc_no, status, vendor_id, tolerance, subtotal, tax_amount, grand_total, doc_date)
			VALUES (:id, :doc_no, :status, :vendor_id, :tolerance, :subtotal, :tax_amount, :grand_total, :doc_date)`, po)
		if err != nil {
			return fmt.Errorf("insert purchase order: %w", err)
		}
		for i := range po.Lines {
			l := &po.Lines[i]
			l.ID = newID(l.ID)
			l.POID = po.ID
			_, err := tx.NamedExecContext(ctx, `INSERT INTO po_lines (id, po_id, item_name, description, quantity, price, total, tax_id)
				VALUES (:id, :po_id, :item_name, :description, :quantity, :price, :total, :tax_id)`, l)
			if err != nil {
				return fmt.Errorf("insert po line: %w", err)
			}
			for j := range l.Schedules {
				sc := &l.Schedules[j]
				sc.ID = newID(sc.ID)
				sc.POLineID = l.ID
				_, err := tx.NamedExecContext(ctx, `INSERT INTO po_schedules (id, po_line_id, delivery_date, quantity)
					VALUES (:id, :po_line_id, :delivery_date, :quantity)`, sc)
				if err != nil {
					return fmt.Errorf("insert po schedule: %w", err)
				}
			}
		}
		return nil
	})
}

func (s *Store) CreateReceipt(ctx context.Context, r *models.GoodsReceipt) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		r.ID = newID(r.ID)
		if r.Status == "" {
			r.Status = models.StatusPosted
		}
		_, err := tx.NamedExecContext(ctx, `INSERT INTO goods_receipts (id, doc_no, status, po_id, delivery_order_no, doc_date)
			VALUES (:id, :doc_no, :status, :po_id, :delivery_order_no, :doc_date)`, r)
		if err != nil {
			return fmt.Errorf("insert receipt: %w", err)
		}
		for i := range r.Lines {
			l := &r.Lines[i]
			l.ID = newID(l.ID)
			l.ReceiptID = r.ID
			if l.QCResult == "" {
				l.QCResult = models.QCPass
			}
			_, err := tx.NamedExecContext(ctx, `INSERT INTO gr_lines (id, receipt_id, po_line_id, received_qty, qc_result, batch_no)
				VALUES (:id, :receipt_id, :po_line_id, :received_qty, :qc_result, :batch_no)`, l)
			if err != nil {
				return fmt.Errorf("insert receipt line: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		inv.ID = newID(inv.ID)
		if inv.Status == "" {
			inv.Status = models.StatusDraft
		}
		if inv.PaymentStatus == "" {
			inv.PaymentStatus = models.PaymentUnpaid
		}
		_, err := tx.NamedExecContext(ctx, `INSERT INTO invoices
			(id, vendor_invoice_no, status, vendor_id, po_id, subtotal, tax_amount, withholding_amount, grand_total, due_date, payment_status)
			VALUES (:id, :vendor_invoice_no, :status, :vendor_id, :po_id, :subtotal, :tax_amount, :withholding_amount, :grand_total, :due_date, :payment_status)`, inv)
		if err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		for i := range inv.Lines {
			l := &inv.Lines[i]
			l.ID = newID(l.ID)
			l.InvoiceID = inv.ID
			_, err := tx.NamedExecContext(ctx, `INSERT INTO invoice_lines
				(id, invoice_id, po_line_id, grn_line_id, se_line_id, description, quantity, price, total)
				VALUES (:id, :invoice_id, :po_line_id, :grn_line_id, :se_line_id, :description, :quantity, :price, :total)`, l)
			if err != nil {
				return fmt.Errorf("insert invoice line: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) CreateRFQ(ctx context.Context, rfq *models.RFQ) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		rfq.ID = newID(rfq.ID)
		if rfq.Status == "" {
			rfq.Status = models.StatusDraft
		}
		_, err := tx.NamedExecContext(ctx, `INSERT INTO rfqs (id, doc_no, status, deadline)
			VALUES (:id, :doc_no, :status, :deadline)`, rfq)
		if err != nil {
			return fmt.Errorf("insert rfq: %w", err)
		}
		for i := range rfq.Lines {
			l := &rfq.Lines[i]
			l.ID = newID(l.ID)
			l.RFQID = rfq.ID
			_, err := tx.NamedExecContext(ctx, `INSERT INTO rfq_lines (id, rfq_id, item_name, description, quantity, uom)
				VALUES (:id, :rfq_id, :item_name, :description, :quantity, :uom)`, l)
			if err != nil {
				return fmt.Errorf("insert rfq line: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) CreateBid(ctx context.Context, b *models.Bid) error {
	b.ID = newID(b.ID)
	_, err := s.DB.NamedExecContext(ctx, `INSERT INTO rfq_bids (id, rfq_line_id, vendor_id, price, lead_time_days, remarks)
		VALUES (:id, :rfq_line_id, :vendor_id, :price, :lead_time_days, :remarks)`, b)
	if isUniqueViolation(err) {
		return fmt.Errorf("create bid: vendor %s on line %s: %w", b.VendorID, b.RFQLineID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create bid: %w", err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
