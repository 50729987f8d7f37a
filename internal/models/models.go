package models

// APIResponse is the standard JSON envelope for all API responses.
type APIResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total int `json:"total,omitempty"`
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// Document statuses shared by every procurement document.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusReleased  = "released"
	StatusPosted    = "posted"
	StatusRejected  = "rejected"
	StatusCanceled  = "canceled"
	StatusClosed    = "closed"
)

// Quality check outcomes recorded on a goods receipt line.
const (
	QCPass   = "PASS"
	QCHold   = "HOLD"
	QCReject = "REJECT"
)

// Invoice payment statuses.
const (
	PaymentUnpaid  = "UNPAID"
	PaymentPartial = "PARTIAL"
	PaymentPaid    = "PAID"
)

type Vendor struct {
	ID           string   `json:"id" db:"id"`
	Name         string   `json:"name" db:"name"`
	Email        string   `json:"email" db:"email"`
	Phone        string   `json:"phone" db:"phone"`
	Address      string   `json:"address" db:"address"`
	QualityScore *float64 `json:"quality_score,omitempty" db:"quality_score"`
	CreatedAt    string   `json:"created_at" db:"created_at"`
}

type Tax struct {
	ID   string  `json:"id" db:"id"`
	Name string  `json:"name" db:"name"`
	Rate float64 `json:"rate" db:"rate"`
}

type Withholding struct {
	ID   string  `json:"id" db:"id"`
	Name string  `json:"name" db:"name"`
	Rate float64 `json:"rate" db:"rate"`
}

type PurchaseOrder struct {
	ID         string   `json:"id" db:"id"`
	DocNo      string   `json:"doc_no" db:"doc_no"`
	Status     string   `json:"status" db:"status"`
	VendorID   string   `json:"vendor_id" db:"vendor_id"`
	Tolerance  *float64 `json:"tolerance" db:"tolerance"`
	Subtotal   float64  `json:"subtotal" db:"subtotal"`
	TaxAmount  float64  `json:"tax_amount" db:"tax_amount"`
	GrandTotal float64  `json:"grand_total" db:"grand_total"`
	DocDate    string   `json:"doc_date" db:"doc_date"`
	CreatedAt  string   `json:"created_at" db:"created_at"`
	Lines      []POLine `json:"lines" db:"-"`
}

// TolerancePercent returns the PO tolerance, or 0 (exact match) when none
// was set.
func (po PurchaseOrder) TolerancePercent() float64 {
	if po.Tolerance == nil {
		return 0
	}
	return *po.Tolerance
}

type POLine struct {
	ID          string       `json:"id" db:"id"`
	POID        string       `json:"po_id" db:"po_id"`
	ItemName    string       `json:"item_name" db:"item_name"`
	Description string       `json:"description" db:"description"`
	Quantity    float64      `json:"quantity" db:"quantity"`
	Price       float64      `json:"price" db:"price"`
	Total       float64      `json:"total" db:"total"`
	TaxID       string       `json:"tax_id" db:"tax_id"`
	Schedules   []POSchedule `json:"schedules" db:"-"`
}

type POSchedule struct {
	ID           string  `json:"id" db:"id"`
	POLineID     string  `json:"po_line_id" db:"po_line_id"`
	DeliveryDate string  `json:"delivery_date" db:"delivery_date"`
	Quantity     float64 `json:"quantity" db:"quantity"`
}

type GoodsReceipt struct {
	ID              string   `json:"id" db:"id"`
	DocNo           string   `json:"doc_no" db:"doc_no"`
	Status          string   `json:"status" db:"status"`
	POID            string   `json:"po_id" db:"po_id"`
	DeliveryOrderNo string   `json:"delivery_order_no" db:"delivery_order_no"`
	DocDate         string   `json:"doc_date" db:"doc_date"`
	Lines           []GRLine `json:"lines" db:"-"`
}

type GRLine struct {
	ID          string  `json:"id" db:"id"`
	ReceiptID   string  `json:"receipt_id" db:"receipt_id"`
	POLineID    string  `json:"po_line_id" db:"po_line_id"`
	ReceivedQty float64 `json:"received_qty" db:"received_qty"`
	QCResult    string  `json:"qc_result" db:"qc_result"`
	BatchNo     string  `json:"batch_no" db:"batch_no"`
}

type Invoice struct {
	ID                string        `json:"id" db:"id"`
	VendorInvoiceNo   string        `json:"vendor_invoice_no" db:"vendor_invoice_no"`
	Status            string        `json:"status" db:"status"`
	VendorID          string        `json:"vendor_id" db:"vendor_id"`
	POID              string        `json:"po_id" db:"po_id"`
	Subtotal          float64       `json:"subtotal" db:"subtotal"`
	TaxAmount         float64       `json:"tax_amount" db:"tax_amount"`
	WithholdingAmount float64       `json:"withholding_amount" db:"withholding_amount"`
	GrandTotal        float64       `json:"grand_total" db:"grand_total"`
	DueDate           string        `json:"due_date" db:"due_date"`
	PaymentStatus     string        `json:"payment_status" db:"payment_status"`
	CreatedAt         string        `json:"created_at" db:"created_at"`
	Lines             []InvoiceLine `json:"lines" db:"-"`
}

// InvoiceLine bills against a PO line, optionally pointing at the goods
// receipt line or service entry line it was raised from.
type InvoiceLine struct {
	ID          string  `json:"id" db:"id"`
	InvoiceID   string  `json:"invoice_id" db:"invoice_id"`
	POLineID    string  `json:"po_line_id" db:"po_line_id"`
	GRNLineID   string  `json:"grn_line_id,omitempty" db:"grn_line_id"`
	SELineID    string  `json:"se_line_id,omitempty" db:"se_line_id"`
	Description string  `json:"description" db:"description"`
	Quantity    float64 `json:"quantity" db:"quantity"`
	Price       float64 `json:"price" db:"price"`
	Total       float64 `json:"total" db:"total"`
}

type RFQ struct {
	ID        string    `json:"id" db:"id"`
	DocNo     string    `json:"doc_no" db:"doc_no"`
	Status    string    `json:"status" db:"status"`
	Deadline  string    `json:"deadline" db:"deadline"`
	CreatedAt string    `json:"created_at" db:"created_at"`
	Lines     []RFQLine `json:"lines" db:"-"`
}

type RFQLine struct {
	ID          string  `json:"id" db:"id"`
	RFQID       string  `json:"rfq_id" db:"rfq_id"`
	ItemName    string  `json:"item_name" db:"item_name"`
	Description string  `json:"description" db:"description"`
	Quantity    float64 `json:"quantity" db:"quantity"`
	UOM         string  `json:"uom" db:"uom"`
}

// Bid is one vendor's answer to one RFQ line.
type Bid struct {
	ID           string  `json:"id" db:"id"`
	RFQLineID    string  `json:"rfq_line_id" db:"rfq_line_id"`
	VendorID     string  `json:"vendor_id" db:"vendor_id"`
	Price        float64 `json:"price" db:"price"`
	LeadTimeDays float64 `json:"lead_time_days" db:"lead_time_days"`
	Remarks      string  `json:"remarks,omitempty" db:"remarks"`
}

// Weights are additive point budgets per scoring criterion. They are not
// required to sum to 100.
type Weights struct {
	Price    float64 `json:"price" yaml:"price"`
	LeadTime float64 `json:"lead_time" yaml:"lead_time"`
	Quality  float64 `json:"quality" yaml:"quality"`
}

type BidScore struct {
	BidID         string  `json:"bid_id"`
	VendorID      string  `json:"vendor_id"`
	PriceScore    float64 `json:"price_score"`
	LeadTimeScore float64 `json:"lead_time_score"`
	QualityScore  float64 `json:"quality_score"`
	TotalScore    float64 `json:"total_score"`
	Recommended   bool    `json:"recommended"`
}

// Award records the decision to buy an RFQ line from a vendor. AwardedQty
// may be lower than the requested quantity.
type Award struct {
	ID         string  `json:"id" db:"id"`
	RFQLineID  string  `json:"rfq_line_id" db:"rfq_line_id"`
	VendorID   string  `json:"vendor_id" db:"vendor_id"`
	AwardedQty float64 `json:"awarded_qty" db:"awarded_qty"`
	AwardedAt  string  `json:"awarded_at" db:"awarded_at"`
	AwardedBy  string  `json:"awarded_by,omitempty" db:"awarded_by"`
}

// AuditEntry represents a single audit log record.
type AuditEntry struct {
	ID        int    `json:"id" db:"id"`
	Username  string `json:"username" db:"username"`
	Action    string `json:"action" db:"action"`
	Module    string `json:"module" db:"module"`
	RecordID  string `json:"record_id" db:"record_id"`
	Summary   string `json:"summary" db:"summary"`
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`
	CreatedAt string `json:"created_at" db:"created_at"`
}
