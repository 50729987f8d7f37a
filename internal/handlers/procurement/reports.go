package procurement

import (
	"net/http"
	"strconv"
	"time"

	"procure/internal/reports"
	"procure/internal/response"
	"procure/internal/validation"
)

// OpenPOReport handles GET /api/v1/reports/open-po.
func (h *Handler) OpenPOReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pos, err := h.Store.ListPurchaseOrders(ctx)
	if err != nil {
		h.fail(w, err, "failed to list purchase orders")
		return
	}
	receipts, err := h.Store.ListReceipts(ctx)
	if err != nil {
		h.fail(w, err, "failed to list receipts")
		return
	}
	names, err := h.Store.VendorNames(ctx)
	if err != nil {
		h.fail(w, err, "failed to load vendors")
		return
	}
	rows := reports.OpenPO(pos, receipts, names)
	response.JSONMeta(w, rows, len(rows))
}

// APAgingReport handles GET /api/v1/reports/ap-aging[?as_of=YYYY-MM-DD].
func (h *Handler) APAgingReport(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now().UTC()
	if v := r.URL.Query().Get("as_of"); v != "" {
		ve := &validation.ValidationErrors{}
		validation.ValidateDate(ve, "as_of", v)
		if ve.HasErrors() {
			response.ValidationErr(w, ve)
			return
		}
		asOf, _ = time.Parse("2006-01-02", v)
	}

	ctx := r.Context()
	invoices, err := h.Store.ListInvoices(ctx)
	if err != nil {
		h.fail(w, err, "failed to list invoices")
		return
	}
	names, err := h.Store.VendorNames(ctx)
	if err != nil {
		h.fail(w, err, "failed to load vendors")
		return
	}
	rows := reports.APAging(invoices, names, asOf)
	response.JSON(w, map[string]interface{}{
		"as_of":  asOf.Format("2006-01-02"),
		"rows":   rows,
		"totals": reports.AgingTotals(rows),
	})
}

// VendorPerformanceReport handles GET /api/v1/reports/vendor-performance.
func (h *Handler) VendorPerformanceReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vendors, err := h.Store.ListVendors(ctx)
	if err != nil {
		h.fail(w, err, "failed to list vendors")
		return
	}
	pos, err := h.Store.ListPurchaseOrders(ctx)
	if err != nil {
		h.fail(w, err, "failed to list purchase orders")
		return
	}
	receipts, err := h.Store.ListReceipts(ctx)
	if err != nil {
		h.fail(w, err, "failed to list receipts")
		return
	}
	bids, err := h.Store.ListBids(ctx)
	if err != nil {
		h.fail(w, err, "failed to list bids")
		return
	}
	rows := reports.VendorPerformance(vendors, pos, receipts, bids)
	response.JSONMeta(w, rows, len(rows))
}

// SpendAnalysisReport handles GET /api/v1/reports/spend-analysis[?year=YYYY].
// The year defaults to the current one.
func (h *Handler) SpendAnalysisReport(w http.ResponseWriter, r *http.Request) {
	year := time.Now().UTC().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1900 || y > 9999 {
			ve := &validation.ValidationErrors{}
			ve.Add("year", "must be a four digit year")
			response.ValidationErr(w, ve)
			return
		}
		year = y
	}

	ctx := r.Context()
	pos, err := h.Store.ListPurchaseOrders(ctx)
	if err != nil {
		h.fail(w, err, "failed to list purchase orders")
		return
	}
	names, err := h.Store.VendorNames(ctx)
	if err != nil {
		h.fail(w, err, "failed to load vendors")
		return
	}
	rows := reports.SpendAnalysis(pos, names, year)
	response.JSON(w, map[string]interface{}{
		"year":     year,
		"rows":     rows,
		"by_month": reports.MonthlySpend(rows),
	})
}

// AuditLog handles GET /api/v1/audit[?module=].
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListAuditLog(r.Context(), r.URL.Query().Get("module"))
	if err != nil {
		h.fail(w, err, "failed to list audit log")
		return
	}
	response.JSONMeta(w, entries, len(entries))
}
