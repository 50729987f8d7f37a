package procurement

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"procure/internal/audit"
	"procure/internal/export"
	"procure/internal/matching"
	"procure/internal/models"
	"procure/internal/response"
	"procure/internal/server"
	"procure/internal/store"
	"procure/internal/validation"
	"procure/internal/websocket"
)

var errInvoicePO = errors.New("invoice does not belong to purchase order")

// matchJob loads everything a three-way match of one PO needs. With an
// empty invoiceID the latest invoice raised against the PO is used; a PO
// with no invoice yet is matched against nothing.
func (h *Handler) matchJob(ctx context.Context, poID, invoiceID string, tolerance *float64) (matching.Job, error) {
	po, err := h.Store.GetPurchaseOrder(ctx, poID)
	if err != nil {
		return matching.Job{}, err
	}
	switch {
	case tolerance != nil:
		po.Tolerance = tolerance
	case po.Tolerance == nil:
		def := h.Config.Matching.DefaultTolerance
		po.Tolerance = &def
	}

	receipts, err := h.Store.ListReceiptsForPO(ctx, poID)
	if err != nil {
		return matching.Job{}, err
	}

	var inv *models.Invoice
	if invoiceID != "" {
		inv, err = h.Store.GetInvoice(ctx, invoiceID)
		if err != nil {
			return matching.Job{}, err
		}
		if inv.POID != poID {
			return matching.Job{}, errInvoicePO
		}
	} else {
		inv, err = h.Store.GetInvoiceForPO(ctx, poID)
		if errors.Is(err, store.ErrNotFound) {
			inv, err = nil, nil
		}
		if err != nil {
			return matching.Job{}, err
		}
	}
	return matching.Job{PO: *po, Receipts: receipts, Invoice: inv}, nil
}

// toleranceParam reads an optional ?tolerance= override.
func toleranceParam(r *http.Request, ve *validation.ValidationErrors) *float64 {
	raw := r.URL.Query().Get("tolerance")
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		ve.Add("tolerance", "must be a number")
		return nil
	}
	validation.ValidateTolerance(ve, "tolerance", v)
	return &v
}

func (h *Handler) loadMatch(w http.ResponseWriter, r *http.Request, id string) (*matching.MatchReport, bool) {
	ve := &validation.ValidationErrors{}
	tol := toleranceParam(r, ve)
	if ve.HasErrors() {
		response.ValidationErr(w, ve)
		return nil, false
	}

	job, err := h.matchJob(r.Context(), id, r.URL.Query().Get("invoice"), tol)
	if errors.Is(err, errInvoicePO) {
		response.Err(w, err.Error(), 400)
		return nil, false
	}
	if err != nil {
		h.fail(w, err, "failed to load purchase order", zap.String("po_id", id))
		return nil, false
	}
	report := matching.EvaluateMatch(job.PO, job.Receipts, job.Invoice)
	return &report, true
}

// GetMatch handles GET /api/v1/pos/{id}/match.
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request, id string) {
	report, ok := h.loadMatch(w, r, id)
	if !ok {
		return
	}
	h.broadcast(websocket.Event{
		Type:   websocket.EventMatchEvaluated,
		ID:     id,
		Action: "evaluate",
		Payload: map[string]interface{}{
			"invoice_id":       report.InvoiceID,
			"is_fully_matched": report.IsFullyMatched,
		},
	})
	response.JSON(w, report)
}

// ExportMatch handles GET /api/v1/pos/{id}/match/export?format=csv|xlsx|pdf.
func (h *Handler) ExportMatch(w http.ResponseWriter, r *http.Request, id string) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatCSV
	}
	ve := &validation.ValidationErrors{}
	validation.ValidateEnum(ve, "format", format, validation.ValidExportFormats)
	if ve.HasErrors() {
		response.ValidationErr(w, ve)
		return
	}

	report, ok := h.loadMatch(w, r, id)
	if !ok {
		return
	}
	filename := "match-" + report.PODocNo
	if err := export.Serve(w, format, filename, export.MatchReportTable(*report)); err != nil {
		h.Logger.Error("match export failed", zap.String("po_id", id), zap.String("format", format), zap.Error(err))
		response.Err(w, "export failed", 500)
		return
	}
	h.logAudit(r, server.Username(r), audit.ActionExport, "match", id,
		fmt.Sprintf("Exported match report %s as %s", report.PODocNo, format))
}

// BatchMatch handles POST /api/v1/matches. The body lists PO ids; an empty
// list matches every purchase order on file. Each PO is matched against its
// latest invoice.
func (h *Handler) BatchMatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		POIDs []string `json:"po_ids"`
	}
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}

	ctx := r.Context()
	ids := body.POIDs
	if len(ids) == 0 {
		pos, err := h.Store.ListPurchaseOrders(ctx)
		if err != nil {
			h.fail(w, err, "failed to list purchase orders")
			return
		}
		for _, po := range pos {
			ids = append(ids, po.ID)
		}
	}

	jobs := make([]matching.Job, 0, len(ids))
	for _, id := range ids {
		job, err := h.matchJob(ctx, id, "", nil)
		if err != nil {
			h.fail(w, err, "failed to load purchase order", zap.String("po_id", id))
			return
		}
		jobs = append(jobs, job)
	}

	results := matching.EvaluateMatches(ctx, jobs, h.Config.Matching.Workers)
	reports := make([]matching.MatchReport, 0, len(results))
	for _, rep := range results {
		if rep == nil {
			response.Err(w, "request canceled", 503)
			return
		}
		reports = append(reports, *rep)
	}
	response.JSONMeta(w, reports, len(reports))
}
