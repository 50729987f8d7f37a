package procurement

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"procure/internal/models"
	"procure/internal/money"
	"procure/internal/response"
	"procure/internal/validation"
)

// GetPOTotals handles GET /api/v1/pos/{id}/totals. Totals are recomputed
// from the lines, so they can be compared with the stored header values.
func (h *Handler) GetPOTotals(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	po, err := h.Store.GetPurchaseOrder(ctx, id)
	if err != nil {
		h.fail(w, err, "failed to load purchase order", zap.String("po_id", id))
		return
	}
	rates, err := h.Store.TaxRates(ctx)
	if err != nil {
		h.fail(w, err, "failed to load tax rates")
		return
	}

	totals := money.POTotals(po.Lines, rates)
	response.JSON(w, map[string]interface{}{
		"po_id":     po.ID,
		"doc_no":    po.DocNo,
		"computed":  totals,
		"formatted": money.FormatIDR(totals.GrandTotal),
		"stored": money.Totals{
			Subtotal:   po.Subtotal,
			TaxAmount:  po.TaxAmount,
			GrandTotal: po.GrandTotal,
		},
	})
}

type invoicePreviewRequest struct {
	Lines           []models.InvoiceLine `json:"lines"`
	TaxID           string               `json:"tax_id"`
	WithholdingID   string               `json:"withholding_id"`
	TaxRate         *float64             `json:"tax_rate"`
	WithholdingRate *float64             `json:"withholding_rate"`
}

// PreviewInvoice handles POST /api/v1/invoices/preview. Rates are taken
// from the tax and withholding master data when ids are given, otherwise
// from the explicit rate fields. Nothing is stored.
func (h *Handler) PreviewInvoice(w http.ResponseWriter, r *http.Request) {
	var body invoicePreviewRequest
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}

	ve := &validation.ValidationErrors{}
	if len(body.Lines) == 0 {
		ve.Add("lines", "at least one line is required")
	}
	for i, l := range body.Lines {
		validation.ValidateInvoiceLine(ve, fmt.Sprintf("lines[%d].", i), l)
	}
	if body.TaxRate != nil {
		validation.ValidateRate(ve, "tax_rate", *body.TaxRate)
	}
	if body.WithholdingRate != nil {
		validation.ValidateRate(ve, "withholding_rate", *body.WithholdingRate)
	}
	if ve.HasErrors() {
		response.ValidationErr(w, ve)
		return
	}

	ctx := r.Context()
	var taxRate, whtRate float64
	var err error
	switch {
	case body.TaxID != "":
		if taxRate, err = h.Store.TaxRate(ctx, body.TaxID); err != nil {
			h.fail(w, err, "failed to load tax", zap.String("tax_id", body.TaxID))
			return
		}
	case body.TaxRate != nil:
		taxRate = *body.TaxRate
	}
	switch {
	case body.WithholdingID != "":
		if whtRate, err = h.Store.WithholdingRate(ctx, body.WithholdingID); err != nil {
			h.fail(w, err, "failed to load withholding", zap.String("withholding_id", body.WithholdingID))
			return
		}
	case body.WithholdingRate != nil:
		whtRate = *body.WithholdingRate
	}

	totals := money.CalculateInvoiceTotals(body.Lines, taxRate, whtRate)
	response.JSON(w, map[string]interface{}{
		"totals":           totals,
		"tax_rate":         taxRate,
		"withholding_rate": whtRate,
		"formatted":        money.FormatIDR(totals.GrandTotal),
	})
}

// CheckBudget handles POST /api/v1/budget/check.
func (h *Handler) CheckBudget(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CostCenterID string  `json:"cost_center_id"`
		Amount       float64 `json:"amount"`
	}
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "cost_center_id", body.CostCenterID)
	validation.ValidateNonNegativeFloat(ve, "amount", body.Amount)
	if ve.HasErrors() {
		response.ValidationErr(w, ve)
		return
	}

	b, err := h.Store.GetBudget(r.Context(), body.CostCenterID)
	if err != nil {
		h.fail(w, err, "failed to load budget", zap.String("cost_center_id", body.CostCenterID))
		return
	}
	response.JSON(w, money.CheckBudget(body.Amount, *b))
}
