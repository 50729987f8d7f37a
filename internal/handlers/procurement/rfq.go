package procurement

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"procure/internal/audit"
	"procure/internal/export"
	"procure/internal/models"
	"procure/internal/response"
	"procure/internal/scoring"
	"procure/internal/server"
	"procure/internal/store"
	"procure/internal/validation"
	"procure/internal/websocket"
)

// scoringParams reads weight and tie-break overrides from the query string.
// Missing parameters fall back to the configured defaults.
func (h *Handler) scoringParams(r *http.Request, ve *validation.ValidationErrors) (models.Weights, scoring.TieBreak) {
	q := r.URL.Query()
	w := h.Config.Scoring.Weights
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"price", &w.Price},
		{"lead_time", &w.LeadTime},
		{"quality", &w.Quality},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			ve.Add(p.name, "must be a number")
			continue
		}
		*p.dst = v
	}
	validation.ValidateWeights(ve, w)

	policyName := q.Get("tie_break")
	if policyName == "" {
		policyName = h.Config.Scoring.TieBreak
	}
	policy, err := scoring.ParseTieBreak(policyName)
	if err != nil {
		ve.Add("tie_break", "must be one of: "+strings.Join(validation.ValidTieBreakPolicy, ", "))
	}
	return w, policy
}

func (h *Handler) tabulate(w http.ResponseWriter, r *http.Request, id string) (*models.RFQ, []scoring.LineTabulation, bool) {
	ve := &validation.ValidationErrors{}
	weights, policy := h.scoringParams(r, ve)
	if ve.HasErrors() {
		response.ValidationErr(w, ve)
		return nil, nil, false
	}

	ctx := r.Context()
	rfq, err := h.Store.GetRFQ(ctx, id)
	if err != nil {
		h.fail(w, err, "failed to load rfq", zap.String("rfq_id", id))
		return nil, nil, false
	}
	bids, err := h.Store.ListBidsForRFQ(ctx, id)
	if err != nil {
		h.fail(w, err, "failed to load bids", zap.String("rfq_id", id))
		return nil, nil, false
	}
	quality, err := h.Store.VendorQuality(ctx)
	if err != nil {
		h.fail(w, err, "failed to load vendor quality")
		return nil, nil, false
	}

	lookup := scoring.FallbackQuality{
		Lookup:  scoring.VendorQuality(quality),
		Default: h.Config.Scoring.DefaultQualityScore,
	}
	return rfq, scoring.TabulateRFQ(*rfq, bids, lookup, weights, policy), true
}

// GetTabulation handles GET /api/v1/rfqs/{id}/tabulation.
func (h *Handler) GetTabulation(w http.ResponseWriter, r *http.Request, id string) {
	rfq, tabs, ok := h.tabulate(w, r, id)
	if !ok {
		return
	}
	response.JSON(w, map[string]interface{}{
		"rfq_id": rfq.ID,
		"doc_no": rfq.DocNo,
		"lines":  tabs,
	})
}

// ExportTabulation handles GET /api/v1/rfqs/{id}/tabulation/export.
func (h *Handler) ExportTabulation(w http.ResponseWriter, r *http.Request, id string) {
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

	rfq, tabs, ok := h.tabulate(w, r, id)
	if !ok {
		return
	}
	if err := export.Serve(w, format, "tabulation-"+rfq.DocNo, export.TabulationTable(rfq.DocNo, tabs)); err != nil {
		h.Logger.Error("tabulation export failed", zap.String("rfq_id", id), zap.String("format", format), zap.Error(err))
		response.Err(w, "export failed", 500)
		return
	}
	h.logAudit(r, server.Username(r), audit.ActionExport, "rfq", id,
		fmt.Sprintf("Exported tabulation %s as %s", rfq.DocNo, format))
}

// ListBids handles GET /api/v1/rfqs/{id}/bids.
func (h *Handler) ListBids(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	if _, err := h.Store.GetRFQ(ctx, id); err != nil {
		h.fail(w, err, "failed to load rfq", zap.String("rfq_id", id))
		return
	}
	bids, err := h.Store.ListBidsForRFQ(ctx, id)
	if err != nil {
		h.fail(w, err, "failed to load bids", zap.String("rfq_id", id))
		return
	}
	response.JSONMeta(w, bids, len(bids))
}

// CreateBid handles POST /api/v1/rfqs/{id}/bids.
func (h *Handler) CreateBid(w http.ResponseWriter, r *http.Request, id string) {
	var bid models.Bid
	if err := response.DecodeBody(r, &bid); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}

	ctx := r.Context()
	rfq, err := h.Store.GetRFQ(ctx, id)
	if err != nil {
		h.fail(w, err, "failed to load rfq", zap.String("rfq_id", id))
		return
	}
	names, err := h.Store.VendorNames(ctx)
	if err != nil {
		h.fail(w, err, "failed to load vendors")
		return
	}
	existing, err := h.Store.ListBidsForRFQ(ctx, id)
	if err != nil {
		h.fail(w, err, "failed to load bids", zap.String("rfq_id", id))
		return
	}

	ve := &validation.ValidationErrors{}
	validation.ValidateBid(ve, "", bid)
	if bid.RFQLineID != "" && !hasLine(rfq, bid.RFQLineID) {
		ve.Add("rfq_line_id", "not a line of this rfq")
	}
	if _, ok := names[bid.VendorID]; bid.VendorID != "" && !ok {
		ve.Add("vendor_id", "unknown vendor")
	}
	for _, b := range existing {
		if b.RFQLineID == bid.RFQLineID && b.VendorID == bid.VendorID {
			ve.Add("vendor_id", "vendor already bid on this line")
			break
		}
	}
	if ve.HasErrors() {
		response.ValidationErr(w, ve)
		return
	}

	// one bid per vendor per line; the unique index catches a concurrent insert
	if err := h.Store.CreateBid(ctx, &bid); errors.Is(err, store.ErrDuplicate) {
		ve.Add("vendor_id", "vendor already bid on this line")
		response.ValidationErr(w, ve)
		return
	} else if err != nil {
		h.fail(w, err, "failed to create bid", zap.String("rfq_id", id))
		return
	}
	response.Created(w, bid)
}

func hasLine(rfq *models.RFQ, lineID string) bool {
	for _, l := range rfq.Lines {
		if l.ID == lineID {
			return true
		}
	}
	return false
}

type awardRequest struct {
	Awards []struct {
		RFQLineID  string  `json:"rfq_line_id"`
		VendorID   string  `json:"vendor_id"`
		AwardedQty float64 `json:"awarded_qty"`
	} `json:"awards"`
}

// RecordAwards handles POST /api/v1/rfqs/{id}/awards. Each award replaces
// any earlier award on the same line. The vendor must have bid on the line
// and the quantity may not exceed what was requested.
func (h *Handler) RecordAwards(w http.ResponseWriter, r *http.Request, id string) {
	var body awardRequest
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}

	ctx := r.Context()
	rfq, err := h.Store.GetRFQ(ctx, id)
	if err != nil {
		h.fail(w, err, "failed to load rfq", zap.String("rfq_id", id))
		return
	}
	bids, err := h.Store.ListBidsForRFQ(ctx, id)
	if err != nil {
		h.fail(w, err, "failed to load bids", zap.String("rfq_id", id))
		return
	}

	requested := make(map[string]float64, len(rfq.Lines))
	for _, l := range rfq.Lines {
		requested[l.ID] = l.Quantity
	}
	bidders := make(map[string]bool, len(bids))
	for _, b := range bids {
		bidders[b.RFQLineID+"|"+b.VendorID] = true
	}

	username := server.Username(r)
	ve := &validation.ValidationErrors{}
	if len(body.Awards) == 0 {
		ve.Add("awards", "at least one award is required")
	}
	seen := make(map[string]bool)
	awards := make([]models.Award, 0, len(body.Awards))
	for i, a := range body.Awards {
		prefix := fmt.Sprintf("awards[%d].", i)
		award := scoring.RecordAward(a.RFQLineID, a.VendorID, a.AwardedQty)
		award.AwardedBy = username

		qty, onRFQ := requested[a.RFQLineID]
		validation.ValidateAward(ve, prefix, award, qty)
		switch {
		case a.RFQLineID == "":
		case !onRFQ:
			ve.Add(prefix+"rfq_line_id", "not a line of this rfq")
		case seen[a.RFQLineID]:
			ve.Add(prefix+"rfq_line_id", "line awarded twice in one request")
		case a.VendorID != "" && !bidders[a.RFQLineID+"|"+a.VendorID]:
			ve.Add(prefix+"vendor_id", "vendor has no bid on this line")
		}
		seen[a.RFQLineID] = true
		awards = append(awards, award)
	}
	if ve.HasErrors() {
		response.ValidationErr(w, ve)
		return
	}

	if err := h.Store.SaveAwards(ctx, awards); err != nil {
		h.fail(w, err, "failed to save awards", zap.String("rfq_id", id))
		return
	}

	for _, a := range awards {
		h.logAudit(r, username, audit.ActionAward, "rfq", id,
			fmt.Sprintf("Awarded line %s to vendor %s for qty %g", a.RFQLineID, a.VendorID, a.AwardedQty))
	}
	h.broadcast(websocket.Event{
		Type:    websocket.EventAwardRecorded,
		ID:      id,
		Action:  "award",
		Payload: awards,
	})
	response.Created(w, awards)
}

// ListAwards handles GET /api/v1/rfqs/{id}/awards.
func (h *Handler) ListAwards(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	if _, err := h.Store.GetRFQ(ctx, id); err != nil {
		h.fail(w, err, "failed to load rfq", zap.String("rfq_id", id))
		return
	}
	awards, err := h.Store.ListAwards(ctx, id)
	if err != nil {
		h.fail(w, err, "failed to load awards", zap.String("rfq_id", id))
		return
	}
	response.JSONMeta(w, awards, len(awards))
}
