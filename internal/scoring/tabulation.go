package scoring

import (
	"procure/internal/models"
)

// LineTabulation is the scored bid table for one RFQ line.
type LineTabulation struct {
	Line          models.RFQLine    `json:"line"`
	Bids          []models.Bid      `json:"bids"`
	Scores        []models.BidScore `json:"scores"`
	RecommendedID string            `json:"recommended_bid_id,omitempty"`
}

// TabulateRFQ groups bids by RFQ line, scores each group and applies the
// tie-break policy. Lines without bids are kept with empty scores. Bids for
// lines not on the RFQ are ignored.
func TabulateRFQ(rfq models.RFQ, bids []models.Bid, lookup QualityLookup, w models.Weights, policy TieBreak) []LineTabulation {
	byLine := make(map[string][]models.Bid)
	for _, b := range bids {
		byLine[b.RFQLineID] = append(byLine[b.RFQLineID], b)
	}

	out := make([]LineTabulation, 0, len(rfq.Lines))
	for _, line := range rfq.Lines {
		lineBids := byLine[line.ID]
		if lineBids == nil {
			lineBids = []models.Bid{}
		}
		scores := Recommend(ScoreBids(lineBids, lookup, w), lineBids, policy)

		t := LineTabulation{Line: line, Bids: lineBids, Scores: scores}
		for _, s := range scores {
			if s.Recommended {
				t.RecommendedID = s.BidID
				break
			}
		}
		out = append(out, t)
	}
	return out
}

// RecordAward builds an award for a vendor on an RFQ line. Quantity bounds
// and one-award-per-line are left to the caller. The id and award time are
// assigned when the award is saved.
func RecordAward(rfqLineID, vendorID string, awardedQty float64) models.Award {
	return models.Award{
		RFQLineID:  rfqLineID,
		VendorID:   vendorID,
		AwardedQty: awardedQty,
	}
}
