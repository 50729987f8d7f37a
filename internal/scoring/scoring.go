package scoring

import (
	"procure/internal/models"
)

// DefaultQualityScore is used for vendors without a recorded quality score.
const DefaultQualityScore = 70.0

// QualityLookup resolves a vendor's quality score on a 0-100 scale.
type QualityLookup interface {
	QualityScore(vendorID string) (float64, bool)
}

// VendorQuality is a map-backed QualityLookup.
type VendorQuality map[string]float64

func (q VendorQuality) QualityScore(vendorID string) (float64, bool) {
	v, ok := q[vendorID]
	return v, ok
}

// FallbackQuality resolves vendors missing from Lookup to Default instead of
// DefaultQualityScore.
type FallbackQuality struct {
	Lookup  QualityLookup
	Default float64
}

func (f FallbackQuality) QualityScore(vendorID string) (float64, bool) {
	if f.Lookup != nil {
		if q, ok := f.Lookup.QualityScore(vendorID); ok {
			return q, true
		}
	}
	return f.Default, true
}

// QualityFromVendors builds a lookup from vendor records, skipping vendors
// with no recorded score.
func QualityFromVendors(vendors []models.Vendor) VendorQuality {
	q := make(VendorQuality, len(vendors))
	for _, v := range vendors {
		if v.QualityScore != nil {
			q[v.ID] = *v.QualityScore
		}
	}
	return q
}

// ScoreBids scores the bids of a single RFQ line. Price and lead time are
// scored relative to the best value among these bids; quality is scored on
// the absolute 0-100 scale. Each weight is awarded in full to the best bid
// on its criterion. Inputs are not validated: non-positive prices or lead
// times yield infinite or NaN ratios.
func ScoreBids(lineBids []models.Bid, lookup QualityLookup, w models.Weights) []models.BidScore {
	scores := make([]models.BidScore, 0, len(lineBids))
	if len(lineBids) == 0 {
		return scores
	}

	minPrice := lineBids[0].Price
	minLead := lineBids[0].LeadTimeDays
	for _, b := range lineBids[1:] {
		if b.Price < minPrice {
			minPrice = b.Price
		}
		if b.LeadTimeDays < minLead {
			minLead = b.LeadTimeDays
		}
	}

	for _, b := range lineBids {
		quality := DefaultQualityScore
		if lookup != nil {
			if q, ok := lookup.QualityScore(b.VendorID); ok {
				quality = q
			}
		}

		var priceScore, leadScore float64
		if minPrice > 0 {
			priceScore = minPrice / b.Price * w.Price
		}
		if minLead > 0 {
			leadScore = minLead / b.LeadTimeDays * w.LeadTime
		}
		qualityScore := quality / 100 * w.Quality

		scores = append(scores, models.BidScore{
			BidID:         b.ID,
			VendorID:      b.VendorID,
			PriceScore:    priceScore,
			LeadTimeScore: leadScore,
			QualityScore:  qualityScore,
			TotalScore:    priceScore + leadScore + qualityScore,
		})
	}
	return scores
}
