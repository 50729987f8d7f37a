package scoring

import (
	"fmt"
	"math"

	"procure/internal/models"
)

// TieBreak names how equal top scores are resolved.
type TieBreak string

const (
	// TieBreakLowestPrice picks one winner among tied bids: lowest price,
	// then shortest lead time, then lowest vendor id.
	TieBreakLowestPrice TieBreak = "lowest_price"
	// TieBreakAll flags every bid that reaches the top score.
	TieBreakAll TieBreak = "all"
)

// scoreEpsilon is the distance under which two totals count as tied.
const scoreEpsilon = 1e-9

// ParseTieBreak validates a policy name.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(s) {
	case TieBreakLowestPrice, TieBreakAll:
		return TieBreak(s), nil
	case "":
		return TieBreakLowestPrice, nil
	}
	return "", fmt.Errorf("unknown tie-break policy %q", s)
}

// Recommend returns a copy of scores with the top-scoring bid flagged.
// scores[i] must belong to bids[i], as returned by ScoreBids.
func Recommend(scores []models.BidScore, bids []models.Bid, policy TieBreak) []models.BidScore {
	out := make([]models.BidScore, len(scores))
	copy(out, scores)
	if len(out) == 0 {
		return out
	}

	best := math.Inf(-1)
	for _, s := range out {
		if s.TotalScore > best {
			best = s.TotalScore
		}
	}

	var tied []int
	for i, s := range out {
		out[i].Recommended = false
		if s.TotalScore == best || best-s.TotalScore <= scoreEpsilon {
			tied = append(tied, i)
		}
	}
	if len(tied) == 0 {
		return out
	}

	if policy == TieBreakAll {
		for _, i := range tied {
			out[i].Recommended = true
		}
		return out
	}

	winner := tied[0]
	for _, i := range tied[1:] {
		if preferBid(bids[i], bids[winner]) {
			winner = i
		}
	}
	out[winner].Recommended = true
	return out
}

func preferBid(a, b models.Bid) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	if a.LeadTimeDays != b.LeadTimeDays {
		return a.LeadTimeDays < b.LeadTimeDays
	}
	return a.VendorID < b.VendorID
}

// Recommended returns the flagged scores.
func Recommended(scores []models.BidScore) []models.BidScore {
	var out []models.BidScore
	for _, s := range scores {
		if s.Recommended {
			out = append(out, s)
		}
	}
	return out
}
