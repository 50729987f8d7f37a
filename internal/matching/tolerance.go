package matching

import (
	"encoding/json"
	"math"
)

// ToleranceResult describes how a checked value sits against a reference
// value and its allowed deviation band.
type ToleranceResult struct {
	Base         float64 `json:"base"`
	Check        float64 `json:"check"`
	Tolerance    float64 `json:"tolerance"`
	UpperBound   float64 `json:"upper_bound"`
	LowerBound   float64 `json:"lower_bound"`
	Delta        float64 `json:"delta"`
	DeltaPercent float64 `json:"delta_percent"`
	IsWithin     bool    `json:"is_within"`
	IsOver       bool    `json:"is_over"`
	IsUnder      bool    `json:"is_under"`
}

// CheckTolerance compares check against base with a percentage band. Bounds
// are inclusive. When base is zero and check is not, DeltaPercent is
// infinite and the check falls outside the (empty) band.
func CheckTolerance(base, check, tolerancePercent float64) ToleranceResult {
	if base == 0 && check == 0 {
		return ToleranceResult{Tolerance: tolerancePercent, IsWithin: true}
	}

	upper := base * (1 + tolerancePercent/100)
	lower := base * (1 - tolerancePercent/100)
	delta := check - base

	var deltaPct float64
	if base == 0 {
		deltaPct = math.Inf(sign(delta))
	} else {
		deltaPct = delta / base * 100
	}

	return ToleranceResult{
		Base:         base,
		Check:        check,
		Tolerance:    tolerancePercent,
		UpperBound:   upper,
		LowerBound:   lower,
		Delta:        delta,
		DeltaPercent: deltaPct,
		IsWithin:     check >= lower && check <= upper,
		IsOver:       delta > 0,
		IsUnder:      delta < 0,
	}
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}

// MarshalJSON writes an infinite DeltaPercent as null; encoding/json
// rejects infinities.
func (r ToleranceResult) MarshalJSON() ([]byte, error) {
	type plain ToleranceResult
	out := struct {
		plain
		DeltaPercent *float64 `json:"delta_percent"`
	}{plain: plain(r)}
	if !math.IsInf(r.DeltaPercent, 0) && !math.IsNaN(r.DeltaPercent) {
		v := r.DeltaPercent
		out.DeltaPercent = &v
	}
	return json.Marshal(out)
}
