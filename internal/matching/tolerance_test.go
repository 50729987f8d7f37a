package matching

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestCheckTolerance(t *testing.T) {
	tests := []struct {
		name       string
		base       float64
		check      float64
		tol        float64
		wantWithin bool
		wantOver   bool
		wantUnder  bool
		wantDelta  float64
	}{
		{"within upper", 100, 105, 10, true, true, false, 5},
		{"exact upper bound", 100, 110, 10, true, true, false, 10},
		{"within lower", 100, 95, 10, true, false, true, -5},
		{"exact lower bound", 100, 90, 10, true, false, true, -10},
		{"outside upper", 100, 111, 10, false, true, false, 11},
		{"outside lower", 100, 89, 10, false, false, true, -11},
		{"exact match zero tolerance", 1000, 1000, 0, true, false, false, 0},
		{"any deviation zero tolerance", 1000, 1001, 0, false, true, false, 1},
		{"zero base nonzero check", 0, 5, 10, false, true, false, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CheckTolerance(tt.base, tt.check, tt.tol)
			if r.IsWithin != tt.wantWithin {
				t.Errorf("Expected IsWithin=%v, got %v (bounds %v..%v)", tt.wantWithin, r.IsWithin, r.LowerBound, r.UpperBound)
			}
			if r.IsOver != tt.wantOver {
				t.Errorf("Expected IsOver=%v, got %v", tt.wantOver, r.IsOver)
			}
			if r.IsUnder != tt.wantUnder {
				t.Errorf("Expected IsUnder=%v, got %v", tt.wantUnder, r.IsUnder)
			}
			if r.Delta != tt.wantDelta {
				t.Errorf("Expected delta %v, got %v", tt.wantDelta, r.Delta)
			}
		})
	}
}

func TestCheckTolerance_ZeroValues(t *testing.T) {
	for _, tol := range []float64{0, 5, 10, 100} {
		r := CheckTolerance(0, 0, tol)
		if !r.IsWithin {
			t.Errorf("tolerance %v: expected 0 vs 0 to be within", tol)
		}
		if r.Delta != 0 || r.DeltaPercent != 0 || r.UpperBound != 0 || r.LowerBound != 0 {
			t.Errorf("tolerance %v: expected zeroed result, got %+v", tol, r)
		}
	}
}

func TestCheckTolerance_DeltaPercent(t *testing.T) {
	r := CheckTolerance(200, 150, 10)
	if r.DeltaPercent != -25 {
		t.Errorf("Expected delta percent -25, got %v", r.DeltaPercent)
	}

	r = CheckTolerance(0, 3, 10)
	if !math.IsInf(r.DeltaPercent, 1) {
		t.Errorf("Expected +Inf delta percent, got %v", r.DeltaPercent)
	}
	r = CheckTolerance(0, -3, 10)
	if !math.IsInf(r.DeltaPercent, -1) {
		t.Errorf("Expected -Inf delta percent, got %v", r.DeltaPercent)
	}
}

func TestCheckTolerance_OverUnderExclusive(t *testing.T) {
	values := []float64{0, 1, 9.5, 10, 10.5, 100, 1234.56}
	tols := []float64{0, 2.5, 10, 50}
	for _, b := range values {
		for _, c := range values {
			for _, tol := range tols {
				r := CheckTolerance(b, c, tol)
				if r.Delta != c-b {
					t.Fatalf("CheckTolerance(%v,%v,%v): delta %v != %v", b, c, tol, r.Delta, c-b)
				}
				if r.Delta == 0 {
					if r.IsOver || r.IsUnder {
						t.Errorf("CheckTolerance(%v,%v,%v): zero delta flagged over/under", b, c, tol)
					}
					continue
				}
				if r.IsOver == r.IsUnder {
					t.Errorf("CheckTolerance(%v,%v,%v): expected exactly one of over/under", b, c, tol)
				}
			}
		}
	}
}

func TestToleranceResult_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(CheckTolerance(0, 4, 0))
	if err != nil {
		t.Fatalf("marshal infinite delta: %v", err)
	}
	if !strings.Contains(string(data), `"delta_percent":null`) {
		t.Errorf("Expected null delta_percent, got %s", data)
	}

	data, err = json.Marshal(CheckTolerance(100, 110, 10))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["delta_percent"] != 10.0 {
		t.Errorf("Expected delta_percent 10, got %v", decoded["delta_percent"])
	}
	if decoded["is_within"] != true {
		t.Errorf("Expected is_within true, got %v", decoded["is_within"])
	}
}
