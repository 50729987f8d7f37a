package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"procure/internal/config"
	"procure/internal/handlers/procurement"
	"procure/internal/server"
	"procure/internal/testutil"
	"procure/internal/websocket"
)

func newTestRouter(t *testing.T) (http.Handler, testutil.Fixture) {
	t.Helper()
	s := testutil.SetupTestStore(t)
	f := testutil.SeedFixture(t, s)
	hub := websocket.NewHub(nil)
	h := procurement.New(s, hub, nil, config.Default())
	return server.Chain(newRouter(h, hub), server.WithUser), f
}

func TestRouter(t *testing.T) {
	router, f := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{"GET", "/healthz", "", 200},
		{"GET", "/api/v1/pos/" + f.PO + "/match", "", 200},
		{"GET", "/api/v1/pos/" + f.PO + "/match/", "", 200},
		{"GET", "/api/v1/pos/" + f.PO + "/match/export?format=pdf", "", 200},
		{"GET", "/api/v1/pos/" + f.PO + "/totals", "", 200},
		{"POST", "/api/v1/matches", `{}`, 200},
		{"POST", "/api/v1/invoices/preview", `{"lines":[{"quantity":1,"price":10}]}`, 200},
		{"GET", "/api/v1/rfqs/" + f.RFQ + "/tabulation", "", 200},
		{"GET", "/api/v1/rfqs/" + f.RFQ + "/tabulation/export?format=csv", "", 200},
		{"GET", "/api/v1/rfqs/" + f.RFQ + "/bids", "", 200},
		{"GET", "/api/v1/rfqs/" + f.RFQ + "/awards", "", 200},
		{"GET", "/api/v1/reports/open-po", "", 200},
		{"GET", "/api/v1/reports/ap-aging?as_of=2024-03-01", "", 200},
		{"GET", "/api/v1/reports/vendor-performance", "", 200},
		{"GET", "/api/v1/reports/spend-analysis?year=2024", "", 200},
		{"GET", "/api/v1/reports/spend-analysis?year=24x", "", 400},
		{"POST", "/api/v1/budget/check", `{"cost_center_id":"` + f.CostCenter + `","amount":1}`, 200},
		{"GET", "/api/v1/audit", "", 200},
		{"GET", "/api/v1/pos/NOPE/match", "", 404},
		{"DELETE", "/api/v1/pos/" + f.PO + "/match", "", 404},
		{"GET", "/api/v1/unknown", "", 404},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestRouter_AwardUsesCaller(t *testing.T) {
	router, f := newTestRouter(t)

	body := `{"awards":[{"rfq_line_id":"` + f.RFQLineMonitor + `","vendor_id":"` + f.VendorC + `","awarded_qty":4}]}`
	req := httptest.NewRequest("POST", "/api/v1/rfqs/"+f.RFQ+"/awards", strings.NewReader(body))
	req.Header.Set("X-User", "buyer2")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != 201 {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data []struct {
			AwardedBy string `json:"awarded_by"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 || resp.Data[0].AwardedBy != "buyer2" {
		t.Errorf("Expected award by buyer2, got %+v", resp.Data)
	}
}

func TestInitDB_Seed(t *testing.T) {
	ctx := context.Background()
	db, s, err := initDB(ctx, config.DBConfig{Path: ":memory:", Seed: true}, zap.NewNop())
	if err != nil {
		t.Fatalf("initDB: %v", err)
	}
	defer db.Close()

	pos, err := s.ListPurchaseOrders(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pos) != 2 {
		t.Fatalf("Expected 2 demo POs, got %d", len(pos))
	}
	if pos[0].GrandTotal != 18315000 {
		t.Errorf("Expected PO-0001 grand total 18315000, got %v", pos[0].GrandTotal)
	}

	seeded, err := seedDB(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if seeded {
		t.Error("Expected second seed to be a no-op")
	}

	hub := websocket.NewHub(nil)
	router := newRouter(procurement.New(s, hub, nil, config.Default()), hub)
	for id, wantMatched := range map[string]bool{"PO-0001": true, "PO-0002": false} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/pos/"+id+"/match", nil))
		var resp struct {
			Data struct {
				IsFullyMatched bool `json:"is_fully_matched"`
			} `json:"data"`
		}
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.Data.IsFullyMatched != wantMatched {
			t.Errorf("%s: expected fully matched %v, got %v", id, wantMatched, resp.Data.IsFullyMatched)
		}
	}
}
