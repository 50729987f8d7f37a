package audit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"procure/internal/models"
)

type fakeRecorder struct {
	entries []models.AuditEntry
	err     error
}

func (f *fakeRecorder) InsertAuditLog(ctx context.Context, e models.AuditEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func TestLog(t *testing.T) {
	rec := &fakeRecorder{}
	a := &Logger{Store: rec}

	req := httptest.NewRequest("POST", "/api/v1/rfqs/RFQ-1/awards", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.7, 10.0.0.1")
	a.Log(req, "buyer1", ActionAward, "rfq", "RFQ-1", "awarded 2 lines")

	if len(rec.entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(rec.entries))
	}
	e := rec.entries[0]
	if e.Username != "buyer1" || e.Action != ActionAward || e.RecordID != "RFQ-1" {
		t.Errorf("Unexpected entry %+v", e)
	}
	if e.IPAddress != "10.0.0.7" {
		t.Errorf("Expected first forwarded IP, got %q", e.IPAddress)
	}
}

func TestLog_FailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	a := &Logger{Store: &fakeRecorder{err: errors.New("disk full")}, Logger: zap.New(core)}

	a.Log(httptest.NewRequest("GET", "/", nil), "system", ActionExport, "po", "PO-1", "csv")

	if logs.Len() != 1 {
		t.Errorf("Expected one error log, got %d", logs.Len())
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.5:5555"
	if got := ClientIP(req); got != "192.168.1.5" {
		t.Errorf("Expected 192.168.1.5, got %q", got)
	}
	req.Header.Set("X-Real-IP", "172.16.0.2")
	if got := ClientIP(req); got != "172.16.0.2" {
		t.Errorf("Expected 172.16.0.2, got %q", got)
	}
}
