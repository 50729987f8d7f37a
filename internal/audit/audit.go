package audit

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"procure/internal/models"
)

// Action constants.
const (
	ActionAward  = "AWARD"
	ActionExport = "EXPORT"
)

// Recorder persists audit entries.
type Recorder interface {
	InsertAuditLog(ctx context.Context, e models.AuditEntry) error
}

// Logger writes audit rows.
type Logger struct {
	Store  Recorder
	Logger *zap.Logger
}

// Log records an audit entry. Failures are logged, not returned.
func (a *Logger) Log(r *http.Request, username, action, module, recordID, summary string) {
	e := models.AuditEntry{
		Username:  username,
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		Summary:   summary,
		IPAddress: ClientIP(r),
	}
	if err := a.Store.InsertAuditLog(r.Context(), e); err != nil && a.Logger != nil {
		a.Logger.Error("audit log write failed",
			zap.String("action", action),
			zap.String("module", module),
			zap.String("record_id", recordID),
			zap.Error(err))
	}
}

// ClientIP extracts the real client IP from the request (handles proxies).
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i != -1 {
		addr = addr[:i]
	}
	return addr
}
