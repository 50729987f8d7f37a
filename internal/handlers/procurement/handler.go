package procurement

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"procure/internal/audit"
	"procure/internal/config"
	"procure/internal/response"
	"procure/internal/store"
	"procure/internal/websocket"
)

// Handler holds dependencies for procurement handlers.
type Handler struct {
	Store  *store.Store
	Hub    *websocket.Hub
	Logger *zap.Logger
	Audit  *audit.Logger
	Config *config.Config
}

// New wires a Handler. A nil logger is replaced by a no-op one.
func New(s *store.Store, hub *websocket.Hub, logger *zap.Logger, cfg *config.Config) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Handler{
		Store:  s,
		Hub:    hub,
		Logger: logger,
		Audit:  &audit.Logger{Store: s, Logger: logger},
		Config: cfg,
	}
}

// fail maps a store error to a response. Not-found errors become 404,
// everything else is logged and reported as 500.
func (h *Handler) fail(w http.ResponseWriter, err error, msg string, fields ...zap.Field) {
	if errors.Is(err, store.ErrNotFound) {
		response.Err(w, "not found", 404)
		return
	}
	h.Logger.Error(msg, append(fields, zap.Error(err))...)
	response.Err(w, msg, 500)
}

func (h *Handler) broadcast(evt websocket.Event) {
	if h.Hub != nil {
		h.Hub.Broadcast(evt)
	}
}

func (h *Handler) logAudit(r *http.Request, username, action, module, recordID, summary string) {
	if h.Audit != nil {
		h.Audit.Log(r, username, action, module, recordID, summary)
	}
}
