package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"procure/internal/config"
	"procure/internal/handlers/procurement"
	"procure/internal/logger"
	"procure/internal/response"
	"procure/internal/server"
	"procure/internal/websocket"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}

	log, err := logger.New(cfg.Logger, cfg.Server.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, s, err := initDB(context.Background(), cfg.DB, log)
	if err != nil {
		log.Fatal("DB init failed", zap.String("path", cfg.DB.Path), zap.Error(err))
	}
	defer db.Close()

	hub := websocket.NewHub(log)
	h := procurement.New(s, hub, log, cfg)

	handler := server.Chain(newRouter(h, hub),
		server.Recover(log),
		server.Logging(log),
		server.CORS(cfg.Server.CORSOrigins),
		server.SecurityHeaders,
		server.WithUser,
		server.GzipMiddleware,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("procure server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Server.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newRouter(h *procurement.Handler, hub *websocket.Hub) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		websocket.HandleWebSocket(hub, w, r)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, map[string]string{"status": "ok"})
	})

	// API routes - using a simple router
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/"), "/")
		parts := strings.Split(path, "/")

		switch {
		// Purchase orders
		case parts[0] == "pos" && len(parts) == 3 && parts[2] == "match" && r.Method == "GET":
			h.GetMatch(w, r, parts[1])
		case parts[0] == "pos" && len(parts) == 4 && parts[2] == "match" && parts[3] == "export" && r.Method == "GET":
			h.ExportMatch(w, r, parts[1])
		case parts[0] == "pos" && len(parts) == 3 && parts[2] == "totals" && r.Method == "GET":
			h.GetPOTotals(w, r, parts[1])
		case parts[0] == "matches" && len(parts) == 1 && r.Method == "POST":
			h.BatchMatch(w, r)

		// Invoices
		case parts[0] == "invoices" && len(parts) == 2 && parts[1] == "preview" && r.Method == "POST":
			h.PreviewInvoice(w, r)

		// RFQs
		case parts[0] == "rfqs" && len(parts) == 3 && parts[2] == "tabulation" && r.Method == "GET":
			h.GetTabulation(w, r, parts[1])
		case parts[0] == "rfqs" && len(parts) == 4 && parts[2] == "tabulation" && parts[3] == "export" && r.Method == "GET":
			h.ExportTabulation(w, r, parts[1])
		case parts[0] == "rfqs" && len(parts) == 3 && parts[2] == "bids" && r.Method == "GET":
			h.ListBids(w, r, parts[1])
		case parts[0] == "rfqs" && len(parts) == 3 && parts[2] == "bids" && r.Method == "POST":
			h.CreateBid(w, r, parts[1])
		case parts[0] == "rfqs" && len(parts) == 3 && parts[2] == "awards" && r.Method == "GET":
			h.ListAwards(w, r, parts[1])
		case parts[0] == "rfqs" && len(parts) == 3 && parts[2] == "awards" && r.Method == "POST":
			h.RecordAwards(w, r, parts[1])

		// Reports
		case parts[0] == "reports" && len(parts) == 2 && parts[1] == "open-po" && r.Method == "GET":
			h.OpenPOReport(w, r)
		case parts[0] == "reports" && len(parts) == 2 && parts[1] == "ap-aging" && r.Method == "GET":
			h.APAgingReport(w, r)
		case parts[0] == "reports" && len(parts) == 2 && parts[1] == "vendor-performance" && r.Method == "GET":
			h.VendorPerformanceReport(w, r)
		case parts[0] == "reports" && len(parts) == 2 && parts[1] == "spend-analysis" && r.Method == "GET":
			h.SpendAnalysisReport(w, r)

		// Budget
		case parts[0] == "budget" && len(parts) == 2 && parts[1] == "check" && r.Method == "POST":
			h.CheckBudget(w, r)

		// Audit
		case parts[0] == "audit" && len(parts) == 1 && r.Method == "GET":
			h.AuditLog(w, r)

		default:
			response.Err(w, "not found", 404)
		}
	})

	return mux
}
