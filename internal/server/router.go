package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/program-ledger/internal/amqp"
	"github.com/diewo77/program-ledger/internal/audit"
	"github.com/diewo77/program-ledger/internal/handlers"
	"github.com/diewo77/program-ledger/internal/httpx"
	"github.com/diewo77/program-ledger/internal/middleware"
	"github.com/diewo77/program-ledger/internal/models"
	"github.com/diewo77/program-ledger/internal/services"
	"github.com/diewo77/program-ledger/internal/store"
)

// New constructs the root http.Handler with all routes and middlewares
// applied, and wires the audit hook into the store. Pass a nil publisher to
// run without the audit event stream.
func New(db *gorm.DB, publisher amqp.Publisher, corsOrigin string) http.Handler {
	st := store.New(db)
	st.RegisterPreCommitHook(audit.NewRecorder())
	if publisher != nil {
		st.SetAfterCommit(func(ctx context.Context, appended []any) {
			// Best-effort fan-out of committed audit rows; the transaction is
			// already durable, a publish failure only costs the notification.
			for _, row := range appended {
				record, ok := row.(*models.AuditRecord)
				if !ok {
					continue
				}
				if err := publisher.PublishAuditEvent(ctx, amqp.NewAuditEventMessage(record)); err != nil {
					slog.WarnContext(ctx, "audit event publish failed", "error", err,
						"table", record.TableName, "record_id", record.RecordID)
				}
			}
		})
	}

	mux := http.NewServeMux()

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		// Lightweight DB check (SELECT 1) – ignore detailed errors in body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	//revive:enable:unused-parameter

	ph := handlers.NewProgramHandler(st)
	mux.HandleFunc("POST /programs", ph.Create)
	mux.HandleFunc("GET /programs", ph.List)
	mux.HandleFunc("GET /programs/{id}", ph.Get)
	mux.HandleFunc("PUT /programs/{id}", ph.Update)
	mux.HandleFunc("DELETE /programs/{id}", ph.Delete)

	th := handlers.NewTransactionHandler(st)
	mux.HandleFunc("POST /ledger-transactions", th.Create)
	mux.HandleFunc("GET /ledger-transactions", th.List)
	mux.HandleFunc("PUT /ledger-transactions/{id}", th.Update)
	mux.HandleFunc("DELETE /ledger-transactions/{id}", th.Delete)

	wh := handlers.NewWbsHandler(st)
	mux.HandleFunc("POST /wbs-categories", wh.CreateCategory)
	mux.HandleFunc("GET /wbs-categories", wh.ListCategories)
	mux.HandleFunc("PUT /wbs-categories/{id}", wh.UpdateCategory)
	mux.HandleFunc("DELETE /wbs-categories/{id}", wh.DeleteCategory)
	mux.HandleFunc("POST /wbs-subcategories", wh.CreateSubcategory)
	mux.HandleFunc("GET /wbs-subcategories", wh.ListSubcategories)
	mux.HandleFunc("PUT /wbs-subcategories/{id}", wh.UpdateSubcategory)
	mux.HandleFunc("DELETE /wbs-subcategories/{id}", wh.DeleteSubcategory)

	hh := handlers.NewHistoryHandler(st)
	mux.HandleFunc("GET /edit-history", hh.List)

	dh := handlers.NewDashboardHandler(services.NewDashboardService(db))
	mux.HandleFunc("GET /dashboard/summary", dh.Summary)

	return middleware.CORS(corsOrigin)(middleware.Actor(withRecover(withLogging(mux))))
}

// Simple middleware logging & recovery kept private to this package to avoid duplication.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.ErrorContext(r.Context(), "panic recovered", "panic", rec, "path", r.URL.Path)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
