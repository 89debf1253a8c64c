package handlers

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/program-ledger/internal/httpx"
	"github.com/diewo77/program-ledger/internal/models"
	"github.com/diewo77/program-ledger/internal/store"
)

// HistoryHandler serves the audit trail, read-only: records are only ever
// written by the commit hook.
type HistoryHandler struct {
	Store *store.Store
}

func NewHistoryHandler(st *store.Store) *HistoryHandler { return &HistoryHandler{Store: st} }

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := listParams(r)
	q := h.Store.DB().WithContext(r.Context()).
		Order("edited_at desc").
		Order("id desc").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if v := r.URL.Query().Get("table_name"); v != "" {
		q = q.Where("table_name = ?", v)
	}
	if v := r.URL.Query().Get("record_id"); v != "" {
		q = q.Where("record_id = ?", v)
	}
	var records []models.AuditRecord
	if err := q.Find(&records).Error; err != nil {
		slog.ErrorContext(r.Context(), "audit history list failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_history", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}
