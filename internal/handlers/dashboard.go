package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/diewo77/program-ledger/internal/httpx"
	"github.com/diewo77/program-ledger/internal/services"
)

type DashboardHandler struct {
	Service *services.DashboardService
}

func NewDashboardHandler(svc *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Service: svc}
}

// Summary handles GET /dashboard/summary?program_id=&as_of_date=YYYY-MM-DD.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	programID, err := strconv.ParseUint(r.URL.Query().Get("program_id"), 10, 32)
	if err != nil || programID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_program_id", nil)
		return
	}
	summary, err := h.Service.Summary(r.Context(), uint(programID), r.URL.Query().Get("as_of_date"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidAsOfDate) {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_as_of_date", map[string]string{"expected": "YYYY-MM-DD"})
			return
		}
		slog.ErrorContext(r.Context(), "dashboard summary failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "dashboard_summary_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
