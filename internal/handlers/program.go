package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/diewo77/program-ledger/internal/httpx"
	"github.com/diewo77/program-ledger/internal/models"
	"github.com/diewo77/program-ledger/internal/store"
	"github.com/diewo77/program-ledger/internal/validation"
)

type ProgramHandler struct {
	Store *store.Store
}

func NewProgramHandler(st *store.Store) *ProgramHandler { return &ProgramHandler{Store: st} }

func (h *ProgramHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string `json:"name"`
		Code        string `json:"code"`
		Description string `json:"description"`
		Status      string `json:"status"`
		Manager     string `json:"manager"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.Status == "" {
		input.Status = "Active"
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	validation.Required("code", input.Code, v)
	validation.Required("manager", input.Manager, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	program := models.Program{
		Name:        strings.TrimSpace(input.Name),
		Code:        strings.ToUpper(strings.TrimSpace(input.Code)),
		Description: input.Description,
		Status:      input.Status,
		Manager:     strings.TrimSpace(input.Manager),
	}
	uow := h.Store.Begin()
	uow.Create(&program)
	if err := uow.Commit(r.Context()); err != nil {
		if isDuplicate(err) {
			httpx.JSONError(w, http.StatusConflict, "program_already_exists", nil)
			return
		}
		slog.ErrorContext(r.Context(), "program create failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "program_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, program)
}

func (h *ProgramHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := listParams(r)
	q := h.Store.DB().WithContext(r.Context()).Order("id").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var programs []models.Program
	if err := q.Find(&programs).Error; err != nil {
		slog.ErrorContext(r.Context(), "program list failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_programs", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, programs)
}

func (h *ProgramHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var program models.Program
	if err := h.Store.DB().WithContext(r.Context()).First(&program, id).Error; err != nil {
		if isNotFound(err) {
			httpx.JSONError(w, http.StatusNotFound, "program_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "program_read_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, program)
}

// Update applies the set fields of a partial JSON body through the unit of
// work, so every real change lands in the audit trail.
func (h *ProgramHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input struct {
		Name        *string `json:"name"`
		Code        *string `json:"code"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
		Manager     *string `json:"manager"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	uow := h.Store.Begin()
	var program models.Program
	if err := uow.First(r.Context(), &program, id); err != nil {
		if isNotFound(err) {
			httpx.JSONError(w, http.StatusNotFound, "program_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "program_read_failed", nil)
		return
	}
	if input.Name != nil {
		program.Name = strings.TrimSpace(*input.Name)
	}
	if input.Code != nil {
		program.Code = strings.ToUpper(strings.TrimSpace(*input.Code))
	}
	if input.Description != nil {
		program.Description = *input.Description
	}
	if input.Status != nil {
		program.Status = *input.Status
	}
	if input.Manager != nil {
		program.Manager = strings.TrimSpace(*input.Manager)
	}
	if err := uow.Commit(r.Context()); err != nil {
		if isDuplicate(err) {
			httpx.JSONError(w, http.StatusConflict, "program_already_exists", nil)
			return
		}
		slog.ErrorContext(r.Context(), "program update failed", "error", err, "id", id)
		httpx.JSONError(w, http.StatusInternalServerError, "program_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, program)
}

func (h *ProgramHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var program models.Program
	if err := h.Store.DB().WithContext(r.Context()).First(&program, id).Error; err != nil {
		if isNotFound(err) {
			httpx.JSONError(w, http.StatusNotFound, "program_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "program_read_failed", nil)
		return
	}
	uow := h.Store.Begin()
	uow.Delete(&program)
	if err := uow.Commit(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "program delete failed", "error", err, "id", id)
		httpx.JSONError(w, http.StatusInternalServerError, "program_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "program deleted"})
}
