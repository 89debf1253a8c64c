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

// WBS category and subcategory endpoints. Small entities, same unit-of-work
// path as the rest so name changes are audited.

type WbsHandler struct {
	Store *store.Store
}

func NewWbsHandler(st *store.Store) *WbsHandler { return &WbsHandler{Store: st} }

func (h *WbsHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ProgramID    uint   `json:"program_id"`
		CategoryName string `json:"category_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.PositiveInt("program_id", input.ProgramID, v)
	validation.Required("category_name", input.CategoryName, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	category := models.WbsCategory{
		ProgramID:    input.ProgramID,
		CategoryName: strings.TrimSpace(input.CategoryName),
	}
	uow := h.Store.Begin()
	uow.Create(&category)
	if err := uow.Commit(r.Context()); err != nil {
		if isDuplicate(err) {
			httpx.JSONError(w, http.StatusConflict, "category_already_exists", nil)
			return
		}
		slog.ErrorContext(r.Context(), "wbs category create failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "category_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, category)
}

func (h *WbsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	offset, limit := listParams(r)
	q := h.Store.DB().WithContext(r.Context()).Order("id").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if v := r.URL.Query().Get("program_id"); v != "" {
		q = q.Where("program_id = ?", v)
	}
	var categories []models.WbsCategory
	if err := q.Find(&categories).Error; err != nil {
		slog.ErrorContext(r.Context(), "wbs category list failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_categories", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}

func (h *WbsHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input struct {
		CategoryName *string `json:"category_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	uow := h.Store.Begin()
	var category models.WbsCategory
	if err := uow.First(r.Context(), &category, id); err != nil {
		if isNotFound(err) {
			httpx.JSONError(w, http.StatusNotFound, "category_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "category_read_failed", nil)
		return
	}
	if input.CategoryName != nil {
		category.CategoryName = strings.TrimSpace(*input.CategoryName)
	}
	if err := uow.Commit(r.Context()); err != nil {
		if isDuplicate(err) {
			httpx.JSONError(w, http.StatusConflict, "category_already_exists", nil)
			return
		}
		slog.ErrorContext(r.Context(), "wbs category update failed", "error", err, "id", id)
		httpx.JSONError(w, http.StatusInternalServerError, "category_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, category)
}

func (h *WbsHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var category models.WbsCategory
	if err := h.Store.DB().WithContext(r.Context()).First(&category, id).Error; err != nil {
		if isNotFound(err) {
			httpx.JSONError(w, http.StatusNotFound, "category_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "category_read_failed", nil)
		return
	}
	uow := h.Store.Begin()
	uow.Delete(&category)
	if err := uow.Commit(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "wbs category delete failed", "error", err, "id", id)
		httpx.JSONError(w, http.StatusInternalServerError, "category_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "wbs category deleted"})
}

func (h *WbsHandler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CategoryID      uint   `json:"category_id"`
		SubcategoryName string `json:"subcategory_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.PositiveInt("category_id", input.CategoryID, v)
	validation.Required("subcategory_name", input.SubcategoryName, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	subcategory := models.WbsSubcategory{
		CategoryID:      input.CategoryID,
		SubcategoryName: strings.TrimSpace(input.SubcategoryName),
	}
	uow := h.Store.Begin()
	uow.Create(&subcategory)
	if err := uow.Commit(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "wbs subcategory create failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "subcategory_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, subcategory)
}

func (h *WbsHandler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	offset, limit := listParams(r)
	q := h.Store.DB().WithContext(r.Context()).Order("id").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if v := r.URL.Query().Get("category_id"); v != "" {
		q = q.Where("category_id = ?", v)
	}
	var subcategories []models.WbsSubcategory
	if err := q.Find(&subcategories).Error; err != nil {
		slog.ErrorContext(r.Context(), "wbs subcategory list failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_subcategories", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, subcategories)
}

func (h *WbsHandler) UpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input struct {
		SubcategoryName *string `json:"subcategory_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	uow := h.Store.Begin()
	var subcategory models.WbsSubcategory
	if err := uow.First(r.Context(), &subcategory, id); err != nil {
		if isNotFound(err) {
			httpx.JSONError(w, http.StatusNotFound, "subcategory_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "subcategory_read_failed", nil)
		return
	}
	if input.SubcategoryName != nil {
		subcategory.SubcategoryName = strings.TrimSpace(*input.SubcategoryName)
	}
	if err := uow.Commit(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "wbs subcategory update failed", "error", err, "id", id)
		httpx.JSONError(w, http.StatusInternalServerError, "subcategory_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, subcategory)
}

func (h *WbsHandler) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var subcategory models.WbsSubcategory
	if err := h.Store.DB().WithContext(r.Context()).First(&subcategory, id).Error; err != nil {
		if isNotFound(err) {
			httpx.JSONError(w, http.StatusNotFound, "subcategory_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "subcategory_read_failed", nil)
		return
	}
	uow := h.Store.Begin()
	uow.Delete(&subcategory)
	if err := uow.Commit(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "wbs subcategory delete failed", "error", err, "id", id)
		httpx.JSONError(w, http.StatusInternalServerError, "subcategory_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "wbs subcategory deleted"})
}
