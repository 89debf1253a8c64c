package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/diewo77/program-ledger/internal/httpx"
	"github.com/diewo77/program-ledger/internal/models"
	"github.com/diewo77/program-ledger/internal/store"
	"github.com/diewo77/program-ledger/internal/validation"
)

type TransactionHandler struct {
	Store *store.Store
}

func NewTransactionHandler(st *store.Store) *TransactionHandler {
	return &TransactionHandler{Store: st}
}

// transactionInput is the partial-update body shared by create and update:
// unset fields stay untouched. Amounts decode from JSON numbers or strings
// into exact decimals, never through float64.
type transactionInput struct {
	ProgramID          *uint            `json:"program_id"`
	VendorName         *string          `json:"vendor_name"`
	ExpenseDescription *string          `json:"expense_description"`
	WbsCategoryID      *uint            `json:"wbs_category_id"`
	WbsSubcategoryID   *uint            `json:"wbs_subcategory_id"`
	BaselineDate       *models.Date     `json:"baseline_date"`
	BaselineAmount     *decimal.Decimal `json:"baseline_amount"`
	PlannedDate        *models.Date     `json:"planned_date"`
	PlannedAmount      *decimal.Decimal `json:"planned_amount"`
	ActualDate         *models.Date     `json:"actual_date"`
	ActualAmount       *decimal.Decimal `json:"actual_amount"`
	InvoiceLink        *string          `json:"invoice_link"`
	InvoiceNumber      *string          `json:"invoice_number"`
	Notes              *string          `json:"notes"`
}

func (in *transactionInput) apply(t *models.LedgerTransaction) {
	if in.ProgramID != nil {
		t.ProgramID = *in.ProgramID
	}
	if in.VendorName != nil {
		t.VendorName = strings.TrimSpace(*in.VendorName)
	}
	if in.ExpenseDescription != nil {
		t.ExpenseDescription = *in.ExpenseDescription
	}
	if in.WbsCategoryID != nil {
		t.WbsCategoryID = in.WbsCategoryID
	}
	if in.WbsSubcategoryID != nil {
		t.WbsSubcategoryID = in.WbsSubcategoryID
	}
	if in.BaselineDate != nil {
		t.BaselineDate = in.BaselineDate
	}
	if in.BaselineAmount != nil {
		t.BaselineAmount = decimal.NullDecimal{Decimal: *in.BaselineAmount, Valid: true}
	}
	if in.PlannedDate != nil {
		t.PlannedDate = in.PlannedDate
	}
	if in.PlannedAmount != nil {
		t.PlannedAmount = decimal.NullDecimal{Decimal: *in.PlannedAmount, Valid: true}
	}
	if in.ActualDate != nil {
		t.ActualDate = in.ActualDate
	}
	if in.ActualAmount != nil {
		t.ActualAmount = decimal.NullDecimal{Decimal: *in.ActualAmount, Valid: true}
	}
	if in.InvoiceLink != nil {
		t.InvoiceLink = *in.InvoiceLink
	}
	if in.InvoiceNumber != nil {
		t.InvoiceNumber = *in.InvoiceNumber
	}
	if in.Notes != nil {
		t.Notes = *in.Notes
	}
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input transactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if input.ProgramID == nil || *input.ProgramID == 0 {
		v["program_id"] = "required"
	}
	if input.VendorName == nil {
		v["vendor_name"] = "required"
	} else {
		validation.Required("vendor_name", *input.VendorName, v)
	}
	if input.ExpenseDescription == nil {
		v["expense_description"] = "required"
	} else {
		validation.Required("expense_description", *input.ExpenseDescription, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var transaction models.LedgerTransaction
	input.apply(&transaction)
	uow := h.Store.Begin()
	uow.Create(&transaction)
	if err := uow.Commit(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "transaction create failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "transaction_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, transaction)
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := listParams(r)
	q := h.Store.DB().WithContext(r.Context()).Order("id").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if v := r.URL.Query().Get("program_id"); v != "" {
		q = q.Where("program_id = ?", v)
	}
	var transactions []models.LedgerTransaction
	if err := q.Find(&transactions).Error; err != nil {
		slog.ErrorContext(r.Context(), "transaction list failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_transactions", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, transactions)
}

func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input transactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	uow := h.Store.Begin()
	var transaction models.LedgerTransaction
	if err := uow.First(r.Context(), &transaction, id); err != nil {
		if isNotFound(err) {
			httpx.JSONError(w, http.StatusNotFound, "transaction_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "transaction_read_failed", nil)
		return
	}
	input.apply(&transaction)
	if err := uow.Commit(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "transaction update failed", "error", err, "id", id)
		httpx.JSONError(w, http.StatusInternalServerError, "transaction_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var transaction models.LedgerTransaction
	if err := h.Store.DB().WithContext(r.Context()).First(&transaction, id).Error; err != nil {
		if isNotFound(err) {
			httpx.JSONError(w, http.StatusNotFound, "transaction_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "transaction_read_failed", nil)
		return
	}
	uow := h.Store.Begin()
	uow.Delete(&transaction)
	if err := uow.Commit(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "transaction delete failed", "error", err, "id", id)
		httpx.JSONError(w, http.StatusInternalServerError, "transaction_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "ledger transaction deleted"})
}
