package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerTransaction is one ledger row carrying up to three independent
// (date, amount) pairs: baseline, planned and actual cost. Amounts are
// decimal(12,2) in storage; they are only converted to float for the
// dashboard rollup.
type LedgerTransaction struct {
	ID                 uint                `gorm:"primaryKey" json:"id"`
	ProgramID          uint                `gorm:"not null;index" json:"program_id"`
	VendorName         string              `gorm:"size:255;not null" json:"vendor_name"`
	ExpenseDescription string              `gorm:"type:text;not null" json:"expense_description"`
	WbsCategoryID      *uint               `gorm:"index" json:"wbs_category_id"`
	WbsSubcategoryID   *uint               `json:"wbs_subcategory_id"`
	BaselineDate       *Date               `json:"baseline_date"`
	BaselineAmount     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"baseline_amount"`
	PlannedDate        *Date               `json:"planned_date"`
	PlannedAmount      decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"planned_amount"`
	ActualDate         *Date               `json:"actual_date"`
	ActualAmount       decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"actual_amount"`
	InvoiceLink        string              `gorm:"type:text" json:"invoice_link"`
	InvoiceNumber      string              `gorm:"size:50" json:"invoice_number"`
	Notes              string              `gorm:"type:text" json:"notes"`
	CreatedAt          time.Time           `json:"created_at"`
}

func (LedgerTransaction) AuditTable() string { return "ledger_transactions" }
