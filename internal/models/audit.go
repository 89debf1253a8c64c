package models

import "time"

// Audit trail
//
// AuditRecord rows are append-only: one row per changed scalar field,
// inserted in the same transaction as the change itself. They are never
// updated or deleted.
type AuditRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EditedBy     string    `gorm:"size:255;not null" json:"edited_by"`
	EditedAt     time.Time `gorm:"index" json:"edited_at"`
	FieldChanged string    `gorm:"size:255;not null" json:"field_changed"`
	OldValue     *string   `gorm:"type:text" json:"old_value"`
	NewValue     *string   `gorm:"type:text" json:"new_value"`
	RecordID     uint      `gorm:"not null" json:"record_id"` // 0 when the row had no id at commit time
	TableName    string    `gorm:"size:50;not null" json:"table_name"`
}

// Auditable marks the entity types whose scalar field changes are recorded
// by the audit hook. AuditRecord deliberately does not implement it, so the
// hook can never recurse into its own output.
type Auditable interface {
	AuditTable() string
}
