package models

import "time"

// Program is the top-level cost tracking unit. WBS categories and ledger
// transactions hang off it.
type Program struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null;unique" json:"name"`
	Code         string    `gorm:"size:50;not null;unique" json:"code"`
	Description  string    `gorm:"type:text" json:"description"`
	Status       string    `gorm:"size:10;not null;default:'Active'" json:"status"` // Active, Closed
	Manager      string    `gorm:"size:255;not null" json:"manager"`
	CreatedAt    time.Time `json:"created_at"`
	LastEditedAt time.Time `gorm:"autoUpdateTime" json:"last_edited_at"`
}

func (Program) AuditTable() string { return "programs" }
