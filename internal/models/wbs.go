package models

// Work breakdown structure: category -> subcategory. Transactions reference
// both levels optionally.
type WbsCategory struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ProgramID    uint   `gorm:"not null;index" json:"program_id"`
	CategoryName string `gorm:"size:255;not null;unique" json:"category_name"`
}

func (WbsCategory) AuditTable() string { return "wbs_categories" }

type WbsSubcategory struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	CategoryID      uint   `gorm:"not null;index" json:"category_id"`
	SubcategoryName string `gorm:"size:255;not null" json:"subcategory_name"`
}

func (WbsSubcategory) AuditTable() string { return "wbs_subcategories" }
