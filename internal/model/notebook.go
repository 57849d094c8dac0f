package model

import "time"

// Notebook is a single inventoried machine.
type Notebook struct {
	ID           int64          `gorm:"primaryKey"`
	AssetTag     string         `gorm:"size:32;uniqueIndex;not null"`
	BrandModel   string         `gorm:"size:128;not null"`
	SerialNumber string         `gorm:"size:64;uniqueIndex;not null"`
	Custodian    string         `gorm:"size:128;not null"`
	Status       NotebookStatus `gorm:"size:16;index;not null"`
	Notes        string         `gorm:"type:text;not null"`
	CreatedAt    time.Time      `gorm:"column:created_date;not null;autoCreateTime:false"`
	UpdatedAt    time.Time      `gorm:"column:updated_date;not null;autoUpdateTime:false"`
}

// OnCreate stamps both timestamps.
func (n *Notebook) OnCreate(now time.Time) {
	n.CreatedAt = now
	n.UpdatedAt = now
}

// OnUpdate refreshes UpdatedAt.
func (n *Notebook) OnUpdate(now time.Time) {
	n.UpdatedAt = now
}
