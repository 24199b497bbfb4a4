package models

import "time"

// Detainee is a registered record. Cedula is stored normalized (upper
// case with a V-/E- nationality prefix) and is globally unique. Rows are
// created once and never updated or hard-deleted.
type Detainee struct {
	ID            uint      `gorm:"primaryKey"`
	FullName      string    `gorm:"column:full_name;not null"`
	Cedula        string    `gorm:"type:text;not null;uniqueIndex"`
	BirthDate     time.Time `gorm:"column:birth_date;not null"`
	State         string    `gorm:"not null"`
	Municipality  string    `gorm:"not null"`
	Parish        string    `gorm:"not null"`
	Address       string    `gorm:"not null"`
	Registro      *string   `gorm:"column:registro"`
	Phone         *string   `gorm:"column:phone"`
	PhotoURL      *string   `gorm:"column:photo_url"`
	IDDocumentURL *string   `gorm:"column:id_document_url"`
	RegisteredBy  uint      `gorm:"column:registered_by;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
