package model

import (
	"time"

	"gorm.io/gorm"
)

// Departement is an academic department referenced by candidate and teacher profiles
type Departement struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Code      string         `gorm:"uniqueIndex;not null;type:varchar(20)" json:"code"`
	Nom       string         `gorm:"not null" json:"nom"`
}
