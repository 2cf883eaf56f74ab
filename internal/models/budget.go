package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Budget groups tabs and expenses for a single owner.
type Budget struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"` // Primary key.

	UserID uuid.UUID `gorm:"type:uuid;not null;index"` // Owning profile ID.

	Name         string  `gorm:"type:text;not null"`       // Budget name.
	Description  *string `gorm:"type:text"`                // Optional description.
	CurrencyCode string  `gorm:"type:varchar(3);not null"` // ISO currency code for all amounts.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName returns the budgets table name.
func (Budget) TableName() string { return "budgets" }

// BeforeCreate assigns a random ID when none was provided.
func (b *Budget) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
