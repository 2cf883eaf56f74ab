package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tab is a spending category inside a budget.
type Tab struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"` // Primary key.

	BudgetID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tabs_budget_name"` // Parent budget ID.

	Name        string  `gorm:"type:text;not null;uniqueIndex:idx_tabs_budget_name"` // Unique within the budget.
	Description *string `gorm:"type:text"`                                           // Optional description.
	Color       *string `gorm:"type:text"`                                           // Display color hint.
	Icon        *string `gorm:"type:text"`                                           // Display icon hint.

	AmountAllocated decimal.Decimal `gorm:"type:numeric(12,2);not null"` // Allocated amount, never negative.
	Position        int             `gorm:"not null"`                    // Display ordering.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName returns the tabs table name.
func (Tab) TableName() string { return "tabs" }

// BeforeCreate assigns a random ID when none was provided.
func (t *Tab) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
