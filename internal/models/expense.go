package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Expense is a single amount spent against a tab.
type Expense struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"` // Primary key.

	BudgetID uuid.UUID `gorm:"type:uuid;not null;index"` // Budget the tab belongs to.
	TabID    uuid.UUID `gorm:"type:uuid;not null;index"` // Tab charged.
	UserID   uuid.UUID `gorm:"type:uuid;not null;index"` // Owning profile ID.

	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"` // Strictly positive amount.
	Description *string         `gorm:"type:text"`                   // Optional note.
	ExpenseDate datatypes.Date  `gorm:"type:date;not null"`          // Day the money was spent.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName returns the expenses table name.
func (Expense) TableName() string { return "expenses" }

// BeforeCreate assigns a random ID when none was provided.
func (e *Expense) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
