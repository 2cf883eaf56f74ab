package models

import (
	"time"
	// Timezone names resolve without host zoneinfo.
	_ "time/tzdata"

	"github.com/google/uuid"
)

// Default profile preferences applied at creation.
const (
	DefaultCurrencyCode = "USD"
	DefaultTimezone     = "UTC"
)

// Profile is the local user record attached to an identity.
type Profile struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"` // Equal to Identity.ID.

	Email       string  `gorm:"type:text;not null;uniqueIndex"` // Contact email, unique across profiles.
	FullName    *string `gorm:"type:text"`                      // Optional legal name.
	DisplayName *string `gorm:"type:text"`                      // Name shown in the UI.
	AvatarURL   *string `gorm:"type:text"`                      // Optional avatar location.

	CurrencyCode string `gorm:"type:varchar(3);not null"` // Preferred ISO currency code.
	Timezone     string `gorm:"type:text;not null"`       // IANA timezone name.

	ActiveBudgetID *uuid.UUID `gorm:"type:uuid;index"` // Budget opened by default, nil when none.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName returns the profiles table name.
func (Profile) TableName() string { return "profiles" }
