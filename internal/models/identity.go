package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Identity is an authenticated principal known to the identity store.
// Profiles hang off identities and are removed with them.
type Identity struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"` // Stable principal ID, used as JWT subject.

	Email        string         `gorm:"type:text;not null;uniqueIndex"` // Lower-cased login email.
	PasswordHash *string        `gorm:"type:text"`                      // Bcrypt hash, nil for externally managed identities.
	Metadata     datatypes.JSON `gorm:"type:jsonb;not null"`            // Signup metadata (full_name, avatar_url).

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName returns the identities table name.
func (Identity) TableName() string { return "identities" }

// BeforeCreate assigns a random ID when none was provided.
func (i *Identity) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if len(i.Metadata) == 0 {
		i.Metadata = datatypes.JSON([]byte("{}"))
	}
	return nil
}

// IdentityMetadata is the decoded shape of Identity.Metadata.
type IdentityMetadata struct {
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
