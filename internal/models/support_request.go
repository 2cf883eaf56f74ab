package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupportStatus is the lifecycle state of a support request.
type SupportStatus string

// SupportStatus values accepted by the support_requests check constraint.
const (
	SupportStatusOpen       SupportStatus = "open"
	SupportStatusInProgress SupportStatus = "in_progress"
	SupportStatusResolved   SupportStatus = "resolved"
	SupportStatusClosed     SupportStatus = "closed"
)

// Valid reports whether s is a known status.
func (s SupportStatus) Valid() bool {
	switch s {
	case SupportStatusOpen, SupportStatusInProgress, SupportStatusResolved, SupportStatusClosed:
		return true
	default:
		return false
	}
}

// SupportRequest is a contact message, optionally tied to a profile.
type SupportRequest struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"` // Primary key.

	UserID *uuid.UUID `gorm:"type:uuid;index"` // Submitting profile, nil for anonymous requests.

	Email   string        `gorm:"type:text;not null"` // Reply-to address.
	Subject string        `gorm:"type:text;not null"` // Short summary.
	Message string        `gorm:"type:text;not null"` // Request body.
	Status  SupportStatus `gorm:"type:text;not null"` // Current status.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName returns the support_requests table name.
func (SupportRequest) TableName() string { return "support_requests" }

// BeforeCreate assigns a random ID and the default status.
func (s *SupportRequest) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = SupportStatusOpen
	}
	return nil
}
