// Package support records contact requests from visitors and signed-in users.
package support

import (
	"context"
	"net/mail"
	"strings"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/models"
	"github.com/budgettabs/budgettabs/internal/policy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxSubjectLength = 200
	maxMessageLength = 5000
)

// Service creates and lists support requests.
type Service struct {
	db *gorm.DB
}

// NewService constructs a support service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateInput holds a new support request. Email may be empty for signed-in
// callers, in which case the profile email is used.
type CreateInput struct {
	Email   string
	Subject string
	Message string
}

// Create stores a support request. caller is uuid.Nil for anonymous visitors.
func (s *Service) Create(ctx context.Context, caller uuid.UUID, in CreateInput) (*models.SupportRequest, error) {
	conn := s.db.WithContext(ctx)

	email := strings.TrimSpace(in.Email)
	if email == "" && caller != uuid.Nil {
		var p models.Profile
		if errFind := conn.Scopes(policy.OwnProfile(caller)).Select("email").First(&p).Error; errFind == nil {
			email = p.Email
		}
	}
	if email == "" {
		return nil, apperr.Validation("email", "email is required")
	}
	if _, errParse := mail.ParseAddress(email); errParse != nil {
		return nil, apperr.Validation("email", "email is not a valid address")
	}
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		return nil, apperr.Validation("subject", "subject is required")
	}
	if len(subject) > maxSubjectLength {
		return nil, apperr.Validation("subject", "subject is too long")
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, apperr.Validation("message", "message is required")
	}
	if len(message) > maxMessageLength {
		return nil, apperr.Validation("message", "message is too long")
	}

	req := &models.SupportRequest{
		Email:   email,
		Subject: subject,
		Message: message,
		Status:  models.SupportStatusOpen,
	}
	if caller != uuid.Nil {
		owner := caller
		req.UserID = &owner
	}
	if errCreate := conn.Create(req).Error; errCreate != nil {
		return nil, apperr.FromDB(errCreate, "support request")
	}
	return req, nil
}

// List returns the support requests visible to caller, newest first.
func (s *Service) List(ctx context.Context, caller uuid.UUID) ([]models.SupportRequest, error) {
	var requests []models.SupportRequest
	if errFind := s.db.WithContext(ctx).
		Scopes(policy.VisibleSupportRequests(caller)).
		Order("support_requests.created_at DESC").
		Find(&requests).Error; errFind != nil {
		return nil, apperr.FromDB(errFind, "support request")
	}
	visible := requests[:0]
	for i := range requests {
		if policy.CanReadSupportRequest(caller, &requests[i]) {
			visible = append(visible, requests[i])
		}
	}
	return visible, nil
}
