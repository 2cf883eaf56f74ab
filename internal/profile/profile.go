// Package profile manages the per-identity profile record.
package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/models"
	"github.com/budgettabs/budgettabs/internal/money"
	"github.com/budgettabs/budgettabs/internal/policy"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service reads and updates profiles.
type Service struct {
	db *gorm.DB
}

// NewService constructs a profile service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// NewIdentity describes a freshly created identity.
type NewIdentity struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	AvatarURL string
}

// UpdateInput holds a partial profile update. Nil fields are left unchanged.
// Setting ClearActiveBudget removes the active budget.
type UpdateInput struct {
	FullName          *string
	DisplayName       *string
	AvatarURL         *string
	CurrencyCode      *string
	Timezone          *string
	ActiveBudgetID    *uuid.UUID
	ClearActiveBudget bool
}

func (in UpdateInput) empty() bool {
	return in.FullName == nil && in.DisplayName == nil && in.AvatarURL == nil &&
		in.CurrencyCode == nil && in.Timezone == nil && in.ActiveBudgetID == nil && !in.ClearActiveBudget
}

// defaultDisplayName returns the local part of email.
func defaultDisplayName(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return email
	}
	return local
}

func nonEmpty(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// CreateForIdentity inserts the profile for a new identity. An existing profile
// is left untouched.
func (s *Service) CreateForIdentity(ctx context.Context, ident NewIdentity) (*models.Profile, error) {
	if ident.ID == uuid.Nil {
		return nil, apperr.Validation("id", "identity id is required")
	}
	email := strings.ToLower(strings.TrimSpace(ident.Email))
	if email == "" {
		return nil, apperr.Validation("email", "email is required")
	}
	fullName := nonEmpty(ident.FullName)
	displayName := defaultDisplayName(email)
	if fullName != nil {
		displayName = *fullName
	}
	p := &models.Profile{
		ID:           ident.ID,
		Email:        email,
		FullName:     fullName,
		DisplayName:  &displayName,
		AvatarURL:    nonEmpty(ident.AvatarURL),
		CurrencyCode: models.DefaultCurrencyCode,
		Timezone:     models.DefaultTimezone,
	}
	conn := s.db.WithContext(ctx)
	if errCreate := conn.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).Create(p).Error; errCreate != nil {
		return nil, apperr.FromDB(errCreate, "profile")
	}
	return s.Get(ctx, ident.ID)
}

// Ensure returns the caller's profile, creating it when the identity has none.
func (s *Service) Ensure(ctx context.Context, ident NewIdentity) (*models.Profile, error) {
	p, errGet := s.Get(ctx, ident.ID)
	if errGet == nil {
		return p, nil
	}
	if !apperr.IsNotFound(errGet) {
		return nil, errGet
	}
	log.WithField("user_id", ident.ID).Info("profile missing for verified identity, creating it")
	return s.CreateForIdentity(ctx, ident)
}

// Get returns the caller's profile.
func (s *Service) Get(ctx context.Context, caller uuid.UUID) (*models.Profile, error) {
	if errAuth := policy.Require(caller); errAuth != nil {
		return nil, errAuth
	}
	var p models.Profile
	if errFind := s.db.WithContext(ctx).Scopes(policy.OwnProfile(caller)).First(&p).Error; errFind != nil {
		return nil, apperr.FromDB(errFind, "profile")
	}
	if !policy.CanAccessProfile(caller, &p) {
		return nil, apperr.NotFound("profile")
	}
	return &p, nil
}

// Update applies a partial update to the caller's profile.
func (s *Service) Update(ctx context.Context, caller uuid.UUID, in UpdateInput) (*models.Profile, error) {
	if errAuth := policy.Require(caller); errAuth != nil {
		return nil, errAuth
	}
	if in.empty() {
		return nil, apperr.Validation("fields", "at least one field must be provided")
	}
	if in.ClearActiveBudget && in.ActiveBudgetID != nil {
		return nil, apperr.Validation("active_budget_id", "active_budget_id cannot be set and cleared at once")
	}

	updates := map[string]any{}
	if in.FullName != nil {
		updates["full_name"] = nonEmpty(*in.FullName)
	}
	if in.DisplayName != nil {
		updates["display_name"] = nonEmpty(*in.DisplayName)
	}
	if in.AvatarURL != nil {
		updates["avatar_url"] = nonEmpty(*in.AvatarURL)
	}
	if in.CurrencyCode != nil {
		if !money.ValidCurrency(*in.CurrencyCode) {
			return nil, apperr.Validation("currency_code", "currency_code must be three uppercase letters")
		}
		updates["currency_code"] = *in.CurrencyCode
	}
	if in.Timezone != nil {
		tz := strings.TrimSpace(*in.Timezone)
		if tz == "" {
			return nil, apperr.Validation("timezone", "timezone is required")
		}
		if _, errLoad := time.LoadLocation(tz); errLoad != nil {
			return nil, apperr.Validation("timezone", "timezone must be an IANA zone name")
		}
		updates["timezone"] = tz
	}
	if in.ClearActiveBudget {
		updates["active_budget_id"] = nil
	}

	var updated *models.Profile
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Profile
		if errFind := tx.Scopes(policy.OwnProfile(caller)).First(&p).Error; errFind != nil {
			return apperr.FromDB(errFind, "profile")
		}
		if in.ActiveBudgetID != nil {
			var b models.Budget
			errBudget := tx.Scopes(policy.OwnedBudgets(caller)).Where("budgets.id = ?", *in.ActiveBudgetID).First(&b).Error
			if errors.Is(errBudget, gorm.ErrRecordNotFound) {
				return apperr.Validation("active_budget_id", "active_budget_id must reference one of your budgets")
			}
			if errBudget != nil {
				return apperr.FromDB(errBudget, "budget")
			}
			updates["active_budget_id"] = b.ID
		}
		if errUpdate := tx.Model(&p).Updates(updates).Error; errUpdate != nil {
			return apperr.FromDB(errUpdate, "profile")
		}
		if errReload := tx.Scopes(policy.OwnProfile(caller)).First(&p).Error; errReload != nil {
			return apperr.FromDB(errReload, "profile")
		}
		updated = &p
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return updated, nil
}
