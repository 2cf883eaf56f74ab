// Package identity stores login identities and issues the tokens that
// identify callers to the rest of the service.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/models"
	"github.com/budgettabs/budgettabs/internal/profile"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLength = 72
)

// ProfileCreator creates the profile that belongs to a new identity.
type ProfileCreator interface {
	CreateForIdentity(ctx context.Context, ident profile.NewIdentity) (*models.Profile, error)
}

// Service handles signup, login and account removal.
type Service struct {
	db       *gorm.DB
	tokens   *Tokens
	profiles ProfileCreator
}

// NewService constructs an identity service.
func NewService(db *gorm.DB, tokens *Tokens, profiles ProfileCreator) *Service {
	return &Service{db: db, tokens: tokens, profiles: profiles}
}

// SignupInput holds signup fields.
type SignupInput struct {
	Email     string
	Password  string
	FullName  string
	AvatarURL string
}

// Session is an issued token for an identity.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  models.Identity
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperr.Validation("email", "email is required")
	}
	addr, errParse := mail.ParseAddress(email)
	if errParse != nil || addr.Address != email {
		return "", apperr.Validation("email", "email is not a valid address")
	}
	return email, nil
}

func checkPassword(password string) error {
	if len(password) < minPasswordLength {
		return apperr.Validation("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		return apperr.Validation("password", fmt.Sprintf("password must be at most %d bytes", maxPasswordLength))
	}
	return nil
}

// Register creates an identity with a password, then its profile, and returns a session.
// A failed profile creation is logged; the profile is created on first authenticated request.
func (s *Service) Register(ctx context.Context, in SignupInput) (*Session, error) {
	email, errEmail := normalizeEmail(in.Email)
	if errEmail != nil {
		return nil, errEmail
	}
	if errPassword := checkPassword(in.Password); errPassword != nil {
		return nil, errPassword
	}

	conn := s.db.WithContext(ctx)
	var existing int64
	if errCount := conn.Model(&models.Identity{}).Where("email = ?", email).Count(&existing).Error; errCount != nil {
		return nil, apperr.FromDB(errCount, "identity")
	}
	if existing > 0 {
		return nil, apperr.Conflict("email", "an account with this email already exists")
	}

	hash, errHash := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if errHash != nil {
		return nil, apperr.Internal(fmt.Errorf("identity: hash password: %w", errHash))
	}
	meta := models.IdentityMetadata{
		FullName:  strings.TrimSpace(in.FullName),
		AvatarURL: strings.TrimSpace(in.AvatarURL),
	}
	metaJSON, errMarshal := json.Marshal(meta)
	if errMarshal != nil {
		return nil, apperr.Internal(fmt.Errorf("identity: encode metadata: %w", errMarshal))
	}
	hashed := string(hash)
	ident := models.Identity{
		Email:        email,
		PasswordHash: &hashed,
		Metadata:     datatypes.JSON(metaJSON),
	}
	if errCreate := conn.Create(&ident).Error; errCreate != nil {
		mapped := apperr.FromDB(errCreate, "identity")
		if apperr.IsConflict(mapped) {
			return nil, apperr.Conflict("email", "an account with this email already exists")
		}
		return nil, mapped
	}

	if s.profiles != nil {
		_, errProfile := s.profiles.CreateForIdentity(ctx, profile.NewIdentity{
			ID:        ident.ID,
			Email:     email,
			FullName:  meta.FullName,
			AvatarURL: meta.AvatarURL,
		})
		if errProfile != nil {
			log.WithError(errProfile).WithField("user_id", ident.ID).Warn("create profile after signup failed")
		}
	}
	return s.session(ident)
}

// Login verifies an email and password pair and returns a session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || password == "" {
		return nil, apperr.Unauthenticated("invalid email or password")
	}
	var ident models.Identity
	errFind := s.db.WithContext(ctx).Where("email = ?", normalized).First(&ident).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthenticated("invalid email or password")
	}
	if errFind != nil {
		return nil, apperr.FromDB(errFind, "identity")
	}
	if ident.PasswordHash == nil {
		return nil, apperr.Unauthenticated("invalid email or password")
	}
	if errCompare := bcrypt.CompareHashAndPassword([]byte(*ident.PasswordHash), []byte(password)); errCompare != nil {
		return nil, apperr.Unauthenticated("invalid email or password")
	}
	return s.session(ident)
}

func (s *Service) session(ident models.Identity) (*Session, error) {
	token, expiresAt, errIssue := s.tokens.Issue(ident.ID, ident.Email)
	if errIssue != nil {
		return nil, apperr.Internal(errIssue)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Identity: ident}, nil
}

// DeleteAccount removes the caller's identity. Profiles, budgets, tabs and
// expenses are removed by cascade; support requests lose their owner.
func (s *Service) DeleteAccount(ctx context.Context, caller uuid.UUID) error {
	if caller == uuid.Nil {
		return apperr.Unauthenticated("")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", caller).Delete(&models.Identity{})
		if res.Error != nil {
			return apperr.FromDB(res.Error, "account")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("account")
		}
		return nil
	})
}

// Mirror records an identity minted by an external provider so that local rows
// can reference it. Existing identities are left unchanged.
func (s *Service) Mirror(ctx context.Context, p Principal) error {
	if p.ID == uuid.Nil {
		return apperr.Unauthenticated("")
	}
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" {
		return apperr.Validation("email", "token carries no email")
	}
	ident := models.Identity{ID: p.ID, Email: email}
	errCreate := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&ident).Error
	if errCreate != nil {
		return apperr.FromDB(errCreate, "identity")
	}
	return nil
}
