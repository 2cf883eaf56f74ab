package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the JWT payload shared with hosted auth providers.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Principal is a verified caller.
type Principal struct {
	ID    uuid.UUID
	Email string
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret   []byte
	expiry   time.Duration
	issuer   string
	audience string
	now      func() time.Time
}

// NewTokens builds a token issuer from JWT settings.
func NewTokens(cfg config.JWTConfig) *Tokens {
	return &Tokens{
		secret:   []byte(cfg.Secret),
		expiry:   cfg.Expiry,
		issuer:   strings.TrimSpace(cfg.Issuer),
		audience: strings.TrimSpace(cfg.Audience),
		now:      time.Now,
	}
}

// Issue signs a token for the identity and returns it with its expiry.
func (t *Tokens) Issue(id uuid.UUID, email string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.expiry)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if t.issuer != "" {
		claims.Issuer = t.issuer
	}
	if t.audience != "" {
		claims.Audience = jwt.ClaimStrings{t.audience}
	}
	signed, errSign := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if errSign != nil {
		return "", time.Time{}, fmt.Errorf("identity: sign token: %w", errSign)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, expiry, issuer and audience and returns the caller.
func (t *Tokens) Verify(raw string) (*Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperr.Unauthenticated("")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	if t.audience != "" {
		opts = append(opts, jwt.WithAudience(t.audience))
	}

	var claims Claims
	token, errParse := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if errParse != nil {
		if errors.Is(errParse, jwt.ErrTokenExpired) {
			return nil, apperr.Unauthenticated("token expired")
		}
		return nil, apperr.Unauthenticated("invalid token")
	}
	if !token.Valid {
		return nil, apperr.Unauthenticated("invalid token")
	}
	id, errID := uuid.Parse(claims.Subject)
	if errID != nil || id == uuid.Nil {
		return nil, apperr.Unauthenticated("invalid token subject")
	}
	return &Principal{ID: id, Email: strings.ToLower(strings.TrimSpace(claims.Email))}, nil
}
