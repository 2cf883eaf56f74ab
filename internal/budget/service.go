// Package budget implements the owner-scoped budget, tab and expense operations.
package budget

import (
	"time"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/models"
	"github.com/budgettabs/budgettabs/internal/policy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// clock returns the current time.
type clock func() time.Time

// Service exposes budget operations. Every call takes the caller's profile ID.
type Service struct {
	db  *gorm.DB
	now clock
}

// NewService constructs a budget service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// loadBudget fetches an owned budget or reports it as not found.
func loadBudget(tx *gorm.DB, owner, id uuid.UUID) (*models.Budget, error) {
	var b models.Budget
	if errFind := tx.Scopes(policy.OwnedBudgets(owner)).Where("budgets.id = ?", id).First(&b).Error; errFind != nil {
		return nil, apperr.FromDB(errFind, "budget")
	}
	return &b, nil
}

// loadTab fetches an owned tab or reports it as not found.
func loadTab(tx *gorm.DB, owner, id uuid.UUID) (*models.Tab, error) {
	var t models.Tab
	if errFind := tx.Scopes(policy.OwnedTabs(owner)).Where("tabs.id = ?", id).First(&t).Error; errFind != nil {
		return nil, apperr.FromDB(errFind, "tab")
	}
	return &t, nil
}

// ownerLocation resolves the caller's preferred timezone, falling back to UTC.
func ownerLocation(tx *gorm.DB, owner uuid.UUID) *time.Location {
	var p models.Profile
	if errFind := tx.Scopes(policy.OwnProfile(owner)).Select("timezone").First(&p).Error; errFind != nil {
		return time.UTC
	}
	loc, errLoad := time.LoadLocation(p.Timezone)
	if errLoad != nil {
		return time.UTC
	}
	return loc
}
