package budget

import (
	"context"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/models"
	"github.com/budgettabs/budgettabs/internal/policy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateBudgetInput holds the fields accepted when creating a budget.
type CreateBudgetInput struct {
	Name         string
	Description  *string
	CurrencyCode *string
}

// UpdateBudgetInput holds a partial budget update. Nil fields are left unchanged.
type UpdateBudgetInput struct {
	Name         *string
	Description  *string
	CurrencyCode *string
}

// CreateBudget creates a budget for owner. The first budget an owner creates, or
// any budget created while none is active, becomes the active budget.
func (s *Service) CreateBudget(ctx context.Context, owner uuid.UUID, in CreateBudgetInput) (*models.Budget, error) {
	if errAuth := policy.Require(owner); errAuth != nil {
		return nil, errAuth
	}
	name, errName := requiredText("name", in.Name)
	if errName != nil {
		return nil, errName
	}
	currency := models.DefaultCurrencyCode
	if in.CurrencyCode != nil {
		currency = *in.CurrencyCode
	}
	if errCurrency := checkCurrency(currency); errCurrency != nil {
		return nil, errCurrency
	}

	b := &models.Budget{
		UserID:       owner,
		Name:         name,
		Description:  optionalText(in.Description),
		CurrencyCode: currency,
	}
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(b).Error; errCreate != nil {
			return apperr.FromDB(errCreate, "budget")
		}
		errActivate := tx.Model(&models.Profile{}).
			Scopes(policy.OwnProfile(owner)).
			Where("profiles.active_budget_id IS NULL").
			Update("active_budget_id", b.ID).Error
		if errActivate != nil {
			return apperr.FromDB(errActivate, "profile")
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return b, nil
}

// ListBudgets returns the owner's budgets, newest first.
func (s *Service) ListBudgets(ctx context.Context, owner uuid.UUID) ([]models.Budget, error) {
	if errAuth := policy.Require(owner); errAuth != nil {
		return nil, errAuth
	}
	var budgets []models.Budget
	if errFind := s.db.WithContext(ctx).
		Scopes(policy.OwnedBudgets(owner)).
		Order("budgets.created_at DESC").
		Order("budgets.id").
		Find(&budgets).Error; errFind != nil {
		return nil, apperr.FromDB(errFind, "budget")
	}
	return budgets, nil
}

// GetBudget returns an owned budget with its tab breakdown and totals.
func (s *Service) GetBudget(ctx context.Context, owner, id uuid.UUID) (*BudgetDetail, error) {
	if errAuth := policy.Require(owner); errAuth != nil {
		return nil, errAuth
	}
	conn := s.db.WithContext(ctx)
	b, errLoad := loadBudget(conn, owner, id)
	if errLoad != nil {
		return nil, errLoad
	}
	return buildDetail(conn, owner, b)
}

// UpdateBudget applies a partial update to an owned budget.
func (s *Service) UpdateBudget(ctx context.Context, owner, id uuid.UUID, in UpdateBudgetInput) (*models.Budget, error) {
	if errAuth := policy.Require(owner); errAuth != nil {
		return nil, errAuth
	}
	if in.Name == nil && in.Description == nil && in.CurrencyCode == nil {
		return nil, apperr.Validation("fields", "at least one field must be provided")
	}
	updates := map[string]any{}
	if in.Name != nil {
		name, errName := requiredText("name", *in.Name)
		if errName != nil {
			return nil, errName
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = optionalText(in.Description)
	}
	if in.CurrencyCode != nil {
		if errCurrency := checkCurrency(*in.CurrencyCode); errCurrency != nil {
			return nil, errCurrency
		}
		updates["currency_code"] = *in.CurrencyCode
	}

	var updated *models.Budget
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, errLoad := loadBudget(tx, owner, id)
		if errLoad != nil {
			return errLoad
		}
		if errUpdate := tx.Model(b).Updates(updates).Error; errUpdate != nil {
			return apperr.FromDB(errUpdate, "budget")
		}
		reloaded, errReload := loadBudget(tx, owner, id)
		if errReload != nil {
			return errReload
		}
		updated = reloaded
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return updated, nil
}

// DeleteBudget removes an owned budget with its tabs and expenses, and clears it
// as the owner's active budget.
func (s *Service) DeleteBudget(ctx context.Context, owner, id uuid.UUID) error {
	if errAuth := policy.Require(owner); errAuth != nil {
		return errAuth
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, errLoad := loadBudget(tx, owner, id)
		if errLoad != nil {
			return errLoad
		}
		errClear := tx.Model(&models.Profile{}).
			Scopes(policy.OwnProfile(owner)).
			Where("profiles.active_budget_id = ?", b.ID).
			Update("active_budget_id", nil).Error
		if errClear != nil {
			return apperr.FromDB(errClear, "profile")
		}
		if errDelete := tx.Delete(b).Error; errDelete != nil {
			return apperr.FromDB(errDelete, "budget")
		}
		return nil
	})
}

// Dashboard returns the detail of the owner's active budget, or nil when none is set.
func (s *Service) Dashboard(ctx context.Context, owner uuid.UUID) (*BudgetDetail, error) {
	if errAuth := policy.Require(owner); errAuth != nil {
		return nil, errAuth
	}
	conn := s.db.WithContext(ctx)
	var p models.Profile
	if errFind := conn.Scopes(policy.OwnProfile(owner)).First(&p).Error; errFind != nil {
		return nil, apperr.FromDB(errFind, "profile")
	}
	if p.ActiveBudgetID == nil {
		return nil, nil
	}
	b, errLoad := loadBudget(conn, owner, *p.ActiveBudgetID)
	if errLoad != nil {
		if apperr.IsNotFound(errLoad) {
			return nil, nil
		}
		return nil, errLoad
	}
	return buildDetail(conn, owner, b)
}
