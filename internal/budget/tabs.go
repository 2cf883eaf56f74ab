package budget

import (
	"context"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/models"
	"github.com/budgettabs/budgettabs/internal/policy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateTabInput holds the fields accepted when creating a tab.
type CreateTabInput struct {
	Name            string
	Description     *string
	AmountAllocated *decimal.Decimal
	Color           *string
	Icon            *string
	Position        *int
}

// UpdateTabInput holds a partial tab update. Nil fields are left unchanged.
type UpdateTabInput struct {
	Name            *string
	Description     *string
	AmountAllocated *decimal.Decimal
	Color           *string
	Icon            *string
	Position        *int
}

func (in UpdateTabInput) empty() bool {
	return in.Name == nil && in.Description == nil && in.AmountAllocated == nil &&
		in.Color == nil && in.Icon == nil && in.Position == nil
}

// ensureUniqueTabName reports a conflict when another tab in budgetID already uses name.
func ensureUniqueTabName(tx *gorm.DB, budgetID uuid.UUID, name string, exclude uuid.UUID) error {
	q := tx.Model(&models.Tab{}).Where("tabs.budget_id = ? AND tabs.name = ?", budgetID, name)
	if exclude != uuid.Nil {
		q = q.Where("tabs.id <> ?", exclude)
	}
	var count int64
	if errCount := q.Count(&count).Error; errCount != nil {
		return apperr.FromDB(errCount, "tab")
	}
	if count > 0 {
		return apperr.Conflict("name", "a tab named \""+name+"\" already exists in this budget")
	}
	return nil
}

// nextTabPosition returns one past the highest position used in budgetID, or 0.
func nextTabPosition(tx *gorm.DB, budgetID uuid.UUID) (int, error) {
	var last int64
	if errScan := tx.Model(&models.Tab{}).
		Select("COALESCE(MAX(tabs.position), -1)").
		Where("tabs.budget_id = ?", budgetID).
		Scan(&last).Error; errScan != nil {
		return 0, apperr.FromDB(errScan, "tab")
	}
	next := int(last + 1)
	if errPosition := checkPosition(next); errPosition != nil {
		return 0, errPosition
	}
	return next, nil
}

// tabConflict maps a unique violation on (budget_id, name) to a field conflict.
func tabConflict(err error) error {
	mapped := apperr.FromDB(err, "tab")
	if apperr.IsConflict(mapped) {
		return apperr.Conflict("name", "a tab with this name already exists in this budget")
	}
	return mapped
}

// CreateTab adds a tab to an owned budget.
func (s *Service) CreateTab(ctx context.Context, owner, budgetID uuid.UUID, in CreateTabInput) (*models.Tab, error) {
	if errAuth := policy.Require(owner); errAuth != nil {
		return nil, errAuth
	}
	name, errName := requiredText("name", in.Name)
	if errName != nil {
		return nil, errName
	}
	allocated := decimal.Zero
	if in.AmountAllocated != nil {
		allocated = *in.AmountAllocated
	}
	if errAmount := checkAllocation(allocated); errAmount != nil {
		return nil, errAmount
	}
	if in.Position != nil {
		if errPosition := checkPosition(*in.Position); errPosition != nil {
			return nil, errPosition
		}
	}

	t := &models.Tab{
		Name:            name,
		Description:     optionalText(in.Description),
		AmountAllocated: allocated,
		Color:           optionalText(in.Color),
		Icon:            optionalText(in.Icon),
	}
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, errLoad := loadBudget(tx, owner, budgetID)
		if errLoad != nil {
			return errLoad
		}
		t.BudgetID = b.ID
		if errUnique := ensureUniqueTabName(tx, b.ID, name, uuid.Nil); errUnique != nil {
			return errUnique
		}
		if in.Position != nil {
			t.Position = *in.Position
		} else {
			next, errNext := nextTabPosition(tx, b.ID)
			if errNext != nil {
				return errNext
			}
			t.Position = next
		}
		if errCreate := tx.Create(t).Error; errCreate != nil {
			return tabConflict(errCreate)
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return t, nil
}

// UpdateTab applies a partial update to an owned tab.
func (s *Service) UpdateTab(ctx context.Context, owner, id uuid.UUID, in UpdateTabInput) (*models.Tab, error) {
	if errAuth := policy.Require(owner); errAuth != nil {
		return nil, errAuth
	}
	if in.empty() {
		return nil, apperr.Validation("fields", "at least one field must be provided")
	}
	updates := map[string]any{}
	var name string
	if in.Name != nil {
		trimmed, errName := requiredText("name", *in.Name)
		if errName != nil {
			return nil, errName
		}
		name = trimmed
		updates["name"] = name
	}
	if in.AmountAllocated != nil {
		if errAmount := checkAllocation(*in.AmountAllocated); errAmount != nil {
			return nil, errAmount
		}
		updates["amount_allocated"] = *in.AmountAllocated
	}
	if in.Position != nil {
		if errPosition := checkPosition(*in.Position); errPosition != nil {
			return nil, errPosition
		}
		updates["position"] = *in.Position
	}
	if in.Description != nil {
		updates["description"] = optionalText(in.Description)
	}
	if in.Color != nil {
		updates["color"] = optionalText(in.Color)
	}
	if in.Icon != nil {
		updates["icon"] = optionalText(in.Icon)
	}

	var updated *models.Tab
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, errLoad := loadTab(tx, owner, id)
		if errLoad != nil {
			return errLoad
		}
		if in.Name != nil {
			if errUnique := ensureUniqueTabName(tx, t.BudgetID, name, t.ID); errUnique != nil {
				return errUnique
			}
		}
		if errUpdate := tx.Model(t).Updates(updates).Error; errUpdate != nil {
			return tabConflict(errUpdate)
		}
		reloaded, errReload := loadTab(tx, owner, id)
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

// DeleteTab removes an owned tab and its expenses.
func (s *Service) DeleteTab(ctx context.Context, owner, id uuid.UUID) error {
	if errAuth := policy.Require(owner); errAuth != nil {
		return errAuth
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, errLoad := loadTab(tx, owner, id)
		if errLoad != nil {
			return errLoad
		}
		if errDelete := tx.Delete(t).Error; errDelete != nil {
			return apperr.FromDB(errDelete, "tab")
		}
		return nil
	})
}
