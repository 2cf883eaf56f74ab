package budget

import (
	"context"
	"time"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/models"
	"github.com/budgettabs/budgettabs/internal/policy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateExpenseInput holds the fields accepted when logging an expense.
// A nil ExpenseDate means today in the owner's timezone.
type CreateExpenseInput struct {
	TabID       uuid.UUID
	Amount      decimal.Decimal
	Description *string
	ExpenseDate *time.Time
}

// calendarDay strips the clock from t, keeping its calendar date.
func calendarDay(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// CreateExpense logs an expense against a tab of an owned budget.
func (s *Service) CreateExpense(ctx context.Context, owner, budgetID uuid.UUID, in CreateExpenseInput) (*models.Expense, error) {
	if errAuth := policy.Require(owner); errAuth != nil {
		return nil, errAuth
	}
	if in.TabID == uuid.Nil {
		return nil, apperr.Validation("tab_id", "tab_id is required")
	}
	if errAmount := checkExpenseAmount(in.Amount); errAmount != nil {
		return nil, errAmount
	}

	e := &models.Expense{
		TabID:       in.TabID,
		UserID:      owner,
		Amount:      in.Amount,
		Description: optionalText(in.Description),
	}
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, errLoad := loadBudget(tx, owner, budgetID)
		if errLoad != nil {
			return errLoad
		}
		t, errTab := loadTab(tx, owner, in.TabID)
		if errTab != nil && !apperr.IsNotFound(errTab) {
			return errTab
		}
		if errTab != nil || !policy.CanAccessTab(owner, b, t) {
			return apperr.Validation("tab_id", "tab does not belong to this budget")
		}
		e.BudgetID = b.ID
		if in.ExpenseDate != nil {
			e.ExpenseDate = calendarDay(*in.ExpenseDate)
		} else {
			e.ExpenseDate = calendarDay(s.now().In(ownerLocation(tx, owner)))
		}
		if errCreate := tx.Create(e).Error; errCreate != nil {
			return apperr.FromDB(errCreate, "expense")
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return e, nil
}

// ListExpenses returns the expenses of an owned budget, latest expense date first.
func (s *Service) ListExpenses(ctx context.Context, owner, budgetID uuid.UUID) ([]models.Expense, error) {
	if errAuth := policy.Require(owner); errAuth != nil {
		return nil, errAuth
	}
	conn := s.db.WithContext(ctx)
	if _, errLoad := loadBudget(conn, owner, budgetID); errLoad != nil {
		return nil, errLoad
	}
	var expenses []models.Expense
	if errFind := conn.
		Scopes(policy.OwnedExpenses(owner)).
		Where("expenses.budget_id = ?", budgetID).
		Order("expenses.expense_date DESC").
		Order("expenses.created_at DESC").
		Find(&expenses).Error; errFind != nil {
		return nil, apperr.FromDB(errFind, "expense")
	}
	return expenses, nil
}

// DeleteExpense removes an owned expense.
func (s *Service) DeleteExpense(ctx context.Context, owner, id uuid.UUID) error {
	if errAuth := policy.Require(owner); errAuth != nil {
		return errAuth
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e models.Expense
		if errFind := tx.Scopes(policy.OwnedExpenses(owner)).Where("expenses.id = ?", id).First(&e).Error; errFind != nil {
			return apperr.FromDB(errFind, "expense")
		}
		parent, errParent := loadBudget(tx, owner, e.BudgetID)
		if errParent != nil {
			if apperr.IsNotFound(errParent) {
				return apperr.NotFound("expense")
			}
			return errParent
		}
		if !policy.CanAccessExpense(owner, parent, &e) {
			return apperr.NotFound("expense")
		}
		if errDelete := tx.Delete(&e).Error; errDelete != nil {
			return apperr.FromDB(errDelete, "expense")
		}
		return nil
	})
}
