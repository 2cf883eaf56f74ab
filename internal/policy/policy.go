// Package policy holds the ownership rules applied to every budget query.
//
// Each rule exists twice: as a gorm scope that narrows a query to rows the
// caller may see, and as a pure guard over an already loaded row. A caller
// that fails a rule sees the row as absent.
package policy

import (
	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ownedBudgetIDs selects the budget IDs belonging to a caller.
const ownedBudgetIDs = "SELECT id FROM budgets WHERE user_id = ?"

// Require rejects anonymous callers.
func Require(caller uuid.UUID) error {
	if caller == uuid.Nil {
		return apperr.Unauthenticated("")
	}
	return nil
}

// OwnedBudgets limits a budgets query to the caller's rows.
func OwnedBudgets(caller uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("budgets.user_id = ?", caller)
	}
}

// OwnedTabs limits a tabs query to tabs whose budget the caller owns.
func OwnedTabs(caller uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("tabs.budget_id IN ("+ownedBudgetIDs+")", caller)
	}
}

// OwnedExpenses limits an expenses query to the caller's own expenses in budgets the caller owns.
func OwnedExpenses(caller uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("expenses.user_id = ? AND expenses.budget_id IN ("+ownedBudgetIDs+")", caller, caller)
	}
}

// OwnProfile limits a profiles query to the caller's profile.
func OwnProfile(caller uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("profiles.id = ?", caller)
	}
}

// VisibleSupportRequests limits a support_requests query to the caller's requests
// plus every anonymous request. Anonymous callers see anonymous requests only.
func VisibleSupportRequests(caller uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if caller == uuid.Nil {
			return q.Where("support_requests.user_id IS NULL")
		}
		return q.Where("(support_requests.user_id = ? OR support_requests.user_id IS NULL)", caller)
	}
}

// CanAccessBudget reports whether caller owns b.
func CanAccessBudget(caller uuid.UUID, b *models.Budget) bool {
	return caller != uuid.Nil && b != nil && b.UserID == caller
}

// CanAccessTab reports whether caller owns the budget that holds t.
func CanAccessTab(caller uuid.UUID, parent *models.Budget, t *models.Tab) bool {
	return t != nil && CanAccessBudget(caller, parent) && t.BudgetID == parent.ID
}

// CanAccessExpense reports whether caller owns e and its budget.
func CanAccessExpense(caller uuid.UUID, parent *models.Budget, e *models.Expense) bool {
	return e != nil && CanAccessBudget(caller, parent) && e.BudgetID == parent.ID && e.UserID == caller
}

// CanAccessProfile reports whether p is the caller's own profile.
func CanAccessProfile(caller uuid.UUID, p *models.Profile) bool {
	return caller != uuid.Nil && p != nil && p.ID == caller
}

// CanReadSupportRequest reports whether caller may read r.
func CanReadSupportRequest(caller uuid.UUID, r *models.SupportRequest) bool {
	if r == nil {
		return false
	}
	if r.UserID == nil {
		return true
	}
	return caller != uuid.Nil && *r.UserID == caller
}
