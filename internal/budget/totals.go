package budget

import (
	"context"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/models"
	"github.com/budgettabs/budgettabs/internal/money"
	"github.com/budgettabs/budgettabs/internal/policy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Totals summarizes a budget. Left is negative when spending exceeds allocation.
type Totals struct {
	CurrencyCode string
	Allocated    decimal.Decimal
	Spent        decimal.Decimal
	Left         decimal.Decimal
}

// TabSummary is a tab with its spending figures.
type TabSummary struct {
	models.Tab
	Spent           decimal.Decimal
	Remaining       decimal.Decimal
	SpentPercentage decimal.Decimal
}

// BudgetDetail is a budget with its tabs in display order and its totals.
type BudgetDetail struct {
	Budget models.Budget
	Tabs   []TabSummary
	Totals Totals
}

// tabSpend is one row of the per-tab expense aggregate.
type tabSpend struct {
	TabID uuid.UUID
	Spent decimal.Decimal
}

// sumRow is a single aggregate value.
type sumRow struct {
	Total decimal.Decimal
}

// Totals returns allocated, spent and left amounts for an owned budget.
func (s *Service) Totals(ctx context.Context, owner, budgetID uuid.UUID) (Totals, error) {
	if errAuth := policy.Require(owner); errAuth != nil {
		return Totals{}, errAuth
	}
	conn := s.db.WithContext(ctx)
	b, errLoad := loadBudget(conn, owner, budgetID)
	if errLoad != nil {
		return Totals{}, errLoad
	}

	var allocated sumRow
	if errSum := conn.Model(&models.Tab{}).
		Scopes(policy.OwnedTabs(owner)).
		Select("COALESCE(SUM(tabs.amount_allocated), 0) AS total").
		Where("tabs.budget_id = ?", b.ID).
		Scan(&allocated).Error; errSum != nil {
		return Totals{}, apperr.FromDB(errSum, "tab")
	}
	var spent sumRow
	if errSum := conn.Model(&models.Expense{}).
		Scopes(policy.OwnedExpenses(owner)).
		Select("COALESCE(SUM(expenses.amount), 0) AS total").
		Where("expenses.budget_id = ?", b.ID).
		Scan(&spent).Error; errSum != nil {
		return Totals{}, apperr.FromDB(errSum, "expense")
	}
	return newTotals(b.CurrencyCode, allocated.Total, spent.Total), nil
}

func newTotals(currency string, allocated, spent decimal.Decimal) Totals {
	allocated = allocated.Round(money.MaxFractionDigits)
	spent = spent.Round(money.MaxFractionDigits)
	return Totals{CurrencyCode: currency, Allocated: allocated, Spent: spent, Left: allocated.Sub(spent)}
}

// buildDetail loads the tabs of b with their spending and the budget totals.
func buildDetail(conn *gorm.DB, owner uuid.UUID, b *models.Budget) (*BudgetDetail, error) {
	var tabs []models.Tab
	if errFind := conn.
		Scopes(policy.OwnedTabs(owner)).
		Where("tabs.budget_id = ?", b.ID).
		Order("tabs.position ASC").
		Order("tabs.created_at ASC").
		Find(&tabs).Error; errFind != nil {
		return nil, apperr.FromDB(errFind, "tab")
	}

	var spends []tabSpend
	if errSum := conn.Model(&models.Expense{}).
		Scopes(policy.OwnedExpenses(owner)).
		Select("expenses.tab_id AS tab_id, COALESCE(SUM(expenses.amount), 0) AS spent").
		Where("expenses.budget_id = ?", b.ID).
		Group("expenses.tab_id").
		Scan(&spends).Error; errSum != nil {
		return nil, apperr.FromDB(errSum, "expense")
	}
	spentByTab := make(map[uuid.UUID]decimal.Decimal, len(spends))
	for _, row := range spends {
		spentByTab[row.TabID] = row.Spent.Round(money.MaxFractionDigits)
	}

	detail := &BudgetDetail{Budget: *b, Tabs: make([]TabSummary, 0, len(tabs))}
	allocated := decimal.Zero
	spent := decimal.Zero
	for _, t := range tabs {
		tabSpent := spentByTab[t.ID]
		detail.Tabs = append(detail.Tabs, TabSummary{
			Tab:             t,
			Spent:           tabSpent,
			Remaining:       t.AmountAllocated.Sub(tabSpent),
			SpentPercentage: money.Percent(tabSpent, t.AmountAllocated),
		})
		allocated = allocated.Add(t.AmountAllocated)
		spent = spent.Add(tabSpent)
	}
	detail.Totals = newTotals(b.CurrencyCode, allocated, spent)
	return detail, nil
}
