package handlers

import (
	"time"

	"github.com/budgettabs/budgettabs/internal/budget"
	"github.com/budgettabs/budgettabs/internal/models"
	"github.com/budgettabs/budgettabs/internal/money"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func budgetPayload(b models.Budget) gin.H {
	return gin.H{
		"id":            b.ID,
		"user_id":       b.UserID,
		"name":          b.Name,
		"description":   b.Description,
		"currency_code": b.CurrencyCode,
		"created_at":    timestamp(b.CreatedAt),
		"updated_at":    timestamp(b.UpdatedAt),
	}
}

// tabPayload renders a tab. The display amount is included when currency is known.
func tabPayload(t models.Tab, currency string) gin.H {
	payload := gin.H{
		"id":               t.ID,
		"budget_id":        t.BudgetID,
		"name":             t.Name,
		"description":      t.Description,
		"color":            t.Color,
		"icon":             t.Icon,
		"amount_allocated": t.AmountAllocated,
		"position":         t.Position,
		"created_at":       timestamp(t.CreatedAt),
		"updated_at":       timestamp(t.UpdatedAt),
	}
	if currency != "" {
		payload["amount_allocated_display"] = money.Display(t.AmountAllocated, currency)
	}
	return payload
}

func tabSummaryPayload(s budget.TabSummary, currency string) gin.H {
	payload := tabPayload(s.Tab, currency)
	payload["spent"] = s.Spent
	payload["spent_display"] = money.Display(s.Spent, currency)
	payload["remaining"] = s.Remaining
	payload["remaining_display"] = money.Display(s.Remaining, currency)
	payload["spent_percentage"] = s.SpentPercentage
	return payload
}

func totalsPayload(t budget.Totals) gin.H {
	currency := t.CurrencyCode
	return gin.H{
		"currency_code":     currency,
		"allocated":         t.Allocated,
		"allocated_display": money.Display(t.Allocated, currency),
		"spent":             t.Spent,
		"spent_display":     money.Display(t.Spent, currency),
		"left":              t.Left,
		"left_display":      money.Display(t.Left, currency),
	}
}

func detailPayload(d *budget.BudgetDetail) gin.H {
	currency := d.Budget.CurrencyCode
	tabs := make([]gin.H, 0, len(d.Tabs))
	for _, s := range d.Tabs {
		tabs = append(tabs, tabSummaryPayload(s, currency))
	}
	payload := budgetPayload(d.Budget)
	payload["tabs"] = tabs
	payload["totals"] = totalsPayload(d.Totals)
	return payload
}

// expensePayload renders an expense. The display amount is included when currency is known.
func expensePayload(e models.Expense, currency string) gin.H {
	payload := gin.H{
		"id":           e.ID,
		"budget_id":    e.BudgetID,
		"tab_id":       e.TabID,
		"user_id":      e.UserID,
		"amount":       e.Amount,
		"description":  e.Description,
		"expense_date": time.Time(e.ExpenseDate).Format(dateLayout),
		"created_at":   timestamp(e.CreatedAt),
		"updated_at":   timestamp(e.UpdatedAt),
	}
	if currency != "" {
		payload["amount_display"] = money.Display(e.Amount, currency)
	}
	return payload
}

func profilePayload(p *models.Profile) gin.H {
	return gin.H{
		"id":               p.ID,
		"email":            p.Email,
		"full_name":        p.FullName,
		"display_name":     p.DisplayName,
		"avatar_url":       p.AvatarURL,
		"currency_code":    p.CurrencyCode,
		"timezone":         p.Timezone,
		"active_budget_id": p.ActiveBudgetID,
		"created_at":       timestamp(p.CreatedAt),
		"updated_at":       timestamp(p.UpdatedAt),
	}
}

func supportRequestPayload(r models.SupportRequest) gin.H {
	return gin.H{
		"id":         r.ID,
		"user_id":    r.UserID,
		"email":      r.Email,
		"subject":    r.Subject,
		"message":    r.Message,
		"status":     r.Status,
		"created_at": timestamp(r.CreatedAt),
		"updated_at": timestamp(r.UpdatedAt),
	}
}
