package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/budget"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExpenseHandler handles expense endpoints.
type ExpenseHandler struct {
	budgets *budget.Service
}

// NewExpenseHandler constructs an ExpenseHandler.
func NewExpenseHandler(budgets *budget.Service) *ExpenseHandler {
	return &ExpenseHandler{budgets: budgets}
}

// createExpenseRequest defines the request body for logging expenses.
type createExpenseRequest struct {
	TabID       string          `json:"tab_id"`
	Amount      json.RawMessage `json:"amount"`
	Description *string         `json:"description"`
	ExpenseDate *string         `json:"expense_date"`
}

// List returns a budget's expenses, latest first.
func (h *ExpenseHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	budgetID, ok := parseID(c, "id", "budget")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	// Totals carries the budget currency used for display amounts.
	totals, errTotals := h.budgets.Totals(ctx, userID, budgetID)
	if errTotals != nil {
		respondError(c, errTotals)
		return
	}
	expenses, errList := h.budgets.ListExpenses(ctx, userID, budgetID)
	if errList != nil {
		respondError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expensePayload(e, totals.CurrencyCode))
	}
	c.JSON(http.StatusOK, gin.H{"expenses": out})
}

// Create logs an expense against a tab of the budget.
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	budgetID, ok := parseID(c, "id", "budget")
	if !ok {
		return
	}
	var body createExpenseRequest
	if !bindJSON(c, &body) {
		return
	}
	tabID, errTab := uuid.Parse(strings.TrimSpace(body.TabID))
	if errTab != nil {
		respondError(c, apperr.Validation("tab_id", "tab_id must be a UUID"))
		return
	}
	amount, errAmount := decodeAmount("amount", body.Amount)
	if errAmount != nil {
		respondError(c, errAmount)
		return
	}
	if amount == nil {
		respondError(c, apperr.Validation("amount", "amount is required"))
		return
	}
	in := budget.CreateExpenseInput{
		TabID:       tabID,
		Amount:      *amount,
		Description: body.Description,
	}
	if body.ExpenseDate != nil && strings.TrimSpace(*body.ExpenseDate) != "" {
		day, errDate := time.Parse(dateLayout, strings.TrimSpace(*body.ExpenseDate))
		if errDate != nil {
			respondError(c, apperr.Validation("expense_date", "expense_date must use YYYY-MM-DD"))
			return
		}
		in.ExpenseDate = &day
	}
	e, errCreate := h.budgets.CreateExpense(c.Request.Context(), userID, budgetID, in)
	if errCreate != nil {
		respondError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, expensePayload(*e, ""))
}

// Delete removes an expense.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "expense")
	if !ok {
		return
	}
	if errDelete := h.budgets.DeleteExpense(c.Request.Context(), userID, id); errDelete != nil {
		respondError(c, errDelete)
		return
	}
	noContent(c)
}
