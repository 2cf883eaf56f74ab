package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/budgettabs/budgettabs/internal/budget"
	"github.com/gin-gonic/gin"
)

// BudgetHandler handles budget endpoints for the signed-in user.
type BudgetHandler struct {
	budgets *budget.Service
}

// NewBudgetHandler constructs a BudgetHandler.
func NewBudgetHandler(budgets *budget.Service) *BudgetHandler {
	return &BudgetHandler{budgets: budgets}
}

// createBudgetRequest defines the request body for creating budgets.
type createBudgetRequest struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	CurrencyCode *string `json:"currency_code"`
}

// updateBudgetRequest defines the request body for updating budgets.
// A null description clears it.
type updateBudgetRequest struct {
	Name         *string         `json:"name"`
	Description  json.RawMessage `json:"description"`
	CurrencyCode *string         `json:"currency_code"`
}

// List returns the caller's budgets, newest first.
func (h *BudgetHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	budgets, errList := h.budgets.ListBudgets(c.Request.Context(), userID)
	if errList != nil {
		respondError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, budgetPayload(b))
	}
	c.JSON(http.StatusOK, gin.H{"budgets": out})
}

// Create creates a budget.
func (h *BudgetHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var body createBudgetRequest
	if !bindJSON(c, &body) {
		return
	}
	b, errCreate := h.budgets.CreateBudget(c.Request.Context(), userID, budget.CreateBudgetInput{
		Name:         body.Name,
		Description:  body.Description,
		CurrencyCode: body.CurrencyCode,
	})
	if errCreate != nil {
		respondError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, budgetPayload(*b))
}

// Get returns a budget with its tabs and totals.
func (h *BudgetHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "budget")
	if !ok {
		return
	}
	detail, errGet := h.budgets.GetBudget(c.Request.Context(), userID, id)
	if errGet != nil {
		respondError(c, errGet)
		return
	}
	c.JSON(http.StatusOK, detailPayload(detail))
}

// Update applies a partial budget update.
func (h *BudgetHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "budget")
	if !ok {
		return
	}
	var body updateBudgetRequest
	if !bindJSON(c, &body) {
		return
	}
	description, errDecode := decodeClearableText("description", body.Description)
	if errDecode != nil {
		respondError(c, errDecode)
		return
	}
	b, errUpdate := h.budgets.UpdateBudget(c.Request.Context(), userID, id, budget.UpdateBudgetInput{
		Name:         body.Name,
		Description:  description,
		CurrencyCode: body.CurrencyCode,
	})
	if errUpdate != nil {
		respondError(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, budgetPayload(*b))
}

// Delete removes a budget with its tabs and expenses.
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "budget")
	if !ok {
		return
	}
	if errDelete := h.budgets.DeleteBudget(c.Request.Context(), userID, id); errDelete != nil {
		respondError(c, errDelete)
		return
	}
	noContent(c)
}

// Totals returns allocated, spent and left amounts for a budget.
func (h *BudgetHandler) Totals(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "budget")
	if !ok {
		return
	}
	totals, errTotals := h.budgets.Totals(c.Request.Context(), userID, id)
	if errTotals != nil {
		respondError(c, errTotals)
		return
	}
	payload := totalsPayload(totals)
	payload["budget_id"] = id
	c.JSON(http.StatusOK, payload)
}

// Dashboard returns the caller's active budget detail, or a null budget.
func (h *BudgetHandler) Dashboard(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	detail, errDashboard := h.budgets.Dashboard(c.Request.Context(), userID)
	if errDashboard != nil {
		respondError(c, errDashboard)
		return
	}
	if detail == nil {
		c.JSON(http.StatusOK, gin.H{"budget": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"budget": detailPayload(detail)})
}
