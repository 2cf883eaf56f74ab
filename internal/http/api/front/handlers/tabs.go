package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/budgettabs/budgettabs/internal/budget"
	"github.com/gin-gonic/gin"
)

// TabHandler handles tab endpoints.
type TabHandler struct {
	budgets *budget.Service
}

// NewTabHandler constructs a TabHandler.
func NewTabHandler(budgets *budget.Service) *TabHandler {
	return &TabHandler{budgets: budgets}
}

// tabRequest defines the request body for creating and updating tabs.
// Amounts and clearable text stay raw until decoded.
type tabRequest struct {
	Name            *string         `json:"name"`
	Description     json.RawMessage `json:"description"`
	AmountAllocated json.RawMessage `json:"amount_allocated"`
	Color           json.RawMessage `json:"color"`
	Icon            json.RawMessage `json:"icon"`
	Position        *int            `json:"position"`
}

func (r tabRequest) decode() (budget.UpdateTabInput, error) {
	in := budget.UpdateTabInput{Name: r.Name, Position: r.Position}
	var err error
	if in.AmountAllocated, err = decodeAmount("amount_allocated", r.AmountAllocated); err != nil {
		return in, err
	}
	if in.Description, err = decodeClearableText("description", r.Description); err != nil {
		return in, err
	}
	if in.Color, err = decodeClearableText("color", r.Color); err != nil {
		return in, err
	}
	if in.Icon, err = decodeClearableText("icon", r.Icon); err != nil {
		return in, err
	}
	return in, nil
}

// Create adds a tab to a budget.
func (h *TabHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	budgetID, ok := parseID(c, "id", "budget")
	if !ok {
		return
	}
	var body tabRequest
	if !bindJSON(c, &body) {
		return
	}
	fields, errDecode := body.decode()
	if errDecode != nil {
		respondError(c, errDecode)
		return
	}
	in := budget.CreateTabInput{
		Description:     fields.Description,
		AmountAllocated: fields.AmountAllocated,
		Color:           fields.Color,
		Icon:            fields.Icon,
		Position:        fields.Position,
	}
	if fields.Name != nil {
		in.Name = *fields.Name
	}
	t, errCreate := h.budgets.CreateTab(c.Request.Context(), userID, budgetID, in)
	if errCreate != nil {
		respondError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, tabPayload(*t, ""))
}

// Update applies a partial tab update.
func (h *TabHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "tab")
	if !ok {
		return
	}
	var body tabRequest
	if !bindJSON(c, &body) {
		return
	}
	fields, errDecode := body.decode()
	if errDecode != nil {
		respondError(c, errDecode)
		return
	}
	t, errUpdate := h.budgets.UpdateTab(c.Request.Context(), userID, id, fields)
	if errUpdate != nil {
		respondError(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, tabPayload(*t, ""))
}

// Delete removes a tab and its expenses.
func (h *TabHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "tab")
	if !ok {
		return
	}
	if errDelete := h.budgets.DeleteTab(c.Request.Context(), userID, id); errDelete != nil {
		respondError(c, errDelete)
		return
	}
	noContent(c)
}
