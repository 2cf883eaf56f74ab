package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/profile"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProfileHandler serves the caller's profile.
type ProfileHandler struct {
	profiles *profile.Service
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(profiles *profile.Service) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// updateProfileRequest defines the request body for profile updates.
// active_budget_id is raw so that an explicit null clears it.
type updateProfileRequest struct {
	FullName       *string         `json:"full_name"`
	DisplayName    *string         `json:"display_name"`
	AvatarURL      *string         `json:"avatar_url"`
	CurrencyCode   *string         `json:"currency_code"`
	Timezone       *string         `json:"timezone"`
	ActiveBudgetID json.RawMessage `json:"active_budget_id"`
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	p, errGet := h.profiles.Get(c.Request.Context(), userID)
	if errGet != nil {
		respondError(c, errGet)
		return
	}
	c.JSON(http.StatusOK, profilePayload(p))
}

// Update applies a partial update to the caller's profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var body updateProfileRequest
	if !bindJSON(c, &body) {
		return
	}
	in := profile.UpdateInput{
		FullName:     body.FullName,
		DisplayName:  body.DisplayName,
		AvatarURL:    body.AvatarURL,
		CurrencyCode: body.CurrencyCode,
		Timezone:     body.Timezone,
	}
	if len(body.ActiveBudgetID) > 0 {
		if isNull(body.ActiveBudgetID) {
			in.ClearActiveBudget = true
		} else {
			var raw string
			if errDecode := json.Unmarshal(body.ActiveBudgetID, &raw); errDecode != nil {
				respondError(c, apperr.Validation("active_budget_id", "active_budget_id must be a UUID or null"))
				return
			}
			id, errParse := uuid.Parse(raw)
			if errParse != nil {
				respondError(c, apperr.Validation("active_budget_id", "active_budget_id must be a UUID or null"))
				return
			}
			in.ActiveBudgetID = &id
		}
	}
	p, errUpdate := h.profiles.Update(c.Request.Context(), userID, in)
	if errUpdate != nil {
		respondError(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, profilePayload(p))
}
