package handlers

import (
	"net/http"

	"github.com/budgettabs/budgettabs/internal/support"
	"github.com/gin-gonic/gin"
)

// SupportHandler accepts and lists support requests.
type SupportHandler struct {
	requests *support.Service
}

// NewSupportHandler constructs a SupportHandler.
func NewSupportHandler(requests *support.Service) *SupportHandler {
	return &SupportHandler{requests: requests}
}

// createSupportRequest defines the request body for support requests.
type createSupportRequest struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Create stores a support request from a visitor or the signed-in user.
func (h *SupportHandler) Create(c *gin.Context) {
	var body createSupportRequest
	if !bindJSON(c, &body) {
		return
	}
	req, errCreate := h.requests.Create(c.Request.Context(), getUserID(c), support.CreateInput{
		Email:   body.Email,
		Subject: body.Subject,
		Message: body.Message,
	})
	if errCreate != nil {
		respondError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, supportRequestPayload(*req))
}

// List returns the support requests visible to the caller.
func (h *SupportHandler) List(c *gin.Context) {
	requests, errList := h.requests.List(c.Request.Context(), getUserID(c))
	if errList != nil {
		respondError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(requests))
	for _, r := range requests {
		out = append(out, supportRequestPayload(r))
	}
	c.JSON(http.StatusOK, gin.H{"support_requests": out})
}
