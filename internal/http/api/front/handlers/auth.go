package handlers

import (
	"net/http"

	"github.com/budgettabs/budgettabs/internal/identity"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles signup, login and account deletion.
type AuthHandler struct {
	identities *identity.Service
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(identities *identity.Service) *AuthHandler {
	return &AuthHandler{identities: identities}
}

// signupRequest defines the request body for signup.
type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func sessionPayload(s *identity.Session) gin.H {
	return gin.H{
		"access_token": s.Token,
		"token_type":   "bearer",
		"expires_at":   timestamp(s.ExpiresAt),
		"user": gin.H{
			"id":    s.Identity.ID,
			"email": s.Identity.Email,
		},
	}
}

// Signup creates an account and returns a token.
func (h *AuthHandler) Signup(c *gin.Context) {
	var body signupRequest
	if !bindJSON(c, &body) {
		return
	}
	session, errRegister := h.identities.Register(c.Request.Context(), identity.SignupInput{
		Email:     body.Email,
		Password:  body.Password,
		FullName:  body.FullName,
		AvatarURL: body.AvatarURL,
	})
	if errRegister != nil {
		respondError(c, errRegister)
		return
	}
	c.JSON(http.StatusCreated, sessionPayload(session))
}

// Login exchanges credentials for a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if !bindJSON(c, &body) {
		return
	}
	session, errLogin := h.identities.Login(c.Request.Context(), body.Email, body.Password)
	if errLogin != nil {
		respondError(c, errLogin)
		return
	}
	c.JSON(http.StatusOK, sessionPayload(session))
}

// DeleteAccount removes the caller's account and everything it owns.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if errDelete := h.identities.DeleteAccount(c.Request.Context(), userID); errDelete != nil {
		respondError(c, errDelete)
		return
	}
	noContent(c)
}
