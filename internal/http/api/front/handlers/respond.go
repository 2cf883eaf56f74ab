package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ContextUserID is the gin context key holding the verified caller's profile ID.
const ContextUserID = "userID"

// getUserID returns the caller set by the auth middleware, or uuid.Nil.
func getUserID(c *gin.Context) uuid.UUID {
	raw, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil
	}
	id, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// respondError writes the error envelope for err and aborts the request.
func respondError(c *gin.Context, err error) {
	appErr := apperr.As(err)
	if appErr.Kind == apperr.KindInternal {
		entry := log.WithField("path", c.FullPath())
		if appErr.Err != nil {
			entry = entry.WithError(appErr.Err)
		}
		entry.Error("request failed")
		_ = c.Error(err)
	}
	body := gin.H{
		"code":    string(appErr.Kind),
		"message": appErr.Message,
	}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	c.AbortWithStatusJSON(appErr.Status(), gin.H{"error": body})
}

// parseID reads a UUID path parameter. Malformed IDs name no row, so they are
// reported as missing resource.
func parseID(c *gin.Context, param, resource string) (uuid.UUID, bool) {
	id, errParse := uuid.Parse(strings.TrimSpace(c.Param(param)))
	if errParse != nil || id == uuid.Nil {
		respondError(c, apperr.NotFound(resource))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the request body into out, writing a validation error on failure.
func bindJSON(c *gin.Context, out any) bool {
	if errBind := c.ShouldBindJSON(out); errBind != nil {
		if errors.Is(errBind, io.EOF) {
			respondError(c, apperr.Validation("body", "request body is required"))
			return false
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(errBind, &typeErr) && typeErr.Field != "" {
			respondError(c, apperr.Validation(typeErr.Field, typeErr.Field+" must be a "+jsonKind(typeErr.Type.Kind())))
			return false
		}
		respondError(c, apperr.Validation("body", "invalid json"))
		return false
	}
	return true
}

// requireUser returns the caller or writes 401.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID := getUserID(c)
	if userID == uuid.Nil {
		respondError(c, apperr.Unauthenticated(""))
		return uuid.Nil, false
	}
	return userID, true
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
