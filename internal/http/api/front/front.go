package front

import (
	"strings"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/budget"
	"github.com/budgettabs/budgettabs/internal/config"
	handlers "github.com/budgettabs/budgettabs/internal/http/api/front/handlers"
	"github.com/budgettabs/budgettabs/internal/identity"
	"github.com/budgettabs/budgettabs/internal/profile"
	"github.com/budgettabs/budgettabs/internal/support"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RegisterFrontRoutes registers the public API routes, middleware, and handlers.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig) {
	if r == nil || db == nil {
		return
	}

	tokens := identity.NewTokens(jwtCfg)
	profiles := profile.NewService(db)
	identities := identity.NewService(db, tokens, profiles)
	budgets := budget.NewService(db)
	requests := support.NewService(db)
	auth := &authenticator{tokens: tokens, identities: identities, profiles: profiles}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	api := r.Group("/api")

	authHandler := handlers.NewAuthHandler(identities)
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)

	supportHandler := handlers.NewSupportHandler(requests)
	optional := api.Group("")
	optional.Use(userAuthMiddleware(auth, false))
	optional.GET("/support-requests", supportHandler.List)
	optional.POST("/support-requests", supportHandler.Create)

	authed := api.Group("")
	authed.Use(userAuthMiddleware(auth, true))

	authed.DELETE("/account", authHandler.DeleteAccount)

	profileHandler := handlers.NewProfileHandler(profiles)
	authed.GET("/profile", profileHandler.Get)
	authed.PATCH("/profile", profileHandler.Update)

	budgetHandler := handlers.NewBudgetHandler(budgets)
	authed.GET("/dashboard", budgetHandler.Dashboard)
	authed.GET("/budgets", budgetHandler.List)
	authed.POST("/budgets", budgetHandler.Create)
	authed.GET("/budgets/:id", budgetHandler.Get)
	authed.PATCH("/budgets/:id", budgetHandler.Update)
	authed.DELETE("/budgets/:id", budgetHandler.Delete)
	authed.GET("/budgets/:id/totals", budgetHandler.Totals)

	tabHandler := handlers.NewTabHandler(budgets)
	authed.POST("/budgets/:id/tabs", tabHandler.Create)
	authed.PATCH("/tabs/:id", tabHandler.Update)
	authed.DELETE("/tabs/:id", tabHandler.Delete)

	expenseHandler := handlers.NewExpenseHandler(budgets)
	authed.GET("/budgets/:id/expenses", expenseHandler.List)
	authed.POST("/budgets/:id/expenses", expenseHandler.Create)
	authed.DELETE("/expenses/:id", expenseHandler.Delete)
}

// authenticator resolves bearer tokens to profiles.
type authenticator struct {
	tokens     *identity.Tokens
	identities *identity.Service
	profiles   *profile.Service
}

// abortAuth writes an unauthenticated error envelope.
func abortAuth(c *gin.Context, message string) {
	err := apperr.Unauthenticated(message)
	c.AbortWithStatusJSON(err.Status(), gin.H{"error": gin.H{"code": string(err.Kind), "message": err.Message}})
}

// userAuthMiddleware validates bearer tokens and stores the caller's profile ID.
// When required is false, requests without an Authorization header pass through
// anonymously; a present but invalid header is still rejected.
func userAuthMiddleware(a *authenticator, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				abortAuth(c, "missing authorization header")
				return
			}
			c.Next()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			abortAuth(c, "invalid authorization format")
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			abortAuth(c, "empty token")
			return
		}

		principal, errVerify := a.tokens.Verify(token)
		if errVerify != nil {
			abortAuth(c, apperr.As(errVerify).Message)
			return
		}

		ctx := c.Request.Context()
		_, errProfile := a.profiles.Get(ctx, principal.ID)
		if apperr.IsNotFound(errProfile) {
			// Tokens from an external provider may name identities this store has not seen.
			if errMirror := a.identities.Mirror(ctx, *principal); errMirror != nil {
				log.WithError(errMirror).WithField("user_id", principal.ID).Warn("mirror identity failed")
				abortAuth(c, "unknown user")
				return
			}
			_, errProfile = a.profiles.Ensure(ctx, profile.NewIdentity{ID: principal.ID, Email: principal.Email})
		}
		if errProfile != nil {
			if apperr.KindOf(errProfile) == apperr.KindInternal {
				log.WithError(errProfile).WithField("user_id", principal.ID).Error("load profile failed")
				c.AbortWithStatusJSON(apperr.Internal(errProfile).Status(), gin.H{"error": gin.H{"code": string(apperr.KindInternal), "message": "internal error"}})
				return
			}
			abortAuth(c, "unknown user")
			return
		}

		c.Set(handlers.ContextUserID, principal.ID)
		c.Next()
	}
}
