package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"talentedge-backend/internal/bootstrap"
	"talentedge-backend/internal/shared/server/middleware"
	"talentedge-backend/internal/shared/server/respond"
	"talentedge-backend/internal/shared/telemetry"
	"talentedge-backend/internal/users"
)

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup, app *bootstrap.App) {
	rg.GET("/me", meHandler(app))
}

// meHandler echoes the authenticated identity and refreshes the user
// directory from the token claims so history lookups can resolve actor
// names later.
func meHandler(app *bootstrap.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.ActorFromContext(c)
		if actor.UserID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		email := middleware.ActorEmailFromContext(c)
		name := middleware.ActorNameFromContext(c)
		if err := app.Users.Upsert(c.Request.Context(), users.User{
			ID:        actor.UserID,
			OrgID:     actor.OrgID,
			Email:     email,
			Name:      name,
			Role:      string(actor.Role),
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			telemetry.Warn("me.upsert_failed", map[string]any{
				"user_id": actor.UserID,
				"error":   err.Error(),
			})
		}

		response := gin.H{
			"userId": actor.UserID,
			"role":   string(actor.Role),
		}
		if actor.OrgID != "" {
			response["orgId"] = actor.OrgID
		}
		if email != "" {
			response["email"] = email
		}
		if name != "" {
			response["name"] = name
		}
		respond.JSON(c, http.StatusOK, response)
	}
}
