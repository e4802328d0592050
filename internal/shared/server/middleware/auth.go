package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"talentedge-backend/internal/authz"
	"talentedge-backend/internal/shared/auth"
	"talentedge-backend/internal/shared/server/respond"
)

const (
	actorIDKey    = "actorId"
	actorOrgKey   = "actorOrg"
	actorRoleKey  = "actorRole"
	actorEmailKey = "actorEmail"
	actorNameKey  = "actorName"
)

// Auth validates the bearer token against the given secret and stores the
// actor identity in context. Domain services receive the identity explicitly;
// nothing below this layer reads ambient session state.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		claims, err := auth.Verify(secret, token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(actorIDKey, claims.Subject)
		c.Set(actorOrgKey, claims.OrgID)
		c.Set(actorRoleKey, claims.Role)
		if claims.Email != "" {
			c.Set(actorEmailKey, claims.Email)
		}
		if claims.Name != "" {
			c.Set(actorNameKey, claims.Name)
		}
		c.Next()
	}
}

// ActorEmailFromContext returns the actor's email claim, if present.
func ActorEmailFromContext(c *gin.Context) string {
	return c.GetString(actorEmailKey)
}

// ActorNameFromContext returns the actor's display name claim, if present.
func ActorNameFromContext(c *gin.Context) string {
	return c.GetString(actorNameKey)
}

// ActorFromContext returns the identity stored by Auth.
func ActorFromContext(c *gin.Context) authz.Actor {
	if c == nil {
		return authz.Actor{}
	}
	return authz.Actor{
		UserID: c.GetString(actorIDKey),
		OrgID:  c.GetString(actorOrgKey),
		Role:   authz.ParseRole(c.GetString(actorRoleKey)),
	}
}
