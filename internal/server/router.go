package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"talentedge-backend/internal/applications"
	"talentedge-backend/internal/assessments"
	"talentedge-backend/internal/bootstrap"
	"talentedge-backend/internal/interviews"
	"talentedge-backend/internal/jobs"
	"talentedge-backend/internal/shared/config"
	"talentedge-backend/internal/shared/metrics"
	"talentedge-backend/internal/shared/server/middleware"
	"talentedge-backend/internal/shared/server/respond"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config, app *bootstrap.App) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(
		middleware.Auth(cfg.JWTSecret),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: "DEFAULT",
			GroupFor:     rateLimitGroup,
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT":   {Rate: 5, Burst: 20},
				"RESPONSES": {Rate: 10, Burst: 40},
			},
		}),
	)

	registerMeRoutes(api, app)
	jobs.NewHandler(app.Jobs).RegisterRoutes(api)
	applications.NewHandler(app.Applications).RegisterRoutes(api)
	interviews.NewHandler(app.Interviews).RegisterRoutes(api)
	assessments.NewHandler(app.Assessments).RegisterRoutes(api)

	return r
}

// rateLimitGroup gives answer submission a higher allowance than the default;
// applicants save answers continuously during a timed test.
func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/attempts/:id/responses" {
		return "RESPONSES"
	}
	return "DEFAULT"
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
