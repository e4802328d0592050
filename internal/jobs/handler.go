package jobs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"talentedge-backend/internal/shared/server/middleware"
	"talentedge-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs", h.create)
	rg.GET("/jobs", h.list)
	rg.GET("/jobs/:id", h.get)
	rg.PUT("/jobs/:id/recruiters", h.assignRecruiters)
	rg.PUT("/jobs/:id/active", h.setActive)
}

type createRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

func (h *Handler) create(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	job, err := h.Svc.Create(c.Request.Context(), actor, req.Title, req.Description, req.Skills)
	if err != nil {
		h.respondError(c, err, "failed to create job")
		return
	}
	respond.Created(c, toResponse(job))
}

func (h *Handler) list(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	jobs, err := h.Svc.List(c.Request.Context(), actor, limit, offset)
	if err != nil {
		h.respondError(c, err, "failed to list jobs")
		return
	}
	out := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toResponse(job))
	}
	respond.OK(c, gin.H{"jobs": out})
}

func (h *Handler) get(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	job, err := h.Svc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to load job")
		return
	}
	respond.OK(c, toResponse(job))
}

type recruitersRequest struct {
	RecruiterIDs []string `json:"recruiterIds"`
}

func (h *Handler) assignRecruiters(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req recruitersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if err := h.Svc.AssignRecruiters(c.Request.Context(), actor, c.Param("id"), req.RecruiterIDs); err != nil {
		h.respondError(c, err, "failed to assign recruiters")
		return
	}
	respond.OK(c, gin.H{"recruiterIds": req.RecruiterIDs})
}

type activeRequest struct {
	IsActive bool `json:"isActive"`
}

func (h *Handler) setActive(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if err := h.Svc.SetActive(c.Request.Context(), actor, c.Param("id"), req.IsActive); err != nil {
		h.respondError(c, err, "failed to update job")
		return
	}
	respond.OK(c, gin.H{"isActive": req.IsActive})
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
	case errors.Is(err, ErrAccessDenied):
		respond.Error(c, http.StatusForbidden, "access_denied", "not allowed", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
