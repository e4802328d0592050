package applications

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"talentedge-backend/internal/extract"
	"talentedge-backend/internal/shared/server/middleware"
	"talentedge-backend/internal/shared/server/respond"
)

const maxResumeSize = 5 << 20 // 5MB decoded

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches application routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications", h.submit)
	rg.GET("/applications/:id", h.get)
	rg.POST("/applications/:id/transition", h.transition)
	rg.GET("/applications/:id/history", h.history)
	rg.GET("/jobs/:id/applications", h.listByJob)
}

type submitRequest struct {
	JobID           string         `json:"jobId"`
	ApplicationData map[string]any `json:"applicationData"`
	CoverLetter     string         `json:"coverLetter"`
	ResumeBase64    string         `json:"resumeBase64"`
	ResumeMimeType  string         `json:"resumeMimeType"`
}

func (h *Handler) submit(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.JobID) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "jobId is required", nil)
		return
	}

	input := SubmitInput{
		ApplicationData: req.ApplicationData,
		CoverLetter:     req.CoverLetter,
	}
	if req.ResumeBase64 != "" {
		raw, err := base64.StdEncoding.DecodeString(req.ResumeBase64)
		if err != nil || len(raw) > maxResumeSize {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid resume payload", nil)
			return
		}
		text, err := extract.TextFromBytes(c.Request.Context(), raw, req.ResumeMimeType)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read resume", nil)
			return
		}
		input.ResumeText = text
	}

	app, err := h.Svc.Submit(c.Request.Context(), actor.UserID, req.JobID, input)
	if err != nil {
		h.respondError(c, err, "failed to submit application")
		return
	}
	c.Set("applicationId", app.ID)
	respond.Created(c, toResponse(app))
}

type transitionRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (h *Handler) transition(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	applicationID := c.Param("id")

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	newStatus, ok := ParseStatus(strings.TrimSpace(req.Status))
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown status", nil)
		return
	}

	app, err := h.Svc.Transition(c.Request.Context(), actor, applicationID, newStatus, req.Notes)
	if err != nil {
		h.respondError(c, err, "failed to transition application")
		return
	}
	c.Set("applicationId", app.ID)
	c.Set("statusTransition", string(newStatus))
	respond.OK(c, toResponse(app))
}

func (h *Handler) history(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	applicationID := c.Param("id")

	views, err := h.Svc.History(c.Request.Context(), actor, applicationID)
	if err != nil {
		h.respondError(c, err, "failed to load history")
		return
	}
	out := make([]historyResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toHistoryResponse(v))
	}
	respond.OK(c, gin.H{"history": out})
}

func (h *Handler) get(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	app, err := h.Svc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to load application")
		return
	}
	respond.OK(c, toResponse(app))
}

func (h *Handler) listByJob(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	apps, err := h.Svc.ListByJob(c.Request.Context(), actor, c.Param("id"), limit, offset)
	if err != nil {
		h.respondError(c, err, "failed to list applications")
		return
	}
	out := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, toResponse(app))
	}
	respond.OK(c, gin.H{"applications": out})
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
	case errors.Is(err, ErrAccessDenied):
		respond.Error(c, http.StatusForbidden, "access_denied", "not allowed", nil)
	case errors.Is(err, ErrDuplicateApplication):
		respond.Error(c, http.StatusConflict, "duplicate_application", "you have already applied to this job", nil)
	case errors.Is(err, ErrInvalidTransition):
		respond.Error(c, http.StatusUnprocessableEntity, "invalid_transition", "status transition not allowed", nil)
	case errors.Is(err, ErrStatusConflict):
		respond.Error(c, http.StatusConflict, "status_conflict", "application changed, please retry", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
