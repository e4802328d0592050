package interviews

import (
	"errors"
	"net/http"
	"time"

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

// RegisterRoutes attaches interview routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications/:id/interviews", h.schedule)
	rg.GET("/applications/:id/interviews", h.list)
	rg.PUT("/interviews/:id/reschedule", h.reschedule)
	rg.PUT("/interviews/:id/status", h.updateStatus)
}

type scheduleRequest struct {
	ScheduledAt     time.Time `json:"scheduledAt"`
	Interviewers    []string  `json:"interviewers"`
	InterviewType   string    `json:"interviewType"`
	MeetingPlatform string    `json:"meetingPlatform"`
	MeetingLink     string    `json:"meetingLink"`
	MeetingLocation string    `json:"meetingLocation"`
	DurationMinutes int       `json:"durationMinutes"`
	Notes           string    `json:"notes"`
}

func (h *Handler) schedule(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	interview, err := h.Svc.Schedule(c.Request.Context(), actor, c.Param("id"), ScheduleInput{
		ScheduledAt:     req.ScheduledAt,
		Interviewers:    req.Interviewers,
		InterviewType:   req.InterviewType,
		MeetingPlatform: req.MeetingPlatform,
		MeetingLink:     req.MeetingLink,
		MeetingLocation: req.MeetingLocation,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	})
	if err != nil {
		h.respondError(c, err, "failed to schedule interview")
		return
	}
	c.Set("applicationId", interview.ApplicationID)
	respond.Created(c, toResponse(interview))
}

type rescheduleRequest struct {
	ScheduledAt     time.Time `json:"scheduledAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Notes           string    `json:"notes"`
}

func (h *Handler) reschedule(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	interview, err := h.Svc.Reschedule(c.Request.Context(), actor, c.Param("id"), req.ScheduledAt, req.DurationMinutes, req.Notes)
	if err != nil {
		h.respondError(c, err, "failed to reschedule interview")
		return
	}
	respond.OK(c, toResponse(interview))
}

type statusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	status, ok := ParseStatus(req.Status)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown status", nil)
		return
	}

	interview, err := h.Svc.UpdateStatus(c.Request.Context(), actor, c.Param("id"), status, req.Notes)
	if err != nil {
		h.respondError(c, err, "failed to update interview")
		return
	}
	respond.OK(c, toResponse(interview))
}

func (h *Handler) list(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	interviews, err := h.Svc.ListByApplication(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to list interviews")
		return
	}
	out := make([]interviewResponse, 0, len(interviews))
	for _, interview := range interviews {
		out = append(out, toResponse(interview))
	}
	respond.OK(c, gin.H{"interviews": out})
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "interview not found", nil)
	case errors.Is(err, ErrAccessDenied):
		respond.Error(c, http.StatusForbidden, "access_denied", "not allowed", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
