package assessments

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"talentedge-backend/internal/authz"
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

// RegisterRoutes attaches assessment routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tests", h.createTest)
	rg.GET("/tests", h.listTests)
	rg.GET("/tests/:id", h.getTest)
	rg.PUT("/tests/:id/deactivate", h.deactivate)
	rg.PUT("/tests/:id/reactivate", h.reactivate)
	rg.POST("/tests/:id/assign", h.assign)
	rg.GET("/tests/:id/assignments", h.listTestAssignments)
	rg.GET("/applications/:id/assignments", h.listAssignments)
	rg.POST("/assignments/:id/attempts", h.startAttempt)
	rg.GET("/attempts/:id", h.getAttempt)
	rg.GET("/attempts/:id/questions", h.listAttemptQuestions)
	rg.POST("/attempts/:id/responses", h.submitResponse)
	rg.GET("/attempts/:id/responses", h.listResponses)
	rg.POST("/attempts/:id/submit", h.submitAttempt)
	rg.POST("/attempts/:id/violations", h.recordViolation)
}

type questionRequest struct {
	QuestionText  string   `json:"questionText"`
	QuestionType  string   `json:"questionType"`
	Options       []string `json:"options"`
	CorrectAnswer any      `json:"correctAnswer"`
	Marks         int      `json:"marks"`
	Difficulty    string   `json:"difficulty"`
}

type createTestRequest struct {
	Title             string            `json:"title"`
	DurationMinutes   int               `json:"durationMinutes"`
	PassingPercentage float64           `json:"passingPercentage"`
	Instructions      string            `json:"instructions"`
	AllowedUsers      []string          `json:"allowedUsers"`
	Questions         []questionRequest `json:"questions"`
}

func (h *Handler) createTest(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req createTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	input := CreateTestInput{
		Title:             req.Title,
		DurationMinutes:   req.DurationMinutes,
		PassingPercentage: req.PassingPercentage,
		Instructions:      req.Instructions,
		AllowedUsers:      req.AllowedUsers,
	}
	for _, q := range req.Questions {
		input.Questions = append(input.Questions, QuestionInput{
			QuestionText:  q.QuestionText,
			QuestionType:  q.QuestionType,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Marks:         q.Marks,
			Difficulty:    q.Difficulty,
		})
	}

	t, questions, err := h.Svc.CreateTest(c.Request.Context(), actor, input)
	if err != nil {
		h.respondError(c, err, "failed to create test")
		return
	}
	respond.Created(c, gin.H{
		"test":      toTestResponse(t),
		"questions": toQuestions(questions, true),
	})
}

func (h *Handler) listTests(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tests, err := h.Svc.ListTests(c.Request.Context(), actor, limit, offset)
	if err != nil {
		h.respondError(c, err, "failed to list tests")
		return
	}
	out := make([]testResponse, 0, len(tests))
	for _, t := range tests {
		out = append(out, toTestResponse(t))
	}
	respond.OK(c, gin.H{"tests": out})
}

func (h *Handler) getTest(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	t, questions, err := h.Svc.GetTest(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to load test")
		return
	}
	includeAnswers := actor.Role != authz.RoleApplicant
	respond.OK(c, gin.H{
		"test":      toTestResponse(t),
		"questions": toQuestions(questions, includeAnswers),
	})
}

func (h *Handler) deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *Handler) reactivate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *Handler) setActive(c *gin.Context, active bool) {
	actor := middleware.ActorFromContext(c)

	var err error
	if active {
		err = h.Svc.Reactivate(c.Request.Context(), actor, c.Param("id"))
	} else {
		err = h.Svc.Deactivate(c.Request.Context(), actor, c.Param("id"))
	}
	if err != nil {
		h.respondError(c, err, "failed to update test")
		return
	}
	respond.OK(c, gin.H{"isActive": active})
}

type assignRequest struct {
	ApplicationIDs     []string       `json:"applicationIds"`
	TestStartDate      time.Time      `json:"testStartDate"`
	TestEndDate        time.Time      `json:"testEndDate"`
	IsProctored        bool           `json:"isProctored"`
	ProctoringSettings map[string]any `json:"proctoringSettings"`
}

func (h *Handler) assign(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	assignments, err := h.Svc.AssignTest(c.Request.Context(), actor, c.Param("id"), AssignInput{
		ApplicationIDs:     req.ApplicationIDs,
		TestStartDate:      req.TestStartDate,
		TestEndDate:        req.TestEndDate,
		IsProctored:        req.IsProctored,
		ProctoringSettings: req.ProctoringSettings,
	})
	if err != nil {
		h.respondError(c, err, "failed to assign test")
		return
	}
	out := make([]assignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, toAssignmentResponse(a))
	}
	respond.Created(c, gin.H{"assignments": out})
}

func (h *Handler) listTestAssignments(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	views, err := h.Svc.ListAssignmentsByTest(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to list assignments")
		return
	}
	out := make([]assignmentResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toAssignmentViewResponse(v))
	}
	respond.OK(c, gin.H{"assignments": out})
}

func (h *Handler) listAssignments(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	views, err := h.Svc.ListAssignmentsForApplication(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to list assignments")
		return
	}
	out := make([]assignmentResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toAssignmentViewResponse(v))
	}
	respond.OK(c, gin.H{"assignments": out})
}

func (h *Handler) startAttempt(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	attempt, err := h.Svc.StartAttempt(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to start attempt")
		return
	}
	c.Set("applicationId", attempt.ApplicationID)
	respond.Created(c, toAttemptResponse(attempt))
}

func (h *Handler) getAttempt(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	attempt, err := h.Svc.GetAttempt(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to load attempt")
		return
	}
	respond.OK(c, toAttemptResponse(attempt))
}

func (h *Handler) listAttemptQuestions(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	questions, err := h.Svc.ListAttemptQuestions(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to list questions")
		return
	}
	includeAnswers := actor.Role != authz.RoleApplicant
	respond.OK(c, gin.H{"questions": toQuestions(questions, includeAnswers)})
}

type responseRequest struct {
	QuestionID       string   `json:"questionId"`
	SelectedOptions  []string `json:"selectedOptions"`
	Answer           string   `json:"answer"`
	TimeTakenSeconds int      `json:"timeTakenSeconds"`
}

func (h *Handler) submitResponse(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req responseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.QuestionID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "questionId is required", nil)
		return
	}

	resp, err := h.Svc.SubmitResponse(c.Request.Context(), actor, c.Param("id"), ResponseInput{
		QuestionID:       req.QuestionID,
		SelectedOptions:  req.SelectedOptions,
		Answer:           req.Answer,
		TimeTakenSeconds: req.TimeTakenSeconds,
	})
	if err != nil {
		h.respondError(c, err, "failed to save response")
		return
	}
	respond.OK(c, toResponseResponse(resp))
}

func (h *Handler) listResponses(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	responses, err := h.Svc.ListResponses(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to list responses")
		return
	}
	out := make([]responseResponse, 0, len(responses))
	for _, r := range responses {
		out = append(out, toResponseResponse(r))
	}
	respond.OK(c, gin.H{"responses": out})
}

func (h *Handler) submitAttempt(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	attempt, err := h.Svc.SubmitAttempt(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to submit attempt")
		return
	}
	c.Set("applicationId", attempt.ApplicationID)
	respond.OK(c, toAttemptResponse(attempt))
}

type violationRequest struct {
	EventType  string         `json:"eventType"`
	Details    map[string]any `json:"details"`
	OccurredAt time.Time      `json:"occurredAt"`
}

func (h *Handler) recordViolation(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req violationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	attempt, err := h.Svc.RecordViolation(c.Request.Context(), actor, c.Param("id"), ViolationEvent{
		Type:       req.EventType,
		Details:    req.Details,
		OccurredAt: req.OccurredAt,
	})
	if err != nil {
		h.respondError(c, err, "failed to record violation")
		return
	}
	respond.OK(c, toAttemptResponse(attempt))
}

func toQuestions(questions []TestQuestion, includeAnswers bool) []questionResponse {
	out := make([]questionResponse, 0, len(questions))
	for _, q := range questions {
		out = append(out, toQuestionResponse(q, includeAnswers))
	}
	return out
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resource not found", nil)
	case errors.Is(err, ErrAccessDenied):
		respond.Error(c, http.StatusForbidden, "access_denied", "not allowed", nil)
	case errors.Is(err, ErrNotEligible):
		respond.Error(c, http.StatusUnprocessableEntity, "not_eligible", err.Error(), nil)
	case errors.Is(err, ErrNotAvailable):
		respond.Error(c, http.StatusUnprocessableEntity, "not_available", err.Error(), nil)
	case errors.Is(err, ErrAttemptInProgress):
		respond.Error(c, http.StatusConflict, "attempt_in_progress", err.Error(), nil)
	case errors.Is(err, ErrAttemptClosed):
		respond.Error(c, http.StatusConflict, "attempt_closed", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
