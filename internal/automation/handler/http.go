package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/activity"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/domain"
	automationrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/repository"
	clientdomain "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/domain"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/server/middleware"
)

// Runner executes an automation on demand. Implemented by service.Executor.
type Runner interface {
	Run(ctx context.Context, a *domain.Automation, source string) (*domain.Run, error)
}

// ClientGetter resolves a client by owner and ID. Implemented by the client repository.
type ClientGetter interface {
	GetByID(ctx context.Context, userID, id string) (*clientdomain.Client, error)
}

// Handler serves automation CRUD, on-demand runs and run history.
type Handler struct {
	repo    automationrepo.Repository
	clients ClientGetter
	runner  Runner
	emitter activity.EventEmitter
}

func NewHandler(repo automationrepo.Repository, clients ClientGetter, runner Runner, emitter activity.EventEmitter) *Handler {
	return &Handler{repo: repo, clients: clients, runner: runner, emitter: emitter}
}

type automationRequest struct {
	ClientID        string `json:"client_id"`
	Kind            string `json:"kind"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	Subject         string `json:"subject"`
	Body            string `json:"body"`
	MeetingNotes    string `json:"meeting_notes"`
	IntervalMinutes int    `json:"interval_minutes"`
}

type automationResponse struct {
	ID              string     `json:"id"`
	ClientID        string     `json:"client_id"`
	Kind            string     `json:"kind"`
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	Subject         string     `json:"subject,omitempty"`
	Body            string     `json:"body,omitempty"`
	MeetingNotes    string     `json:"meeting_notes,omitempty"`
	IntervalMinutes int        `json:"interval_minutes"`
	NextRunAt       *time.Time `json:"next_run_at,omitempty"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toResponse(a *domain.Automation) automationResponse {
	return automationResponse{
		ID:              a.ID,
		ClientID:        a.ClientID,
		Kind:            string(a.Kind),
		Name:            a.Name,
		Status:          string(a.Status),
		Subject:         a.Subject,
		Body:            a.Body,
		MeetingNotes:    a.MeetingNotes,
		IntervalMinutes: a.IntervalMinutes,
		NextRunAt:       a.NextRunAt,
		LastRunAt:       a.LastRunAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

type runResponse struct {
	ID           string     `json:"id"`
	AutomationID *string    `json:"automation_id"`
	ClientID     string     `json:"client_id,omitempty"`
	Kind         string     `json:"kind"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	Output       string     `json:"output,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

func toRunResponse(r *domain.Run) runResponse {
	return runResponse{
		ID:           r.ID,
		AutomationID: r.AutomationID,
		ClientID:     r.ClientID,
		Kind:         string(r.Kind),
		Status:       string(r.Status),
		Error:        r.Error,
		Output:       r.Output,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
	}
}

// List returns the user's automations, newest first.
func (h *Handler) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	list, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list automations"})
		return
	}
	out := make([]automationResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"automations": out})
}

// Get returns a single automation by ID.
func (h *Handler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	a, err := h.repo.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up automation"})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "automation not found"})
		return
	}
	c.JSON(http.StatusOK, toResponse(a))
}

// Create creates an automation for one of the user's clients. Recurring
// automations are scheduled immediately from their interval.
func (h *Handler) Create(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	var req automationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cl, err := h.clients.GetByID(c.Request.Context(), userID, req.ClientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up client"})
		return
	}
	if cl == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client not found"})
		return
	}
	now := time.Now().UTC()
	a := &domain.Automation{
		ID:              uuid.New().String(),
		UserID:          userID,
		ClientID:        req.ClientID,
		Kind:            domain.Kind(req.Kind),
		Name:            strings.TrimSpace(req.Name),
		Status:          domain.Status(req.Status),
		Subject:         strings.TrimSpace(req.Subject),
		Body:            req.Body,
		MeetingNotes:    req.MeetingNotes,
		IntervalMinutes: req.IntervalMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := a.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a.Schedule(now)
	if err := h.repo.Create(c.Request.Context(), a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create automation"})
		return
	}
	activity.EmitAsync(h.emitter, c.Request.Context(), activity.NewEvent(userID, "automation_created", a.ID, "api", string(a.Kind)))
	c.JSON(http.StatusCreated, toResponse(a))
}

// Update updates an existing automation and recomputes its schedule.
func (h *Handler) Update(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	a, err := h.repo.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up automation"})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "automation not found"})
		return
	}
	var req automationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	a.Kind = domain.Kind(req.Kind)
	a.Name = strings.TrimSpace(req.Name)
	a.Status = domain.Status(req.Status)
	a.Subject = strings.TrimSpace(req.Subject)
	a.Body = req.Body
	a.MeetingNotes = req.MeetingNotes
	a.IntervalMinutes = req.IntervalMinutes
	a.UpdatedAt = time.Now().UTC()
	if err := a.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a.Schedule(a.UpdatedAt)
	if err := h.repo.Update(c.Request.Context(), a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update automation"})
		return
	}
	activity.EmitAsync(h.emitter, c.Request.Context(), activity.NewEvent(userID, "automation_updated", a.ID, "api", string(a.Kind)))
	c.JSON(http.StatusOK, toResponse(a))
}

// Delete removes an automation. Its run history is preserved.
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	id := c.Param("id")
	a, err := h.repo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up automation"})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "automation not found"})
		return
	}
	if err := h.repo.Delete(c.Request.Context(), userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete automation"})
		return
	}
	activity.EmitAsync(h.emitter, c.Request.Context(), activity.NewEvent(userID, "automation_deleted", id, "api", ""))
	c.Status(http.StatusNoContent)
}

// Run executes the automation once, immediately. The response carries the
// finalized run row, whether it completed or failed.
func (h *Handler) Run(c *gin.Context) {
	if h.runner == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "automation runner not configured"})
		return
	}
	userID, _ := middleware.GetUserID(c.Request.Context())
	a, err := h.repo.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up automation"})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "automation not found"})
		return
	}
	run, err := h.runner.Run(c.Request.Context(), a, "api")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record run"})
		return
	}
	c.JSON(http.StatusOK, toRunResponse(run))
}

// ListRuns returns the newest runs for one automation.
func (h *Handler) ListRuns(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := h.repo.ListRunsByAutomation(c.Request.Context(), userID, c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	out := make([]runResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, toRunResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"runs": out})
}

// ListAllRuns returns the user's newest runs across all automations, including
// orphaned runs whose automation was deleted.
func (h *Handler) ListAllRuns(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := h.repo.ListRunsByUser(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	out := make([]runResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, toRunResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"runs": out})
}
