package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/activity"
	clientdomain "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/domain"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/deal/domain"
	dealrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/deal/repository"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/server/middleware"
)

// ClientGetter resolves a client by owner and ID. Implemented by the client repository.
type ClientGetter interface {
	GetByID(ctx context.Context, userID, id string) (*clientdomain.Client, error)
}

// Handler serves deal CRUD.
type Handler struct {
	repo    dealrepo.Repository
	clients ClientGetter
	emitter activity.EventEmitter
}

func NewHandler(repo dealrepo.Repository, clients ClientGetter, emitter activity.EventEmitter) *Handler {
	return &Handler{repo: repo, clients: clients, emitter: emitter}
}

type dealRequest struct {
	ClientID      string `json:"client_id"`
	Title         string `json:"title"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	Stage         string `json:"stage"`
	ExpectedClose string `json:"expected_close"` // YYYY-MM-DD, empty to clear
}

type dealResponse struct {
	ID            string    `json:"id"`
	ClientID      string    `json:"client_id"`
	Title         string    `json:"title"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	Stage         string    `json:"stage"`
	ExpectedClose string    `json:"expected_close,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toResponse(d *domain.Deal) dealResponse {
	resp := dealResponse{
		ID:          d.ID,
		ClientID:    d.ClientID,
		Title:       d.Title,
		AmountCents: d.AmountCents,
		Currency:    d.Currency,
		Stage:       string(d.Stage),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.ExpectedClose != nil {
		resp.ExpectedClose = d.ExpectedClose.Format("2006-01-02")
	}
	return resp
}

func parseExpectedClose(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// List returns the user's deals, optionally filtered by ?client_id=.
func (h *Handler) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	var (
		list []*domain.Deal
		err  error
	)
	if clientID := c.Query("client_id"); clientID != "" {
		list, err = h.repo.ListByClient(c.Request.Context(), userID, clientID)
	} else {
		list, err = h.repo.ListByUser(c.Request.Context(), userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list deals"})
		return
	}
	out := make([]dealResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toResponse(d))
	}
	c.JSON(http.StatusOK, gin.H{"deals": out})
}

// Get returns a single deal by ID.
func (h *Handler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	d, err := h.repo.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up deal"})
		return
	}
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "deal not found"})
		return
	}
	c.JSON(http.StatusOK, toResponse(d))
}

// Create creates a deal for one of the user's clients.
func (h *Handler) Create(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	var req dealRequest
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
	expectedClose, ok := parseExpectedClose(req.ExpectedClose)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected_close must be YYYY-MM-DD"})
		return
	}
	now := time.Now().UTC()
	d := &domain.Deal{
		ID:            uuid.New().String(),
		UserID:        userID,
		ClientID:      req.ClientID,
		Title:         strings.TrimSpace(req.Title),
		AmountCents:   req.AmountCents,
		Currency:      strings.ToUpper(strings.TrimSpace(req.Currency)),
		Stage:         domain.DealStage(req.Stage),
		ExpectedClose: expectedClose,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := d.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.repo.Create(c.Request.Context(), d); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create deal"})
		return
	}
	activity.EmitAsync(h.emitter, c.Request.Context(), activity.NewEvent(userID, "deal_created", d.ID, "api", string(d.Stage)))
	c.JSON(http.StatusCreated, toResponse(d))
}

// Update updates an existing deal. The deal's client cannot be changed.
func (h *Handler) Update(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	d, err := h.repo.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up deal"})
		return
	}
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "deal not found"})
		return
	}
	var req dealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	expectedClose, ok := parseExpectedClose(req.ExpectedClose)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected_close must be YYYY-MM-DD"})
		return
	}
	prevStage := d.Stage
	d.Title = strings.TrimSpace(req.Title)
	d.AmountCents = req.AmountCents
	d.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	d.Stage = domain.DealStage(req.Stage)
	d.ExpectedClose = expectedClose
	d.UpdatedAt = time.Now().UTC()
	if err := d.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.repo.Update(c.Request.Context(), d); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update deal"})
		return
	}
	eventType := "deal_updated"
	if d.Stage != prevStage {
		eventType = "deal_stage_changed"
	}
	activity.EmitAsync(h.emitter, c.Request.Context(), activity.NewEvent(userID, eventType, d.ID, "api", string(d.Stage)))
	c.JSON(http.StatusOK, toResponse(d))
}

// Delete removes a deal.
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	id := c.Param("id")
	d, err := h.repo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up deal"})
		return
	}
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "deal not found"})
		return
	}
	if err := h.repo.Delete(c.Request.Context(), userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete deal"})
		return
	}
	activity.EmitAsync(h.emitter, c.Request.Context(), activity.NewEvent(userID, "deal_deleted", id, "api", ""))
	c.Status(http.StatusNoContent)
}
