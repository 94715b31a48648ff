package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/activity"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/ai"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/domain"
	clientrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/repository"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/server/middleware"
)

// DocumentScorer scores a document image for relevance to a client. Implemented by ai.Client.
type DocumentScorer interface {
	ScoreDocument(ctx context.Context, imageURL, clientContext string) (*ai.DocumentScore, error)
}

// Handler serves client CRUD and document scoring.
type Handler struct {
	repo    clientrepo.Repository
	scorer  DocumentScorer
	emitter activity.EventEmitter
}

// NewHandler returns a new client HTTP handler. scorer and emitter may be nil;
// then document scoring returns 501 and no activity events are emitted.
func NewHandler(repo clientrepo.Repository, scorer DocumentScorer, emitter activity.EventEmitter) *Handler {
	return &Handler{repo: repo, scorer: scorer, emitter: emitter}
}

type clientRequest struct {
	Name         string `json:"name"`
	Company      string `json:"company"`
	Email        string `json:"email"`
	ContactEmail string `json:"contact_email"`
	Phone        string `json:"phone"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
}

type clientResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Company      string    `json:"company,omitempty"`
	Email        string    `json:"email,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toResponse(c *domain.Client) clientResponse {
	return clientResponse{
		ID:           c.ID,
		Name:         c.Name,
		Company:      c.Company,
		Email:        c.Email,
		ContactEmail: c.ContactEmail,
		Phone:        c.Phone,
		Status:       string(c.Status),
		Notes:        c.Notes,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// List returns all clients owned by the authenticated user, newest first.
func (h *Handler) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	list, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list clients"})
		return
	}
	out := make([]clientResponse, 0, len(list))
	for _, cl := range list {
		out = append(out, toResponse(cl))
	}
	c.JSON(http.StatusOK, gin.H{"clients": out})
}

// Get returns a single client by ID.
func (h *Handler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	cl, err := h.repo.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up client"})
		return
	}
	if cl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
		return
	}
	c.JSON(http.StatusOK, toResponse(cl))
}

// Create creates a client for the authenticated user.
func (h *Handler) Create(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	now := time.Now().UTC()
	cl := &domain.Client{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         strings.TrimSpace(req.Name),
		Company:      strings.TrimSpace(req.Company),
		Email:        strings.TrimSpace(req.Email),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		Phone:        strings.TrimSpace(req.Phone),
		Status:       domain.ClientStatus(req.Status),
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := cl.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.repo.Create(c.Request.Context(), cl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create client"})
		return
	}
	activity.EmitAsync(h.emitter, c.Request.Context(), activity.NewEvent(userID, "client_created", cl.ID, "api", ""))
	c.JSON(http.StatusCreated, toResponse(cl))
}

// Update updates an existing client.
func (h *Handler) Update(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	cl, err := h.repo.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up client"})
		return
	}
	if cl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
		return
	}
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cl.Name = strings.TrimSpace(req.Name)
	cl.Company = strings.TrimSpace(req.Company)
	cl.Email = strings.TrimSpace(req.Email)
	cl.ContactEmail = strings.TrimSpace(req.ContactEmail)
	cl.Phone = strings.TrimSpace(req.Phone)
	cl.Status = domain.ClientStatus(req.Status)
	cl.Notes = req.Notes
	cl.UpdatedAt = time.Now().UTC()
	if err := cl.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.repo.Update(c.Request.Context(), cl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update client"})
		return
	}
	activity.EmitAsync(h.emitter, c.Request.Context(), activity.NewEvent(userID, "client_updated", cl.ID, "api", ""))
	c.JSON(http.StatusOK, toResponse(cl))
}

// Delete removes a client. Deals and automations for the client cascade in the schema.
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	id := c.Param("id")
	cl, err := h.repo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up client"})
		return
	}
	if cl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
		return
	}
	if err := h.repo.Delete(c.Request.Context(), userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete client"})
		return
	}
	activity.EmitAsync(h.emitter, c.Request.Context(), activity.NewEvent(userID, "client_deleted", id, "api", ""))
	c.Status(http.StatusNoContent)
}

type scoreRequest struct {
	ImageURL string `json:"image_url"`
}

// ScoreDocument scores a document image (e.g. an uploaded contract page) for relevance to the client.
func (h *Handler) ScoreDocument(c *gin.Context) {
	if h.scorer == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "document scoring not configured"})
		return
	}
	userID, _ := middleware.GetUserID(c.Request.Context())
	cl, err := h.repo.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up client"})
		return
	}
	if cl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
		return
	}
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ImageURL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_url required"})
		return
	}
	clientContext := cl.Name
	if cl.Company != "" {
		clientContext += " (" + cl.Company + ")"
	}
	score, err := h.scorer.ScoreDocument(c.Request.Context(), strings.TrimSpace(req.ImageURL), clientContext)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "document scoring failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"score": score.Score, "rationale": score.Rationale})
}
