package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	auditrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/audit/repository"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/server/middleware"
)

// Handler serves the audit log listing for the authenticated user.
type Handler struct {
	repo auditrepo.Repository
}

// NewHandler returns a new audit HTTP handler. repo may be nil; then listing returns 501.
func NewHandler(repo auditrepo.Repository) *Handler {
	return &Handler{repo: repo}
}

type auditLogResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns the user's audit log entries, newest first. Query params: limit (default 50, max 200), offset.
func (h *Handler) List(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "audit log not configured"})
		return
	}
	userID, _ := middleware.GetUserID(c.Request.Context())
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	list, err := h.repo.ListByUser(c.Request.Context(), userID, int32(limit), int32(offset))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit logs"})
		return
	}
	out := make([]auditLogResponse, 0, len(list))
	for _, a := range list {
		out = append(out, auditLogResponse{
			ID:        a.ID,
			Action:    a.Action,
			Resource:  a.Resource,
			IP:        a.IP,
			Metadata:  a.Metadata,
			CreatedAt: a.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": out})
}
