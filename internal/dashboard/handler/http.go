package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	dashrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/dashboard/repository"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/server/middleware"
)

// Handler serves the dashboard overview.
type Handler struct {
	repo dashrepo.Repository
}

func NewHandler(repo dashrepo.Repository) *Handler {
	return &Handler{repo: repo}
}

// Overview returns the user's entity counts, pipeline value and per-stage deal counts.
func (h *Handler) Overview(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	stats, err := h.repo.Overview(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
		return
	}
	stages, err := h.repo.DealsByStage(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
		return
	}
	if stages == nil {
		stages = []dashrepo.StageCount{}
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "deals_by_stage": stages})
}
