package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	dashrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/dashboard/repository"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/server/middleware"
)

type stubRepo struct {
	stats  *dashrepo.Stats
	stages []dashrepo.StageCount
	err    error
}

func (r *stubRepo) Overview(_ context.Context, userID string) (*dashrepo.Stats, error) {
	return r.stats, r.err
}

func (r *stubRepo) DealsByStage(_ context.Context, userID string) ([]dashrepo.StageCount, error) {
	return r.stages, r.err
}

func serve(repo dashrepo.Repository) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	h := NewHandler(repo)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := middleware.WithIdentity(c.Request.Context(), "user-1", "session-1")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	r.GET("/api/dashboard", h.Overview)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/dashboard", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestOverview(t *testing.T) {
	repo := &stubRepo{
		stats: &dashrepo.Stats{Clients: 3, Deals: 5, Automations: 2, PipelineCents: 750000, WonCents: 250000, RunsCompleted: 4, RunsFailed: 1},
		stages: []dashrepo.StageCount{
			{Stage: "proposal", Count: 2},
			{Stage: "won", Count: 1},
		},
	}
	w := serve(repo)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Stats        dashrepo.Stats        `json:"stats"`
		DealsByStage []dashrepo.StageCount `json:"deals_by_stage"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Stats.PipelineCents != 750000 {
		t.Errorf("unexpected pipeline %d", resp.Stats.PipelineCents)
	}
	if resp.Stats.RunsCompleted != 4 || resp.Stats.RunsFailed != 1 {
		t.Errorf("unexpected run counts %d/%d", resp.Stats.RunsCompleted, resp.Stats.RunsFailed)
	}
	if len(resp.DealsByStage) != 2 {
		t.Errorf("expected 2 stages, got %d", len(resp.DealsByStage))
	}
}

func TestOverviewEmptyStages(t *testing.T) {
	w := serve(&stubRepo{stats: &dashrepo.Stats{}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		DealsByStage []dashrepo.StageCount `json:"deals_by_stage"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.DealsByStage == nil {
		t.Error("deals_by_stage should be an empty array, not null")
	}
}

func TestOverviewRepoError(t *testing.T) {
	w := serve(&stubRepo{err: errors.New("db down")})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
