package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/domain"
	clientdomain "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/domain"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/server/middleware"
)

type fakeRepo struct {
	automations map[string]*domain.Automation
	runs        []*domain.Run
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{automations: make(map[string]*domain.Automation)}
}

func (r *fakeRepo) GetByID(_ context.Context, userID, id string) (*domain.Automation, error) {
	a, ok := r.automations[id]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID string) ([]*domain.Automation, error) {
	var out []*domain.Automation
	for _, a := range r.automations {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListDue(_ context.Context, now time.Time) ([]*domain.Automation, error) {
	return nil, nil
}

func (r *fakeRepo) Create(_ context.Context, a *domain.Automation) error {
	cp := *a
	r.automations[a.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(_ context.Context, a *domain.Automation) error {
	cp := *a
	r.automations[a.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, userID, id string) error {
	delete(r.automations, id)
	return nil
}

func (r *fakeRepo) MarkRan(_ context.Context, id string, ranAt time.Time, nextRunAt *time.Time) error {
	return nil
}

func (r *fakeRepo) CreateRun(_ context.Context, run *domain.Run) error {
	cp := *run
	r.runs = append(r.runs, &cp)
	return nil
}

func (r *fakeRepo) FinalizeRun(_ context.Context, runID string, status domain.RunStatus, runErr, output string, finishedAt time.Time) error {
	return nil
}

func (r *fakeRepo) GetRun(_ context.Context, userID, runID string) (*domain.Run, error) {
	return nil, nil
}

func (r *fakeRepo) ListRunsByAutomation(_ context.Context, userID, automationID string, limit int) ([]*domain.Run, error) {
	var out []*domain.Run
	for _, run := range r.runs {
		if run.UserID == userID && run.AutomationID != nil && *run.AutomationID == automationID {
			out = append(out, run)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListRunsByUser(_ context.Context, userID string, limit int) ([]*domain.Run, error) {
	var out []*domain.Run
	for _, run := range r.runs {
		if run.UserID == userID {
			out = append(out, run)
		}
	}
	return out, nil
}

type fakeClientGetter struct {
	clients map[string]*clientdomain.Client
}

func (g *fakeClientGetter) GetByID(_ context.Context, userID, id string) (*clientdomain.Client, error) {
	c, ok := g.clients[id]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	return c, nil
}

type fakeRunner struct {
	run    *domain.Run
	gotID  string
	source string
}

func (f *fakeRunner) Run(_ context.Context, a *domain.Automation, source string) (*domain.Run, error) {
	f.gotID = a.ID
	f.source = source
	return f.run, nil
}

func setup(t *testing.T, runner Runner) (*fakeRepo, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := newFakeRepo()
	clients := &fakeClientGetter{clients: map[string]*clientdomain.Client{
		"c-1": {ID: "c-1", UserID: "user-1", Name: "Acme Corp", Email: "jane@acme.example"},
	}}
	h := NewHandler(repo, clients, runner, nil)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := middleware.WithIdentity(c.Request.Context(), "user-1", "session-1")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	r.GET("/api/automations", h.List)
	r.POST("/api/automations", h.Create)
	r.GET("/api/automations/:id", h.Get)
	r.PUT("/api/automations/:id", h.Update)
	r.DELETE("/api/automations/:id", h.Delete)
	r.POST("/api/automations/:id/run", h.Run)
	r.GET("/api/automations/:id/runs", h.ListRuns)
	r.GET("/api/runs", h.ListAllRuns)
	return repo, r
}

func TestCreateScheduledEmail(t *testing.T) {
	repo, router := setup(t, nil)

	body, _ := json.Marshal(map[string]any{
		"client_id":        "c-1",
		"kind":             "scheduled_email",
		"name":             "Weekly check-in",
		"subject":          "Checking in",
		"body":             "Hi there",
		"interval_minutes": 60,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/automations", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp automationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "active" {
		t.Errorf("expected active, got %q", resp.Status)
	}
	if resp.NextRunAt == nil {
		t.Error("recurring automation should be scheduled on create")
	}
	if _, ok := repo.automations[resp.ID]; !ok {
		t.Error("automation not persisted")
	}
}

func TestCreateOnDemandNotScheduled(t *testing.T) {
	_, router := setup(t, nil)

	body, _ := json.Marshal(map[string]any{
		"client_id": "c-1",
		"kind":      "ai_summary",
		"name":      "Account summary",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/automations", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp automationResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.NextRunAt != nil {
		t.Error("on-demand automation should not be scheduled")
	}
}

func TestCreateValidation(t *testing.T) {
	_, router := setup(t, nil)

	// scheduled_email without a subject
	body, _ := json.Marshal(map[string]any{
		"client_id": "c-1",
		"kind":      "scheduled_email",
		"name":      "No subject",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/automations", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateUnknownClient(t *testing.T) {
	_, router := setup(t, nil)

	body, _ := json.Marshal(map[string]any{
		"client_id": "nope",
		"kind":      "ai_summary",
		"name":      "x",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/automations", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRunOnDemand(t *testing.T) {
	finished := time.Now().UTC()
	automationID := "a-1"
	runner := &fakeRunner{run: &domain.Run{
		ID: "r-1", AutomationID: &automationID, UserID: "user-1", ClientID: "c-1",
		Kind: domain.KindAISummary, Status: domain.RunStatusCompleted,
		Output: "summary text", StartedAt: finished, FinishedAt: &finished,
	}}
	repo, router := setup(t, runner)
	repo.automations["a-1"] = &domain.Automation{
		ID: "a-1", UserID: "user-1", ClientID: "c-1",
		Kind: domain.KindAISummary, Name: "Account summary", Status: domain.StatusActive,
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/automations/a-1/run", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if runner.gotID != "a-1" || runner.source != "api" {
		t.Errorf("runner called with id=%q source=%q", runner.gotID, runner.source)
	}
	var resp runResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "completed" || resp.Output != "summary text" {
		t.Errorf("unexpected run response %+v", resp)
	}
}

func TestRunNotFound(t *testing.T) {
	_, router := setup(t, &fakeRunner{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/automations/missing/run", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListRunsIncludesOrphans(t *testing.T) {
	repo, router := setup(t, nil)
	started := time.Now().UTC()
	automationID := "a-1"
	repo.runs = []*domain.Run{
		{ID: "r-1", AutomationID: &automationID, UserID: "user-1", Kind: domain.KindScheduledEmail, Status: domain.RunStatusCompleted, StartedAt: started},
		// automation deleted since; automation_id nulled
		{ID: "r-2", AutomationID: nil, UserID: "user-1", Kind: domain.KindAISummary, Status: domain.RunStatusFailed, Error: "client not found", StartedAt: started},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/runs", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Runs []runResponse `json:"runs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(resp.Runs))
	}
}

func TestDeleteAutomation(t *testing.T) {
	repo, router := setup(t, nil)
	repo.automations["a-1"] = &domain.Automation{
		ID: "a-1", UserID: "user-1", ClientID: "c-1",
		Kind: domain.KindAISummary, Name: "x", Status: domain.StatusActive,
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/api/automations/a-1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if _, ok := repo.automations["a-1"]; ok {
		t.Error("automation should be deleted")
	}
}

func TestUpdatePauseClearsNothingElse(t *testing.T) {
	repo, router := setup(t, nil)
	now := time.Now().UTC()
	next := now.Add(time.Hour)
	repo.automations["a-1"] = &domain.Automation{
		ID: "a-1", UserID: "user-1", ClientID: "c-1",
		Kind: domain.KindScheduledEmail, Name: "Weekly check-in", Status: domain.StatusActive,
		Subject: "Checking in", IntervalMinutes: 60, NextRunAt: &next,
		CreatedAt: now, UpdatedAt: now,
	}

	body, _ := json.Marshal(map[string]any{
		"kind":             "scheduled_email",
		"name":             "Weekly check-in",
		"status":           "paused",
		"subject":          "Checking in",
		"interval_minutes": 60,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/automations/a-1", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := repo.automations["a-1"].Status; got != domain.StatusPaused {
		t.Errorf("expected paused, got %q", got)
	}
	if repo.automations["a-1"].Subject != "Checking in" {
		t.Error("subject should be preserved")
	}
}
