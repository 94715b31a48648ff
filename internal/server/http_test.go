package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	clientdomain "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/domain"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/security"
)

type stubClientRepo struct{}

func (stubClientRepo) GetByID(_ context.Context, userID, id string) (*clientdomain.Client, error) {
	return nil, nil
}

func (stubClientRepo) ListByUser(_ context.Context, userID string) ([]*clientdomain.Client, error) {
	return nil, nil
}

func (stubClientRepo) Create(_ context.Context, c *clientdomain.Client) error { return nil }
func (stubClientRepo) Update(_ context.Context, c *clientdomain.Client) error { return nil }
func (stubClientRepo) Delete(_ context.Context, userID, id string) error      { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *security.TokenProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	router := NewRouter(Deps{
		Tokens:     tokens,
		ClientRepo: stubClientRepo{},
	})
	return router, tokens
}

func TestHealthRoutesArePublic(t *testing.T) {
	router, _ := newTestRouter(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", path, nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/clients", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAPIAcceptsValidBearer(t *testing.T) {
	router, tokens := newTestRouter(t)
	access, _, _, err := tokens.IssueAccess("session-1", "user-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/clients", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUnconfiguredEndpointsReturn501(t *testing.T) {
	router, tokens := newTestRouter(t)
	access, _, _, err := tokens.IssueAccess("session-1", "user-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/audit-logs", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501 when audit repo is nil, got %d", w.Code)
	}
}
