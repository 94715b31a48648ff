package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/audit/domain"
)

type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) Create(ctx context.Context, a *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, a)
	return nil
}

func (m *mockAuditRepo) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error) {
	return m.entries, nil
}

func TestLogger_LogEvent(t *testing.T) {
	repo := &mockAuditRepo{}
	l := NewLogger(repo)
	l.LogEvent(context.Background(), "u1", "create", "client", "1.2.3.4", `{"id":"c1"}`)
	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ID == "" {
		t.Error("entry ID should be assigned")
	}
	if e.UserID != "u1" || e.Action != "create" || e.Resource != "client" || e.IP != "1.2.3.4" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestLogger_LogEvent_DefaultIP(t *testing.T) {
	repo := &mockAuditRepo{}
	l := NewLogger(repo)
	l.LogEvent(context.Background(), "u1", "get", "deal", "", "")
	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	if repo.entries[0].IP != "unknown" {
		t.Errorf("IP = %q, want unknown", repo.entries[0].IP)
	}
}

func TestLogger_LogEvent_BestEffort(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("db down")}
	l := NewLogger(repo)
	// must not panic or surface the error
	l.LogEvent(context.Background(), "u1", "create", "client", "", "")
}

func TestLogger_NilRepo(t *testing.T) {
	l := NewLogger(nil)
	l.LogEvent(context.Background(), "u1", "create", "client", "", "")
}
