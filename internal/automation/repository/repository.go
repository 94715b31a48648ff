package repository

import (
	"context"
	"time"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/domain"
)

// Repository defines persistence for automations and their run history.
type Repository interface {
	// GetByID returns the automation only when it belongs to userID.
	GetByID(ctx context.Context, userID, id string) (*domain.Automation, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Automation, error)
	// ListDue returns active automations whose next_run_at is at or before now,
	// across all users. Used by the worker.
	ListDue(ctx context.Context, now time.Time) ([]*domain.Automation, error)
	Create(ctx context.Context, a *domain.Automation) error
	Update(ctx context.Context, a *domain.Automation) error
	Delete(ctx context.Context, userID, id string) error
	// MarkRan records a completed execution: sets last_run_at and the next schedule.
	MarkRan(ctx context.Context, id string, ranAt time.Time, nextRunAt *time.Time) error

	// CreateRun inserts the run row; callers insert it as running before doing any work.
	CreateRun(ctx context.Context, r *domain.Run) error
	// FinalizeRun sets the terminal status, error and output, and stamps finished_at.
	FinalizeRun(ctx context.Context, runID string, status domain.RunStatus, runErr, output string, finishedAt time.Time) error
	GetRun(ctx context.Context, userID, runID string) (*domain.Run, error)
	ListRunsByAutomation(ctx context.Context, userID, automationID string, limit int) ([]*domain.Run, error)
	ListRunsByUser(ctx context.Context, userID string, limit int) ([]*domain.Run, error)
}
