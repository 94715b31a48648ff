package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/domain"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns an automation repository backed by the given db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const automationColumns = `id, user_id, client_id, kind, name, status, subject, body, meeting_notes,
	interval_minutes, next_run_at, last_run_at, created_at, updated_at`

const runColumns = `id, automation_id, user_id, client_id, kind, status, error, output, started_at, finished_at`

// GetByID returns the automation for id when owned by userID, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*domain.Automation, error) {
	var a domain.Automation
	err := r.db.GetContext(ctx, &a,
		`SELECT `+automationColumns+` FROM automations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// ListByUser returns all automations for the given user, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Automation, error) {
	var list []*domain.Automation
	err := r.db.SelectContext(ctx, &list,
		`SELECT `+automationColumns+` FROM automations WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ListDue returns active automations due at or before now, oldest due first.
// Uses the partial index on next_run_at.
func (r *PostgresRepository) ListDue(ctx context.Context, now time.Time) ([]*domain.Automation, error) {
	var list []*domain.Automation
	err := r.db.SelectContext(ctx, &list,
		`SELECT `+automationColumns+` FROM automations
		 WHERE status = 'active' AND next_run_at IS NOT NULL AND next_run_at <= $1
		 ORDER BY next_run_at ASC`, now)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *domain.Automation) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO automations (id, user_id, client_id, kind, name, status, subject, body, meeting_notes,
		 interval_minutes, next_run_at, last_run_at, created_at, updated_at)
		 VALUES (:id, :user_id, :client_id, :kind, :name, :status, :subject, :body, :meeting_notes,
		 :interval_minutes, :next_run_at, :last_run_at, :created_at, :updated_at)`, a)
	return err
}

func (r *PostgresRepository) Update(ctx context.Context, a *domain.Automation) error {
	_, err := r.db.NamedExecContext(ctx,
		`UPDATE automations SET kind = :kind, name = :name, status = :status, subject = :subject,
		 body = :body, meeting_notes = :meeting_notes, interval_minutes = :interval_minutes,
		 next_run_at = :next_run_at, updated_at = :updated_at
		 WHERE id = :id AND user_id = :user_id`, a)
	return err
}

// Delete removes the automation. Its runs are kept with automation_id nulled by the schema.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM automations WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

// MarkRan stamps last_run_at and advances (or clears) next_run_at after an execution.
func (r *PostgresRepository) MarkRan(ctx context.Context, id string, ranAt time.Time, nextRunAt *time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE automations SET last_run_at = $2, next_run_at = $3, updated_at = $2 WHERE id = $1`,
		id, ranAt, nextRunAt)
	return err
}

func (r *PostgresRepository) CreateRun(ctx context.Context, run *domain.Run) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO automation_runs (id, automation_id, user_id, client_id, kind, status, error, output, started_at, finished_at)
		 VALUES (:id, :automation_id, :user_id, :client_id, :kind, :status, :error, :output, :started_at, :finished_at)`, run)
	return err
}

func (r *PostgresRepository) FinalizeRun(ctx context.Context, runID string, status domain.RunStatus, runErr, output string, finishedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE automation_runs SET status = $2, error = $3, output = $4, finished_at = $5 WHERE id = $1`,
		runID, status, runErr, output, finishedAt)
	return err
}

// GetRun returns the run when owned by userID, or nil if not found.
func (r *PostgresRepository) GetRun(ctx context.Context, userID, runID string) (*domain.Run, error) {
	var run domain.Run
	err := r.db.GetContext(ctx, &run,
		`SELECT `+runColumns+` FROM automation_runs WHERE id = $1 AND user_id = $2`, runID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// ListRunsByAutomation returns the newest runs for one automation.
func (r *PostgresRepository) ListRunsByAutomation(ctx context.Context, userID, automationID string, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []*domain.Run
	err := r.db.SelectContext(ctx, &list,
		`SELECT `+runColumns+` FROM automation_runs
		 WHERE automation_id = $1 AND user_id = $2 ORDER BY started_at DESC LIMIT $3`,
		automationID, userID, limit)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ListRunsByUser returns the user's newest runs across all automations,
// including runs whose automation has since been deleted.
func (r *PostgresRepository) ListRunsByUser(ctx context.Context, userID string, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []*domain.Run
	err := r.db.SelectContext(ctx, &list,
		`SELECT `+runColumns+` FROM automation_runs
		 WHERE user_id = $1 ORDER BY started_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	return list, nil
}
