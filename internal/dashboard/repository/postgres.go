package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Stats is the per-user dashboard snapshot.
type Stats struct {
	Clients     int `db:"clients" json:"clients"`
	Deals       int `db:"deals" json:"deals"`
	Automations int `db:"automations" json:"automations"`
	// PipelineCents sums open deals (not won, not lost).
	PipelineCents int64 `db:"pipeline_cents" json:"pipeline_cents"`
	WonCents      int64 `db:"won_cents" json:"won_cents"`
	RunsCompleted int   `db:"runs_completed" json:"runs_completed"`
	RunsFailed    int   `db:"runs_failed" json:"runs_failed"`
}

// StageCount is the number of deals in one pipeline stage.
type StageCount struct {
	Stage string `db:"stage" json:"stage"`
	Count int    `db:"count" json:"count"`
}

// Repository computes dashboard aggregates.
type Repository interface {
	Overview(ctx context.Context, userID string) (*Stats, error)
	DealsByStage(ctx context.Context, userID string) ([]StageCount, error)
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Overview returns entity counts and pipeline value for one user in a single query.
func (r *PostgresRepository) Overview(ctx context.Context, userID string) (*Stats, error) {
	var s Stats
	err := r.db.GetContext(ctx, &s, `
		SELECT
			(SELECT COUNT(*) FROM clients WHERE user_id = $1) AS clients,
			(SELECT COUNT(*) FROM deals WHERE user_id = $1) AS deals,
			(SELECT COUNT(*) FROM automations WHERE user_id = $1) AS automations,
			(SELECT COALESCE(SUM(amount_cents), 0) FROM deals
			 WHERE user_id = $1 AND stage NOT IN ('won', 'lost')) AS pipeline_cents,
			(SELECT COALESCE(SUM(amount_cents), 0) FROM deals
			 WHERE user_id = $1 AND stage = 'won') AS won_cents,
			(SELECT COUNT(*) FROM automation_runs
			 WHERE user_id = $1 AND status = 'completed') AS runs_completed,
			(SELECT COUNT(*) FROM automation_runs
			 WHERE user_id = $1 AND status = 'failed') AS runs_failed`, userID)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DealsByStage returns the user's deal counts grouped by stage.
func (r *PostgresRepository) DealsByStage(ctx context.Context, userID string) ([]StageCount, error) {
	var out []StageCount
	err := r.db.SelectContext(ctx, &out,
		`SELECT stage, COUNT(*) AS count FROM deals WHERE user_id = $1 GROUP BY stage`, userID)
	if err != nil {
		return nil, err
	}
	return out, nil
}
