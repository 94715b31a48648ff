package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/deal/domain"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a deal repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const dealColumns = `id, user_id, client_id, title, amount_cents, currency, stage, expected_close, created_at, updated_at`

// GetByID returns the deal for id when owned by userID, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*domain.Deal, error) {
	var d domain.Deal
	err := r.db.GetContext(ctx, &d,
		`SELECT `+dealColumns+` FROM deals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// ListByUser returns all deals for the given user, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Deal, error) {
	var list []*domain.Deal
	err := r.db.SelectContext(ctx, &list,
		`SELECT `+dealColumns+` FROM deals WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ListByClient returns the user's deals for one client, newest first.
func (r *PostgresRepository) ListByClient(ctx context.Context, userID, clientID string) ([]*domain.Deal, error) {
	var list []*domain.Deal
	err := r.db.SelectContext(ctx, &list,
		`SELECT `+dealColumns+` FROM deals WHERE user_id = $1 AND client_id = $2 ORDER BY created_at DESC`,
		userID, clientID)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Create persists the deal. The deal must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, d *domain.Deal) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO deals (id, user_id, client_id, title, amount_cents, currency, stage, expected_close, created_at, updated_at)
		 VALUES (:id, :user_id, :client_id, :title, :amount_cents, :currency, :stage, :expected_close, :created_at, :updated_at)`, d)
	return err
}

// Update updates the existing deal record, scoped to its owner. The client a deal belongs to never changes.
func (r *PostgresRepository) Update(ctx context.Context, d *domain.Deal) error {
	_, err := r.db.NamedExecContext(ctx,
		`UPDATE deals SET title = :title, amount_cents = :amount_cents, currency = :currency,
		 stage = :stage, expected_close = :expected_close, updated_at = :updated_at
		 WHERE id = :id AND user_id = :user_id`, d)
	return err
}

// Delete removes the deal when owned by userID.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM deals WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}
