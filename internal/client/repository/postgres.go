package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/domain"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a client repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const clientColumns = `id, user_id, name, company, email, contact_email, phone, status, notes, created_at, updated_at`

// GetByID returns the client for id when owned by userID, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*domain.Client, error) {
	var c domain.Client
	err := r.db.GetContext(ctx, &c,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ListByUser returns all clients for the given user, newest first. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Client, error) {
	var list []*domain.Client
	err := r.db.SelectContext(ctx, &list,
		`SELECT `+clientColumns+` FROM clients WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Create persists the client. The client must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Client) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO clients (id, user_id, name, company, email, contact_email, phone, status, notes, created_at, updated_at)
		 VALUES (:id, :user_id, :name, :company, :email, :contact_email, :phone, :status, :notes, :created_at, :updated_at)`, c)
	return err
}

// Update updates the existing client record, scoped to its owner.
func (r *PostgresRepository) Update(ctx context.Context, c *domain.Client) error {
	_, err := r.db.NamedExecContext(ctx,
		`UPDATE clients SET name = :name, company = :company, email = :email, contact_email = :contact_email,
		 phone = :phone, status = :status, notes = :notes, updated_at = :updated_at
		 WHERE id = :id AND user_id = :user_id`, c)
	return err
}

// Delete removes the client when owned by userID. Deals and automations cascade in the schema.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}
