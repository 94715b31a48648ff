package repository

import (
	"context"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/domain"
)

// Repository defines persistence for clients.
type Repository interface {
	// GetByID returns the client only when it belongs to userID.
	GetByID(ctx context.Context, userID, id string) (*domain.Client, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) error
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, userID, id string) error
}
