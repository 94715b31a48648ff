package repository

import (
	"context"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/deal/domain"
)

// Repository defines persistence for deals.
type Repository interface {
	// GetByID returns the deal only when it belongs to userID.
	GetByID(ctx context.Context, userID, id string) (*domain.Deal, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Deal, error)
	ListByClient(ctx context.Context, userID, clientID string) ([]*domain.Deal, error)
	Create(ctx context.Context, d *domain.Deal) error
	Update(ctx context.Context, d *domain.Deal) error
	Delete(ctx context.Context, userID, id string) error
}
