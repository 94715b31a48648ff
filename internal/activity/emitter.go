// Package activity emits CRM activity events (e.g. to Kafka) for the worker to drain to Loki.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/activity/domain"
)

// EventEmitter emits activity events. Callers use it best-effort: log and ignore errors.
type EventEmitter interface {
	// Emit sends a single activity event. Implementations may block briefly; use EmitAsync from handlers.
	// Returns an error only on write failure; callers typically log and ignore.
	Emit(ctx context.Context, event *domain.Event) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}

// NewEvent builds an activity event with a fresh ID and UTC timestamp.
func NewEvent(userID, eventType, entityID, source, detail string) *domain.Event {
	return &domain.Event{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventType: eventType,
		EntityID:  entityID,
		Source:    source,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
}
