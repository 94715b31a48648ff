package domain

import "time"

// Event is a CRM activity event (client created, deal stage changed, automation run
// finished, ...). Events are emitted best-effort to Kafka and drained to Loki by the worker.
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	EventType string    `json:"eventType"` // e.g. client_created, deal_updated, automation_run_completed
	EntityID  string    `json:"entityId"`
	Source    string    `json:"source"` // "api" or "worker"
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
