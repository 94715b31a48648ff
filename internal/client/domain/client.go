package domain

import (
	"errors"
	"time"
)

// Client is a CRM client record.
type Client struct {
	ID      string `db:"id"`
	UserID  string `db:"user_id"`
	Name    string `db:"name"`
	Company string `db:"company"`
	Email   string `db:"email"`
	// ContactEmail is the v1 schema column; rows imported from it may have no email. Prefer Email.
	ContactEmail string       `db:"contact_email"`
	Phone        string       `db:"phone"`
	Status       ClientStatus `db:"status"`
	Notes        string       `db:"notes"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

type ClientStatus string

const (
	ClientStatusLead     ClientStatus = "lead"
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

// EffectiveEmail returns the address automations should send to: email when set,
// otherwise the legacy contact_email column.
func (c *Client) EffectiveEmail() string {
	if c.Email != "" {
		return c.Email
	}
	return c.ContactEmail
}

// Validate validates the client for persistence. Returns an error describing the first validation failure.
func (c *Client) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.UserID == "" {
		return errors.New("user id is required")
	}
	switch c.Status {
	case "":
		c.Status = ClientStatusLead
	case ClientStatusLead, ClientStatusActive, ClientStatusInactive:
	default:
		return errors.New("invalid client status")
	}
	return nil
}
