package domain

import (
	"errors"
	"time"
)

// Deal is a sales opportunity attached to a client.
type Deal struct {
	ID            string     `db:"id"`
	UserID        string     `db:"user_id"`
	ClientID      string     `db:"client_id"`
	Title         string     `db:"title"`
	AmountCents   int64      `db:"amount_cents"`
	Currency      string     `db:"currency"`
	Stage         DealStage  `db:"stage"`
	ExpectedClose *time.Time `db:"expected_close"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

type DealStage string

const (
	StageLead        DealStage = "lead"
	StageQualified   DealStage = "qualified"
	StageProposal    DealStage = "proposal"
	StageNegotiation DealStage = "negotiation"
	StageWon         DealStage = "won"
	StageLost        DealStage = "lost"
)

// IsOpen reports whether the deal still counts toward the active pipeline.
func (d *Deal) IsOpen() bool {
	return d.Stage != StageWon && d.Stage != StageLost
}

// Validate validates the deal for persistence.
func (d *Deal) Validate() error {
	if d.Title == "" {
		return errors.New("title is required")
	}
	if d.UserID == "" {
		return errors.New("user id is required")
	}
	if d.ClientID == "" {
		return errors.New("client id is required")
	}
	if d.AmountCents < 0 {
		return errors.New("amount must not be negative")
	}
	if d.Currency == "" {
		d.Currency = "USD"
	}
	switch d.Stage {
	case "":
		d.Stage = StageLead
	case StageLead, StageQualified, StageProposal, StageNegotiation, StageWon, StageLost:
	default:
		return errors.New("invalid deal stage")
	}
	return nil
}
