package domain

import (
	"errors"
	"time"
)

// Kind selects what an automation does when it runs.
type Kind string

const (
	// KindScheduledEmail sends the automation's subject/body to the client on an interval.
	KindScheduledEmail Kind = "scheduled_email"
	// KindMeetingFollowup drafts and sends a follow-up email from meeting notes.
	KindMeetingFollowup Kind = "meeting_followup"
	// KindAISummary generates a summary of the client from CRM data. Nothing is emailed.
	KindAISummary Kind = "ai_summary"
)

type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
)

// Automation is a per-client job: a recurring email, a meeting follow-up, or an AI summary.
type Automation struct {
	ID       string `db:"id"`
	UserID   string `db:"user_id"`
	ClientID string `db:"client_id"`
	Kind     Kind   `db:"kind"`
	Name     string `db:"name"`
	Status   Status `db:"status"`
	// Subject and Body are the email template for scheduled_email.
	Subject string `db:"subject"`
	Body    string `db:"body"`
	// MeetingNotes is the source text for meeting_followup.
	MeetingNotes string `db:"meeting_notes"`
	// IntervalMinutes is the recurrence period; 0 means run on demand only.
	IntervalMinutes int        `db:"interval_minutes"`
	NextRunAt       *time.Time `db:"next_run_at"`
	LastRunAt       *time.Time `db:"last_run_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// Validate validates the automation for persistence.
func (a *Automation) Validate() error {
	if a.Name == "" {
		return errors.New("name is required")
	}
	if a.UserID == "" {
		return errors.New("user id is required")
	}
	if a.ClientID == "" {
		return errors.New("client id is required")
	}
	if a.IntervalMinutes < 0 {
		return errors.New("interval must not be negative")
	}
	switch a.Status {
	case "":
		a.Status = StatusActive
	case StatusActive, StatusPaused:
	default:
		return errors.New("invalid automation status")
	}
	switch a.Kind {
	case KindScheduledEmail:
		if a.Subject == "" {
			return errors.New("subject is required for scheduled email")
		}
	case KindMeetingFollowup:
		if a.MeetingNotes == "" {
			return errors.New("meeting notes are required for meeting follow-up")
		}
	case KindAISummary:
	default:
		return errors.New("invalid automation kind")
	}
	return nil
}

// Schedule sets NextRunAt from the interval, relative to from. No-op for on-demand automations.
func (a *Automation) Schedule(from time.Time) {
	if a.IntervalMinutes <= 0 {
		a.NextRunAt = nil
		return
	}
	next := from.Add(time.Duration(a.IntervalMinutes) * time.Minute)
	a.NextRunAt = &next
}

// RunStatus is the lifecycle state of one automation execution.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one execution of an automation. A row is inserted as running before any
// work starts, then finalized to completed or failed; rows outlive their automation.
type Run struct {
	ID string `db:"id"`
	// AutomationID is nil after the automation is deleted.
	AutomationID *string    `db:"automation_id"`
	UserID       string     `db:"user_id"`
	ClientID     string     `db:"client_id"`
	Kind         Kind       `db:"kind"`
	Status       RunStatus  `db:"status"`
	Error        string     `db:"error"`
	Output       string     `db:"output"`
	StartedAt    time.Time  `db:"started_at"`
	FinishedAt   *time.Time `db:"finished_at"`
}
