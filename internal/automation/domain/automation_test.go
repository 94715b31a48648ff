package domain

import (
	"testing"
	"time"
)

func TestAutomationValidate(t *testing.T) {
	base := func() Automation {
		return Automation{
			UserID:   "u1",
			ClientID: "c1",
			Name:     "Weekly check-in",
			Kind:     KindScheduledEmail,
			Subject:  "Checking in",
		}
	}

	t.Run("defaults status to active", func(t *testing.T) {
		a := base()
		if err := a.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if a.Status != StatusActive {
			t.Errorf("expected active, got %q", a.Status)
		}
	})

	t.Run("scheduled email requires subject", func(t *testing.T) {
		a := base()
		a.Subject = ""
		if err := a.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("meeting followup requires notes", func(t *testing.T) {
		a := base()
		a.Kind = KindMeetingFollowup
		if err := a.Validate(); err == nil {
			t.Fatal("expected error")
		}
		a.MeetingNotes = "Discussed pricing."
		if err := a.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
	})

	t.Run("ai summary needs no template", func(t *testing.T) {
		a := base()
		a.Kind = KindAISummary
		a.Subject = ""
		if err := a.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		a := base()
		a.Kind = "webhook"
		if err := a.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("rejects negative interval", func(t *testing.T) {
		a := base()
		a.IntervalMinutes = -5
		if err := a.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestAutomationSchedule(t *testing.T) {
	from := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	a := Automation{IntervalMinutes: 60}
	a.Schedule(from)
	if a.NextRunAt == nil {
		t.Fatal("expected NextRunAt to be set")
	}
	if want := from.Add(time.Hour); !a.NextRunAt.Equal(want) {
		t.Errorf("expected %v, got %v", want, a.NextRunAt)
	}

	onDemand := Automation{IntervalMinutes: 0, NextRunAt: &from}
	onDemand.Schedule(from)
	if onDemand.NextRunAt != nil {
		t.Error("on-demand automation should have no next run")
	}
}
