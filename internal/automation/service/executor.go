package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/activity"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/domain"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/engine"
	automationrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/repository"
	clientdomain "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/domain"
	dealdomain "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/deal/domain"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/mail"
)

// Chat generates text from a prompt pair. Implemented by ai.Client.
type Chat interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ClientGetter resolves a client by owner and ID. Implemented by the client repository.
type ClientGetter interface {
	GetByID(ctx context.Context, userID, id string) (*clientdomain.Client, error)
}

// DealLister lists a client's deals for summary context. Implemented by the deal repository.
type DealLister interface {
	ListByClient(ctx context.Context, userID, clientID string) ([]*dealdomain.Deal, error)
}

// Executor runs one automation end to end. Every run writes a history row:
// inserted as running before any work, finalized to completed or failed after.
type Executor struct {
	repo      automationrepo.Repository
	clients   ClientGetter
	deals     DealLister
	evaluator *engine.Evaluator
	chat      Chat
	mailer    mail.Sender
	emitter   activity.EventEmitter
}

// NewExecutor wires the executor. chat, mailer and emitter may be nil; runs
// needing an unconfigured dependency fail with a stored reason instead of panicking.
func NewExecutor(
	repo automationrepo.Repository,
	clients ClientGetter,
	deals DealLister,
	evaluator *engine.Evaluator,
	chat Chat,
	mailer mail.Sender,
	emitter activity.EventEmitter,
) *Executor {
	return &Executor{
		repo:      repo,
		clients:   clients,
		deals:     deals,
		evaluator: evaluator,
		chat:      chat,
		mailer:    mailer,
		emitter:   emitter,
	}
}

// Run executes the automation once. source is "api" for on-demand runs and
// "scheduler" for worker-triggered ones. The returned Run reflects the final
// row; the error is non-nil only when the history row itself could not be written.
func (e *Executor) Run(ctx context.Context, a *domain.Automation, source string) (*domain.Run, error) {
	automationID := a.ID
	run := &domain.Run{
		ID:           uuid.New().String(),
		AutomationID: &automationID,
		UserID:       a.UserID,
		ClientID:     a.ClientID,
		Kind:         a.Kind,
		Status:       domain.RunStatusRunning,
		StartedAt:    time.Now().UTC(),
	}
	if err := e.repo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	output, runErr := e.execute(ctx, a)

	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Output = output
	if runErr != nil {
		run.Status = domain.RunStatusFailed
		run.Error = runErr.Error()
	} else {
		run.Status = domain.RunStatusCompleted
	}
	if err := e.repo.FinalizeRun(ctx, run.ID, run.Status, run.Error, run.Output, now); err != nil {
		return run, fmt.Errorf("finalize run: %w", err)
	}

	a.LastRunAt = &now
	a.Schedule(now)
	if err := e.repo.MarkRan(ctx, a.ID, now, a.NextRunAt); err != nil {
		log.Printf("automation: failed to advance schedule for %s: %v", a.ID, err)
	}

	eventType := "automation_run_completed"
	if runErr != nil {
		eventType = "automation_run_failed"
	}
	activity.EmitAsync(e.emitter, ctx, activity.NewEvent(a.UserID, eventType, a.ID, source, string(a.Kind)))
	return run, nil
}

// execute does the actual work and returns the run output. Failures are
// returned as errors and end up in the run row, never as panics.
func (e *Executor) execute(ctx context.Context, a *domain.Automation) (string, error) {
	cl, err := e.clients.GetByID(ctx, a.UserID, a.ClientID)
	if err != nil {
		return "", fmt.Errorf("load client: %w", err)
	}
	if cl == nil {
		return "", fmt.Errorf("client %s not found", a.ClientID)
	}

	if e.evaluator != nil {
		decision, err := e.evaluator.Evaluate(ctx, a, cl)
		if err != nil {
			return "", fmt.Errorf("eligibility policy: %w", err)
		}
		if !decision.Allow {
			return "", fmt.Errorf("not eligible: %s", decision.Reason)
		}
	}

	switch a.Kind {
	case domain.KindScheduledEmail:
		return e.runScheduledEmail(ctx, a, cl)
	case domain.KindMeetingFollowup:
		return e.runMeetingFollowup(ctx, a, cl)
	case domain.KindAISummary:
		return e.runSummary(ctx, a, cl)
	default:
		return "", fmt.Errorf("unknown automation kind %q", a.Kind)
	}
}

func (e *Executor) runScheduledEmail(ctx context.Context, a *domain.Automation, cl *clientdomain.Client) (string, error) {
	if e.mailer == nil {
		return "", fmt.Errorf("mail sender not configured")
	}
	to := cl.EffectiveEmail()
	if err := e.mailer.Send(ctx, to, a.Subject, a.Body); err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	return fmt.Sprintf("email sent to %s", to), nil
}

func (e *Executor) runMeetingFollowup(ctx context.Context, a *domain.Automation, cl *clientdomain.Client) (string, error) {
	if e.chat == nil {
		return "", fmt.Errorf("AI client not configured")
	}
	if e.mailer == nil {
		return "", fmt.Errorf("mail sender not configured")
	}
	system := "You write concise, professional follow-up emails after client meetings. " +
		"Reply with the email body only, no subject line."
	prompt := fmt.Sprintf("Client: %s\nMeeting notes:\n%s", clientLine(cl), a.MeetingNotes)
	draft, err := e.chat.Complete(ctx, system, prompt)
	if err != nil {
		return "", fmt.Errorf("draft follow-up: %w", err)
	}
	subject := a.Subject
	if subject == "" {
		subject = "Follow-up: " + a.Name
	}
	to := cl.EffectiveEmail()
	if err := e.mailer.Send(ctx, to, subject, draft); err != nil {
		return draft, fmt.Errorf("send follow-up: %w", err)
	}
	return draft, nil
}

func (e *Executor) runSummary(ctx context.Context, a *domain.Automation, cl *clientdomain.Client) (string, error) {
	if e.chat == nil {
		return "", fmt.Errorf("AI client not configured")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Client: %s\nStatus: %s\n", clientLine(cl), cl.Status)
	if cl.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", cl.Notes)
	}
	if e.deals != nil {
		deals, err := e.deals.ListByClient(ctx, a.UserID, a.ClientID)
		if err != nil {
			log.Printf("automation: failed to load deals for summary of %s: %v", a.ClientID, err)
		}
		for _, d := range deals {
			fmt.Fprintf(&b, "Deal: %s, %d %s, stage %s\n", d.Title, d.AmountCents/100, d.Currency, d.Stage)
		}
	}
	system := "You summarize CRM clients for an account manager. " +
		"Write a short paragraph covering relationship status, open deals and suggested next steps."
	summary, err := e.chat.Complete(ctx, system, b.String())
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	return summary, nil
}

func clientLine(cl *clientdomain.Client) string {
	if cl.Company != "" {
		return cl.Name + " (" + cl.Company + ")"
	}
	return cl.Name
}
