// seed inserts development sample data for local testing.
// Idempotent: skips all inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"log"
	"time"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/domain"
	automationrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/repository"
	clientdomain "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/domain"
	clientrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/repository"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/config"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/db"
	dealdomain "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/deal/domain"
	dealrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/deal/repository"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/security"
	userdomain "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/user/domain"
	userrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/user/repository"
)

const (
	devUserEmail = "dev@example.com"
	devPassword  = "Dev!Password123"
	devUserID    = "dev-user-001"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(database)
	clients := clientrepo.NewPostgresRepository(database)
	deals := dealrepo.NewPostgresRepository(database)
	automations := automationrepo.NewPostgresRepository(database)

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed: lookup dev user: %v", err)
	}
	if existing != nil {
		log.Println("seed: dev user already exists, nothing to do")
		return
	}

	hash, err := security.NewHasher(cfg.BcryptCost).Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("seed: hash password: %v", err)
	}
	now := time.Now().UTC()

	user := &userdomain.User{
		ID:           devUserID,
		Email:        devUserEmail,
		Name:         "Dev User",
		PasswordHash: hash,
		Status:       userdomain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatalf("seed: create user: %v", err)
	}

	acme := &clientdomain.Client{
		ID: "dev-client-001", UserID: devUserID,
		Name: "Acme Corp", Company: "Acme", Email: "jane@acme.example",
		Phone: "+1 555 0100", Status: clientdomain.ClientStatusActive,
		Notes: "Key account; prefers email.", CreatedAt: now, UpdatedAt: now,
	}
	// Imported from the v1 schema: only contact_email is set.
	legacy := &clientdomain.Client{
		ID: "dev-client-002", UserID: devUserID,
		Name: "Globex", ContactEmail: "ops@globex.example",
		Status: clientdomain.ClientStatusLead, CreatedAt: now, UpdatedAt: now,
	}
	for _, c := range []*clientdomain.Client{acme, legacy} {
		if err := clients.Create(ctx, c); err != nil {
			log.Fatalf("seed: create client %s: %v", c.Name, err)
		}
	}

	expected := now.AddDate(0, 1, 0)
	deal := &dealdomain.Deal{
		ID: "dev-deal-001", UserID: devUserID, ClientID: acme.ID,
		Title: "Annual license renewal", AmountCents: 250000, Currency: "USD",
		Stage: dealdomain.StageProposal, ExpectedClose: &expected,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := deals.Create(ctx, deal); err != nil {
		log.Fatalf("seed: create deal: %v", err)
	}

	checkIn := &domain.Automation{
		ID: "dev-automation-001", UserID: devUserID, ClientID: acme.ID,
		Kind: domain.KindScheduledEmail, Name: "Weekly check-in",
		Status: domain.StatusActive, Subject: "Checking in",
		Body: "Hi Jane,\n\nJust checking in on the renewal.\n", IntervalMinutes: 7 * 24 * 60,
		CreatedAt: now, UpdatedAt: now,
	}
	checkIn.Schedule(now)
	summary := &domain.Automation{
		ID: "dev-automation-002", UserID: devUserID, ClientID: acme.ID,
		Kind: domain.KindAISummary, Name: "Account summary",
		Status: domain.StatusActive, CreatedAt: now, UpdatedAt: now,
	}
	for _, a := range []*domain.Automation{checkIn, summary} {
		if err := automations.Create(ctx, a); err != nil {
			log.Fatalf("seed: create automation %s: %v", a.Name, err)
		}
	}

	log.Printf("seed: created dev user %s (password %s), 2 clients, 1 deal, 2 automations", devUserEmail, devPassword)
}
