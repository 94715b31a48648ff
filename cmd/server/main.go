// server runs the ClientFlow HTTP API.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/activity"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/activity/producer"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/ai"
	auditrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/audit/repository"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/engine"
	automationrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/repository"
	automationservice "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/service"
	clientrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/repository"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/config"
	dashboardrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/dashboard/repository"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/db"
	dealrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/deal/repository"
	identityservice "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/identity/service"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/mail"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/security"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/server"
	sessionrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/session/repository"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/telemetry/otel"
	userrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "clientflow-api", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())

	evaluator, err := engine.NewEvaluator(cfg.AutomationPolicy)
	if err != nil {
		log.Fatalf("automation policy: %v", err)
	}

	var emitter activity.EventEmitter
	if brokers := cfg.ActivityKafkaBrokersList(); len(brokers) > 0 {
		emitter, err = producer.NewKafkaProducer(brokers, cfg.ActivityKafkaTopic)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
	} else {
		emitter = otel.NewEventEmitter(providers.LoggerProvider)
	}

	aiClient := ai.NewClient(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIChatModel, cfg.AIVisionModel)
	mailer := mail.NewResendClient(cfg.MailAPIKey, cfg.MailBaseURL, cfg.MailFrom)

	clients := clientrepo.NewPostgresRepository(database)
	deals := dealrepo.NewPostgresRepository(database)
	automations := automationrepo.NewPostgresRepository(database)
	users := userrepo.NewPostgresRepository(database)
	sessions := sessionrepo.NewPostgresRepository(database)
	audits := auditrepo.NewPostgresRepository(database)
	dashboards := dashboardrepo.NewPostgresRepository(database)

	auth := identityservice.NewAuthService(users, sessions, security.NewHasher(cfg.BcryptCost), tokens, cfg.AccessTTL(), cfg.RefreshTTL())
	executor := automationservice.NewExecutor(automations, clients, deals, evaluator, aiClient, mailer, emitter)

	router := server.NewRouter(server.Deps{
		Auth:           auth,
		Tokens:         tokens,
		ClientRepo:     clients,
		DealRepo:       deals,
		AutomationRepo: automations,
		DashboardRepo:  dashboards,
		AuditRepo:      audits,
		Runner:         executor,
		Scorer:         aiClient,
		Emitter:        emitter,
		DB:             database,
		PolicyChecker:  evaluator,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("http server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down http server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Give in-flight async activity emits a chance to land before closing.
	time.Sleep(activity.ShutdownDrainDuration)
	if err := emitter.Close(); err != nil {
		log.Printf("emitter close: %v", err)
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("http server stopped")
}
