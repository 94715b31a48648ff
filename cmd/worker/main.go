// worker runs the automation scheduler and drains activity events from Kafka to Loki.
// Set DATABASE_URL and SCHEDULER_INTERVAL for the scheduler; KAFKA_BROKERS,
// ACTIVITY_KAFKA_TOPIC, KAFKA_GROUP_ID and LOKI_URL enable the activity drain.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/activity"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/activity/loki"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/activity/producer"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/ai"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/engine"
	automationrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/repository"
	automationservice "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/service"
	clientrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/repository"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/config"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/db"
	dealrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/deal/repository"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/mail"
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

	evaluator, err := engine.NewEvaluator(cfg.AutomationPolicy)
	if err != nil {
		log.Fatalf("automation policy: %v", err)
	}

	brokers := cfg.ActivityKafkaBrokersList()
	var emitter activity.EventEmitter
	if len(brokers) > 0 {
		emitter, err = producer.NewKafkaProducer(brokers, cfg.ActivityKafkaTopic)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		defer emitter.Close()
	}

	automations := automationrepo.NewPostgresRepository(database)
	clients := clientrepo.NewPostgresRepository(database)
	deals := dealrepo.NewPostgresRepository(database)
	aiClient := ai.NewClient(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIChatModel, cfg.AIVisionModel)
	mailer := mail.NewResendClient(cfg.MailAPIKey, cfg.MailBaseURL, cfg.MailFrom)

	executor := automationservice.NewExecutor(automations, clients, deals, evaluator, aiClient, mailer, emitter)
	scheduler := automationservice.NewScheduler(automations, executor, cfg.SchedulerPollInterval())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Start(ctx)
	}()

	if len(brokers) > 0 && cfg.LokiURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			drainActivity(ctx, cfg, brokers)
		}()
	} else {
		log.Println("worker: activity drain disabled (KAFKA_BROKERS or LOKI_URL unset)")
	}

	wg.Wait()
	log.Println("worker: stopped")
}

// drainActivity consumes activity events from Kafka and pushes them to Loki.
func drainActivity(ctx context.Context, cfg *config.Config, brokers []string) {
	topic := cfg.ActivityKafkaTopic
	if topic == "" {
		topic = "clientflow-activity"
	}
	groupID := cfg.KafkaGroupID
	if groupID == "" {
		groupID = "clientflow-activity-worker"
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	log.Printf("worker: consuming from %s (group %s), pushing to %s", topic, groupID, cfg.LokiURL)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}

		pushCtx, pushCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := loki.PushEventJSON(pushCtx, cfg.LokiURL, msg.Value); err != nil {
			log.Printf("worker: loki push failed: %v", err)
		}
		pushCancel()
	}
}
