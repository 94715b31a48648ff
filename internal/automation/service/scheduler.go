package service

import (
	"context"
	"log"
	"time"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/domain"
	automationrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/repository"
)

// Scheduler polls for due automations and executes them. Run by the worker binary.
type Scheduler struct {
	repo     automationrepo.Repository
	executor *Executor
	interval time.Duration
}

// NewScheduler returns a scheduler polling at the given interval (minimum 1s).
func NewScheduler(repo automationrepo.Repository, executor *Executor, interval time.Duration) *Scheduler {
	if interval < time.Second {
		interval = time.Second
	}
	return &Scheduler{repo: repo, executor: executor, interval: interval}
}

// Start blocks, ticking until ctx is cancelled. Each tick runs every due
// automation; one failed run never stops the loop.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("scheduler: polling every %s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("scheduler: stopping")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one poll cycle.
func (s *Scheduler) Tick(ctx context.Context) {
	due, err := s.repo.ListDue(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("scheduler: failed to list due automations: %v", err)
		return
	}
	for _, a := range due {
		if ctx.Err() != nil {
			return
		}
		run, err := s.executor.Run(ctx, a, "scheduler")
		if err != nil {
			log.Printf("scheduler: automation %s: %v", a.ID, err)
			continue
		}
		if run.Status != domain.RunStatusCompleted {
			log.Printf("scheduler: automation %s run %s finished %s: %s", a.ID, run.ID, run.Status, run.Error)
		}
	}
}
