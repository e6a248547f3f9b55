package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"clientops_backend/internal/crm"
	"clientops_backend/internal/drafts"
	"clientops_backend/internal/events"
	leadsrepo "clientops_backend/internal/leads/repository"
	"clientops_backend/internal/scheduler"
	"clientops_backend/internal/tickets"
	"clientops_backend/platform/ai/textgen"
	"clientops_backend/platform/config"
	"clientops_backend/platform/db"
	"clientops_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	var gen textgen.Generator = textgen.Disabled{}
	if cfg.IsTextGenEnabled() {
		gen = textgen.New(cfg)
		log.Info("text generation enabled", "model", cfg.GetTextGenModel())
	}

	draftSvc := drafts.NewService(
		drafts.NewRepository(pool),
		leadsrepo.New(pool),
		tickets.NewRepository(pool),
		crm.NewRepository(pool),
		gen,
		eventBus,
		log,
	)

	worker, err := scheduler.NewWorker(cfg, draftSvc, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
