package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"clientops_backend/internal/chat"
	"clientops_backend/internal/crm"
	"clientops_backend/internal/drafts"
	"clientops_backend/internal/events"
	apphttp "clientops_backend/internal/http"
	"clientops_backend/internal/http/router"
	"clientops_backend/internal/leads"
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
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

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
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)

	enqueuer, closeEnqueuer := initDraftScheduler(cfg, log)
	if closeEnqueuer != nil {
		defer closeEnqueuer()
	}

	gen := initTextGen(cfg, log)

	// Domain modules. Chat depends on the repositories of its siblings.
	crmModule := crm.NewModule(pool)
	leadsModule := leads.NewModule(pool, eventBus, log)
	ticketsModule := tickets.NewModule(pool)
	draftsModule := drafts.NewModule(pool, crmModule.Repository(), leadsModule.Repository(), ticketsModule.Repository(), enqueuer, gen, eventBus, log)
	chatModule := chat.NewModule(crmModule.Repository(), leadsModule.Repository(), ticketsModule.Repository(), gen, eventBus, log)

	draftsModule.RegisterHandlers(eventBus)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			chatModule,
			crmModule,
			leadsModule,
			ticketsModule,
			draftsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// noopEnqueuer keeps chat usable when Redis is not configured. Drafts are
// simply never generated.
type noopEnqueuer struct{}

func (noopEnqueuer) EnqueueLeadFollowupDraft(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (noopEnqueuer) EnqueueTicketReplyDraft(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func initDraftScheduler(cfg config.SchedulerConfig, log *logger.Logger) (drafts.Enqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; draft generation disabled")
		return noopEnqueuer{}, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize draft scheduler client", "error", err)
		return noopEnqueuer{}, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func initTextGen(cfg config.TextGenConfig, log *logger.Logger) textgen.Generator {
	if !cfg.IsTextGenEnabled() {
		log.Warn("text generation not configured; using deterministic replies")
		return textgen.Disabled{}
	}
	log.Info("text generation enabled", "model", cfg.GetTextGenModel())
	return textgen.New(cfg)
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
