// Package scheduler owns background job transport. The API enqueues draft
// generation tasks; the worker consumes them and calls into the drafts
// service.
package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"clientops_backend/internal/drafts"
	"clientops_backend/platform/config"
	"clientops_backend/platform/logger"
)

// Worker runs the asynq server and dispatches draft generation tasks.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	drafts *drafts.Service
	log    *logger.Logger
}

// NewWorker builds an asynq server bound to the configured Redis queue.
func NewWorker(cfg config.SchedulerConfig, draftSvc *drafts.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		drafts: draftSvc,
		log:    log,
	}

	mux.HandleFunc(TaskLeadFollowupDraft, w.handleLeadFollowupDraft)
	mux.HandleFunc(TaskTicketReplyDraft, w.handleTicketReplyDraft)

	return w, nil
}

// Run serves tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleLeadFollowupDraft(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadFollowupDraftPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}
	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return err
	}

	result, err := w.drafts.GenerateLeadFollowup(ctx, tenantID, leadID)
	if err != nil {
		w.log.JobEvent(TaskLeadFollowupDraft, "failed", "error", err.Error(), "lead_id", payload.LeadID)
		return err
	}
	if result.Skipped {
		w.log.JobEvent(TaskLeadFollowupDraft, "skipped", "reason", result.Reason, "lead_id", payload.LeadID)
		return nil
	}

	w.log.JobEvent(TaskLeadFollowupDraft, "completed", "draft_id", result.Draft.ID.String())
	return nil
}

func (w *Worker) handleTicketReplyDraft(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseTicketReplyDraftPayload(task)
	if err != nil {
		return err
	}

	ticketID, err := uuid.Parse(payload.TicketID)
	if err != nil {
		return err
	}
	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return err
	}

	result, err := w.drafts.GenerateTicketReply(ctx, tenantID, ticketID)
	if err != nil {
		w.log.JobEvent(TaskTicketReplyDraft, "failed", "error", err.Error(), "ticket_id", payload.TicketID)
		return err
	}
	if result.Skipped {
		w.log.JobEvent(TaskTicketReplyDraft, "skipped", "reason", result.Reason, "ticket_id", payload.TicketID)
		return nil
	}

	w.log.JobEvent(TaskTicketReplyDraft, "completed", "draft_id", result.Draft.ID.String())
	return nil
}
