package drafts

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"clientops_backend/internal/events"
	"clientops_backend/platform/logger"
)

type recordingEnqueuer struct {
	leadIDs   []uuid.UUID
	ticketIDs []uuid.UUID
	err       error
}

func (r *recordingEnqueuer) EnqueueLeadFollowupDraft(ctx context.Context, tenantID, leadID uuid.UUID) error {
	r.leadIDs = append(r.leadIDs, leadID)
	return r.err
}

func (r *recordingEnqueuer) EnqueueTicketReplyDraft(ctx context.Context, tenantID, ticketID uuid.UUID) error {
	r.ticketIDs = append(r.ticketIDs, ticketID)
	return r.err
}

func testModule(enq Enqueuer) *Module {
	return NewModule(nil, nil, nil, nil, enq, failingGen{}, &publishedRecorder{}, logger.New("test"))
}

func TestCreationEventsScheduleDraftJobs(t *testing.T) {
	enq := &recordingEnqueuer{}
	m := testModule(enq)

	bus := events.NewInMemoryBus(logger.New("test"))
	m.RegisterHandlers(bus)

	leadID := uuid.New()
	ticketID := uuid.New()
	tenantID := uuid.New()

	if err := bus.PublishSync(context.Background(), events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		TenantID:  tenantID,
		ContactID: uuid.New(),
		Summary:   "needs a quote",
	}); err != nil {
		t.Fatalf("publish lead created: %v", err)
	}
	if err := bus.PublishSync(context.Background(), events.TicketCreated{
		BaseEvent: events.NewBaseEvent(),
		TicketID:  ticketID,
		TenantID:  tenantID,
		ContactID: uuid.New(),
		Tag:       "bug",
		Urgency:   "high",
	}); err != nil {
		t.Fatalf("publish ticket created: %v", err)
	}

	if len(enq.leadIDs) != 1 || enq.leadIDs[0] != leadID {
		t.Fatalf("expected lead followup job for %s, got %v", leadID, enq.leadIDs)
	}
	if len(enq.ticketIDs) != 1 || enq.ticketIDs[0] != ticketID {
		t.Fatalf("expected ticket reply job for %s, got %v", ticketID, enq.ticketIDs)
	}
}

func TestHandleIgnoresUnrelatedEvents(t *testing.T) {
	enq := &recordingEnqueuer{}
	m := testModule(enq)

	err := m.Handle(context.Background(), events.DraftApproved{
		BaseEvent: events.NewBaseEvent(),
		DraftID:   uuid.New(),
		TenantID:  uuid.New(),
		Kind:      KindLeadFollowup,
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(enq.leadIDs) != 0 || len(enq.ticketIDs) != 0 {
		t.Fatalf("expected no jobs scheduled, got %v %v", enq.leadIDs, enq.ticketIDs)
	}
}

func TestHandlePropagatesEnqueueError(t *testing.T) {
	enq := &recordingEnqueuer{err: errors.New("queue unavailable")}
	m := testModule(enq)

	err := m.Handle(context.Background(), events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		TenantID:  uuid.New(),
	})
	if err == nil {
		t.Fatal("expected enqueue error to propagate to the bus")
	}
}
