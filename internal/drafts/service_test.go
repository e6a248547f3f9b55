package drafts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"clientops_backend/internal/crm"
	"clientops_backend/internal/events"
	leadsrepo "clientops_backend/internal/leads/repository"
	"clientops_backend/internal/tickets"
	"clientops_backend/platform/apperr"
	"clientops_backend/platform/logger"
)

type fakeStore struct {
	recentPending bool
	created       []CreateDraftParams
	drafts        map[uuid.UUID]Draft
}

func newFakeStore() *fakeStore {
	return &fakeStore{drafts: make(map[uuid.UUID]Draft)}
}

func (f *fakeStore) HasRecentPendingDraft(ctx context.Context, tenantID uuid.UUID, kind string, leadID, ticketID *uuid.UUID) (bool, error) {
	return f.recentPending, nil
}

func (f *fakeStore) CreateWithMessage(ctx context.Context, params CreateDraftParams) (Draft, error) {
	f.created = append(f.created, params)
	draft := Draft{
		ID:             uuid.New(),
		TenantID:       params.TenantID,
		Kind:           params.Kind,
		Status:         StatusPending,
		LeadID:         params.LeadID,
		TicketID:       params.TicketID,
		ContactID:      params.ContactID,
		ConversationID: params.ConversationID,
		SessionID:      params.SessionID,
		Content:        params.Content,
		CreatedAt:      time.Now().UTC(),
	}
	f.drafts[draft.ID] = draft
	return draft, nil
}

func (f *fakeStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (Draft, error) {
	draft, ok := f.drafts[id]
	if !ok {
		return Draft{}, apperr.NotFound("draft not found")
	}
	return draft, nil
}

func (f *fakeStore) List(ctx context.Context, tenantID uuid.UUID, status string, limit int) ([]Draft, error) {
	return nil, nil
}

func (f *fakeStore) ListForLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]Draft, error) {
	return nil, nil
}

func (f *fakeStore) Approve(ctx context.Context, tenantID, id uuid.UUID) (Draft, error) {
	draft, ok := f.drafts[id]
	if !ok {
		return Draft{}, apperr.NotFound("draft not found")
	}
	if draft.Status != StatusPending {
		return Draft{}, apperr.Conflict("draft is not pending (status=" + draft.Status + ")")
	}
	now := time.Now().UTC()
	draft.Status = StatusApproved
	draft.ApprovedAt = &now
	f.drafts[id] = draft
	return draft, nil
}

func (f *fakeStore) Reject(ctx context.Context, tenantID, id uuid.UUID) (Draft, error) {
	draft, ok := f.drafts[id]
	if !ok {
		return Draft{}, apperr.NotFound("draft not found")
	}
	if draft.Status != StatusPending {
		return Draft{}, apperr.Conflict("draft is not pending (status=" + draft.Status + ")")
	}
	draft.Status = StatusRejected
	f.drafts[id] = draft
	return draft, nil
}

func (f *fakeStore) UpdateContent(ctx context.Context, tenantID, id uuid.UUID, content string) (Draft, error) {
	draft, ok := f.drafts[id]
	if !ok {
		return Draft{}, apperr.NotFound("draft not found")
	}
	if draft.Status != StatusPending {
		return Draft{}, apperr.Conflict("draft is not pending (status=" + draft.Status + ")")
	}
	draft.Content = content
	f.drafts[id] = draft
	return draft, nil
}

type fakeLeads struct {
	lead leadsrepo.Lead
	err  error
}

func (f *fakeLeads) GetByID(ctx context.Context, tenantID, id uuid.UUID) (leadsrepo.Lead, error) {
	if f.err != nil {
		return leadsrepo.Lead{}, f.err
	}
	return f.lead, nil
}

type fakeTickets struct {
	ticket tickets.Ticket
	err    error
}

func (f *fakeTickets) GetByID(ctx context.Context, tenantID, id uuid.UUID) (tickets.Ticket, error) {
	if f.err != nil {
		return tickets.Ticket{}, f.err
	}
	return f.ticket, nil
}

type fakeConvos struct {
	convo *crm.Conversation
}

func (f *fakeConvos) LatestConversationForContact(ctx context.Context, tenantID, contactID uuid.UUID) (*crm.Conversation, error) {
	return f.convo, nil
}

type failingGen struct{}

func (failingGen) Generate(context.Context, string, string) (string, error) {
	return "", errors.New("backend unavailable")
}

type fixedGen struct{ out string }

func (g fixedGen) Generate(context.Context, string, string) (string, error) {
	return g.out, nil
}

type publishedRecorder struct {
	published []events.Event
}

func (r *publishedRecorder) Publish(ctx context.Context, event events.Event) {
	r.published = append(r.published, event)
}

func (r *publishedRecorder) PublishSync(ctx context.Context, event events.Event) error {
	r.published = append(r.published, event)
	return nil
}

func (r *publishedRecorder) Subscribe(eventName string, handler events.Handler) {}

func strptr(s string) *string { return &s }

func testService(store *fakeStore, leads *fakeLeads, ticketSrc *fakeTickets, convos *fakeConvos, gen interface {
	Generate(context.Context, string, string) (string, error)
}) (*Service, *publishedRecorder) {
	bus := &publishedRecorder{}
	svc := NewService(store, leads, ticketSrc, convos, gen, bus, logger.New("test"))
	return svc, bus
}

func TestGenerateLeadFollowupCreatesPendingDraftWithConversation(t *testing.T) {
	tenantID := uuid.New()
	leadID := uuid.New()
	contactID := uuid.New()
	convo := &crm.Conversation{ID: uuid.New(), SessionID: "sess-1"}

	store := newFakeStore()
	svc, _ := testService(store,
		&fakeLeads{lead: leadsrepo.Lead{ID: leadID, ContactID: contactID, Summary: strptr("need pricing for CRM setup")}},
		&fakeTickets{},
		&fakeConvos{convo: convo},
		failingGen{},
	)

	result, err := svc.GenerateLeadFollowup(context.Background(), tenantID, leadID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Skipped {
		t.Fatalf("expected draft creation, got skip: %s", result.Reason)
	}
	if result.Draft.Status != StatusPending {
		t.Fatalf("expected pending draft, got %s", result.Draft.Status)
	}

	if len(store.created) != 1 {
		t.Fatalf("expected 1 create call, got %d", len(store.created))
	}
	params := store.created[0]
	if params.Kind != KindLeadFollowup {
		t.Fatalf("expected kind lead_followup, got %s", params.Kind)
	}
	if params.LeadID == nil || *params.LeadID != leadID {
		t.Fatalf("expected lead id on draft, got %v", params.LeadID)
	}
	if params.ConversationID == nil || *params.ConversationID != convo.ID {
		t.Fatalf("expected draft linked to latest conversation, got %v", params.ConversationID)
	}
	if params.SessionID == nil || *params.SessionID != "sess-1" {
		t.Fatalf("expected session id copied onto draft, got %v", params.SessionID)
	}
	if !strings.Contains(params.Content, "need pricing for CRM setup") {
		t.Fatalf("expected fallback content to embed summary, got %q", params.Content)
	}
}

func TestGenerateLeadFollowupSkipsInsideDedupWindow(t *testing.T) {
	store := newFakeStore()
	store.recentPending = true
	svc, _ := testService(store,
		&fakeLeads{lead: leadsrepo.Lead{ID: uuid.New(), ContactID: uuid.New()}},
		&fakeTickets{},
		&fakeConvos{},
		failingGen{},
	)

	result, err := svc.GenerateLeadFollowup(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !result.Skipped {
		t.Fatal("expected generation to be skipped")
	}
	if len(store.created) != 0 {
		t.Fatalf("expected no draft created, got %d", len(store.created))
	}
}

func TestGenerateLeadFollowupWithoutConversationOmitsLink(t *testing.T) {
	store := newFakeStore()
	svc, _ := testService(store,
		&fakeLeads{lead: leadsrepo.Lead{ID: uuid.New(), ContactID: uuid.New(), Summary: strptr("demo")}},
		&fakeTickets{},
		&fakeConvos{convo: nil},
		failingGen{},
	)

	result, err := svc.GenerateLeadFollowup(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Skipped {
		t.Fatal("expected draft creation")
	}
	if store.created[0].ConversationID != nil || store.created[0].SessionID != nil {
		t.Fatalf("expected no conversation link, got %+v", store.created[0])
	}
}

func TestGenerateLeadFollowupPrefersGeneratedContent(t *testing.T) {
	store := newFakeStore()
	svc, _ := testService(store,
		&fakeLeads{lead: leadsrepo.Lead{ID: uuid.New(), ContactID: uuid.New(), Summary: strptr("pricing question")}},
		&fakeTickets{},
		&fakeConvos{},
		fixedGen{out: "Custom drafted followup."},
	)

	result, err := svc.GenerateLeadFollowup(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Draft.Content != "Custom drafted followup." {
		t.Fatalf("expected generated content, got %q", result.Draft.Content)
	}
}

func TestGenerateLeadFollowupMissingLeadFails(t *testing.T) {
	store := newFakeStore()
	svc, _ := testService(store,
		&fakeLeads{err: apperr.NotFound("lead not found")},
		&fakeTickets{},
		&fakeConvos{},
		failingGen{},
	)

	_, err := svc.GenerateLeadFollowup(context.Background(), uuid.New(), uuid.New())
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGenerateTicketReplyUsesDeterministicTemplate(t *testing.T) {
	store := newFakeStore()
	svc, _ := testService(store,
		&fakeLeads{},
		&fakeTickets{ticket: tickets.Ticket{ID: uuid.New(), ContactID: uuid.New(), Summary: strptr("upload is broken")}},
		&fakeConvos{},
		failingGen{},
	)

	result, err := svc.GenerateTicketReply(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Draft.Kind != KindTicketReply {
		t.Fatalf("expected kind ticket_reply, got %s", result.Draft.Kind)
	}
	if !strings.Contains(result.Draft.Content, "upload is broken") {
		t.Fatalf("expected content to quote the report, got %q", result.Draft.Content)
	}
	if !strings.Contains(result.Draft.Content, "steps to reproduce") {
		t.Fatalf("expected troubleshooting checklist, got %q", result.Draft.Content)
	}
}

func TestApprovePublishesEventAndIsSingleShot(t *testing.T) {
	tenantID := uuid.New()
	store := newFakeStore()
	svc, bus := testService(store, &fakeLeads{}, &fakeTickets{}, &fakeConvos{}, failingGen{})

	leadID := uuid.New()
	draft, _ := store.CreateWithMessage(context.Background(), CreateDraftParams{
		TenantID: tenantID, Kind: KindLeadFollowup, LeadID: &leadID, Content: "hello",
	})

	approved, err := svc.Approve(context.Background(), tenantID, draft.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != StatusApproved {
		t.Fatalf("expected approved status, got %s", approved.Status)
	}
	if approved.ApprovedAt == nil {
		t.Fatal("expected approved_at to be set")
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(bus.published))
	}
	event, ok := bus.published[0].(events.DraftApproved)
	if !ok {
		t.Fatalf("expected DraftApproved event, got %T", bus.published[0])
	}
	if event.DraftID != draft.ID || event.Kind != KindLeadFollowup {
		t.Fatalf("unexpected event payload: %+v", event)
	}

	// Second approval conflicts and publishes nothing further.
	_, err = svc.Approve(context.Background(), tenantID, draft.ID)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict on double approve, got %v", err)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected no additional events, got %d", len(bus.published))
	}
}

func TestRejectedDraftCannotBeApproved(t *testing.T) {
	tenantID := uuid.New()
	store := newFakeStore()
	svc, _ := testService(store, &fakeLeads{}, &fakeTickets{}, &fakeConvos{}, failingGen{})

	draft, _ := store.CreateWithMessage(context.Background(), CreateDraftParams{
		TenantID: tenantID, Kind: KindTicketReply, Content: "hello",
	})

	rejected, err := svc.Reject(context.Background(), tenantID, draft.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if rejected.ApprovedAt != nil {
		t.Fatal("expected approved_at to stay unset on reject")
	}

	if _, err := svc.Approve(context.Background(), tenantID, draft.ID); apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict approving rejected draft, got %v", err)
	}
}

func TestEditOnlyTouchesPendingDraftsAndRequiresContent(t *testing.T) {
	tenantID := uuid.New()
	store := newFakeStore()
	svc, _ := testService(store, &fakeLeads{}, &fakeTickets{}, &fakeConvos{}, failingGen{})

	draft, _ := store.CreateWithMessage(context.Background(), CreateDraftParams{
		TenantID: tenantID, Kind: KindLeadFollowup, Content: "original",
	})

	if _, err := svc.Edit(context.Background(), tenantID, draft.ID, "   "); apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for blank content, got %v", err)
	}

	edited, err := svc.Edit(context.Background(), tenantID, draft.ID, "revised")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Content != "revised" {
		t.Fatalf("expected revised content, got %q", edited.Content)
	}

	if _, err := svc.Approve(context.Background(), tenantID, draft.ID); err != nil {
		t.Fatalf("approve after edit: %v", err)
	}
	if _, err := svc.Edit(context.Background(), tenantID, draft.ID, "late change"); apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict editing approved draft, got %v", err)
	}
}
