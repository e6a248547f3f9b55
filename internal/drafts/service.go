package drafts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"clientops_backend/internal/crm"
	"clientops_backend/internal/events"
	leadsrepo "clientops_backend/internal/leads/repository"
	"clientops_backend/internal/tickets"
	"clientops_backend/platform/ai/textgen"
	"clientops_backend/platform/apperr"
	"clientops_backend/platform/logger"
)

const followupSystemPrompt = "You draft short, friendly follow-up emails for a ClientOps company. " +
	"Write a concise next-steps email based on the captured request summary. " +
	"Do not invent pricing or commitments."

// Store is the draft persistence surface. Implemented by the drafts
// repository and by test fakes.
type Store interface {
	HasRecentPendingDraft(ctx context.Context, tenantID uuid.UUID, kind string, leadID, ticketID *uuid.UUID) (bool, error)
	CreateWithMessage(ctx context.Context, params CreateDraftParams) (Draft, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (Draft, error)
	List(ctx context.Context, tenantID uuid.UUID, status string, limit int) ([]Draft, error)
	ListForLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]Draft, error)
	Approve(ctx context.Context, tenantID, id uuid.UUID) (Draft, error)
	Reject(ctx context.Context, tenantID, id uuid.UUID) (Draft, error)
	UpdateContent(ctx context.Context, tenantID, id uuid.UUID, content string) (Draft, error)
}

// LeadSource resolves the lead a followup draft is generated for.
type LeadSource interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (leadsrepo.Lead, error)
}

// TicketSource resolves the ticket a reply draft is generated for.
type TicketSource interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (tickets.Ticket, error)
}

// ConversationSource finds the conversation a draft should be announced in.
type ConversationSource interface {
	LatestConversationForContact(ctx context.Context, tenantID, contactID uuid.UUID) (*crm.Conversation, error)
}

// GenerateResult reports whether a draft was created or suppressed.
type GenerateResult struct {
	Draft   Draft
	Skipped bool
	Reason  string
}

// Service owns draft generation and the review lifecycle.
type Service struct {
	store   Store
	leads   LeadSource
	tickets TicketSource
	convos  ConversationSource
	gen     textgen.Generator
	bus     events.Bus
	log     *logger.Logger
}

// NewService creates a drafts service.
func NewService(store Store, leads LeadSource, tickets TicketSource, convos ConversationSource, gen textgen.Generator, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		leads:   leads,
		tickets: tickets,
		convos:  convos,
		gen:     gen,
		bus:     bus,
		log:     log,
	}
}

// GenerateLeadFollowup creates a pending followup draft for the lead unless a
// pending one of the same kind already exists inside the dedup window.
func (s *Service) GenerateLeadFollowup(ctx context.Context, tenantID, leadID uuid.UUID) (GenerateResult, error) {
	lead, err := s.leads.GetByID(ctx, tenantID, leadID)
	if err != nil {
		return GenerateResult{}, err
	}

	exists, err := s.store.HasRecentPendingDraft(ctx, tenantID, KindLeadFollowup, &leadID, nil)
	if err != nil {
		return GenerateResult{}, err
	}
	if exists {
		return GenerateResult{Skipped: true, Reason: "recent pending draft exists"}, nil
	}

	convo, err := s.convos.LatestConversationForContact(ctx, tenantID, lead.ContactID)
	if err != nil {
		return GenerateResult{}, err
	}

	content := s.leadFollowupContent(ctx, lead.Summary)

	params := CreateDraftParams{
		TenantID:  tenantID,
		Kind:      KindLeadFollowup,
		LeadID:    &leadID,
		ContactID: &lead.ContactID,
		Content:   content,
	}
	if convo != nil {
		params.ConversationID = &convo.ID
		params.SessionID = &convo.SessionID
	}

	draft, err := s.store.CreateWithMessage(ctx, params)
	if err != nil {
		return GenerateResult{}, err
	}

	s.log.Info("lead followup draft created", "draft_id", draft.ID.String(), "lead_id", leadID.String())
	return GenerateResult{Draft: draft}, nil
}

// GenerateTicketReply creates a pending reply draft for the ticket unless a
// pending one already exists inside the dedup window.
func (s *Service) GenerateTicketReply(ctx context.Context, tenantID, ticketID uuid.UUID) (GenerateResult, error) {
	ticket, err := s.tickets.GetByID(ctx, tenantID, ticketID)
	if err != nil {
		return GenerateResult{}, err
	}

	exists, err := s.store.HasRecentPendingDraft(ctx, tenantID, KindTicketReply, nil, &ticketID)
	if err != nil {
		return GenerateResult{}, err
	}
	if exists {
		return GenerateResult{Skipped: true, Reason: "recent pending draft exists"}, nil
	}

	convo, err := s.convos.LatestConversationForContact(ctx, tenantID, ticket.ContactID)
	if err != nil {
		return GenerateResult{}, err
	}

	params := CreateDraftParams{
		TenantID:  tenantID,
		Kind:      KindTicketReply,
		TicketID:  &ticketID,
		ContactID: &ticket.ContactID,
		Content:   ticketReplyContent(ticket.Summary),
	}
	if convo != nil {
		params.ConversationID = &convo.ID
		params.SessionID = &convo.SessionID
	}

	draft, err := s.store.CreateWithMessage(ctx, params)
	if err != nil {
		return GenerateResult{}, err
	}

	s.log.Info("ticket reply draft created", "draft_id", draft.ID.String(), "ticket_id", ticketID.String())
	return GenerateResult{Draft: draft}, nil
}

// Approve moves a pending draft to approved, applies the side effects and
// publishes the approval event.
func (s *Service) Approve(ctx context.Context, tenantID, id uuid.UUID) (Draft, error) {
	draft, err := s.store.Approve(ctx, tenantID, id)
	if err != nil {
		return Draft{}, err
	}

	s.bus.Publish(ctx, events.DraftApproved{
		BaseEvent: events.NewBaseEvent(),
		DraftID:   draft.ID,
		TenantID:  tenantID,
		Kind:      draft.Kind,
		LeadID:    draft.LeadID,
		TicketID:  draft.TicketID,
	})
	return draft, nil
}

// Reject moves a pending draft to rejected.
func (s *Service) Reject(ctx context.Context, tenantID, id uuid.UUID) (Draft, error) {
	return s.store.Reject(ctx, tenantID, id)
}

// Edit replaces the content of a pending draft.
func (s *Service) Edit(ctx context.Context, tenantID, id uuid.UUID, content string) (Draft, error) {
	if strings.TrimSpace(content) == "" {
		return Draft{}, apperr.Validation("content must not be empty")
	}
	return s.store.UpdateContent(ctx, tenantID, id, content)
}

// Get returns one draft.
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (Draft, error) {
	return s.store.GetByID(ctx, tenantID, id)
}

// List returns recent drafts, optionally filtered by status.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, status string, limit int) ([]Draft, error) {
	return s.store.List(ctx, tenantID, status, limit)
}

// ListForLead returns the drafts attached to a lead.
func (s *Service) ListForLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]Draft, error) {
	return s.store.ListForLead(ctx, tenantID, leadID)
}

func (s *Service) leadFollowupContent(ctx context.Context, summary *string) string {
	trimmed := ""
	if summary != nil {
		trimmed = strings.TrimSpace(*summary)
	}

	if trimmed != "" {
		generated, err := s.gen.Generate(ctx, followupSystemPrompt, trimmed)
		if err == nil && generated != "" {
			return generated
		}
		if err != nil {
			s.log.Warn("text generation failed, using fallback draft", "error", err)
		}
		return "Hi there,\n\n" +
			"Thanks for reaching out. I reviewed your request and put together next steps below.\n\n" +
			"Summary I captured: " + trimmed + "\n\n" +
			"If this looks right, I can send a proposed plan and timeline.\n" +
			"Best,\nClientOps AI"
	}

	return "Hi there,\n\n" +
		"Thanks for reaching out. Can you share a bit more about your goal and tools?\n\n" +
		"Best,\nClientOps AI"
}

func ticketReplyContent(summary *string) string {
	reported := ""
	if summary != nil {
		reported = *summary
	}
	return fmt.Sprintf(
		"Hi there,\n\nThanks for reporting: %q.\nCan you confirm (1) device/browser, (2) exact error message, and (3) steps to reproduce?\n\nBest,\nClientOps AI Support",
		reported,
	)
}
