package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"clientops_backend/internal/crm"
	"clientops_backend/internal/events"
	leadsrepo "clientops_backend/internal/leads/repository"
	"clientops_backend/internal/tickets"
	"clientops_backend/platform/ai/textgen"
	"clientops_backend/platform/logger"
)

const defaultSystemPrompt = "You are a helpful assistant for a ClientOps company. " +
	"Answer questions about CRM setup, integrations, automation, and support workflows. " +
	"Keep replies concise and ask at most one clarifying question."

const helperSystemPrompt = "You are a business-focused chatbot for a ClientOps company. " +
	"You may also answer basic general questions that help users understand CRM, automation, integrations, " +
	"and support workflows at a high level. Avoid unrelated topics. " +
	"Keep replies concise (3-6 sentences) and ask exactly one clarifying question."

const helperGreeting = "Hi there! We help teams with CRM setup, integrations, automation, and support workflows. " +
	"What are you trying to improve right now?"

var greetingKeywords = []string{"hi", "hello", "hey", "good morning", "good evening"}

// Request is one inbound chat turn.
type Request struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" validate:"required,min=1,max=10000"`
	Email     string `json:"email" validate:"omitempty,email"`
	Source    string `json:"source" validate:"omitempty,max=50"`
	Name      string `json:"name" validate:"omitempty,max=100"`
	Company   string `json:"company" validate:"omitempty,max=100"`
}

// TriageResult is the classification attached to a chat response.
type TriageResult struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Response is the assistant's answer plus the triage outcome.
type Response struct {
	SessionID string       `json:"session_id"`
	Answer    string       `json:"answer"`
	Citations []string     `json:"citations"`
	Triage    TriageResult `json:"triage"`
	ContactID *uuid.UUID   `json:"contact_id"`
}

// Service runs the chat ingestion pipeline: conversation upkeep, contact
// linking, triage, CRM object creation and the assistant reply.
type Service struct {
	crm     *crm.Repository
	leads   *leadsrepo.Repository
	tickets *tickets.Repository
	gen     textgen.Generator
	bus     events.Bus
	log     *logger.Logger
}

// NewService creates a chat service.
func NewService(
	crmRepo *crm.Repository,
	leadRepo *leadsrepo.Repository,
	ticketRepo *tickets.Repository,
	gen textgen.Generator,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		crm:     crmRepo,
		leads:   leadRepo,
		tickets: ticketRepo,
		gen:     gen,
		bus:     bus,
		log:     log,
	}
}

// Handle processes one chat turn end to end. Leads and tickets are only
// created when the turn carries an email, since CRM objects need a contact.
func (s *Service) Handle(ctx context.Context, tenantID uuid.UUID, req Request) (Response, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "demo-session"
	}

	convo, err := s.crm.GetOrCreateConversation(ctx, tenantID, sessionID, "web")
	if err != nil {
		return Response{}, err
	}

	var contactID *uuid.UUID
	if req.Email != "" {
		contact, err := s.crm.UpsertContact(ctx, tenantID, req.Email, optional(req.Name), optional(req.Company))
		if err != nil {
			return Response{}, err
		}
		if err := s.crm.LinkContact(ctx, tenantID, convo.ID, contact.ID); err != nil {
			return Response{}, err
		}
		contactID = &contact.ID
	}

	if _, err := s.crm.AppendMessage(ctx, tenantID, convo.ID, crm.RoleUser, req.Message); err != nil {
		return Response{}, err
	}

	intent, confidence := Triage(req.Message, req.Source)

	if contactID != nil {
		switch intent {
		case IntentLead:
			if err := s.createLead(ctx, tenantID, *contactID, req.Message); err != nil {
				return Response{}, err
			}
		case IntentTicket:
			if err := s.createTicket(ctx, tenantID, *contactID, req.Message); err != nil {
				return Response{}, err
			}
		}
	}

	answer := s.answer(ctx, req)

	if _, err := s.crm.AppendMessage(ctx, tenantID, convo.ID, crm.RoleAssistant, answer); err != nil {
		return Response{}, err
	}

	return Response{
		SessionID: sessionID,
		Answer:    answer,
		Citations: []string{},
		Triage:    TriageResult{Intent: intent, Confidence: confidence},
		ContactID: contactID,
	}, nil
}

func (s *Service) createLead(ctx context.Context, tenantID, contactID uuid.UUID, message string) error {
	lead, err := s.leads.Create(ctx, leadsrepo.CreateLeadParams{
		TenantID:  tenantID,
		ContactID: contactID,
		Status:    "new",
		Score:     50,
		Summary:   &message,
	})
	if err != nil {
		return err
	}

	// Draft scheduling happens in the drafts module, subscribed to this event.
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		TenantID:  tenantID,
		ContactID: contactID,
		Summary:   message,
	})
	return nil
}

func (s *Service) createTicket(ctx context.Context, tenantID, contactID uuid.UUID, message string) error {
	classification := tickets.Classify(message)
	ticket, err := s.tickets.Create(ctx, tickets.CreateTicketParams{
		TenantID:  tenantID,
		ContactID: contactID,
		Priority:  tickets.PriorityMedium,
		Status:    tickets.StatusOpen,
		Category:  "general",
		Tag:       &classification.Tag,
		Sentiment: &classification.Sentiment,
		Urgency:   &classification.Urgency,
		Summary:   &message,
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, events.TicketCreated{
		BaseEvent: events.NewBaseEvent(),
		TicketID:  ticket.ID,
		TenantID:  tenantID,
		ContactID: contactID,
		Tag:       classification.Tag,
		Urgency:   classification.Urgency,
	})
	return nil
}

func (s *Service) answer(ctx context.Context, req Request) string {
	if req.Source == SourceHelper {
		if containsAny(strings.ToLower(req.Message), greetingKeywords) {
			return helperGreeting
		}
		return s.generate(ctx, helperSystemPrompt, req.Message)
	}
	return s.generate(ctx, defaultSystemPrompt, req.Message)
}

func (s *Service) generate(ctx context.Context, system, message string) string {
	answer, err := s.gen.Generate(ctx, system, message)
	if err != nil || answer == "" {
		if err != nil {
			s.log.Warn("text generation failed, using fallback reply", "error", err)
		}
		return BuildReply(message)
	}
	return answer
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
