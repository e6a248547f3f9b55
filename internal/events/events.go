// Package events provides domain event definitions for decoupled
// communication between modules. Infrastructure (Bus, Handler) is in
// platform/events.
package events

import (
	"clientops_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// CRM Domain Events
// =============================================================================

// LeadCreated is published when chat triage creates a new lead.
type LeadCreated struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	TenantID  uuid.UUID `json:"tenantId"`
	ContactID uuid.UUID `json:"contactId"`
	Summary   string    `json:"summary"`
}

func (e LeadCreated) EventName() string { return "crm.lead.created" }

// TicketCreated is published when chat triage creates a new ticket.
type TicketCreated struct {
	BaseEvent
	TicketID  uuid.UUID `json:"ticketId"`
	TenantID  uuid.UUID `json:"tenantId"`
	ContactID uuid.UUID `json:"contactId"`
	Tag       string    `json:"tag"`
	Urgency   string    `json:"urgency"`
}

func (e TicketCreated) EventName() string { return "crm.ticket.created" }

// DraftApproved is published after a draft transitions to approved and all
// side effects have committed.
type DraftApproved struct {
	BaseEvent
	DraftID  uuid.UUID  `json:"draftId"`
	TenantID uuid.UUID  `json:"tenantId"`
	Kind     string     `json:"kind"`
	LeadID   *uuid.UUID `json:"leadId,omitempty"`
	TicketID *uuid.UUID `json:"ticketId,omitempty"`
}

func (e DraftApproved) EventName() string { return "drafts.draft.approved" }

// LeadScoreRecomputed is published after a recompute run finishes.
type LeadScoreRecomputed struct {
	BaseEvent
	TenantID        uuid.UUID `json:"tenantId"`
	UpdatedCount    int       `json:"updatedCount"`
	RulesConsidered int       `json:"rulesConsidered"`
}

func (e LeadScoreRecomputed) EventName() string { return "leads.score.recomputed" }
