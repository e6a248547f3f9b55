// Package chat provides the chat ingestion pipeline: each inbound turn is
// persisted, triaged by keyword, optionally becomes a lead or ticket, and
// gets an assistant reply.
package chat

import (
	"clientops_backend/internal/crm"
	"clientops_backend/internal/events"
	apphttp "clientops_backend/internal/http"
	leadsrepo "clientops_backend/internal/leads/repository"
	"clientops_backend/internal/tickets"
	"clientops_backend/platform/ai/textgen"
	"clientops_backend/platform/logger"
	"clientops_backend/platform/validator"
)

// Module is the chat module implementing http.Module.
type Module struct {
	handler *Handler
	svc     *Service
}

// NewModule creates and initializes the chat module. It depends on the CRM,
// leads and tickets repositories of its sibling modules.
func NewModule(
	crmRepo *crm.Repository,
	leadRepo *leadsrepo.Repository,
	ticketRepo *tickets.Repository,
	gen textgen.Generator,
	bus events.Bus,
	log *logger.Logger,
) *Module {
	svc := NewService(crmRepo, leadRepo, ticketRepo, gen, bus, log)

	return &Module{
		handler: NewHandler(svc, validator.New()),
		svc:     svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "chat"
}

// RegisterRoutes mounts chat routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/chat", m.handler.Chat)
}

var _ apphttp.Module = (*Module)(nil)
