// Package drafts provides the automation draft review queue. Background jobs
// generate pending drafts; admins approve, reject or edit them. Approval is
// the only transition with side effects.
package drafts

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"clientops_backend/internal/crm"
	"clientops_backend/internal/events"
	apphttp "clientops_backend/internal/http"
	leadsrepo "clientops_backend/internal/leads/repository"
	"clientops_backend/internal/tickets"
	"clientops_backend/platform/ai/textgen"
	"clientops_backend/platform/logger"
	"clientops_backend/platform/validator"
)

// Enqueuer schedules background draft generation jobs. Implemented by the
// scheduler client.
type Enqueuer interface {
	EnqueueLeadFollowupDraft(ctx context.Context, tenantID, leadID uuid.UUID) error
	EnqueueTicketReplyDraft(ctx context.Context, tenantID, ticketID uuid.UUID) error
}

// Module is the drafts bounded context module implementing http.Module.
type Module struct {
	handler  *Handler
	svc      *Service
	repo     *Repository
	enqueuer Enqueuer
}

// NewModule creates and initializes the drafts module.
func NewModule(
	pool *pgxpool.Pool,
	crmRepo *crm.Repository,
	leadRepo *leadsrepo.Repository,
	ticketRepo *tickets.Repository,
	enqueuer Enqueuer,
	gen textgen.Generator,
	bus events.Bus,
	log *logger.Logger,
) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, leadRepo, ticketRepo, crmRepo, gen, bus, log)

	return &Module{
		handler:  NewHandler(svc, validator.New()),
		svc:      svc,
		repo:     repo,
		enqueuer: enqueuer,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "drafts"
}

// Service returns the drafts service for use by the worker.
func (m *Module) Service() *Service {
	return m.svc
}

// RegisterRoutes mounts draft routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	admin := ctx.Admin

	admin.GET("/drafts", m.handler.List)
	admin.GET("/drafts/:id", m.handler.Get)
	admin.PATCH("/drafts/:id", m.handler.Edit)
	admin.POST("/drafts/:id/approve", m.handler.Approve)
	admin.POST("/drafts/:id/reject", m.handler.Reject)
	admin.GET("/leads/:id/drafts", m.handler.ListForLead)
}

// RegisterHandlers subscribes the module to lead and ticket creation events
// so triage outcomes get a draft job scheduled.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.TicketCreated{}.EventName(), m)
}

// Handle processes domain events for the drafts module.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		return m.enqueuer.EnqueueLeadFollowupDraft(ctx, e.TenantID, e.LeadID)
	case events.TicketCreated:
		return m.enqueuer.EnqueueTicketReplyDraft(ctx, e.TenantID, e.TicketID)
	default:
		return nil
	}
}

var _ apphttp.Module = (*Module)(nil)
var _ events.Handler = (*Module)(nil)
