// Package leads provides the lead pipeline bounded context: lead records,
// their append-only audit trail, and the configurable score rule engine.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"clientops_backend/internal/events"
	apphttp "clientops_backend/internal/http"
	"clientops_backend/internal/leads/handler"
	"clientops_backend/internal/leads/repository"
	"clientops_backend/internal/leads/scoring"
	"clientops_backend/internal/leads/service"
	"clientops_backend/platform/logger"
	"clientops_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
	svc     *service.Service
	scoring *scoring.Service
}

// NewModule creates and initializes the leads module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	recomp := scoring.NewService(repo, bus, log)
	h := handler.NewHandler(svc, recomp, validator.New())

	return &Module{
		handler: h,
		repo:    repo,
		svc:     svc,
		scoring: recomp,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Repository returns the repository for use by sibling modules.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	admin := ctx.Admin

	admin.GET("/leads", m.handler.List)
	admin.GET("/leads/:id", m.handler.Get)
	admin.PATCH("/leads/:id", m.handler.Update)
	admin.POST("/leads/:id/notes", m.handler.AddNote)
	admin.GET("/leads/:id/timeline", m.handler.Timeline)

	admin.POST("/score-rules", m.handler.CreateRule)
	admin.GET("/score-rules", m.handler.ListRules)
	admin.PATCH("/score-rules/:id", m.handler.UpdateRule)
	admin.DELETE("/score-rules/:id", m.handler.DeleteRule)
	admin.POST("/score-rules/recompute", m.handler.Recompute)
}

var _ apphttp.Module = (*Module)(nil)
