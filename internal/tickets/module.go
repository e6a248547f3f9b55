// Package tickets provides the support ticket bounded context, including the
// keyword classifier that tags incoming tickets.
package tickets

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "clientops_backend/internal/http"
)

// Module is the tickets bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
}

// NewModule creates and initializes the tickets module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := NewRepository(pool)

	return &Module{
		handler: NewHandler(repo),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tickets"
}

// Repository returns the repository for use by sibling modules.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts ticket routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/tickets", m.handler.List)
	ctx.Admin.GET("/tickets/:id", m.handler.Get)
	ctx.Admin.PATCH("/tickets/:id", m.handler.UpdateStatus)
	ctx.Admin.GET("/tickets/:id/macros", m.handler.Macros)
}

var _ apphttp.Module = (*Module)(nil)
