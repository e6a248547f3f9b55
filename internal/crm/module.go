// Package crm provides the contacts, conversations and messages bounded
// context. Conversations own their messages; ordering within a transcript is
// by insertion sequence only.
package crm

import (
	apphttp "clientops_backend/internal/http"
	"clientops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the CRM bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
}

// NewModule creates and initializes the CRM module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := NewRepository(pool)
	handler := NewHandler(repo, validator.New())

	return &Module{
		handler: handler,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "crm"
}

// Repository returns the repository for use by sibling modules.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts CRM routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/conversations/:session_id/messages", m.handler.GetTranscript)
	ctx.Protected.POST("/contacts/upsert", m.handler.UpsertContact)
	ctx.Admin.GET("/contacts", m.handler.ListContacts)
}

var _ apphttp.Module = (*Module)(nil)
