package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clientops_backend/internal/leads/repository"
	"clientops_backend/internal/leads/scoring"
	"clientops_backend/internal/leads/service"
	"clientops_backend/internal/leads/transport"
	"clientops_backend/platform/httpkit"
	"clientops_backend/platform/validator"
)

// Handler handles admin HTTP requests for leads and score rules.
type Handler struct {
	svc      *service.Service
	recomp   *scoring.Service
	validate *validator.Validator
}

// NewHandler creates a new leads handler.
func NewHandler(svc *service.Service, recomp *scoring.Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, recomp: recomp, validate: validate}
}

// List returns recent leads.
// GET /api/v1/admin/leads
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	leads, err := h.svc.List(c.Request.Context(), identity.TenantID(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, toLeadResponse(lead))
	}
	httpkit.OK(c, out)
}

// Get returns a single lead.
// GET /api/v1/admin/leads/:id
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	leadID, ok := parseID(c)
	if !ok {
		return
	}

	lead, err := h.svc.GetByID(c.Request.Context(), identity.TenantID(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toLeadResponse(lead))
}

// Update applies status/score changes with audit events.
// PATCH /api/v1/admin/leads/:id
func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	leadID, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", gin.H{"error": err.Error()})
		return
	}

	lead, err := h.svc.UpdateLead(c.Request.Context(), identity.TenantID(), leadID, req, "admin")
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toLeadResponse(lead))
}

// AddNote appends a note to the lead timeline.
// POST /api/v1/admin/leads/:id/notes
func (h *Handler) AddNote(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	leadID, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", gin.H{"error": err.Error()})
		return
	}

	event, err := h.svc.AddNote(c.Request.Context(), identity.TenantID(), leadID, req.Note, req.Actor)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toEventResponse(event))
}

// Timeline returns the lead's audit trail.
// GET /api/v1/admin/leads/:id/timeline
func (h *Handler) Timeline(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	leadID, ok := parseID(c)
	if !ok {
		return
	}

	events, err := h.svc.Timeline(c.Request.Context(), identity.TenantID(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.LeadEventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, toEventResponse(event))
	}
	httpkit.OK(c, out)
}

// CreateRule inserts a new score rule.
// POST /api/v1/admin/score-rules
func (h *Handler) CreateRule(c *gin.Context) {
	var req transport.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", gin.H{"error": err.Error()})
		return
	}

	rule, err := h.svc.CreateRule(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toRuleResponse(rule))
}

// ListRules returns all score rules.
// GET /api/v1/admin/score-rules
func (h *Handler) ListRules(c *gin.Context) {
	rules, err := h.svc.ListRules(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.RuleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toRuleResponse(rule))
	}
	httpkit.OK(c, out)
}

// UpdateRule applies partial updates to a score rule.
// PATCH /api/v1/admin/score-rules/:id
func (h *Handler) UpdateRule(c *gin.Context) {
	ruleID, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", gin.H{"error": err.Error()})
		return
	}

	rule, err := h.svc.UpdateRule(c.Request.Context(), ruleID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toRuleResponse(rule))
}

// DeleteRule removes a score rule.
// DELETE /api/v1/admin/score-rules/:id
func (h *Handler) DeleteRule(c *gin.Context) {
	ruleID, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteRule(c.Request.Context(), ruleID); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// Recompute re-scores every lead in the tenant against the active rules.
// POST /api/v1/admin/score-rules/recompute
func (h *Handler) Recompute(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.recomp.Recompute(c.Request.Context(), identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.RecomputeResponse{
		UpdatedCount:    result.UpdatedCount,
		RulesConsidered: result.RulesConsidered,
	})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:        lead.ID.String(),
		ContactID: lead.ContactID.String(),
		Status:    lead.Status,
		Score:     lead.Score,
		Summary:   lead.Summary,
		CreatedAt: lead.CreatedAt.Format(time.RFC3339),
	}
}

func toRuleResponse(rule repository.ScoreRule) transport.RuleResponse {
	return transport.RuleResponse{
		ID:        rule.ID.String(),
		Name:      rule.Name,
		Field:     rule.Field,
		Operator:  rule.Operator,
		Value:     rule.Value,
		Points:    rule.Points,
		Active:    rule.Active,
		CreatedAt: rule.CreatedAt.Format(time.RFC3339),
	}
}

func toEventResponse(event repository.LeadEvent) transport.LeadEventResponse {
	return transport.LeadEventResponse{
		ID:        event.ID.String(),
		EventType: event.EventType,
		OldValue:  event.OldValue,
		NewValue:  event.NewValue,
		Note:      event.Note,
		Actor:     event.Actor,
		CreatedAt: event.CreatedAt.Format(time.RFC3339),
	}
}
