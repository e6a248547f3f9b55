package drafts

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clientops_backend/platform/httpkit"
	"clientops_backend/platform/validator"
)

// Handler handles admin HTTP requests for the draft review queue.
type Handler struct {
	svc      *Service
	validate *validator.Validator
}

// NewHandler creates a new drafts handler.
func NewHandler(svc *Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: validate}
}

type draftResponse struct {
	ID             string  `json:"id"`
	Kind           string  `json:"kind"`
	Status         string  `json:"status"`
	LeadID         *string `json:"leadId"`
	TicketID       *string `json:"ticketId"`
	ContactID      *string `json:"contactId"`
	ConversationID *string `json:"conversationId"`
	SessionID      *string `json:"sessionId"`
	Content        string  `json:"content"`
	CreatedAt      string  `json:"createdAt"`
	ApprovedAt     *string `json:"approvedAt"`
}

type editDraftRequest struct {
	Content string `json:"content" validate:"required,min=1,max=20000"`
}

// List returns recent drafts, filtered by status. The default view is the
// pending review queue.
// GET /api/v1/admin/drafts?status=pending
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	status := c.DefaultQuery("status", StatusPending)
	if status != "" && status != StatusPending && status != StatusApproved && status != StatusRejected {
		httpkit.Error(c, http.StatusBadRequest, "status must be one of: pending, approved, rejected", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
	drafts, err := h.svc.List(c.Request.Context(), identity.TenantID(), status, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toDraftResponses(drafts))
}

// Get returns a single draft.
// GET /api/v1/admin/drafts/:id
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	draftID, ok := parseID(c)
	if !ok {
		return
	}

	draft, err := h.svc.Get(c.Request.Context(), identity.TenantID(), draftID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toDraftResponse(draft))
}

// ListForLead returns all drafts attached to a lead.
// GET /api/v1/admin/leads/:id/drafts
func (h *Handler) ListForLead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	leadID, ok := parseID(c)
	if !ok {
		return
	}

	drafts, err := h.svc.ListForLead(c.Request.Context(), identity.TenantID(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toDraftResponses(drafts))
}

// Approve approves a pending draft.
// POST /api/v1/admin/drafts/:id/approve
func (h *Handler) Approve(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	draftID, ok := parseID(c)
	if !ok {
		return
	}

	draft, err := h.svc.Approve(c.Request.Context(), identity.TenantID(), draftID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toDraftResponse(draft))
}

// Reject rejects a pending draft.
// POST /api/v1/admin/drafts/:id/reject
func (h *Handler) Reject(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	draftID, ok := parseID(c)
	if !ok {
		return
	}

	draft, err := h.svc.Reject(c.Request.Context(), identity.TenantID(), draftID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toDraftResponse(draft))
}

// Edit replaces the content of a pending draft.
// PATCH /api/v1/admin/drafts/:id
func (h *Handler) Edit(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	draftID, ok := parseID(c)
	if !ok {
		return
	}

	var req editDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", gin.H{"error": err.Error()})
		return
	}

	draft, err := h.svc.Edit(c.Request.Context(), identity.TenantID(), draftID, req.Content)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toDraftResponse(draft))
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func toDraftResponses(drafts []Draft) []draftResponse {
	out := make([]draftResponse, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, toDraftResponse(d))
	}
	return out
}

func toDraftResponse(d Draft) draftResponse {
	resp := draftResponse{
		ID:        d.ID.String(),
		Kind:      d.Kind,
		Status:    d.Status,
		SessionID: d.SessionID,
		Content:   d.Content,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
	if d.LeadID != nil {
		s := d.LeadID.String()
		resp.LeadID = &s
	}
	if d.TicketID != nil {
		s := d.TicketID.String()
		resp.TicketID = &s
	}
	if d.ContactID != nil {
		s := d.ContactID.String()
		resp.ContactID = &s
	}
	if d.ConversationID != nil {
		s := d.ConversationID.String()
		resp.ConversationID = &s
	}
	if d.ApprovedAt != nil {
		s := d.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}
	return resp
}
