package tickets

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clientops_backend/platform/httpkit"
)

// Handler handles admin HTTP requests for tickets.
type Handler struct {
	repo *Repository
}

// NewHandler creates a new tickets handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

type ticketResponse struct {
	ID        string  `json:"id"`
	ContactID string  `json:"contactId"`
	Priority  string  `json:"priority"`
	Status    string  `json:"status"`
	Category  string  `json:"category"`
	Tag       *string `json:"tag"`
	Sentiment *string `json:"sentiment"`
	Urgency   *string `json:"urgency"`
	Summary   *string `json:"summary"`
	CreatedAt string  `json:"createdAt"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

var allowedTicketStatuses = map[string]bool{
	StatusOpen:       true,
	StatusInProgress: true,
	StatusClosed:     true,
}

// List returns recent tickets for the tenant.
// GET /api/v1/admin/tickets
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	tickets, err := h.repo.List(c.Request.Context(), identity.TenantID(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]ticketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketResponse(t))
	}
	httpkit.OK(c, out)
}

// Get returns a single ticket.
// GET /api/v1/admin/tickets/:id
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}

	ticket, err := h.repo.GetByID(c.Request.Context(), identity.TenantID(), ticketID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toTicketResponse(ticket))
}

// UpdateStatus transitions a ticket between open, in_progress and closed.
// PATCH /api/v1/admin/tickets/:id
func (h *Handler) UpdateStatus(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if !allowedTicketStatuses[req.Status] {
		httpkit.Error(c, http.StatusBadRequest, "status must be one of: open, in_progress, closed", nil)
		return
	}

	ticket, err := h.repo.UpdateStatus(c.Request.Context(), identity.TenantID(), ticketID, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toTicketResponse(ticket))
}

// Macros returns canned replies suited to the ticket's tag.
// GET /api/v1/admin/tickets/:id/macros
func (h *Handler) Macros(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}

	ticket, err := h.repo.GetByID(c.Request.Context(), identity.TenantID(), ticketID)
	if httpkit.HandleError(c, err) {
		return
	}

	tag := "general"
	if ticket.Tag != nil {
		tag = *ticket.Tag
	}
	httpkit.OK(c, gin.H{"tag": tag, "macros": SuggestedMacros(tag)})
}

func toTicketResponse(t Ticket) ticketResponse {
	return ticketResponse{
		ID:        t.ID.String(),
		ContactID: t.ContactID.String(),
		Priority:  t.Priority,
		Status:    t.Status,
		Category:  t.Category,
		Tag:       t.Tag,
		Sentiment: t.Sentiment,
		Urgency:   t.Urgency,
		Summary:   t.Summary,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}
