package crm

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"clientops_backend/platform/apperr"
	"clientops_backend/platform/httpkit"
	"clientops_backend/platform/validator"
)

// Handler handles HTTP requests for contacts and conversation transcripts.
type Handler struct {
	repo     *Repository
	validate *validator.Validator
}

// NewHandler creates a new CRM handler.
func NewHandler(repo *Repository, validate *validator.Validator) *Handler {
	return &Handler{repo: repo, validate: validate}
}

type contactResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	Company   *string `json:"company"`
	CreatedAt string  `json:"createdAt"`
}

type upsertContactRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name" validate:"omitempty,max=100"`
	Company string `json:"company" validate:"omitempty,max=100"`
}

type messageResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// ListContacts returns recent contacts for the tenant.
// GET /api/v1/admin/contacts
func (h *Handler) ListContacts(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	contacts, err := h.repo.ListContacts(c.Request.Context(), identity.TenantID(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]contactResponse, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, contactResponse{
			ID:        contact.ID.String(),
			Email:     contact.Email,
			Name:      contact.Name,
			Company:   contact.Company,
			CreatedAt: contact.CreatedAt.Format(time.RFC3339),
		})
	}
	httpkit.OK(c, out)
}

// UpsertContact creates or refreshes a contact keyed on email.
// POST /api/v1/contacts/upsert
func (h *Handler) UpsertContact(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req upsertContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", gin.H{"error": err.Error()})
		return
	}

	contact, err := h.repo.UpsertContact(c.Request.Context(), identity.TenantID(), req.Email, optionalString(req.Name), optionalString(req.Company))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, contactResponse{
		ID:        contact.ID.String(),
		Email:     contact.Email,
		Name:      contact.Name,
		Company:   contact.Company,
		CreatedAt: contact.CreatedAt.Format(time.RFC3339),
	})
}

// GetTranscript returns the ordered message transcript for a session.
// GET /api/v1/conversations/:session_id/messages
func (h *Handler) GetTranscript(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		httpkit.Error(c, http.StatusBadRequest, "session_id is required", nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	conv, err := h.repo.GetConversationBySession(c.Request.Context(), identity.TenantID(), sessionID)
	if apperr.Is(err, apperr.KindNotFound) {
		// An unknown session is an empty transcript, not an error.
		httpkit.OK(c, gin.H{
			"sessionId": sessionID,
			"messages":  []messageResponse{},
		})
		return
	}
	if httpkit.HandleError(c, err) {
		return
	}

	messages, err := h.repo.ListMessages(c.Request.Context(), identity.TenantID(), conv.ID)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, messageResponse{
			ID:        m.ID.String(),
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}
	httpkit.OK(c, gin.H{
		"sessionId": conv.SessionID,
		"messages":  out,
	})
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
