package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clientops_backend/platform/httpkit"
	"clientops_backend/platform/validator"
)

// Handler handles the chat ingestion endpoint.
type Handler struct {
	svc      *Service
	validate *validator.Validator
}

// NewHandler creates a new chat handler.
func NewHandler(svc *Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: validate}
}

// Chat processes one chat turn.
// POST /api/v1/chat
func (h *Handler) Chat(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", gin.H{"error": err.Error()})
		return
	}

	resp, err := h.svc.Handle(c.Request.Context(), identity.TenantID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
