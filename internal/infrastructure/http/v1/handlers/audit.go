package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/id"
	"recaudo/internal/infrastructure/storage/postgres"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// AuditHistorySource reads back an entity's audit trail.
// Implemented by postgres.AuditService.
type AuditHistorySource interface {
	GetEntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error)
}

// AuditHandler serves the audit trail endpoints.
type AuditHandler struct {
	*BaseHandler
	source AuditHistorySource
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(source AuditHistorySource) *AuditHandler {
	return &AuditHandler{
		BaseHandler: NewBaseHandler(),
		source:      source,
	}
}

// History handles GET /api/v1/audit/:type/:id.
func (h *AuditHandler) History(c *gin.Context) {
	entityType := c.Param("type")
	if entityType == "" {
		h.Error(c, apperror.NewValidation("entity type is required").WithDetail("field", "type"))
		return
	}
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxHistoryLimit {
			h.Error(c, apperror.NewValidation("invalid limit").WithDetail("field", "limit"))
			return
		}
		limit = parsed
	}

	entries, err := h.source.GetEntityHistory(c.Request.Context(), entityType, entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entries)
}
