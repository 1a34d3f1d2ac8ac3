// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recaudo/internal/core/apperror"
	appctx "recaudo/internal/core/context"
	"recaudo/internal/core/id"
	"recaudo/internal/core/types"
	"recaudo/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler (single source of truth).
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParamID parses a path parameter as an ID.
func (h *BaseHandler) ParamID(c *gin.Context, name string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(name))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").WithDetail("field", name))
		return id.Nil(), false
	}
	return parsed, true
}

// ParseMoney parses a decimal amount string.
func (h *BaseHandler) ParseMoney(c *gin.Context, value, field string) (types.Money, bool) {
	if value == "" {
		return types.Zero(), true
	}
	m, err := types.NewMoneyFromString(value)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid amount").WithDetail("field", field))
		return types.Zero(), false
	}
	return m, true
}

// OptionalID parses an optional string as an ID pointer.
func (h *BaseHandler) OptionalID(c *gin.Context, value *string, field string) (*id.ID, bool) {
	if value == nil || *value == "" {
		return nil, true
	}
	parsed, err := id.Parse(*value)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").WithDetail("field", field))
		return nil, false
	}
	return &parsed, true
}

// OwnerScope returns the ownerId query filter. For provider users the
// scope is forced to their own id so they can never read another
// owner's clients.
func (h *BaseHandler) OwnerScope(c *gin.Context) (*id.ID, bool) {
	user := appctx.GetUser(c.Request.Context())
	if user != nil && user.Role == "provider" {
		ownerID, err := id.Parse(user.UserID)
		if err != nil {
			h.Error(c, apperror.NewUnauthorized("invalid user id in token"))
			return nil, false
		}
		return &ownerID, true
	}

	raw := c.Query("ownerId")
	if raw == "" {
		return nil, true
	}
	ownerID, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").WithDetail("field", "ownerId"))
		return nil, false
	}
	return &ownerID, true
}

// OwnerScopeBody resolves the ownerId of a write request. Provider
// users are pinned to their own id regardless of what the body says;
// for other roles the body field is honored as with OptionalID.
func (h *BaseHandler) OwnerScopeBody(c *gin.Context, value *string, field string) (*id.ID, bool) {
	user := appctx.GetUser(c.Request.Context())
	if user != nil && user.Role == "provider" {
		ownerID, err := id.Parse(user.UserID)
		if err != nil {
			h.Error(c, apperror.NewUnauthorized("invalid user id in token"))
			return nil, false
		}
		return &ownerID, true
	}
	return h.OptionalID(c, value, field)
}

// UserID extracts the authenticated user's id from request context.
func (h *BaseHandler) UserID(c *gin.Context) (id.ID, bool) {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return id.Nil(), false
	}
	userID, err := id.Parse(user.UserID)
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("invalid user id in token"))
		return id.Nil(), false
	}
	return userID, true
}

// Created sends 201 response with the payload.
func (h *BaseHandler) Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, dto.NewDataResponse(message, data))
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// OKData sends 200 response wrapped in the status envelope.
func (h *BaseHandler) OKData(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, dto.NewDataResponse(message, data))
}

// Success sends success response.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: message})
}
