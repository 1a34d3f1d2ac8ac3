package handlers

import (
	"github.com/gin-gonic/gin"

	"recaudo/internal/core/apperror"
	"recaudo/internal/domain/billing"
	"recaudo/internal/infrastructure/http/v1/dto"
)

// DebtHandler serves the debt lifecycle endpoints.
type DebtHandler struct {
	*BaseHandler
	debts *billing.DebtService
}

// NewDebtHandler creates a new debt handler.
func NewDebtHandler(debts *billing.DebtService) *DebtHandler {
	return &DebtHandler{
		BaseHandler: NewBaseHandler(),
		debts:       debts,
	}
}

// Create handles POST /api/v1/debts.
func (h *DebtHandler) Create(c *gin.Context) {
	var req dto.CreateDebtRequest
	if !h.BindJSON(c, &req) {
		return
	}

	clientID, ok := h.OptionalID(c, &req.ClientID, "clientId")
	if !ok {
		return
	}
	amount, ok := h.ParseMoney(c, req.Amount, "amount")
	if !ok {
		return
	}
	ownerID, ok := h.OwnerScopeBody(c, req.OwnerID, "ownerId")
	if !ok {
		return
	}
	creatorID, ok := h.UserID(c)
	if !ok {
		return
	}

	debt, err := h.debts.Create(c.Request.Context(), billing.CreateDebtInput{
		ClientID:  *clientID,
		Amount:    amount,
		Reason:    req.Reason,
		OwnerID:   ownerID,
		CreatorID: creatorID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, "debt registered", debt)
}

// Update handles PATCH /api/v1/debts/:id.
func (h *DebtHandler) Update(c *gin.Context) {
	debtID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateDebtRequest
	if !h.BindJSON(c, &req) {
		return
	}

	editorID, ok := h.UserID(c)
	if !ok {
		return
	}

	input := billing.UpdateDebtInput{EditorID: editorID}
	if req.Amount != nil {
		amount, ok := h.ParseMoney(c, *req.Amount, "amount")
		if !ok {
			return
		}
		input.Amount = &amount
	}
	input.Reason = req.Reason
	if req.State != nil {
		state := billing.RecordState(*req.State)
		if state != billing.StateActive && state != billing.StateCancelled {
			h.Error(c, apperror.NewValidation("unknown state").WithDetail("field", "state"))
			return
		}
		input.State = &state
	}

	debt, err := h.debts.Update(c.Request.Context(), debtID, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OKData(c, "debt updated", debt)
}

// ListByClient handles GET /api/v1/debts/client/:id.
func (h *DebtHandler) ListByClient(c *gin.Context) {
	clientID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	ownerID, ok := h.OwnerScope(c)
	if !ok {
		return
	}

	debts, err := h.debts.ListByClient(c.Request.Context(), clientID, ownerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, debts)
}

// ListOutstanding handles GET /api/v1/debts/client/:id/outstanding.
func (h *DebtHandler) ListOutstanding(c *gin.Context) {
	clientID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	ownerID, ok := h.OwnerScope(c)
	if !ok {
		return
	}

	debts, err := h.debts.ListOutstanding(c.Request.Context(), clientID, ownerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, debts)
}
