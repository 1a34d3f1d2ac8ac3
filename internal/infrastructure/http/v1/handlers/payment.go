package handlers

import (
	"github.com/gin-gonic/gin"

	"recaudo/internal/domain/billing"
	"recaudo/internal/infrastructure/http/v1/dto"
)

// PaymentHandler serves the payment lifecycle endpoints.
type PaymentHandler struct {
	*BaseHandler
	payments *billing.PaymentService
	queries  *billing.QueryService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(payments *billing.PaymentService, queries *billing.QueryService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler: NewBaseHandler(),
		payments:    payments,
		queries:     queries,
	}
}

// Create handles POST /api/v1/payments.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
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
	amountBs, ok := h.ParseMoney(c, req.AmountBs, "amountBs")
	if !ok {
		return
	}
	debtID, ok := h.OptionalID(c, req.DebtID, "debtId")
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

	_, err := h.payments.Create(c.Request.Context(), billing.CreatePaymentInput{
		ClientID:  *clientID,
		Amount:    amount,
		AmountBs:  amountBs,
		USD:       req.USD,
		Cash:      req.Cash,
		Reference: req.Reference,
		Comment:   req.Comment,
		DebtID:    debtID,
		OwnerID:   ownerID,
		CreatorID: creatorID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "payment registered")
}

// Cancel handles PUT /api/v1/payments/:id/cancel.
func (h *PaymentHandler) Cancel(c *gin.Context) {
	paymentID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	editorID, ok := h.UserID(c)
	if !ok {
		return
	}

	if _, err := h.payments.Cancel(c.Request.Context(), paymentID, editorID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "payment cancelled")
}

// ListByClient handles GET /api/v1/payments/client/:id.
func (h *PaymentHandler) ListByClient(c *gin.Context) {
	clientID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	ownerID, ok := h.OwnerScope(c)
	if !ok {
		return
	}

	payments, err := h.queries.ListPayments(c.Request.Context(), clientID, ownerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, payments)
}
