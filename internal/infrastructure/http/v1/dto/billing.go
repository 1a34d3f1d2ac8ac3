package dto

// CreateDebtRequest for registering a debt.
type CreateDebtRequest struct {
	ClientID string  `json:"clientId" binding:"required,uuid"`
	Amount   string  `json:"amount" binding:"required"`
	Reason   string  `json:"reason" binding:"required"`
	OwnerID  *string `json:"ownerId,omitempty"`
}

// UpdateDebtRequest patches a debt. Nil fields are left unchanged.
type UpdateDebtRequest struct {
	Amount *string `json:"amount,omitempty"`
	Reason *string `json:"reason,omitempty"`
	State  *string `json:"state,omitempty"`
}

// CreatePaymentRequest for registering a payment.
type CreatePaymentRequest struct {
	ClientID  string  `json:"clientId" binding:"required,uuid"`
	Amount    string  `json:"amount" binding:"required"`
	AmountBs  string  `json:"amountBs,omitempty"`
	USD       bool    `json:"usd"`
	Cash      bool    `json:"cash"`
	Reference string  `json:"reference"`
	Comment   string  `json:"comment,omitempty"`
	DebtID    *string `json:"debtId,omitempty"`
	OwnerID   *string `json:"ownerId,omitempty"`
}
