// Package billing provides the debt-payment allocation and balance
// reconciliation core: debts, payments, the allocation ledger, the
// allocator and the balance reconciler.
package billing

import (
	"context"
	"time"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/entity"
	"recaudo/internal/core/id"
	"recaudo/internal/core/types"
)

// RecordState is the lifecycle state of debts and payments.
// Transitions are one-directional: Active -> Cancelled, never back.
type RecordState string

const (
	StateActive    RecordState = "Activo"
	StateCancelled RecordState = "Anulado"
)

// Debt is an amount owed by a client, reduced only via allocations
// from payments.
type Debt struct {
	ID       id.ID       `db:"id" json:"id"`
	ClientID id.ID       `db:"client_id" json:"clientId"`
	Amount   types.Money `db:"amount" json:"amount"`
	Reason   string      `db:"reason" json:"reason"`
	State    RecordState `db:"state" json:"state"`

	entity.Audit
}

// NewDebt creates an Active debt with the amount rounded to 2 decimals.
func NewDebt(clientID, creatorID id.ID, reason string, amount types.Money, now time.Time) *Debt {
	return &Debt{
		ID:       id.New(),
		ClientID: clientID,
		Amount:   types.Round2(amount),
		Reason:   reason,
		State:    StateActive,
		Audit:    entity.NewAudit(creatorID, now),
	}
}

// Validate checks debt invariants.
func (d *Debt) Validate(ctx context.Context) error {
	if id.IsNil(d.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}
	if id.IsNil(d.CreatorID) {
		return apperror.NewValidation("creator is required").
			WithDetail("field", "creatorId")
	}
	if d.Reason == "" {
		return apperror.NewValidation("reason is required").
			WithDetail("field", "reason")
	}
	if !d.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}
	return nil
}

// IsActive reports whether the debt still counts toward balances.
func (d *Debt) IsActive() bool {
	return d.State == StateActive
}

// Payment is an amount received from a client, distributed across
// debts via allocation ledger entries.
type Payment struct {
	ID       id.ID       `db:"id" json:"id"`
	ClientID id.ID       `db:"client_id" json:"clientId"`
	Amount   types.Money `db:"amount" json:"amount"`
	// AmountBs is the secondary-currency amount as received. It is a
	// recorded figure, not a converted value.
	AmountBs  types.Money `db:"amount_bs" json:"amountBs"`
	USD       bool        `db:"usd" json:"usd"`
	Cash      bool        `db:"cash" json:"cash"`
	Reference string      `db:"reference" json:"reference"`
	Comment   string      `db:"comment" json:"comment,omitempty"`
	State     RecordState `db:"state" json:"state"`

	entity.Audit
}

// Validate checks payment invariants.
func (p *Payment) Validate(ctx context.Context) error {
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("payment amount is required").
			WithDetail("field", "amount")
	}
	if id.IsNil(p.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}
	if id.IsNil(p.CreatorID) {
		return apperror.NewValidation("creator is required").
			WithDetail("field", "creatorId")
	}
	return nil
}

// IsActive reports whether the payment still counts toward balances.
func (p *Payment) IsActive() bool {
	return p.State == StateActive
}

// Cancel flips the payment to Cancelled and records the editor.
// Returns an error when the payment is already cancelled.
func (p *Payment) Cancel(editorID id.ID, now time.Time) error {
	if p.State == StateCancelled {
		return apperror.NewAlreadyCancelled("payment", p.ID.String())
	}
	p.State = StateCancelled
	p.Touch(editorID, now)
	return nil
}

// Allocation links one payment to one debt with the amount applied.
// Allocations are immutable once written; cancelling a payment leaves
// its allocations in place and they are excluded from outstanding
// computations by the payment-state filter.
type Allocation struct {
	ID        id.ID       `db:"id" json:"id"`
	PaymentID id.ID       `db:"payment_id" json:"paymentId"`
	DebtID    id.ID       `db:"debt_id" json:"debtId"`
	Amount    types.Money `db:"amount" json:"amount"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
}

// NewAllocation creates a ledger entry for amount applied from a
// payment to a debt.
func NewAllocation(paymentID, debtID id.ID, amount types.Money, now time.Time) Allocation {
	return Allocation{
		ID:        id.New(),
		PaymentID: paymentID,
		DebtID:    debtID,
		Amount:    types.Round2(amount),
		CreatedAt: now.UTC(),
	}
}

// OutstandingDebt is an active debt annotated with the amount still
// uncovered by active-payment allocations.
type OutstandingDebt struct {
	Debt
	Outstanding types.Money `json:"outstanding"`
}
