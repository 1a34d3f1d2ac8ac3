package billing

import (
	"context"

	"recaudo/internal/core/id"
)

// FallbackReason is shown for payments with no ledger entries: money
// received with nothing to apply it to.
const FallbackReason = "Abono"

// PaymentView is a payment annotated with a derived reason: the
// comma-joined reasons of the debts its ledger entries touched, or
// FallbackReason when there are none. Cancelled payments keep their
// derived reason.
type PaymentView struct {
	Payment
	Reason string `json:"reason"`
}

// Queries is the read side of the billing storage: projections joined
// at the database level rather than assembled in memory.
type Queries interface {
	// ListPaymentsByClient returns all the client's payments, newest
	// first, with the derived reason.
	ListPaymentsByClient(ctx context.Context, clientID id.ID) ([]PaymentView, error)

	// LastPaymentsByClient returns the client's latest n payments with
	// the derived reason.
	LastPaymentsByClient(ctx context.Context, clientID id.ID, n int) ([]PaymentView, error)

	// LastDebtsByClient returns the client's latest n debts regardless
	// of state.
	LastDebtsByClient(ctx context.Context, clientID id.ID, n int) ([]Debt, error)
}

// QueryService serves billing read endpoints with access validation.
type QueryService struct {
	queries Queries
	clients ClientValidator
}

// NewQueryService wires the billing read side.
func NewQueryService(queries Queries, clients ClientValidator) *QueryService {
	return &QueryService{queries: queries, clients: clients}
}

// ListPayments returns the client's payment history with derived
// reasons, newest first.
func (s *QueryService) ListPayments(ctx context.Context, clientID id.ID, ownerID *id.ID) ([]PaymentView, error) {
	if err := s.clients.ValidateAccess(ctx, clientID, ownerID); err != nil {
		return nil, err
	}
	return s.queries.ListPaymentsByClient(ctx, clientID)
}
