package billing_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/id"
	"recaudo/internal/domain/billing"
	"recaudo/internal/infrastructure/storage/postgres"
)

// paymentViewSQL derives the payment reason at the database level: the
// distinct reasons of the debts its allocations touched, joined with a
// comma, falling back to the plain credit label when the ledger has
// nothing for the payment.
const paymentViewSQL = `
	SELECT p.id, p.client_id, p.amount, p.amount_bs, p.usd, p.cash,
	       p.reference, p.comment, p.state,
	       p.created_at, p.creator_id, p.edited_at, p.editor_id,
	       COALESCE(NULLIF(string_agg(DISTINCT d.reason, ', '), ''), $2) AS reason
	FROM payments p
	LEFT JOIN allocations a ON a.payment_id = p.id
	LEFT JOIN debts d ON d.id = a.debt_id
	WHERE p.client_id = $1
	GROUP BY p.id
	ORDER BY p.created_at DESC
`

// QueriesRepo implements billing.Queries.
type QueriesRepo struct {
	txManager *postgres.TxManager
}

// NewQueriesRepo creates the billing read-side repository.
func NewQueriesRepo(txManager *postgres.TxManager) *QueriesRepo {
	return &QueriesRepo{txManager: txManager}
}

// ListPaymentsByClient returns all payments with derived reasons,
// newest first.
func (r *QueriesRepo) ListPaymentsByClient(ctx context.Context, clientID id.ID) ([]billing.PaymentView, error) {
	var views []billing.PaymentView
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &views, paymentViewSQL, clientID, billing.FallbackReason); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list payment views: %w", err))
	}
	return views, nil
}

// LastPaymentsByClient returns the latest n payments with derived
// reasons.
func (r *QueriesRepo) LastPaymentsByClient(ctx context.Context, clientID id.ID, n int) ([]billing.PaymentView, error) {
	sql := paymentViewSQL + " LIMIT $3"

	var views []billing.PaymentView
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &views, sql, clientID, billing.FallbackReason, n); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("last payment views: %w", err))
	}
	return views, nil
}

// LastDebtsByClient returns the latest n debts regardless of state.
func (r *QueriesRepo) LastDebtsByClient(ctx context.Context, clientID id.ID, n int) ([]billing.Debt, error) {
	sql := `
		SELECT id, client_id, amount, reason, state,
		       created_at, creator_id, edited_at, editor_id
		FROM debts
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var debts []billing.Debt
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &debts, sql, clientID, n); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("last debts: %w", err))
	}
	return debts, nil
}
