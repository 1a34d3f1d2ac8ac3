package billing

import (
	"context"
	"fmt"

	"recaudo/internal/core/id"
	"recaudo/internal/core/types"
	"recaudo/pkg/logger"
)

// Reconciler recomputes the cached client balance from scratch after
// every billing mutation. It never reads the allocation ledger: the
// balance is defined purely by the aggregate sums of Active payments
// and Active debts, so a recompute self-heals any drift in the cache.
type Reconciler struct {
	debts    DebtRepository
	payments PaymentRepository
	balances BalanceStore
}

// NewReconciler creates a reconciler over the given stores.
func NewReconciler(debts DebtRepository, payments PaymentRepository, balances BalanceStore) *Reconciler {
	return &Reconciler{
		debts:    debts,
		payments: payments,
		balances: balances,
	}
}

// Recompute calculates round2(Σ active payments − Σ active debts) and
// persists it on the client. Positive means credit, negative means the
// client owes money.
func (r *Reconciler) Recompute(ctx context.Context, clientID id.ID) (types.Money, error) {
	paid, err := r.payments.SumActiveByClient(ctx, clientID)
	if err != nil {
		return types.Zero(), fmt.Errorf("sum active payments: %w", err)
	}
	owed, err := r.debts.SumActiveByClient(ctx, clientID)
	if err != nil {
		return types.Zero(), fmt.Errorf("sum active debts: %w", err)
	}

	balance := types.Round2(paid.Sub(owed))
	if err := r.balances.UpdateBalance(ctx, clientID, balance); err != nil {
		return types.Zero(), fmt.Errorf("update balance: %w", err)
	}

	logger.Debug(ctx, "client balance reconciled",
		"client_id", clientID,
		"balance", balance.String())

	return balance, nil
}
