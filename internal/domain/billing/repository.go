package billing

import (
	"context"

	"recaudo/internal/core/id"
	"recaudo/internal/core/types"
)

// DebtRepository persists debts.
type DebtRepository interface {
	Create(ctx context.Context, debt *Debt) error
	GetByID(ctx context.Context, debtID id.ID) (*Debt, error)
	Update(ctx context.Context, debt *Debt) error

	// ListByClient returns all the client's debts regardless of state,
	// ordered by creation time ascending (oldest first).
	ListByClient(ctx context.Context, clientID id.ID) ([]Debt, error)

	// ListActiveByClient returns the client's Active debts ordered by
	// creation time ascending (oldest first).
	ListActiveByClient(ctx context.Context, clientID id.ID) ([]Debt, error)

	// SumActiveByClient returns the total amount of Active debts.
	SumActiveByClient(ctx context.Context, clientID id.ID) (types.Money, error)
}

// PaymentRepository persists payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByID(ctx context.Context, paymentID id.ID) (*Payment, error)
	Update(ctx context.Context, payment *Payment) error

	// ListActiveByClient returns the client's Active payments ordered by
	// creation time ascending (oldest first).
	ListActiveByClient(ctx context.Context, clientID id.ID) ([]Payment, error)

	// SumActiveByClient returns the total amount of Active payments.
	SumActiveByClient(ctx context.Context, clientID id.ID) (types.Money, error)
}

// LedgerRepository is the append-only allocation ledger.
// Entries are never updated or deleted.
type LedgerRepository interface {
	// Record appends one ledger entry.
	Record(ctx context.Context, allocation Allocation) error

	// SumByDebt returns the allocated total against a debt, counting
	// only allocations whose payment is still Active.
	SumByDebt(ctx context.Context, debtID id.ID) (types.Money, error)

	// SumByDebts is the batch form of SumByDebt. Debts without
	// allocations are absent from the result map.
	SumByDebts(ctx context.Context, debtIDs []id.ID) (map[id.ID]types.Money, error)

	// SumByPayment returns the allocated total of a payment across all
	// its ledger entries, regardless of payment state.
	SumByPayment(ctx context.Context, paymentID id.ID) (types.Money, error)

	// ListByPayment returns a payment's ledger entries, oldest first.
	ListByPayment(ctx context.Context, paymentID id.ID) ([]Allocation, error)
}

// BalanceStore persists the cached client balance. Implemented by the
// clients repository; the reconciler is its only writer.
type BalanceStore interface {
	UpdateBalance(ctx context.Context, clientID id.ID, balance types.Money) error
}

// AuditLogger records billing mutations for the audit trail.
// Implementations must never fail the business operation; callers log
// and continue on error.
type AuditLogger interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}
