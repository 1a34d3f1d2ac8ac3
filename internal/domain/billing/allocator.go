package billing

import (
	"context"
	"fmt"
	"time"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/id"
	"recaudo/internal/core/types"
	"recaudo/pkg/logger"
)

// Allocator distributes money between payments and outstanding debts,
// writing one ledger entry per application.
//
// Allocate is NOT idempotent: invoking it twice for the same payment
// writes two independent allocation sets. Callers must guarantee a
// single invocation per payment-creation event (the payment service
// does, under the per-client lock).
type Allocator struct {
	debts    DebtRepository
	payments PaymentRepository
	ledger   LedgerRepository

	now func() time.Time
}

// NewAllocator creates an allocator over the given stores.
func NewAllocator(debts DebtRepository, payments PaymentRepository, ledger LedgerRepository) *Allocator {
	return &Allocator{
		debts:    debts,
		payments: payments,
		ledger:   ledger,
		now:      time.Now,
	}
}

// Outstanding returns debt.amount minus the allocated total from
// still-Active payments, rounded to 2 decimals. Cancelled debts have
// zero outstanding.
func (a *Allocator) Outstanding(ctx context.Context, debt *Debt) (types.Money, error) {
	if !debt.IsActive() {
		return types.Zero(), nil
	}
	allocated, err := a.ledger.SumByDebt(ctx, debt.ID)
	if err != nil {
		return types.Zero(), fmt.Errorf("sum allocations for debt %s: %w", debt.ID, err)
	}
	return types.Round2(debt.Amount.Sub(allocated)), nil
}

// Allocate distributes amount of the given payment across the client's
// outstanding debts and returns the unapplied leftover.
//
// Order: the preferred debt first (when supplied and usable), then the
// remaining Active debts oldest first. An invalid, inactive or already
// satisfied preferred debt is not an error; selection silently falls
// back to oldest-outstanding. No outstanding debts at all is not an
// error either: the full amount becomes leftover credit.
func (a *Allocator) Allocate(ctx context.Context, paymentID id.ID, amount types.Money, clientID id.ID, preferredDebtID *id.ID) (types.Money, error) {
	remaining := types.Round2(amount)
	considered := make(map[id.ID]bool)

	if preferredDebtID != nil && !id.IsNil(*preferredDebtID) {
		debt, err := a.debts.GetByID(ctx, *preferredDebtID)
		switch {
		case apperror.IsNotFound(err):
			logger.Debug(ctx, "preferred debt not found, falling back to oldest outstanding",
				"debt_id", preferredDebtID.String())
		case err != nil:
			return remaining, fmt.Errorf("get preferred debt: %w", err)
		case debt.ClientID != clientID:
			logger.Warn(ctx, "preferred debt belongs to another client, ignored",
				"debt_id", debt.ID, "client_id", clientID)
		default:
			considered[debt.ID] = true
			remaining, err = a.applyToDebt(ctx, paymentID, debt, remaining)
			if err != nil {
				return remaining, err
			}
		}
	}

	if remaining.IsPositive() {
		debts, err := a.debts.ListActiveByClient(ctx, clientID)
		if err != nil {
			return remaining, fmt.Errorf("list active debts: %w", err)
		}
		for i := range debts {
			if !remaining.IsPositive() {
				break
			}
			if considered[debts[i].ID] {
				continue
			}
			considered[debts[i].ID] = true
			remaining, err = a.applyToDebt(ctx, paymentID, &debts[i], remaining)
			if err != nil {
				return remaining, err
			}
		}
	}

	return remaining, nil
}

// applyToDebt writes a ledger entry of min(available, outstanding)
// against the debt and returns the reduced available amount. A debt
// with no outstanding, or an inactive debt, is skipped untouched.
func (a *Allocator) applyToDebt(ctx context.Context, paymentID id.ID, debt *Debt, available types.Money) (types.Money, error) {
	outstanding, err := a.Outstanding(ctx, debt)
	if err != nil {
		return available, err
	}
	if !outstanding.IsPositive() {
		return available, nil
	}

	applied := types.Min2(available, outstanding)
	if !applied.IsPositive() {
		return available, nil
	}

	if err := a.ledger.Record(ctx, NewAllocation(paymentID, debt.ID, applied, a.now())); err != nil {
		return available, fmt.Errorf("record allocation: %w", err)
	}

	logger.Debug(ctx, "allocation recorded",
		"payment_id", paymentID,
		"debt_id", debt.ID,
		"amount", applied.String())

	return types.Round2(available.Sub(applied)), nil
}

// AbsorbCredit applies unapplied credit from the client's Active
// payments (oldest first) to a freshly created debt, until the debt is
// covered or no credit remains. Used by the debt service on creation.
func (a *Allocator) AbsorbCredit(ctx context.Context, debt *Debt) error {
	payments, err := a.payments.ListActiveByClient(ctx, debt.ClientID)
	if err != nil {
		return fmt.Errorf("list active payments: %w", err)
	}

	for i := range payments {
		outstanding, err := a.Outstanding(ctx, debt)
		if err != nil {
			return err
		}
		if !outstanding.IsPositive() {
			return nil
		}

		allocated, err := a.ledger.SumByPayment(ctx, payments[i].ID)
		if err != nil {
			return fmt.Errorf("sum allocations for payment %s: %w", payments[i].ID, err)
		}
		available := types.Round2(payments[i].Amount.Sub(allocated))
		if !available.IsPositive() {
			continue
		}

		applied := types.Min2(available, outstanding)
		if err := a.ledger.Record(ctx, NewAllocation(payments[i].ID, debt.ID, applied, a.now())); err != nil {
			return fmt.Errorf("record allocation: %w", err)
		}

		logger.Debug(ctx, "credit absorbed into new debt",
			"payment_id", payments[i].ID,
			"debt_id", debt.ID,
			"amount", applied.String())
	}

	return nil
}
