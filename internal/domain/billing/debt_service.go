package billing

import (
	"context"
	"time"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/id"
	"recaudo/internal/core/tx"
	"recaudo/internal/core/types"
	"recaudo/pkg/logger"
)

// ClientValidator checks that a client exists and, when ownerID is
// set, that it belongs to that owner. Implemented by the clients
// service; billing depends only on this narrow contract.
type ClientValidator interface {
	ValidateAccess(ctx context.Context, clientID id.ID, ownerID *id.ID) error
}

// CreateDebtInput carries the fields accepted on debt creation.
type CreateDebtInput struct {
	ClientID  id.ID
	Amount    types.Money
	Reason    string
	OwnerID   *id.ID
	CreatorID id.ID
}

// UpdateDebtInput carries the patchable fields of a debt. Nil fields
// are left unchanged.
type UpdateDebtInput struct {
	Amount   *types.Money
	Reason   *string
	State    *RecordState
	EditorID id.ID
}

// DebtService manages the debt lifecycle: creation with credit
// absorption, updates, and outstanding listings. Every mutation runs
// under the client's lock inside a single transaction and ends with a
// balance recompute.
type DebtService struct {
	debts      DebtRepository
	ledger     LedgerRepository
	allocator  *Allocator
	reconciler *Reconciler
	clients    ClientValidator
	txManager  tx.Manager
	locks      *ClientLocks
	audit      AuditLogger

	now func() time.Time
}

// NewDebtService wires the debt lifecycle manager.
func NewDebtService(
	debts DebtRepository,
	ledger LedgerRepository,
	allocator *Allocator,
	reconciler *Reconciler,
	clients ClientValidator,
	txManager tx.Manager,
	locks *ClientLocks,
	audit AuditLogger,
) *DebtService {
	return &DebtService{
		debts:      debts,
		ledger:     ledger,
		allocator:  allocator,
		reconciler: reconciler,
		clients:    clients,
		txManager:  txManager,
		locks:      locks,
		audit:      audit,
		now:        time.Now,
	}
}

// Create persists a new Active debt, absorbs any unapplied credit from
// the client's Active payments into it, and recomputes the balance.
func (s *DebtService) Create(ctx context.Context, input CreateDebtInput) (*Debt, error) {
	if err := s.clients.ValidateAccess(ctx, input.ClientID, input.OwnerID); err != nil {
		return nil, err
	}

	debt := NewDebt(input.ClientID, input.CreatorID, input.Reason, input.Amount, s.now())
	if err := debt.Validate(ctx); err != nil {
		return nil, err
	}

	s.locks.Lock(debt.ClientID)
	defer s.locks.Unlock(debt.ClientID)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.debts.Create(ctx, debt); err != nil {
			return err
		}
		if err := s.allocator.AbsorbCredit(ctx, debt); err != nil {
			return err
		}
		_, err := s.reconciler.Recompute(ctx, debt.ClientID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "debt", debt.ID, "create", map[string]any{
		"client_id": debt.ClientID.String(),
		"amount":    debt.Amount.String(),
		"reason":    debt.Reason,
	})

	logger.Info(ctx, "debt created",
		"debt_id", debt.ID,
		"client_id", debt.ClientID,
		"amount", debt.Amount.String())

	return debt, nil
}

// Update patches a debt and recomputes the client balance, since an
// amount or state change shifts what the client owes.
func (s *DebtService) Update(ctx context.Context, debtID id.ID, input UpdateDebtInput) (*Debt, error) {
	if id.IsNil(debtID) {
		return nil, apperror.NewValidation("debt id is required").
			WithDetail("field", "id")
	}

	debt, err := s.debts.GetByID(ctx, debtID)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	if input.Amount != nil {
		debt.Amount = types.Round2(*input.Amount)
		changes["amount"] = debt.Amount.String()
	}
	if input.Reason != nil {
		debt.Reason = *input.Reason
		changes["reason"] = debt.Reason
	}
	if input.State != nil {
		debt.State = *input.State
		changes["state"] = string(debt.State)
	}
	if len(changes) == 0 {
		return debt, nil
	}
	if err := debt.Validate(ctx); err != nil {
		return nil, err
	}
	debt.Touch(input.EditorID, s.now())

	s.locks.Lock(debt.ClientID)
	defer s.locks.Unlock(debt.ClientID)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.debts.Update(ctx, debt); err != nil {
			return err
		}
		_, err := s.reconciler.Recompute(ctx, debt.ClientID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "debt", debt.ID, "update", changes)

	return debt, nil
}

// ListByClient returns all the client's debts oldest first, each
// annotated with its outstanding amount. Cancelled debts are included
// with outstanding zero.
func (s *DebtService) ListByClient(ctx context.Context, clientID id.ID, ownerID *id.ID) ([]OutstandingDebt, error) {
	if err := s.clients.ValidateAccess(ctx, clientID, ownerID); err != nil {
		return nil, err
	}
	return s.annotate(ctx, clientID, false)
}

// ListOutstanding returns the client's Active debts that still have
// outstanding > 0, oldest first.
func (s *DebtService) ListOutstanding(ctx context.Context, clientID id.ID, ownerID *id.ID) ([]OutstandingDebt, error) {
	if err := s.clients.ValidateAccess(ctx, clientID, ownerID); err != nil {
		return nil, err
	}
	return s.annotate(ctx, clientID, true)
}

func (s *DebtService) annotate(ctx context.Context, clientID id.ID, onlyOutstanding bool) ([]OutstandingDebt, error) {
	var debts []Debt
	var err error
	if onlyOutstanding {
		debts, err = s.debts.ListActiveByClient(ctx, clientID)
	} else {
		debts, err = s.debts.ListByClient(ctx, clientID)
	}
	if err != nil {
		return nil, err
	}

	ids := make([]id.ID, len(debts))
	for i := range debts {
		ids[i] = debts[i].ID
	}
	allocated, err := s.ledger.SumByDebts(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]OutstandingDebt, 0, len(debts))
	for i := range debts {
		outstanding := types.Zero()
		if debts[i].IsActive() {
			outstanding = types.Round2(debts[i].Amount.Sub(allocated[debts[i].ID]))
		}
		if onlyOutstanding && !outstanding.IsPositive() {
			continue
		}
		result = append(result, OutstandingDebt{
			Debt:        debts[i],
			Outstanding: outstanding,
		})
	}
	return result, nil
}

func (s *DebtService) logAudit(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogChange(ctx, entityType, entityID, action, changes); err != nil {
		logger.Warn(ctx, "audit log write failed",
			"entity_type", entityType,
			"entity_id", entityID,
			"error", err)
	}
}
