package billing

import (
	"context"
	"time"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/entity"
	"recaudo/internal/core/id"
	"recaudo/internal/core/tx"
	"recaudo/internal/core/types"
	"recaudo/pkg/logger"
)

// CreatePaymentInput carries the fields accepted on payment creation.
type CreatePaymentInput struct {
	ClientID  id.ID
	Amount    types.Money
	AmountBs  types.Money
	USD       bool
	Cash      bool
	Reference string
	Comment   string
	// DebtID optionally targets a specific debt to be paid first.
	DebtID    *id.ID
	OwnerID   *id.ID
	CreatorID id.ID
}

// PaymentService manages the payment lifecycle. Creation validates
// everything before the first write, then persists, allocates and
// reconciles inside one transaction under the client's lock.
type PaymentService struct {
	payments   PaymentRepository
	allocator  *Allocator
	reconciler *Reconciler
	clients    ClientValidator
	txManager  tx.Manager
	locks      *ClientLocks
	audit      AuditLogger

	now func() time.Time
}

// NewPaymentService wires the payment lifecycle manager.
func NewPaymentService(
	payments PaymentRepository,
	allocator *Allocator,
	reconciler *Reconciler,
	clients ClientValidator,
	txManager tx.Manager,
	locks *ClientLocks,
	audit AuditLogger,
) *PaymentService {
	return &PaymentService{
		payments:   payments,
		allocator:  allocator,
		reconciler: reconciler,
		clients:    clients,
		txManager:  txManager,
		locks:      locks,
		audit:      audit,
		now:        time.Now,
	}
}

// Create records an Active payment, distributes it across the client's
// outstanding debts and recomputes the balance. Any leftover above the
// outstanding total remains as credit reflected in the balance.
func (s *PaymentService) Create(ctx context.Context, input CreatePaymentInput) (*Payment, error) {
	payment := &Payment{
		ID:        id.New(),
		ClientID:  input.ClientID,
		Amount:    types.Round2(input.Amount),
		AmountBs:  types.Round2(input.AmountBs),
		USD:       input.USD,
		Cash:      input.Cash,
		Reference: input.Reference,
		Comment:   input.Comment,
		State:     StateActive,
		Audit:     entity.NewAudit(input.CreatorID, s.now()),
	}
	if err := payment.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.clients.ValidateAccess(ctx, input.ClientID, input.OwnerID); err != nil {
		return nil, err
	}

	s.locks.Lock(payment.ClientID)
	defer s.locks.Unlock(payment.ClientID)

	var leftover types.Money
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.payments.Create(ctx, payment); err != nil {
			return err
		}
		var err error
		leftover, err = s.allocator.Allocate(ctx, payment.ID, payment.Amount, payment.ClientID, input.DebtID)
		if err != nil {
			return err
		}
		_, err = s.reconciler.Recompute(ctx, payment.ClientID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "payment", payment.ID, "create", map[string]any{
		"client_id": payment.ClientID.String(),
		"amount":    payment.Amount.String(),
		"reference": payment.Reference,
	})

	logger.Info(ctx, "payment created",
		"payment_id", payment.ID,
		"client_id", payment.ClientID,
		"amount", payment.Amount.String(),
		"leftover", leftover.String())

	return payment, nil
}

// Cancel voids a payment. The ledger entries stay in place; they stop
// counting toward outstanding because the queries filter on the
// payment state. The balance is recomputed, so what the payment
// covered becomes owed again.
func (s *PaymentService) Cancel(ctx context.Context, paymentID id.ID, editorID id.ID) (*Payment, error) {
	if id.IsNil(paymentID) {
		return nil, apperror.NewValidation("payment id is required").
			WithDetail("field", "id")
	}

	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(payment.ClientID)
	defer s.locks.Unlock(payment.ClientID)

	if err := payment.Cancel(editorID, s.now()); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.payments.Update(ctx, payment); err != nil {
			return err
		}
		_, err := s.reconciler.Recompute(ctx, payment.ClientID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "payment", payment.ID, "cancel", map[string]any{
		"client_id": payment.ClientID.String(),
		"amount":    payment.Amount.String(),
	})

	logger.Info(ctx, "payment cancelled",
		"payment_id", payment.ID,
		"client_id", payment.ClientID)

	return payment, nil
}

func (s *PaymentService) logAudit(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) {
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
