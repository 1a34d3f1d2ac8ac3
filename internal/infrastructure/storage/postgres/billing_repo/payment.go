package billing_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/id"
	"recaudo/internal/core/types"
	"recaudo/internal/domain/billing"
	"recaudo/internal/infrastructure/storage/postgres"
)

const paymentsTable = "payments"

var paymentColumns = []string{
	"id", "client_id", "amount", "amount_bs", "usd", "cash",
	"reference", "comment", "state",
	"created_at", "creator_id", "edited_at", "editor_id",
}

// PaymentRepo implements billing.PaymentRepository.
type PaymentRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPaymentRepo creates a new payment repository.
func NewPaymentRepo(txManager *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a payment.
func (r *PaymentRepo) Create(ctx context.Context, payment *billing.Payment) error {
	q := r.builder.Insert(paymentsTable).
		Columns(paymentColumns...).
		Values(
			payment.ID, payment.ClientID, payment.Amount, payment.AmountBs,
			payment.USD, payment.Cash, payment.Reference, payment.Comment,
			payment.State,
			payment.CreatedAt, payment.CreatorID, payment.EditedAt, payment.EditorID,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert payment: %w", err))
	}
	return nil
}

// GetByID returns one payment.
func (r *PaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*billing.Payment, error) {
	q := r.builder.Select(paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{"id": paymentID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payment billing.Payment
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &payment, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("payment", paymentID.String())
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get payment: %w", err))
	}
	return &payment, nil
}

// Update rewrites the mutable payment columns.
func (r *PaymentRepo) Update(ctx context.Context, payment *billing.Payment) error {
	q := r.builder.Update(paymentsTable).
		Set("state", payment.State).
		Set("comment", payment.Comment).
		Set("edited_at", payment.EditedAt).
		Set("editor_id", payment.EditorID).
		Where(squirrel.Eq{"id": payment.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("update payment: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("payment", payment.ID.String())
	}
	return nil
}

// ListActiveByClient returns Active payments oldest first.
func (r *PaymentRepo) ListActiveByClient(ctx context.Context, clientID id.ID) ([]billing.Payment, error) {
	q := r.builder.Select(paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{
			"client_id": clientID,
			"state":     billing.StateActive,
		}).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []billing.Payment
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &payments, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list payments: %w", err))
	}
	return payments, nil
}

// SumActiveByClient returns the total Active payment amount.
func (r *PaymentRepo) SumActiveByClient(ctx context.Context, clientID id.ID) (types.Money, error) {
	sql := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE client_id = $1 AND state = $2
	`

	var sum types.Money
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, clientID, billing.StateActive).Scan(&sum); err != nil {
		return types.Zero(), apperror.NewDatabase(fmt.Errorf("sum payments: %w", err))
	}
	return sum, nil
}
