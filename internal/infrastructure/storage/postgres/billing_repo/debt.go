// Package billing_repo provides PostgreSQL implementations for the
// billing repositories.
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

const debtsTable = "debts"

var debtColumns = []string{
	"id", "client_id", "amount", "reason", "state",
	"created_at", "creator_id", "edited_at", "editor_id",
}

// DebtRepo implements billing.DebtRepository.
type DebtRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewDebtRepo creates a new debt repository.
func NewDebtRepo(txManager *postgres.TxManager) *DebtRepo {
	return &DebtRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a debt.
func (r *DebtRepo) Create(ctx context.Context, debt *billing.Debt) error {
	q := r.builder.Insert(debtsTable).
		Columns(debtColumns...).
		Values(
			debt.ID, debt.ClientID, debt.Amount, debt.Reason, debt.State,
			debt.CreatedAt, debt.CreatorID, debt.EditedAt, debt.EditorID,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert debt: %w", err))
	}
	return nil
}

// GetByID returns one debt.
func (r *DebtRepo) GetByID(ctx context.Context, debtID id.ID) (*billing.Debt, error) {
	q := r.builder.Select(debtColumns...).
		From(debtsTable).
		Where(squirrel.Eq{"id": debtID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var debt billing.Debt
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &debt, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("debt", debtID.String())
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get debt: %w", err))
	}
	return &debt, nil
}

// Update rewrites the mutable debt columns.
func (r *DebtRepo) Update(ctx context.Context, debt *billing.Debt) error {
	q := r.builder.Update(debtsTable).
		Set("amount", debt.Amount).
		Set("reason", debt.Reason).
		Set("state", debt.State).
		Set("edited_at", debt.EditedAt).
		Set("editor_id", debt.EditorID).
		Where(squirrel.Eq{"id": debt.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("update debt: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("debt", debt.ID.String())
	}
	return nil
}

// ListByClient returns all the client's debts oldest first, any state.
func (r *DebtRepo) ListByClient(ctx context.Context, clientID id.ID) ([]billing.Debt, error) {
	return r.list(ctx, squirrel.Eq{"client_id": clientID})
}

// ListActiveByClient returns Active debts oldest first.
func (r *DebtRepo) ListActiveByClient(ctx context.Context, clientID id.ID) ([]billing.Debt, error) {
	return r.list(ctx, squirrel.Eq{
		"client_id": clientID,
		"state":     billing.StateActive,
	})
}

func (r *DebtRepo) list(ctx context.Context, where squirrel.Eq) ([]billing.Debt, error) {
	q := r.builder.Select(debtColumns...).
		From(debtsTable).
		Where(where).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var debts []billing.Debt
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &debts, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list debts: %w", err))
	}
	return debts, nil
}

// SumActiveByClient returns the total Active debt amount.
func (r *DebtRepo) SumActiveByClient(ctx context.Context, clientID id.ID) (types.Money, error) {
	sql := `
		SELECT COALESCE(SUM(amount), 0)
		FROM debts
		WHERE client_id = $1 AND state = $2
	`

	var sum types.Money
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, clientID, billing.StateActive).Scan(&sum); err != nil {
		return types.Zero(), apperror.NewDatabase(fmt.Errorf("sum debts: %w", err))
	}
	return sum, nil
}
