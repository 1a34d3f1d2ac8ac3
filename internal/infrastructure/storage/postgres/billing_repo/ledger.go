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

const allocationsTable = "allocations"

var allocationColumns = []string{
	"id", "payment_id", "debt_id", "amount", "created_at",
}

// LedgerRepo implements billing.LedgerRepository over the append-only
// allocations table. No update or delete statements exist here.
type LedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Record appends one ledger entry.
func (r *LedgerRepo) Record(ctx context.Context, allocation billing.Allocation) error {
	q := r.builder.Insert(allocationsTable).
		Columns(allocationColumns...).
		Values(
			allocation.ID, allocation.PaymentID, allocation.DebtID,
			allocation.Amount, allocation.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert allocation: %w", err))
	}
	return nil
}

// SumByDebt totals allocations against a debt from Active payments.
func (r *LedgerRepo) SumByDebt(ctx context.Context, debtID id.ID) (types.Money, error) {
	sql := `
		SELECT COALESCE(SUM(a.amount), 0)
		FROM allocations a
		JOIN payments p ON p.id = a.payment_id
		WHERE a.debt_id = $1 AND p.state = $2
	`

	var sum types.Money
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, debtID, billing.StateActive).Scan(&sum); err != nil {
		return types.Zero(), apperror.NewDatabase(fmt.Errorf("sum allocations by debt: %w", err))
	}
	return sum, nil
}

// SumByDebts is the batch form of SumByDebt.
func (r *LedgerRepo) SumByDebts(ctx context.Context, debtIDs []id.ID) (map[id.ID]types.Money, error) {
	result := make(map[id.ID]types.Money, len(debtIDs))
	if len(debtIDs) == 0 {
		return result, nil
	}

	sql := `
		SELECT a.debt_id, COALESCE(SUM(a.amount), 0) AS total
		FROM allocations a
		JOIN payments p ON p.id = a.payment_id
		WHERE a.debt_id = ANY($1) AND p.state = $2
		GROUP BY a.debt_id
	`

	querier := r.txManager.GetQuerier(ctx)
	rows, err := querier.Query(ctx, sql, debtIDs, billing.StateActive)
	if err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("sum allocations by debts: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var debtID id.ID
		var total types.Money
		if err := rows.Scan(&debtID, &total); err != nil {
			return nil, apperror.NewDatabase(fmt.Errorf("scan allocation sum: %w", err))
		}
		result[debtID] = total
	}
	return result, rows.Err()
}

// SumByPayment totals all ledger entries of a payment.
func (r *LedgerRepo) SumByPayment(ctx context.Context, paymentID id.ID) (types.Money, error) {
	sql := `
		SELECT COALESCE(SUM(amount), 0)
		FROM allocations
		WHERE payment_id = $1
	`

	var sum types.Money
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, paymentID).Scan(&sum); err != nil {
		return types.Zero(), apperror.NewDatabase(fmt.Errorf("sum allocations by payment: %w", err))
	}
	return sum, nil
}

// ListByPayment returns a payment's entries, oldest first.
func (r *LedgerRepo) ListByPayment(ctx context.Context, paymentID id.ID) ([]billing.Allocation, error) {
	q := r.builder.Select(allocationColumns...).
		From(allocationsTable).
		Where(squirrel.Eq{"payment_id": paymentID}).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var allocations []billing.Allocation
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &allocations, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list allocations: %w", err))
	}
	return allocations, nil
}
