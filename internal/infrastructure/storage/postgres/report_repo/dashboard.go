// Package report_repo provides PostgreSQL implementations for the
// dashboard aggregations.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"recaudo/internal/core/apperror"
	"recaudo/internal/domain/billing"
	"recaudo/internal/domain/reports"
	"recaudo/internal/infrastructure/storage/postgres"
)

// DashboardRepo implements reports.Repository.
type DashboardRepo struct {
	txManager *postgres.TxManager
}

// NewDashboardRepo creates the dashboard repository.
func NewDashboardRepo(txManager *postgres.TxManager) *DashboardRepo {
	return &DashboardRepo{txManager: txManager}
}

// LatestPayments returns the most recent n payments with client names
// and derived reasons.
func (r *DashboardRepo) LatestPayments(ctx context.Context, n int) ([]reports.LatestPayment, error) {
	sql := `
		SELECT p.id, p.client_id, c.name AS client_name,
		       p.amount, p.cash, p.state, p.created_at,
		       COALESCE(NULLIF(string_agg(DISTINCT d.reason, ', '), ''), $1) AS reason
		FROM payments p
		JOIN clients c ON c.id = p.client_id
		LEFT JOIN allocations a ON a.payment_id = p.id
		LEFT JOIN debts d ON d.id = a.debt_id
		GROUP BY p.id, c.name
		ORDER BY p.created_at DESC
		LIMIT $2
	`

	var out []reports.LatestPayment
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, billing.FallbackReason, n); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("latest payments: %w", err))
	}
	return out, nil
}

// MonthlyCollection aggregates the month containing ref. Receivable is
// the outstanding of this month's Active debts: their amounts minus
// what Active payments already cover.
func (r *DashboardRepo) MonthlyCollection(ctx context.Context, ref time.Time) (*reports.MonthlyCollection, error) {
	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	sql := `
		SELECT
			COALESCE((
				SELECT SUM(amount) FROM payments
				WHERE state = $1 AND created_at >= $2 AND created_at < $3
			), 0) AS collected,
			COALESCE((
				SELECT SUM(d.amount - COALESCE((
					SELECT SUM(a.amount)
					FROM allocations a
					JOIN payments p ON p.id = a.payment_id
					WHERE a.debt_id = d.id AND p.state = $1
				), 0))
				FROM debts d
				WHERE d.state = $1 AND d.created_at >= $2 AND d.created_at < $3
			), 0) AS receivable
	`

	var mc reports.MonthlyCollection
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &mc, sql, billing.StateActive, monthStart, monthEnd)
	if err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("monthly collection: %w", err))
	}
	return &mc, nil
}

// ClientsStatus counts clients by solvency and state.
func (r *DashboardRepo) ClientsStatus(ctx context.Context) (*reports.ClientsStatus, error) {
	sql := `
		SELECT
			COUNT(*) FILTER (WHERE state <> 'Retirado')                 AS total,
			COUNT(*) FILTER (WHERE state = 'Activo' AND balance >= 0)   AS solvent,
			COUNT(*) FILTER (WHERE state = 'Activo' AND balance < 0)    AS delinquent,
			COUNT(*) FILTER (WHERE state = 'Suspendido')                AS suspended
		FROM clients
	`

	var cs reports.ClientsStatus
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &cs, sql); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("clients status: %w", err))
	}
	return &cs, nil
}

// DailyCollections returns per-day cash/transfer totals of Active
// payments from `from` onward.
func (r *DashboardRepo) DailyCollections(ctx context.Context, from time.Time) ([]reports.DailyCollection, error) {
	sql := `
		SELECT date_trunc('day', created_at)               AS day,
		       COALESCE(SUM(amount) FILTER (WHERE cash), 0)     AS cash,
		       COALESCE(SUM(amount) FILTER (WHERE NOT cash), 0) AS transfer
		FROM payments
		WHERE state = $1 AND created_at >= $2
		GROUP BY 1
		ORDER BY 1 ASC
	`

	var out []reports.DailyCollection
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, billing.StateActive, from); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("daily collections: %w", err))
	}
	return out, nil
}
