package reports

import (
	"context"
	"time"
)

// Repository runs the dashboard aggregation queries.
type Repository interface {
	// LatestPayments returns the most recent n payments with client
	// names and derived reasons.
	LatestPayments(ctx context.Context, n int) ([]LatestPayment, error)

	// MonthlyCollection aggregates the month containing ref: collected
	// is the sum of Active payments created that month, receivable the
	// outstanding of Active debts created that month.
	MonthlyCollection(ctx context.Context, ref time.Time) (*MonthlyCollection, error)

	// ClientsStatus counts clients by solvency and state.
	ClientsStatus(ctx context.Context) (*ClientsStatus, error)

	// DailyCollections returns per-day cash/transfer totals from
	// `from` (inclusive) onward, oldest first.
	DailyCollections(ctx context.Context, from time.Time) ([]DailyCollection, error)
}
