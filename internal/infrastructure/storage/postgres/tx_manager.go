package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"recaudo/internal/core/tx"
	"recaudo/pkg/logger"
)

var tracer = otel.Tracer("recaudo/tx")

var _ tx.Manager = (*TxManager)(nil)

// statementTimeout bounds every statement issued inside a transaction
// so a stuck query cannot hold a client lock indefinitely.
const statementTimeout = 30 * time.Second

// TxManager carries a pgx transaction through the context so that a
// whole allocate-record-reconcile sequence commits or rolls back as
// one unit. Repositories reach the active transaction via GetQuerier.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a new transaction manager.
func NewTxManager(pool *Pool) *TxManager {
	return &TxManager{pool: pool.Pool}
}

// txKey is the context key for the active transaction.
type txKey struct{}

// RunInTransaction executes fn inside a ReadCommitted transaction.
// A call made while a transaction is already in the context joins it;
// the outermost call owns commit and rollback.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "transaction")
	defer span.End()

	if m.GetTx(ctx) != nil {
		return fn(ctx)
	}

	txn, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := txn.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", statementTimeout.Milliseconds())); err != nil {
		_ = txn.Rollback(ctx)
		return fmt.Errorf("set statement_timeout: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, txn)); err != nil {
		// Rollback on a background context so it completes even when
		// the request context is already cancelled.
		if rbErr := txn.Rollback(context.Background()); rbErr != nil {
			logger.Error(ctx, "rollback failed", "error", rbErr, "original_error", err)
		}
		return err
	}

	if err := txn.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetTx returns the transaction carried by ctx, or nil outside one.
func (m *TxManager) GetTx(ctx context.Context) pgx.Tx {
	if txn, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return txn
	}
	return nil
}

// Querier is the statement surface shared by pgx.Tx and pgxpool.Pool.
// Repositories issue all their SQL through it, which lets the same
// repository code run inside and outside transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetQuerier returns the context transaction when present, otherwise
// the pool.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if txn := m.GetTx(ctx); txn != nil {
		return txn
	}
	return m.pool
}
