// Package tx defines the transaction management contract that keeps
// domain services decoupled from the database driver.
package tx

import (
	"context"
)

// Manager runs a function inside a database transaction.
// The concrete implementation lives in infrastructure/storage/postgres.
type Manager interface {
	// RunInTransaction executes fn within a transaction: commit when fn
	// returns nil, rollback otherwise. Nested calls join the transaction
	// already carried by the context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
