package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
)

// stubTx satisfies pgx.Tx through the embedded interface; only
// identity matters here.
type stubTx struct{ pgx.Tx }

func TestGetTxOutsideTransactionReturnsNil(t *testing.T) {
	m := &TxManager{}
	if m.GetTx(context.Background()) != nil {
		t.Fatal("expected nil outside a transaction")
	}
}

func TestGetQuerierPrefersContextTransaction(t *testing.T) {
	m := &TxManager{}
	txn := stubTx{}
	ctx := context.WithValue(context.Background(), txKey{}, pgx.Tx(txn))

	if got := m.GetTx(ctx); got != pgx.Tx(txn) {
		t.Fatalf("GetTx returned %v, want the context transaction", got)
	}
	if got := m.GetQuerier(ctx); got != Querier(txn) {
		t.Fatalf("GetQuerier returned %v, want the context transaction", got)
	}
}
