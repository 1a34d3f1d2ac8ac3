package postgres

import (
	"context"
	"fmt"

	"recaudo/pkg/logger"
)

// schema holds the idempotent DDL applied at startup, in dependency
// order.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_login_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS plans (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		amount NUMERIC(15,2) NOT NULL,
		mbps INT NOT NULL,
		state TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		creator_id UUID NOT NULL,
		edited_at TIMESTAMPTZ,
		editor_id UUID
	)`,

	`CREATE TABLE IF NOT EXISTS sectors (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		state TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		creator_id UUID NOT NULL,
		edited_at TIMESTAMPTZ,
		editor_id UUID
	)`,

	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		dni TEXT NOT NULL,
		rif TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		gps TEXT NOT NULL DEFAULT '',
		ip TEXT NOT NULL DEFAULT '',
		sn TEXT NOT NULL DEFAULT '',
		mac TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT '',
		n_payment NUMERIC(15,2) NOT NULL DEFAULT 0,
		state TEXT NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		owner_id UUID REFERENCES users(id),
		installer_id UUID REFERENCES users(id),
		plan_id UUID REFERENCES plans(id),
		sector_id UUID REFERENCES sectors(id),
		suspended_at TIMESTAMPTZ,
		suspended_reason TEXT NOT NULL DEFAULT '',
		balance NUMERIC(15,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		creator_id UUID NOT NULL,
		edited_at TIMESTAMPTZ,
		editor_id UUID
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_state ON clients (state)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_owner ON clients (owner_id)`,

	`CREATE TABLE IF NOT EXISTS debts (
		id UUID PRIMARY KEY,
		client_id UUID NOT NULL REFERENCES clients(id),
		amount NUMERIC(15,2) NOT NULL CHECK (amount > 0),
		reason TEXT NOT NULL,
		state TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		creator_id UUID NOT NULL,
		edited_at TIMESTAMPTZ,
		editor_id UUID
	)`,
	`CREATE INDEX IF NOT EXISTS idx_debts_client_state ON debts (client_id, state, created_at)`,

	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		client_id UUID NOT NULL REFERENCES clients(id),
		amount NUMERIC(15,2) NOT NULL CHECK (amount > 0),
		amount_bs NUMERIC(15,2) NOT NULL DEFAULT 0,
		usd BOOLEAN NOT NULL DEFAULT FALSE,
		cash BOOLEAN NOT NULL DEFAULT FALSE,
		reference TEXT NOT NULL DEFAULT '',
		comment TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		creator_id UUID NOT NULL,
		edited_at TIMESTAMPTZ,
		editor_id UUID
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_client_state ON payments (client_id, state, created_at)`,

	`CREATE TABLE IF NOT EXISTS allocations (
		id UUID PRIMARY KEY,
		payment_id UUID NOT NULL REFERENCES payments(id),
		debt_id UUID NOT NULL REFERENCES debts(id),
		amount NUMERIC(15,2) NOT NULL CHECK (amount > 0),
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_allocations_payment ON allocations (payment_id)`,
	`CREATE INDEX IF NOT EXISTS idx_allocations_debt ON allocations (debt_id)`,

	`CREATE TABLE IF NOT EXISTS sys_audit (
		id UUID PRIMARY KEY,
		entity_type TEXT NOT NULL,
		entity_id UUID NOT NULL,
		action TEXT NOT NULL,
		user_id TEXT NOT NULL DEFAULT '',
		user_email TEXT NOT NULL DEFAULT '',
		changes JSONB,
		changes_compressed BYTEA,
		compression_algo TEXT NOT NULL DEFAULT 'none',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sys_audit_entity ON sys_audit (entity_type, entity_id, created_at)`,
}

// Migrate applies the schema. Every statement is idempotent, so it is
// safe to run on every startup.
func Migrate(ctx context.Context, pool *Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	logger.Info(ctx, "database schema up to date", "statements", len(schema))
	return nil
}
