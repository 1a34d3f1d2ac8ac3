// Package client_repo provides the PostgreSQL implementation of the
// subscriber catalog repository.
package client_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/id"
	"recaudo/internal/core/types"
	"recaudo/internal/domain/clients"
	"recaudo/internal/infrastructure/storage/postgres"
)

const clientsTable = "clients"

var clientColumns = []string{
	"id", "name", "dni", "rif", "phone", "address", "gps",
	"ip", "sn", "mac", "type", "n_payment", "state", "comment",
	"owner_id", "installer_id", "plan_id", "sector_id",
	"suspended_at", "suspended_reason", "balance",
	"created_at", "creator_id", "edited_at", "editor_id",
}

// ClientRepo implements clients.Repository. It also carries the cached
// balance column, making it the billing BalanceStore.
type ClientRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewClientRepo creates a new client repository.
func NewClientRepo(txManager *postgres.TxManager) *ClientRepo {
	return &ClientRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a client.
func (r *ClientRepo) Create(ctx context.Context, c *clients.Client) error {
	q := r.builder.Insert(clientsTable).
		Columns(clientColumns...).
		Values(
			c.ID, c.Name, c.DNI, c.RIF, c.Phone, c.Address, c.GPS,
			c.IP, c.SN, c.MAC, c.Type, c.NPayment, c.State, c.Comment,
			c.OwnerID, c.InstallerID, c.PlanID, c.SectorID,
			c.SuspendedAt, c.SuspendedReason, c.Balance,
			c.CreatedAt, c.CreatorID, c.EditedAt, c.EditorID,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert client: %w", err))
	}
	return nil
}

// GetByID returns one client.
func (r *ClientRepo) GetByID(ctx context.Context, clientID id.ID) (*clients.Client, error) {
	q := r.builder.Select(clientColumns...).
		From(clientsTable).
		Where(squirrel.Eq{"id": clientID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c clients.Client
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("client", clientID.String())
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get client: %w", err))
	}
	return &c, nil
}

// Update rewrites the mutable client columns. The cached balance is
// not touched here; UpdateBalance owns that column.
func (r *ClientRepo) Update(ctx context.Context, c *clients.Client) error {
	q := r.builder.Update(clientsTable).
		Set("name", c.Name).
		Set("dni", c.DNI).
		Set("rif", c.RIF).
		Set("phone", c.Phone).
		Set("address", c.Address).
		Set("gps", c.GPS).
		Set("ip", c.IP).
		Set("sn", c.SN).
		Set("mac", c.MAC).
		Set("type", c.Type).
		Set("n_payment", c.NPayment).
		Set("state", c.State).
		Set("comment", c.Comment).
		Set("owner_id", c.OwnerID).
		Set("installer_id", c.InstallerID).
		Set("plan_id", c.PlanID).
		Set("sector_id", c.SectorID).
		Set("suspended_at", c.SuspendedAt).
		Set("suspended_reason", c.SuspendedReason).
		Set("edited_at", c.EditedAt).
		Set("editor_id", c.EditorID).
		Where(squirrel.Eq{"id": c.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("update client: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("client", c.ID.String())
	}
	return nil
}

// List returns clients matching the filter, by name.
func (r *ClientRepo) List(ctx context.Context, filter clients.ListFilter) ([]clients.Client, error) {
	q := r.builder.Select(clientColumns...).
		From(clientsTable).
		OrderBy("name ASC")

	if filter.State != "" {
		q = q.Where(squirrel.Eq{"state": filter.State})
	}
	if filter.OwnerID != nil {
		q = q.Where(squirrel.Eq{"owner_id": *filter.OwnerID})
	}
	if filter.SectorID != nil {
		q = q.Where(squirrel.Eq{"sector_id": *filter.SectorID})
	}
	if filter.PlanID != nil {
		q = q.Where(squirrel.Eq{"plan_id": *filter.PlanID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []clients.Client
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list clients: %w", err))
	}
	return out, nil
}

// Search matches term against name, dni and phone of non-retired
// clients.
func (r *ClientRepo) Search(ctx context.Context, term string) ([]clients.Client, error) {
	pattern := "%" + term + "%"
	q := r.builder.Select(clientColumns...).
		From(clientsTable).
		Where(squirrel.NotEq{"state": clients.StateRetired}).
		Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"dni": pattern},
			squirrel.ILike{"phone": pattern},
		}).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []clients.Client
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("search clients: %w", err))
	}
	return out, nil
}

// Stats aggregates catalog counts in one pass.
func (r *ClientRepo) Stats(ctx context.Context) (*clients.Stats, error) {
	sql := `
		SELECT
			COUNT(*) FILTER (WHERE state <> $3)                    AS total,
			COUNT(*) FILTER (WHERE state = $1 AND balance >= 0)    AS solvent,
			COUNT(*) FILTER (WHERE state = $1 AND balance < 0)     AS delinquent,
			COUNT(*) FILTER (WHERE state = $2)                     AS suspended,
			COUNT(*) FILTER (WHERE state = $3)                     AS retired
		FROM clients
	`

	var stats clients.Stats
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &stats, sql,
		clients.StateActive, clients.StateSuspended, clients.StateRetired)
	if err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("client stats: %w", err))
	}
	return &stats, nil
}

// UpdateBalance overwrites the cached balance. Satisfies the billing
// BalanceStore contract.
func (r *ClientRepo) UpdateBalance(ctx context.Context, clientID id.ID, balance types.Money) error {
	sql := `UPDATE clients SET balance = $2 WHERE id = $1`

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, clientID, balance)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("update balance: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("client", clientID.String())
	}
	return nil
}

// CountByPlan returns subscriber counts per plan.
func (r *ClientRepo) CountByPlan(ctx context.Context) (map[id.ID]int, error) {
	return r.countBy(ctx, "plan_id")
}

// CountBySector returns subscriber counts per sector.
func (r *ClientRepo) CountBySector(ctx context.Context) (map[id.ID]int, error) {
	return r.countBy(ctx, "sector_id")
}

func (r *ClientRepo) countBy(ctx context.Context, column string) (map[id.ID]int, error) {
	sql := fmt.Sprintf(`
		SELECT %s, COUNT(*)
		FROM clients
		WHERE %s IS NOT NULL AND state <> $1
		GROUP BY %s
	`, column, column, column)

	querier := r.txManager.GetQuerier(ctx)
	rows, err := querier.Query(ctx, sql, clients.StateRetired)
	if err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("count clients by %s: %w", column, err))
	}
	defer rows.Close()

	counts := make(map[id.ID]int)
	for rows.Next() {
		var key id.ID
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, apperror.NewDatabase(fmt.Errorf("scan count: %w", err))
		}
		counts[key] = n
	}
	return counts, rows.Err()
}
