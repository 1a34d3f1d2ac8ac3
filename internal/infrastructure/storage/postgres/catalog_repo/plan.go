// Package catalog_repo provides PostgreSQL implementations for the
// plan and sector catalogs.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/id"
	"recaudo/internal/domain/plan"
	"recaudo/internal/infrastructure/storage/postgres"
)

const plansTable = "plans"

var planColumns = []string{
	"id", "name", "amount", "mbps", "state",
	"created_at", "creator_id", "edited_at", "editor_id",
}

// PlanRepo implements plan.Repository.
type PlanRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPlanRepo creates a new plan repository.
func NewPlanRepo(txManager *postgres.TxManager) *PlanRepo {
	return &PlanRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a plan.
func (r *PlanRepo) Create(ctx context.Context, p *plan.Plan) error {
	q := r.builder.Insert(plansTable).
		Columns(planColumns...).
		Values(
			p.ID, p.Name, p.Amount, p.Mbps, p.State,
			p.CreatedAt, p.CreatorID, p.EditedAt, p.EditorID,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert plan: %w", err))
	}
	return nil
}

// GetByID returns one plan.
func (r *PlanRepo) GetByID(ctx context.Context, planID id.ID) (*plan.Plan, error) {
	q := r.builder.Select(planColumns...).
		From(plansTable).
		Where(squirrel.Eq{"id": planID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p plan.Plan
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("plan", planID.String())
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get plan: %w", err))
	}
	return &p, nil
}

// Update rewrites the mutable plan columns.
func (r *PlanRepo) Update(ctx context.Context, p *plan.Plan) error {
	q := r.builder.Update(plansTable).
		Set("name", p.Name).
		Set("amount", p.Amount).
		Set("mbps", p.Mbps).
		Set("state", p.State).
		Set("edited_at", p.EditedAt).
		Set("editor_id", p.EditorID).
		Where(squirrel.Eq{"id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("update plan: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("plan", p.ID.String())
	}
	return nil
}

// List returns all plans by name.
func (r *PlanRepo) List(ctx context.Context) ([]plan.Plan, error) {
	q := r.builder.Select(planColumns...).
		From(plansTable).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []plan.Plan
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list plans: %w", err))
	}
	return out, nil
}
