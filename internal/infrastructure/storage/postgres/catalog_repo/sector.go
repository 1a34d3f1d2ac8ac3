package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/id"
	"recaudo/internal/domain/sector"
	"recaudo/internal/infrastructure/storage/postgres"
)

const sectorsTable = "sectors"

var sectorColumns = []string{
	"id", "name", "state",
	"created_at", "creator_id", "edited_at", "editor_id",
}

// SectorRepo implements sector.Repository.
type SectorRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSectorRepo creates a new sector repository.
func NewSectorRepo(txManager *postgres.TxManager) *SectorRepo {
	return &SectorRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a sector.
func (r *SectorRepo) Create(ctx context.Context, s *sector.Sector) error {
	q := r.builder.Insert(sectorsTable).
		Columns(sectorColumns...).
		Values(
			s.ID, s.Name, s.State,
			s.CreatedAt, s.CreatorID, s.EditedAt, s.EditorID,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert sector: %w", err))
	}
	return nil
}

// GetByID returns one sector.
func (r *SectorRepo) GetByID(ctx context.Context, sectorID id.ID) (*sector.Sector, error) {
	q := r.builder.Select(sectorColumns...).
		From(sectorsTable).
		Where(squirrel.Eq{"id": sectorID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s sector.Sector
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sector", sectorID.String())
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get sector: %w", err))
	}
	return &s, nil
}

// Update rewrites the mutable sector columns.
func (r *SectorRepo) Update(ctx context.Context, s *sector.Sector) error {
	q := r.builder.Update(sectorsTable).
		Set("name", s.Name).
		Set("state", s.State).
		Set("edited_at", s.EditedAt).
		Set("editor_id", s.EditorID).
		Where(squirrel.Eq{"id": s.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("update sector: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("sector", s.ID.String())
	}
	return nil
}

// List returns all sectors by name.
func (r *SectorRepo) List(ctx context.Context) ([]sector.Sector, error) {
	q := r.builder.Select(sectorColumns...).
		From(sectorsTable).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []sector.Sector
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list sectors: %w", err))
	}
	return out, nil
}
