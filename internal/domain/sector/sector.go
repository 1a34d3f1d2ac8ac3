// Package sector manages the coverage sector catalog.
package sector

import (
	"context"
	"time"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/entity"
	"recaudo/internal/core/id"
	"recaudo/pkg/logger"
)

// Sector is a geographic coverage zone clients are assigned to.
type Sector struct {
	ID    id.ID  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	State string `db:"state" json:"state"`

	entity.Audit
}

// WithClients is a sector annotated with its subscriber count.
type WithClients struct {
	Sector
	Clients int `json:"clients"`
}

// Validate checks sector invariants.
func (s *Sector) Validate(ctx context.Context) error {
	if s.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// Repository persists sectors.
type Repository interface {
	Create(ctx context.Context, sector *Sector) error
	GetByID(ctx context.Context, sectorID id.ID) (*Sector, error)
	Update(ctx context.Context, sector *Sector) error
	List(ctx context.Context) ([]Sector, error)
}

// ClientCounter provides subscriber counts per sector. Implemented by
// the clients repository.
type ClientCounter interface {
	CountBySector(ctx context.Context) (map[id.ID]int, error)
}

// Service manages the sector catalog.
type Service struct {
	repo    Repository
	clients ClientCounter

	now func() time.Time
}

// NewService wires the sector service.
func NewService(repo Repository, clients ClientCounter) *Service {
	return &Service{repo: repo, clients: clients, now: time.Now}
}

// Create adds a sector to the catalog.
func (s *Service) Create(ctx context.Context, name string, creatorID id.ID) (*Sector, error) {
	sec := &Sector{
		ID:    id.New(),
		Name:  name,
		State: "Activo",
		Audit: entity.NewAudit(creatorID, s.now()),
	}
	if err := sec.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, sec); err != nil {
		return nil, err
	}
	logger.Info(ctx, "sector created", "sector_id", sec.ID, "name", sec.Name)
	return sec, nil
}

// Rename updates the sector name or state.
func (s *Service) Rename(ctx context.Context, sectorID id.ID, name, state string, editorID id.ID) (*Sector, error) {
	sec, err := s.repo.GetByID(ctx, sectorID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		sec.Name = name
	}
	if state != "" {
		sec.State = state
	}
	if err := sec.Validate(ctx); err != nil {
		return nil, err
	}
	sec.Touch(editorID, s.now())
	if err := s.repo.Update(ctx, sec); err != nil {
		return nil, err
	}
	return sec, nil
}

// List returns all sectors annotated with subscriber counts.
func (s *Service) List(ctx context.Context) ([]WithClients, error) {
	sectors, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.clients.CountBySector(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]WithClients, 0, len(sectors))
	for i := range sectors {
		out = append(out, WithClients{Sector: sectors[i], Clients: counts[sectors[i].ID]})
	}
	return out, nil
}
