// Package plan manages the service plan catalog.
package plan

import (
	"context"
	"time"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/entity"
	"recaudo/internal/core/id"
	"recaudo/internal/core/types"
	"recaudo/pkg/logger"
)

// Plan is a service tier: price and bandwidth.
type Plan struct {
	ID     id.ID       `db:"id" json:"id"`
	Name   string      `db:"name" json:"name"`
	Amount types.Money `db:"amount" json:"amount"`
	Mbps   int         `db:"mbps" json:"mbps"`
	State  string      `db:"state" json:"state"`

	entity.Audit
}

// WithClients is a plan annotated with its subscriber count.
type WithClients struct {
	Plan
	Clients int `json:"clients"`
}

// Validate checks plan invariants.
func (p *Plan) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.Amount.IsNegative() {
		return apperror.NewValidation("amount cannot be negative").
			WithDetail("field", "amount")
	}
	if p.Mbps <= 0 {
		return apperror.NewValidation("mbps must be positive").
			WithDetail("field", "mbps")
	}
	return nil
}

// Repository persists plans.
type Repository interface {
	Create(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, planID id.ID) (*Plan, error)
	Update(ctx context.Context, plan *Plan) error
	List(ctx context.Context) ([]Plan, error)
}

// ClientCounter provides subscriber counts per plan. Implemented by
// the clients repository.
type ClientCounter interface {
	CountByPlan(ctx context.Context) (map[id.ID]int, error)
}

// UpdateInput carries the patchable plan fields.
type UpdateInput struct {
	Name     *string
	Amount   *types.Money
	Mbps     *int
	State    *string
	EditorID id.ID
}

// Service manages the plan catalog.
type Service struct {
	repo    Repository
	clients ClientCounter

	now func() time.Time
}

// NewService wires the plan service.
func NewService(repo Repository, clients ClientCounter) *Service {
	return &Service{repo: repo, clients: clients, now: time.Now}
}

// Create adds a plan to the catalog.
func (s *Service) Create(ctx context.Context, name string, amount types.Money, mbps int, creatorID id.ID) (*Plan, error) {
	p := &Plan{
		ID:     id.New(),
		Name:   name,
		Amount: types.Round2(amount),
		Mbps:   mbps,
		State:  "Activo",
		Audit:  entity.NewAudit(creatorID, s.now()),
	}
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.Info(ctx, "plan created", "plan_id", p.ID, "name", p.Name)
	return p, nil
}

// Update patches a plan.
func (s *Service) Update(ctx context.Context, planID id.ID, input UpdateInput) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Amount != nil {
		p.Amount = types.Round2(*input.Amount)
	}
	if input.Mbps != nil {
		p.Mbps = *input.Mbps
	}
	if input.State != nil {
		p.State = *input.State
	}
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}
	p.Touch(input.EditorID, s.now())
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns all plans annotated with subscriber counts.
func (s *Service) List(ctx context.Context) ([]WithClients, error) {
	plans, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.clients.CountByPlan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]WithClients, 0, len(plans))
	for i := range plans {
		out = append(out, WithClients{Plan: plans[i], Clients: counts[plans[i].ID]})
	}
	return out, nil
}
