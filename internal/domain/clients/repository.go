package clients

import (
	"context"

	"recaudo/internal/core/id"
	"recaudo/internal/core/types"
)

// ListFilter narrows client listings. Zero values mean "no filter".
type ListFilter struct {
	State    State
	OwnerID  *id.ID
	SectorID *id.ID
	PlanID   *id.ID
}

// Repository persists the subscriber catalog. It also carries the
// cached balance column, so the postgres implementation doubles as the
// billing BalanceStore.
type Repository interface {
	Create(ctx context.Context, client *Client) error
	GetByID(ctx context.Context, clientID id.ID) (*Client, error)
	Update(ctx context.Context, client *Client) error
	List(ctx context.Context, filter ListFilter) ([]Client, error)

	// Search matches term against name, dni and phone of non-retired
	// clients.
	Search(ctx context.Context, term string) ([]Client, error)

	// Stats aggregates catalog counts in one query.
	Stats(ctx context.Context) (*Stats, error)

	// UpdateBalance overwrites the cached balance.
	UpdateBalance(ctx context.Context, clientID id.ID, balance types.Money) error

	// CountByPlan and CountBySector back the catalog annotations.
	CountByPlan(ctx context.Context) (map[id.ID]int, error)
	CountBySector(ctx context.Context) (map[id.ID]int, error)
}
