// Package clients manages the subscriber catalog: contact and service
// data, lifecycle state, the cached balance and owner-scoped access.
package clients

import (
	"context"
	"time"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/entity"
	"recaudo/internal/core/id"
	"recaudo/internal/core/types"
)

// State is the client lifecycle state.
type State string

const (
	StateActive    State = "Activo"
	StateSuspended State = "Suspendido"
	StateRetired   State = "Retirado"
)

// Client is a service subscriber.
type Client struct {
	ID      id.ID  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	DNI     string `db:"dni" json:"dni"`
	RIF     string `db:"rif" json:"rif,omitempty"`
	Phone   string `db:"phone" json:"phone"`
	Address string `db:"address" json:"address"`
	GPS     string `db:"gps" json:"gps,omitempty"`

	// Equipment identifiers of the installed service.
	IP  string `db:"ip" json:"ip,omitempty"`
	SN  string `db:"sn" json:"sn,omitempty"`
	MAC string `db:"mac" json:"mac,omitempty"`

	Type     string      `db:"type" json:"type"`
	NPayment types.Money `db:"n_payment" json:"nPayment"`
	State    State       `db:"state" json:"state"`
	Comment  string      `db:"comment" json:"comment,omitempty"`

	OwnerID     *id.ID `db:"owner_id" json:"ownerId,omitempty"`
	InstallerID *id.ID `db:"installer_id" json:"installerId,omitempty"`
	PlanID      *id.ID `db:"plan_id" json:"planId,omitempty"`
	SectorID    *id.ID `db:"sector_id" json:"sectorId,omitempty"`

	SuspendedAt     *time.Time `db:"suspended_at" json:"suspendedAt,omitempty"`
	SuspendedReason string     `db:"suspended_reason" json:"suspendedReason,omitempty"`

	// Balance is the cached reconciliation result. Only the billing
	// reconciler writes it.
	Balance types.Money `db:"balance" json:"balance"`

	entity.Audit
}

// Validate checks client invariants.
func (c *Client) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if c.DNI == "" {
		return apperror.NewValidation("dni is required").
			WithDetail("field", "dni")
	}
	switch c.State {
	case StateActive, StateSuspended, StateRetired:
	default:
		return apperror.NewValidation("unknown client state").
			WithDetail("field", "state").
			WithDetail("value", string(c.State))
	}
	if c.NPayment.IsNegative() {
		return apperror.NewValidation("monthly fee cannot be negative").
			WithDetail("field", "nPayment")
	}
	return nil
}

// IsRetired reports whether the client left the service permanently.
func (c *Client) IsRetired() bool {
	return c.State == StateRetired
}

// Stats summarizes the catalog by solvency and lifecycle state.
// Retired clients are excluded from Total.
type Stats struct {
	Total      int `db:"total" json:"total"`
	Solvent    int `db:"solvent" json:"solvent"`
	Delinquent int `db:"delinquent" json:"delinquent"`
	Suspended  int `db:"suspended" json:"suspended"`
	Retired    int `db:"retired" json:"retired"`
}
