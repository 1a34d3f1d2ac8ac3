// Package reports serves the dashboard aggregations.
package reports

import (
	"time"

	"recaudo/internal/core/id"
	"recaudo/internal/core/types"
)

// LatestPayment is a recent payment annotated with the client name and
// the derived reason.
type LatestPayment struct {
	ID         id.ID       `db:"id" json:"id"`
	ClientID   id.ID       `db:"client_id" json:"clientId"`
	ClientName string      `db:"client_name" json:"clientName"`
	Amount     types.Money `db:"amount" json:"amount"`
	Reason     string      `db:"reason" json:"reason"`
	Cash       bool        `db:"cash" json:"cash"`
	State      string      `db:"state" json:"state"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
}

// MonthlyCollection summarizes the current month: what came in versus
// what the month's debts still expect.
type MonthlyCollection struct {
	Collected  types.Money `db:"collected" json:"collected"`
	Receivable types.Money `db:"receivable" json:"receivable"`
	Month      time.Time   `json:"month"`
}

// ClientsStatus mirrors the catalog state counts for the dashboard.
type ClientsStatus struct {
	Total      int `db:"total" json:"total"`
	Solvent    int `db:"solvent" json:"solvent"`
	Delinquent int `db:"delinquent" json:"delinquent"`
	Suspended  int `db:"suspended" json:"suspended"`
}

// DailyCollection is one day's collected totals split by method.
type DailyCollection struct {
	Day      time.Time   `db:"day" json:"day"`
	Cash     types.Money `db:"cash" json:"cash"`
	Transfer types.Money `db:"transfer" json:"transfer"`
}
