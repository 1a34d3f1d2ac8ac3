// Package entity provides shared scaffolding for persisted domain records.
package entity

import (
	"time"

	"recaudo/internal/core/id"
)

// Audit carries creation and edition stamps common to all operator-managed
// records (debts, payments, clients, catalogs).
type Audit struct {
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	CreatorID id.ID      `db:"creator_id" json:"creatorId"`
	EditedAt  *time.Time `db:"edited_at" json:"editedAt,omitempty"`
	EditorID  *id.ID     `db:"editor_id" json:"editorId,omitempty"`
}

// NewAudit stamps a fresh record.
func NewAudit(creatorID id.ID, now time.Time) Audit {
	return Audit{
		CreatedAt: now.UTC(),
		CreatorID: creatorID,
	}
}

// Touch records an edition by editorID.
func (a *Audit) Touch(editorID id.ID, now time.Time) {
	t := now.UTC()
	a.EditedAt = &t
	a.EditorID = &editorID
}
