package dto

// CreateClientRequest for registering a subscriber.
type CreateClientRequest struct {
	Name        string  `json:"name" binding:"required"`
	DNI         string  `json:"dni" binding:"required"`
	RIF         string  `json:"rif,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Address     string  `json:"address,omitempty"`
	GPS         string  `json:"gps,omitempty"`
	IP          string  `json:"ip,omitempty"`
	SN          string  `json:"sn,omitempty"`
	MAC         string  `json:"mac,omitempty"`
	Type        string  `json:"type,omitempty"`
	NPayment    string  `json:"nPayment,omitempty"`
	Comment     string  `json:"comment,omitempty"`
	OwnerID     *string `json:"ownerId,omitempty"`
	InstallerID *string `json:"installerId,omitempty"`
	PlanID      *string `json:"planId,omitempty"`
	SectorID    *string `json:"sectorId,omitempty"`
}

// UpdateClientRequest patches a subscriber. Nil fields are left
// unchanged.
type UpdateClientRequest struct {
	Name            *string `json:"name,omitempty"`
	DNI             *string `json:"dni,omitempty"`
	RIF             *string `json:"rif,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Address         *string `json:"address,omitempty"`
	GPS             *string `json:"gps,omitempty"`
	IP              *string `json:"ip,omitempty"`
	SN              *string `json:"sn,omitempty"`
	MAC             *string `json:"mac,omitempty"`
	Type            *string `json:"type,omitempty"`
	NPayment        *string `json:"nPayment,omitempty"`
	State           *string `json:"state,omitempty"`
	Comment         *string `json:"comment,omitempty"`
	OwnerID         *string `json:"ownerId,omitempty"`
	InstallerID     *string `json:"installerId,omitempty"`
	PlanID          *string `json:"planId,omitempty"`
	SectorID        *string `json:"sectorId,omitempty"`
	SuspendedReason *string `json:"suspendedReason,omitempty"`
}

// ClientListQuery filters client listings.
type ClientListQuery struct {
	State    string `form:"state"`
	OwnerID  string `form:"ownerId"`
	SectorID string `form:"sectorId"`
	PlanID   string `form:"planId"`
}
