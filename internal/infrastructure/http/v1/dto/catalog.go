package dto

// CreatePlanRequest for adding a service plan.
type CreatePlanRequest struct {
	Name   string `json:"name" binding:"required"`
	Amount string `json:"amount" binding:"required"`
	Mbps   int    `json:"mbps" binding:"required,min=1"`
}

// UpdatePlanRequest patches a plan.
type UpdatePlanRequest struct {
	Name   *string `json:"name,omitempty"`
	Amount *string `json:"amount,omitempty"`
	Mbps   *int    `json:"mbps,omitempty"`
	State  *string `json:"state,omitempty"`
}

// CreateSectorRequest for adding a coverage sector.
type CreateSectorRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateSectorRequest patches a sector.
type UpdateSectorRequest struct {
	Name  string `json:"name,omitempty"`
	State string `json:"state,omitempty"`
}
