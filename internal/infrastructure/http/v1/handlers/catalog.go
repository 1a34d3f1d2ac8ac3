package handlers

import (
	"github.com/gin-gonic/gin"

	"recaudo/internal/domain/plan"
	"recaudo/internal/domain/sector"
	"recaudo/internal/infrastructure/http/v1/dto"
)

// PlanHandler serves the service plan catalog.
type PlanHandler struct {
	*BaseHandler
	plans *plan.Service
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(plans *plan.Service) *PlanHandler {
	return &PlanHandler{
		BaseHandler: NewBaseHandler(),
		plans:       plans,
	}
}

// Create handles POST /api/v1/plans.
func (h *PlanHandler) Create(c *gin.Context) {
	var req dto.CreatePlanRequest
	if !h.BindJSON(c, &req) {
		return
	}
	amount, ok := h.ParseMoney(c, req.Amount, "amount")
	if !ok {
		return
	}
	creatorID, ok := h.UserID(c)
	if !ok {
		return
	}

	created, err := h.plans.Create(c.Request.Context(), req.Name, amount, req.Mbps, creatorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, "plan created", created)
}

// Update handles PATCH /api/v1/plans/:id.
func (h *PlanHandler) Update(c *gin.Context) {
	planID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePlanRequest
	if !h.BindJSON(c, &req) {
		return
	}
	editorID, ok := h.UserID(c)
	if !ok {
		return
	}

	input := plan.UpdateInput{
		Name:     req.Name,
		Mbps:     req.Mbps,
		State:    req.State,
		EditorID: editorID,
	}
	if req.Amount != nil {
		amount, ok := h.ParseMoney(c, *req.Amount, "amount")
		if !ok {
			return
		}
		input.Amount = &amount
	}

	updated, err := h.plans.Update(c.Request.Context(), planID, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OKData(c, "plan updated", updated)
}

// List handles GET /api/v1/plans.
func (h *PlanHandler) List(c *gin.Context) {
	list, err := h.plans.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, list)
}

// SectorHandler serves the coverage sector catalog.
type SectorHandler struct {
	*BaseHandler
	sectors *sector.Service
}

// NewSectorHandler creates a new sector handler.
func NewSectorHandler(sectors *sector.Service) *SectorHandler {
	return &SectorHandler{
		BaseHandler: NewBaseHandler(),
		sectors:     sectors,
	}
}

// Create handles POST /api/v1/sectors.
func (h *SectorHandler) Create(c *gin.Context) {
	var req dto.CreateSectorRequest
	if !h.BindJSON(c, &req) {
		return
	}
	creatorID, ok := h.UserID(c)
	if !ok {
		return
	}

	created, err := h.sectors.Create(c.Request.Context(), req.Name, creatorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, "sector created", created)
}

// Update handles PATCH /api/v1/sectors/:id.
func (h *SectorHandler) Update(c *gin.Context) {
	sectorID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateSectorRequest
	if !h.BindJSON(c, &req) {
		return
	}
	editorID, ok := h.UserID(c)
	if !ok {
		return
	}

	updated, err := h.sectors.Rename(c.Request.Context(), sectorID, req.Name, req.State, editorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OKData(c, "sector updated", updated)
}

// List handles GET /api/v1/sectors.
func (h *SectorHandler) List(c *gin.Context) {
	list, err := h.sectors.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, list)
}
