package handlers

import (
	"github.com/gin-gonic/gin"

	"recaudo/internal/core/id"
	"recaudo/internal/domain/clients"
	"recaudo/internal/infrastructure/http/v1/dto"
)

// ClientHandler serves the subscriber catalog endpoints.
type ClientHandler struct {
	*BaseHandler
	clients *clients.Service
}

// NewClientHandler creates a new client handler.
func NewClientHandler(svc *clients.Service) *ClientHandler {
	return &ClientHandler{
		BaseHandler: NewBaseHandler(),
		clients:     svc,
	}
}

// Create handles POST /api/v1/clients.
func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	nPayment, ok := h.ParseMoney(c, req.NPayment, "nPayment")
	if !ok {
		return
	}
	ownerID, ok := h.OptionalID(c, req.OwnerID, "ownerId")
	if !ok {
		return
	}
	installerID, ok := h.OptionalID(c, req.InstallerID, "installerId")
	if !ok {
		return
	}
	planID, ok := h.OptionalID(c, req.PlanID, "planId")
	if !ok {
		return
	}
	sectorID, ok := h.OptionalID(c, req.SectorID, "sectorId")
	if !ok {
		return
	}
	creatorID, ok := h.UserID(c)
	if !ok {
		return
	}

	client, err := h.clients.Create(c.Request.Context(), clients.CreateInput{
		Name:        req.Name,
		DNI:         req.DNI,
		RIF:         req.RIF,
		Phone:       req.Phone,
		Address:     req.Address,
		GPS:         req.GPS,
		IP:          req.IP,
		SN:          req.SN,
		MAC:         req.MAC,
		Type:        req.Type,
		NPayment:    nPayment,
		Comment:     req.Comment,
		OwnerID:     ownerID,
		InstallerID: installerID,
		PlanID:      planID,
		SectorID:    sectorID,
		CreatorID:   creatorID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, "client registered", client)
}

// Update handles PATCH /api/v1/clients/:id.
func (h *ClientHandler) Update(c *gin.Context) {
	clientID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	editorID, ok := h.UserID(c)
	if !ok {
		return
	}

	input := clients.UpdateInput{
		Name:            req.Name,
		DNI:             req.DNI,
		RIF:             req.RIF,
		Phone:           req.Phone,
		Address:         req.Address,
		GPS:             req.GPS,
		IP:              req.IP,
		SN:              req.SN,
		MAC:             req.MAC,
		Type:            req.Type,
		Comment:         req.Comment,
		SuspendedReason: req.SuspendedReason,
		EditorID:        editorID,
	}
	if req.NPayment != nil {
		nPayment, ok := h.ParseMoney(c, *req.NPayment, "nPayment")
		if !ok {
			return
		}
		input.NPayment = &nPayment
	}
	if req.State != nil {
		state := clients.State(*req.State)
		input.State = &state
	}
	for _, ref := range []struct {
		raw   *string
		field string
		dst   **id.ID
	}{
		{req.OwnerID, "ownerId", &input.OwnerID},
		{req.InstallerID, "installerId", &input.InstallerID},
		{req.PlanID, "planId", &input.PlanID},
		{req.SectorID, "sectorId", &input.SectorID},
	} {
		parsed, ok := h.OptionalID(c, ref.raw, ref.field)
		if !ok {
			return
		}
		*ref.dst = parsed
	}

	client, err := h.clients.Update(c.Request.Context(), clientID, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OKData(c, "client updated", client)
}

// Get handles GET /api/v1/clients/:id.
func (h *ClientHandler) Get(c *gin.Context) {
	clientID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	client, err := h.clients.GetByID(c.Request.Context(), clientID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, client)
}

// List handles GET /api/v1/clients.
func (h *ClientHandler) List(c *gin.Context) {
	var query dto.ClientListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := clients.ListFilter{State: clients.State(query.State)}
	ownerID, ok := h.OwnerScope(c)
	if !ok {
		return
	}
	filter.OwnerID = ownerID

	for _, ref := range []struct {
		raw   string
		field string
		dst   **id.ID
	}{
		{query.SectorID, "sectorId", &filter.SectorID},
		{query.PlanID, "planId", &filter.PlanID},
	} {
		if ref.raw == "" {
			continue
		}
		parsed, ok := h.OptionalID(c, &ref.raw, ref.field)
		if !ok {
			return
		}
		*ref.dst = parsed
	}

	list, err := h.clients.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, list)
}

// Search handles GET /api/v1/clients/search?term=.
func (h *ClientHandler) Search(c *gin.Context) {
	results, err := h.clients.Search(c.Request.Context(), c.Query("term"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, results)
}

// Stats handles GET /api/v1/clients/stats.
func (h *ClientHandler) Stats(c *gin.Context) {
	stats, err := h.clients.Stats(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, stats)
}
