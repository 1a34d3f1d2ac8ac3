package handlers

import (
	"github.com/gin-gonic/gin"

	"recaudo/internal/domain/reports"
)

// DashboardHandler serves the dashboard aggregation endpoints.
type DashboardHandler struct {
	*BaseHandler
	reports *reports.Service
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(svc *reports.Service) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(),
		reports:     svc,
	}
}

// LatestPayments handles GET /api/v1/dashboard/latest-payments.
func (h *DashboardHandler) LatestPayments(c *gin.Context) {
	payments, err := h.reports.LatestPayments(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, payments)
}

// MonthlyCollection handles GET /api/v1/dashboard/monthly-collection.
func (h *DashboardHandler) MonthlyCollection(c *gin.Context) {
	mc, err := h.reports.MonthlyCollection(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, mc)
}

// ClientsStatus handles GET /api/v1/dashboard/clients-status.
func (h *DashboardHandler) ClientsStatus(c *gin.Context) {
	cs, err := h.reports.ClientsStatus(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, cs)
}

// PaymentsChart handles GET /api/v1/dashboard/payments-chart.
func (h *DashboardHandler) PaymentsChart(c *gin.Context) {
	chart, err := h.reports.PaymentsChart(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, chart)
}
