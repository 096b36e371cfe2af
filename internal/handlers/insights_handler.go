package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/httpresp"
	"github.com/BruksfildServices01/barberbook/internal/usecase/analytics"
	"github.com/BruksfildServices01/barberbook/internal/usecase/loyalty"
)

// InsightsHandler serves the read-only loyalty and analytics screens.
type InsightsHandler struct {
	loyalty   *loyalty.Service
	analytics *analytics.Service
}

func NewInsightsHandler(l *loyalty.Service, a *analytics.Service) *InsightsHandler {
	return &InsightsHandler{loyalty: l, analytics: a}
}

func (h *InsightsHandler) Loyalty(c *gin.Context) {
	progress, err := h.loyalty.Progress(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, progress)
}

func (h *InsightsHandler) ClientLoyalty(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.loyalty.ForClient(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, p)
}

func (h *InsightsHandler) Summary(c *gin.Context) {
	s, err := h.analytics.Summary(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, s)
}
