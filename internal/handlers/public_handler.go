package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/usecase/catalog"
	"github.com/BruksfildServices01/barberbook/internal/usecase/waitlist"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler serves the shop-front kiosk without authentication: the
// menu, and the walk-in queue.
type PublicHandler struct {
	catalog  *catalog.Catalog
	waitlist *waitlist.Manager
}

func NewPublicHandler(c *catalog.Catalog, w *waitlist.Manager) *PublicHandler {
	return &PublicHandler{catalog: c, waitlist: w}
}

type PublicJoinRequest struct {
	ClientName string `json:"client_name"`
}

////////////////////////////////////////////////////////
// MENU
////////////////////////////////////////////////////////

func (h *PublicHandler) Menu(c *gin.Context) {
	ctx := c.Request.Context()

	providers, err := h.catalog.ListProviders(ctx, true)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	services, err := h.catalog.ListServices(ctx)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"providers": providers,
		"services":  services,
	})
}

////////////////////////////////////////////////////////
// WALK-IN
////////////////////////////////////////////////////////

func (h *PublicHandler) Join(c *gin.Context) {
	var req PublicJoinRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	entry, err := h.waitlist.AddEntry(ctx, req.ClientName, nil)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	board, err := h.waitlist.Board(ctx)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	for _, row := range board {
		if row.ID == entry.ID {
			c.JSON(http.StatusCreated, row)
			return
		}
	}
	c.JSON(http.StatusCreated, gin.H{"id": entry.ID, "client_name": entry.ClientName})
}

func (h *PublicHandler) Board(c *gin.Context) {
	board, err := h.waitlist.Board(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": board})
}
