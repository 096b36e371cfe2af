package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/httpresp"
	"github.com/BruksfildServices01/barberbook/internal/middleware"
	"github.com/BruksfildServices01/barberbook/internal/usecase/waitlist"
)

type WaitlistHandler struct {
	manager *waitlist.Manager
}

func NewWaitlistHandler(m *waitlist.Manager) *WaitlistHandler {
	return &WaitlistHandler{manager: m}
}

type AddWaitlistRequest struct {
	ClientName string `json:"client_name"`
}

// Board is the walk-in screen: active entries with position and estimate.
func (h *WaitlistHandler) Board(c *gin.Context) {
	board, err := h.manager.Board(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, board)
}

func (h *WaitlistHandler) Add(c *gin.Context) {
	var req AddWaitlistRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	entry, err := h.manager.AddEntry(ctx, req.ClientName, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	pos, err := h.manager.Position(ctx, entry.ID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, gin.H{
		"entry":    entry,
		"position": pos,
	})
}

func (h *WaitlistHandler) Position(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pos, err := h.manager.Position(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, gin.H{"id": id, "position": pos})
}

func (h *WaitlistHandler) Serve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	entry, err := h.manager.MarkServed(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, entry)
}

func (h *WaitlistHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	entry, err := h.manager.Cancel(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, entry)
}
