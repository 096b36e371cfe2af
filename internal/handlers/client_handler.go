package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barberbook/internal/dto"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/httpresp"
	"github.com/BruksfildServices01/barberbook/internal/middleware"
	"github.com/BruksfildServices01/barberbook/internal/usecase/clients"
	"github.com/BruksfildServices01/barberbook/internal/usecase/scheduling"
)

const maxUploadBytes = 8 << 20

type ClientHandler struct {
	clients   *clients.Service
	scheduler *scheduling.Scheduler
}

func NewClientHandler(cs *clients.Service, s *scheduling.Scheduler) *ClientHandler {
	return &ClientHandler{clients: cs, scheduler: s}
}

type CreateClientRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type UpdateClientRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// ======================================================
// CLIENTS
// ======================================================

// List accepts ?query= for a name search and ?order=visits.
func (h *ClientHandler) List(c *gin.Context) {
	list, err := h.clients.List(c.Request.Context(), c.Query("query"), c.Query("order") == "visits")
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, list)
}

func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	client, err := h.clients.Get(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, client)
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clients.Create(c.Request.Context(), clients.ClientInput{
		Name:  req.Name,
		Phone: req.Phone,
		Notes: req.Notes,
	}, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.Created(c, client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clients.Update(c.Request.Context(), id, clients.ClientPatch{
		Name:  req.Name,
		Phone: req.Phone,
		Notes: req.Notes,
	}, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, client)
}

func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.clients.Delete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.NoContent(c)
}

func (h *ClientHandler) Bookings(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, err := h.clients.Get(c.Request.Context(), id); err != nil {
		httperr.FromError(c, err)
		return
	}
	bookings, err := h.scheduler.ListByClient(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, dto.BookingList(bookings))
}

// ======================================================
// HAIRCUTS
// ======================================================

func (h *ClientHandler) Haircuts(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := h.clients.Haircuts(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, list)
}

// AddHaircut takes multipart form fields notes, taken_at (RFC3339) and an
// optional photo file.
func (h *ClientHandler) AddHaircut(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	in := clients.HaircutInput{Notes: c.PostForm("notes")}

	if raw := c.PostForm("taken_at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_taken_at", "taken_at must be RFC3339.")
			return
		}
		in.TakenAt = t
	}

	if fh, err := c.FormFile("photo"); err == nil {
		if fh.Size > maxUploadBytes {
			httperr.BadRequest(c, "photo_too_large", "Photo is too large.")
			return
		}
		f, err := fh.Open()
		if err != nil {
			httperr.BadRequest(c, "invalid_photo", "Could not read photo.")
			return
		}
		defer f.Close()

		if in.Photo, err = io.ReadAll(io.LimitReader(f, maxUploadBytes)); err != nil {
			httperr.BadRequest(c, "invalid_photo", "Could not read photo.")
			return
		}
	}

	haircut, err := h.clients.AddHaircut(c.Request.Context(), id, in, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.Created(c, haircut)
}

func (h *ClientHandler) DeleteHaircut(c *gin.Context) {
	id, ok := paramID(c, "haircutID")
	if !ok {
		return
	}
	if err := h.clients.DeleteHaircut(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.NoContent(c)
}
