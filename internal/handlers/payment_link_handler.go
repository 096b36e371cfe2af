package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/httpresp"
	"github.com/BruksfildServices01/barberbook/internal/middleware"
	"github.com/BruksfildServices01/barberbook/internal/usecase/paymentlinks"
)

type PaymentLinkHandler struct {
	links *paymentlinks.Service
}

func NewPaymentLinkHandler(s *paymentlinks.Service) *PaymentLinkHandler {
	return &PaymentLinkHandler{links: s}
}

func (h *PaymentLinkHandler) List(c *gin.Context) {
	links, err := h.links.List(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, links)
}

// input reads the multipart form: label, platform, url and optional qr_image.
func (h *PaymentLinkHandler) input(c *gin.Context) (paymentlinks.Input, bool) {
	in := paymentlinks.Input{
		Label:    c.PostForm("label"),
		Platform: c.PostForm("platform"),
		URL:      c.PostForm("url"),
	}

	fh, err := c.FormFile("qr_image")
	if err != nil {
		return in, true
	}
	if fh.Size > maxUploadBytes {
		httperr.BadRequest(c, "image_too_large", "Image is too large.")
		return in, false
	}

	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_image", "Could not read image.")
		return in, false
	}
	defer f.Close()

	if in.QRImage, err = io.ReadAll(io.LimitReader(f, maxUploadBytes)); err != nil {
		httperr.BadRequest(c, "invalid_image", "Could not read image.")
		return in, false
	}
	return in, true
}

func (h *PaymentLinkHandler) Create(c *gin.Context) {
	in, ok := h.input(c)
	if !ok {
		return
	}
	link, err := h.links.Create(c.Request.Context(), in, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.Created(c, link)
}

func (h *PaymentLinkHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	in, ok := h.input(c)
	if !ok {
		return
	}
	link, err := h.links.Update(c.Request.Context(), id, in, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, link)
}

func (h *PaymentLinkHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.links.Delete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.NoContent(c)
}
