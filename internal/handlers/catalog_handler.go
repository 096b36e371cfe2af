package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/httpresp"
	"github.com/BruksfildServices01/barberbook/internal/middleware"
	"github.com/BruksfildServices01/barberbook/internal/usecase/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// --------- Requests ---------

type CreateProviderRequest struct {
	Name   string `json:"name" binding:"required"`
	Bio    string `json:"bio"`
	Active *bool  `json:"active,omitempty"`
}

type UpdateProviderRequest struct {
	Name   *string `json:"name,omitempty"`
	Bio    *string `json:"bio,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	DurationMin int     `json:"duration_min" binding:"required"`
	Price       float64 `json:"price"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name,omitempty"`
	DurationMin *int     `json:"duration_min,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// ======================================================
// PROVIDERS
// ======================================================

func (h *CatalogHandler) ListProviders(c *gin.Context) {
	providers, err := h.catalog.ListProviders(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, providers)
}

func (h *CatalogHandler) GetProvider(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetProvider(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, p)
}

func (h *CatalogHandler) CreateProvider(c *gin.Context) {
	var req CreateProviderRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.catalog.CreateProvider(c.Request.Context(), catalog.ProviderInput{
		Name:   req.Name,
		Bio:    req.Bio,
		Active: req.Active,
	}, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.Created(c, p)
}

func (h *CatalogHandler) UpdateProvider(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateProviderRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.catalog.UpdateProvider(c.Request.Context(), id, catalog.ProviderPatch{
		Name:   req.Name,
		Bio:    req.Bio,
		Active: req.Active,
	}, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, p)
}

func (h *CatalogHandler) DeleteProvider(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProvider(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.NoContent(c)
}

// SetAvatar takes the picture as multipart file "avatar".
func (h *CatalogHandler) SetAvatar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		httperr.BadRequest(c, "missing_avatar", "Avatar file is required.")
		return
	}
	if fh.Size > maxUploadBytes {
		httperr.BadRequest(c, "avatar_too_large", "Avatar is too large.")
		return
	}
	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_image", "Could not read avatar.")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		httperr.BadRequest(c, "invalid_image", "Could not read avatar.")
		return
	}

	p, err := h.catalog.SetProviderAvatar(c.Request.Context(), id, data, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, p)
}

func (h *CatalogHandler) ClearAvatar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.ClearProviderAvatar(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, p)
}

// ======================================================
// SERVICES
// ======================================================

func (h *CatalogHandler) ListServices(c *gin.Context) {
	services, err := h.catalog.ListServices(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, services)
}

func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.catalog.CreateService(c.Request.Context(), catalog.ServiceInput{
		Name:        req.Name,
		DurationMin: req.DurationMin,
		Price:       req.Price,
	}, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.Created(c, s)
}

func (h *CatalogHandler) UpdateService(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.catalog.UpdateService(c.Request.Context(), id, catalog.ServicePatch{
		Name:        req.Name,
		DurationMin: req.DurationMin,
		Price:       req.Price,
	}, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, s)
}

func (h *CatalogHandler) DeleteService(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteService(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.NoContent(c)
}
