package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/dto"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/httpresp"
	"github.com/BruksfildServices01/barberbook/internal/middleware"
	"github.com/BruksfildServices01/barberbook/internal/models"
	"github.com/BruksfildServices01/barberbook/internal/usecase/payment"
	"github.com/BruksfildServices01/barberbook/internal/usecase/scheduling"
)

// paymentWait is how long Pay holds the request before answering 202.
const paymentWait = 20 * time.Second

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	scheduler *scheduling.Scheduler
	payments  *payment.Coordinator
	loc       *time.Location
}

func NewBookingHandler(
	s *scheduling.Scheduler,
	p *payment.Coordinator,
	loc *time.Location,
) *BookingHandler {
	return &BookingHandler{scheduler: s, payments: p, loc: loc}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	ClientID   *uuid.UUID `json:"client_id"`
	ProviderID uuid.UUID  `json:"provider_id" binding:"required"`
	ServiceID  uuid.UUID  `json:"service_id" binding:"required"`
	Date       string     `json:"date" binding:"required"` // YYYY-MM-DD
	Time       string     `json:"time" binding:"required"` // HH:mm
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type RescheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// ReconcileRequest closes a payment left pending; status is paid or failed.
type ReconcileRequest struct {
	Status    string `json:"status" binding:"required"`
	Reference string `json:"reference"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	start, err := scheduling.ParseStart(req.Date, req.Time, h.loc)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	b, err := h.scheduler.CreateBooking(c.Request.Context(), scheduling.CreateBookingInput{
		ClientID:   req.ClientID,
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		Start:      start,
		UserID:     middleware.UserID(c),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, b)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.scheduler.Get(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, b)
}

// ======================================================
// LIST
// ======================================================

// List filters by ?date=YYYY-MM-DD, or lists upcoming bookings without it.
func (h *BookingHandler) List(c *gin.Context) {
	providerID, ok := queryID(c, "provider_id")
	if !ok {
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		limit, _ := strconv.Atoi(c.Query("limit"))
		bookings, err := h.scheduler.Upcoming(c.Request.Context(), limit)
		if err != nil {
			httperr.FromError(c, err)
			return
		}
		httpresp.List(c, dto.BookingList(bookings))
		return
	}

	date, err := scheduling.ParseDay(dateStr, h.loc)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	bookings, err := h.scheduler.ListByDate(c.Request.Context(), date, providerID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, dto.BookingList(bookings))
}

func (h *BookingHandler) ListByMonth(c *gin.Context) {
	providerID, ok := queryID(c, "provider_id")
	if !ok {
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Invalid year.")
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		httperr.BadRequest(c, "invalid_month", "Invalid month.")
		return
	}

	bookings, err := h.scheduler.ListByMonth(c.Request.Context(), year, time.Month(month), providerID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":     year,
		"month":    month,
		"bookings": dto.BookingList(bookings),
	})
}

func (h *BookingHandler) Availability(c *gin.Context) {
	providerID, ok := queryID(c, "provider_id")
	if !ok {
		return
	}
	serviceID, ok := queryID(c, "service_id")
	if !ok {
		return
	}
	if providerID == nil || serviceID == nil {
		httperr.BadRequest(c, "missing_provider_or_service", "provider_id and service_id are required.")
		return
	}

	date, err := scheduling.ParseDay(c.Query("date"), h.loc)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	slots, err := h.scheduler.Availability(c.Request.Context(), domain.AvailabilityInput{
		ProviderID: *providerID,
		ServiceID:  *serviceID,
		Date:       date,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  date.Format("2006-01-02"),
		"slots": slots,
	})
}

// ======================================================
// STATUS / RESCHEDULE
// ======================================================

func (h *BookingHandler) MarkStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.scheduler.MarkStatus(c.Request.Context(), id, models.BookingStatus(req.Status), middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, b)
}

func (h *BookingHandler) Reschedule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	start, err := scheduling.ParseStart(req.Date, req.Time, h.loc)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	b, err := h.scheduler.Reschedule(c.Request.Context(), id, start, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, b)
}

// ======================================================
// PAYMENT
// ======================================================

// Pay waits a bounded time for the gateway. When it takes longer the
// request answers 202 and the outcome arrives on the realtime feed.
func (h *BookingHandler) Pay(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	attempt, err := h.payments.Pay(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	if attempt != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), paymentWait)
		defer cancel()

		if err := attempt.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				httpresp.Accepted(c, gin.H{
					"booking_id":     id,
					"payment_status": models.PaymentStatusPending,
				})
				return
			}
			httperr.FromError(c, err)
			return
		}
	}

	b, err := h.scheduler.Get(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, b)
}

func (h *BookingHandler) Reconcile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ReconcileRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.payments.Reconcile(
		c.Request.Context(),
		id,
		models.PaymentStatus(req.Status),
		req.Reference,
		middleware.UserID(c),
	)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, b)
}
