package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barberbook/internal/models"
)

const reminderPrefix = "booking-reminder-"

const timeLabelLayout = "3:04 PM"

// ReminderID is stable for a booking, so retried schedules collapse into one reminder.
func ReminderID(id uuid.UUID) string {
	return reminderPrefix + id.String()
}

// End is start + service duration. A booking without a service has zero
// duration, so anything may be booked right next to it.
func End(b *models.Booking) time.Time {
	if b.Service == nil {
		return b.StartAt
	}
	return b.StartAt.Add(time.Duration(b.Service.DurationMin) * time.Minute)
}

func TimeLabel(start time.Time) string {
	return start.Format(timeLabelLayout)
}

// ===============================
// Domain Actions
// ===============================

func New(
	client *models.Client,
	provider *models.Provider,
	service *models.Service,
	start time.Time,
) *models.Booking {
	id := uuid.New()

	b := &models.Booking{
		ID:            id,
		StartAt:       start,
		TimeLabel:     TimeLabel(start),
		Status:        InitialStatus(),
		PaymentStatus: models.PaymentStatusUnpaid,
		ReminderID:    ReminderID(id),
		Client:        client,
		Provider:      provider,
		Service:       service,
	}
	if client != nil {
		b.ClientID = &client.ID
	}
	if provider != nil {
		b.ProviderID = &provider.ID
	}
	if service != nil {
		b.ServiceID = &service.ID
	}
	return b
}

// ApplyStatus sets the new status and its timestamps. It returns true when
// the client's visit counter must be incremented: the booking enters
// completed, has a client, and was never counted before.
func ApplyStatus(b *models.Booking, status models.BookingStatus, now time.Time) bool {
	b.Status = status

	switch status {
	case models.BookingStatusCancelled:
		b.CancelledAt = &now
	case models.BookingStatusCompleted:
		b.CompletedAt = &now
	}

	if status != models.BookingStatusCompleted || b.ClientID == nil || b.VisitCounted {
		return false
	}
	b.VisitCounted = true
	return true
}
