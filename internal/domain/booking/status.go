package booking

import (
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
)

// ===============================
// Booking Status
// ===============================

func InitialStatus() models.BookingStatus {
	return models.BookingStatusScheduled
}

// ParseStatus accepts any of the four statuses. Transitions between them are
// unrestricted so staff can correct mistakes (completed -> scheduled, etc).
func ParseStatus(raw string) (models.BookingStatus, error) {
	switch s := models.BookingStatus(raw); s {
	case models.BookingStatusScheduled,
		models.BookingStatusCompleted,
		models.BookingStatusCancelled,
		models.BookingStatusNoShow:
		return s, nil
	}
	return "", httperr.ErrValidation("invalid_status")
}

// ReleasesReminder reports whether entering status makes the pending
// reminder pointless.
func ReleasesReminder(status models.BookingStatus) bool {
	return status == models.BookingStatusCancelled || status == models.BookingStatusCompleted
}

// Blocks reports whether a booking in this status occupies its time range.
func Blocks(status models.BookingStatus) bool {
	return status != models.BookingStatusCancelled
}
