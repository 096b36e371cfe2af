package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barberbook/internal/models"
)

// MaxDurationMinutes bounds a service. Overlap queries only look this far
// back from a candidate start.
const MaxDurationMinutes = 12 * 60

// CanSchedule reports whether [start, start+duration) is free for the
// provider. Bookings of other providers and cancelled bookings are ignored;
// intervals are half-open, so a booking ending exactly at start is fine.
func CanSchedule(
	providerID uuid.UUID,
	start time.Time,
	durationMinutes int,
	existing []models.Booking,
) bool {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	for i := range existing {
		b := &existing[i]
		if b.ProviderID == nil || *b.ProviderID != providerID {
			continue
		}
		if !Blocks(b.Status) {
			continue
		}
		if overlaps(b.StartAt, End(b), start, end) {
			return false
		}
	}
	return true
}

// Window is the StartAt range that can contain bookings overlapping
// [start, end).
func Window(start, end time.Time) (time.Time, time.Time) {
	return start.Add(-MaxDurationMinutes * time.Minute), end
}

// overlaps treats both ranges as half-open, so abutting ranges are disjoint.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aEnd.After(bStart) && aStart.Before(bEnd)
}

// Without removes one booking from the list, used when moving a booking so
// it does not collide with itself.
func Without(bookings []models.Booking, id uuid.UUID) []models.Booking {
	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}
