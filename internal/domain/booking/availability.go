package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barberbook/internal/models"
)

type AvailabilityInput struct {
	ProviderID uuid.UUID
	ServiceID  uuid.UUID
	Date       time.Time
}

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// OpeningHours is the shop day in minutes after midnight.
type OpeningHours struct {
	OpenMinute  int
	CloseMinute int
}

func (h OpeningHours) bounds(day time.Time) (time.Time, time.Time) {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return midnight.Add(time.Duration(h.OpenMinute) * time.Minute),
		midnight.Add(time.Duration(h.CloseMinute) * time.Minute)
}

// DayRange returns [00:00, next day 00:00) for day in its own location.
func DayRange(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// MonthRange returns the first instant of the month and of the next one.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// Slots walks the opening hours in steps of the service duration and keeps
// every slot CanSchedule accepts. Slots starting before notBefore are skipped.
func Slots(
	providerID uuid.UUID,
	day time.Time,
	hours OpeningHours,
	durationMinutes int,
	existing []models.Booking,
	notBefore time.Time,
) []TimeSlot {
	slots := []TimeSlot{}
	if durationMinutes <= 0 {
		return slots
	}

	dayStart, dayEnd := hours.bounds(day)
	step := time.Duration(durationMinutes) * time.Minute

	for cur := dayStart; !cur.Add(step).After(dayEnd); cur = cur.Add(step) {
		if cur.Before(notBefore) {
			continue
		}
		if !CanSchedule(providerID, cur, durationMinutes, existing) {
			continue
		}
		slots = append(slots, TimeSlot{
			Start: cur.Format("15:04"),
			End:   cur.Add(step).Format("15:04"),
		})
	}

	return slots
}
