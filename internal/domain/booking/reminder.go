package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/BruksfildServices01/barberbook/internal/models"
)

// ReminderScheduler delivers booking reminders. Both calls must be
// idempotent: scheduling an existing id keeps one reminder, cancelling an
// unknown id is not an error.
type ReminderScheduler interface {
	Schedule(ctx context.Context, reminderID string, fireAt time.Time, message string) error
	Cancel(ctx context.Context, reminderID string) error
}

// ReminderMessage reads like "Jordan with Avery starts in 1 hour."
func ReminderMessage(b *models.Booking, lead time.Duration) string {
	client := "Client"
	if b.Client != nil && b.Client.Name != "" {
		client = b.Client.Name
	}
	barber := "barber"
	if b.Provider != nil && b.Provider.Name != "" {
		barber = b.Provider.Name
	}
	return fmt.Sprintf("%s with %s starts in %s.", client, barber, humanLead(lead))
}

func humanLead(d time.Duration) string {
	mins := int(d.Minutes())
	switch {
	case mins == 60:
		return "1 hour"
	case mins > 0 && mins%60 == 0:
		return fmt.Sprintf("%d hours", mins/60)
	}
	return fmt.Sprintf("%d minutes", mins)
}

// ReminderFireAt is start minus lead. ok is false when that moment has
// already passed and no reminder should be scheduled.
func ReminderFireAt(start time.Time, lead time.Duration, now time.Time) (time.Time, bool) {
	fireAt := start.Add(-lead)
	return fireAt, fireAt.After(now)
}

// CancelReminders drops the pending reminder of every scheduled booking in
// the list. It keeps going past failures and returns them combined.
func CancelReminders(ctx context.Context, r ReminderScheduler, bookings []models.Booking) error {
	if r == nil {
		return nil
	}
	var errs error
	for i := range bookings {
		b := &bookings[i]
		if b.Status != models.BookingStatusScheduled || b.ReminderID == "" {
			continue
		}
		errs = multierr.Append(errs, r.Cancel(ctx, b.ReminderID))
	}
	return errs
}
