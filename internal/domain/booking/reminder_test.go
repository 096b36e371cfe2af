package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/BruksfildServices01/barberbook/internal/models"
)

type cancelRecorder struct {
	ids  []string
	fail string
}

func (r *cancelRecorder) Schedule(context.Context, string, time.Time, string) error { return nil }

func (r *cancelRecorder) Cancel(ctx context.Context, id string) error {
	r.ids = append(r.ids, id)
	if id == r.fail {
		return errors.New("redis down")
	}
	return nil
}

func TestCancelReminders_OnlyScheduled(t *testing.T) {
	bookings := []models.Booking{
		{ReminderID: "r-1", Status: models.BookingStatusScheduled},
		{ReminderID: "r-2", Status: models.BookingStatusCancelled},
		{ReminderID: "r-3", Status: models.BookingStatusScheduled},
		{ReminderID: "r-4", Status: models.BookingStatusCompleted},
	}

	r := &cancelRecorder{fail: "r-1"}
	err := CancelReminders(context.Background(), r, bookings)

	if len(r.ids) != 2 || r.ids[0] != "r-1" || r.ids[1] != "r-3" {
		t.Fatalf("expected r-1 and r-3 cancelled, got %v", r.ids)
	}
	if len(multierr.Errors(err)) != 1 {
		t.Fatalf("expected one combined failure, got %v", err)
	}

	if err := CancelReminders(context.Background(), nil, bookings); err != nil {
		t.Fatalf("nil scheduler must be a no-op, got %v", err)
	}
}
