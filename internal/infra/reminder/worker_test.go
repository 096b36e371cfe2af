package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type captureFeed struct {
	eventType string
	data      any
}

func (f *captureFeed) Publish(eventType string, data any) {
	f.eventType = eventType
	f.data = data
}

func TestNewTask_UsesReminderIDAsTaskID(t *testing.T) {
	fireAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	task, opts, err := NewTask(Payload{ReminderID: "booking-reminder-x", FireAt: fireAt}, DefaultQueue)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TypeBookingReminder {
		t.Fatalf("unexpected type %q", task.Type())
	}

	var foundID, foundAt bool
	for _, o := range opts {
		switch o.Type() {
		case asynq.TaskIDOpt:
			foundID = o.Value() == "booking-reminder-x"
		case asynq.ProcessAtOpt:
			foundAt = o.Value().(time.Time).Equal(fireAt)
		}
	}
	if !foundID || !foundAt {
		t.Fatalf("expected task id and process-at options, got %v", opts)
	}
}

func TestHandler_PublishesDueReminder(t *testing.T) {
	task, _, _ := NewTask(Payload{ReminderID: "booking-reminder-y", Message: "Corte at 10:00 AM"}, DefaultQueue)
	feed := &captureFeed{}

	if err := Handler(feed, zap.NewNop())(context.Background(), task); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if feed.eventType != EventReminderDue {
		t.Fatalf("expected %s, got %q", EventReminderDue, feed.eventType)
	}
	if p, ok := feed.data.(Payload); !ok || p.ReminderID != "booking-reminder-y" {
		t.Fatalf("unexpected payload %+v", feed.data)
	}
}

func TestHandler_BadPayloadSkipsRetry(t *testing.T) {
	task := asynq.NewTask(TypeBookingReminder, []byte("{"))

	err := Handler(nil, zap.NewNop())(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}
