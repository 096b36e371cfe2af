package reminder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberbook/internal/realtime"
)

const EventReminderDue = "booking.reminder_due"

// NewServer builds the asynq worker that consumes the reminder queue.
func NewServer(opt asynq.RedisConnOpt, concurrency int, log *zap.Logger) *asynq.Server {
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			DefaultQueue: 1,
		},
		Logger: log.Sugar(),
	})
}

func NewMux(feed realtime.Publisher, log *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingReminder, Handler(feed, log))
	return mux
}

// Handler delivers a due reminder. Delivery is a log line plus a realtime
// event; push notifications are not wired.
func Handler(feed realtime.Publisher, log *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p Payload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("reminder: invalid payload: %v: %w", err, asynq.SkipRetry)
		}

		log.Info("reminder due",
			zap.String("reminder_id", p.ReminderID),
			zap.String("message", p.Message),
		)

		if feed != nil {
			feed.Publish(EventReminderDue, p)
		}
		return nil
	}
}
