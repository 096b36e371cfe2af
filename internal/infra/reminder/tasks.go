package reminder

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeBookingReminder = "booking:reminder"

type Payload struct {
	ReminderID string    `json:"reminder_id"`
	FireAt     time.Time `json:"fire_at"`
	Message    string    `json:"message"`
}

// NewTask builds the delayed task. The task id is the reminder id, which is
// what makes Schedule idempotent.
func NewTask(p Payload, queue string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(p.FireAt),
		asynq.TaskID(p.ReminderID),
		asynq.Queue(queue),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}
