package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
)

const DefaultQueue = "reminders"

// AsynqScheduler keeps one delayed asynq task per reminder id.
type AsynqScheduler struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
	log       *zap.Logger
}

func NewAsynqScheduler(opt asynq.RedisConnOpt, log *zap.Logger) *AsynqScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AsynqScheduler{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		queue:     DefaultQueue,
		log:       log,
	}
}

func (s *AsynqScheduler) Schedule(
	ctx context.Context,
	reminderID string,
	fireAt time.Time,
	message string,
) error {
	task, opts, err := NewTask(Payload{
		ReminderID: reminderID,
		FireAt:     fireAt,
		Message:    message,
	}, s.queue)
	if err != nil {
		return fmt.Errorf("reminder: build task: %w", err)
	}

	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// já agendado
		return nil
	}
	if err != nil {
		return fmt.Errorf("reminder: enqueue %s: %w", reminderID, err)
	}

	s.log.Debug("reminder scheduled",
		zap.String("reminder_id", info.ID),
		zap.Time("fire_at", fireAt),
	)
	return nil
}

func (s *AsynqScheduler) Cancel(ctx context.Context, reminderID string) error {
	err := s.inspector.DeleteTask(s.queue, reminderID)
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reminder: cancel %s: %w", reminderID, err)
	}
	return nil
}

func (s *AsynqScheduler) Close() error {
	if err := s.inspector.Close(); err != nil {
		s.log.Warn("reminder: close inspector", zap.Error(err))
	}
	return s.client.Close()
}

var _ domain.ReminderScheduler = (*AsynqScheduler)(nil)
