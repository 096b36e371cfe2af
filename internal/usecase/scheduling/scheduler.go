package scheduling

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberbook/internal/audit"
	"github.com/BruksfildServices01/barberbook/internal/clock"
	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/models"
)

const DefaultReminderLead = time.Hour

type Options struct {
	Hours        domain.OpeningHours
	ReminderLead time.Duration
}

// Scheduler owns booking creation, status changes and conflict detection.
type Scheduler struct {
	repo      domain.Repository
	clock     clock.Clock
	reminders domain.ReminderScheduler
	audit     *audit.Dispatcher
	log       *zap.Logger

	hours domain.OpeningHours
	lead  time.Duration
}

func NewScheduler(
	repo domain.Repository,
	clk clock.Clock,
	reminders domain.ReminderScheduler,
	audit *audit.Dispatcher,
	log *zap.Logger,
	opts Options,
) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ReminderLead <= 0 {
		opts.ReminderLead = DefaultReminderLead
	}
	return &Scheduler{
		repo:      repo,
		clock:     clk,
		reminders: reminders,
		audit:     audit,
		log:       log,
		hours:     opts.Hours,
		lead:      opts.ReminderLead,
	}
}

// ======================================================
// REMINDERS (fire-and-forget)
// ======================================================

func (s *Scheduler) scheduleReminder(ctx context.Context, b *models.Booking) {
	if s.reminders == nil {
		return
	}

	fireAt, ok := domain.ReminderFireAt(b.StartAt, s.lead, s.clock.Now())
	if !ok {
		return
	}

	if err := s.reminders.Schedule(ctx, b.ReminderID, fireAt, domain.ReminderMessage(b, s.lead)); err != nil {
		s.log.Warn("reminder schedule failed",
			zap.String("booking_id", b.ID.String()),
			zap.String("reminder_id", b.ReminderID),
			zap.Error(err),
		)
	}
}

func (s *Scheduler) cancelReminder(ctx context.Context, b *models.Booking) {
	if s.reminders == nil {
		return
	}

	if err := s.reminders.Cancel(ctx, b.ReminderID); err != nil {
		s.log.Warn("reminder cancel failed",
			zap.String("booking_id", b.ID.String()),
			zap.String("reminder_id", b.ReminderID),
			zap.Error(err),
		)
	}
}
