package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberbook/internal/realtime"
)

type Event struct {
	UserID   *uuid.UUID
	Action   string
	Entity   string
	EntityID string
	Metadata any
}

// Dispatcher writes audit events off the request path. A nil Dispatcher is
// valid and drops everything.
type Dispatcher struct {
	logger *Logger
	log    *zap.Logger
	feed   realtime.Publisher
	queue  chan Event
	wg     sync.WaitGroup

	// mu guards closed; Dispatch holds the read side while sending.
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(logger *Logger, log *zap.Logger, feed realtime.Publisher) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{
		logger: logger,
		log:    log,
		feed:   feed,
		queue:  make(chan Event, 100), // buffer seguro
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for ev := range d.queue {
		if d.logger != nil {
			if err := d.logger.Log(
				context.Background(),
				ev.UserID,
				ev.Action,
				ev.Entity,
				ev.EntityID,
				ev.Metadata,
			); err != nil {
				d.log.Warn("audit error", zap.String("action", ev.Action), zap.Error(err))
			}
		}

		if d.feed != nil {
			d.feed.Publish(ev.Action, map[string]any{
				"entity":    ev.Entity,
				"entity_id": ev.EntityID,
				"metadata":  ev.Metadata,
			})
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("audit dispatcher closed, dropping event", zap.String("action", ev.Action))
		return
	}

	select {
	case d.queue <- ev:
		// enviado
	default:
		// fila cheia → descartamos audit (nunca quebrar API)
		d.log.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close stops accepting events and waits for the queue to drain.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
}
