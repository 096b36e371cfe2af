package waitlist

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberbook/internal/audit"
	"github.com/BruksfildServices01/barberbook/internal/cache"
	"github.com/BruksfildServices01/barberbook/internal/clock"
	domain "github.com/BruksfildServices01/barberbook/internal/domain/waitlist"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
	"github.com/BruksfildServices01/barberbook/internal/realtime"
)

const (
	boardKey = "waitlist:board"

	EventWaitlistChanged = "waitlist.changed"
)

// BoardEntry is one row of the walk-in board.
type BoardEntry struct {
	ID                   uuid.UUID `json:"id"`
	ClientName           string    `json:"client_name"`
	Position             int       `json:"position"`
	EstimatedWaitMinutes int       `json:"estimated_wait_minutes"`
}

type Manager struct {
	repo  domain.Repository
	clock clock.Clock
	cache cache.Store
	feed  realtime.Publisher
	audit *audit.Dispatcher
	log   *zap.Logger

	// gen conta invalidações; Board só grava se nada mudou durante o cálculo.
	mu  sync.Mutex
	gen uint64
}

func NewManager(
	repo domain.Repository,
	clk clock.Clock,
	store cache.Store,
	feed realtime.Publisher,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *Manager {
	if store == nil {
		store = cache.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		repo:  repo,
		clock: clk,
		cache: store,
		feed:  feed,
		audit: audit,
		log:   log,
	}
}

// ======================================================
// QUEUE
// ======================================================

func (m *Manager) ActiveEntries(ctx context.Context) ([]models.WaitlistEntry, error) {
	entries, err := m.repo.ListWaiting(ctx)
	if err != nil {
		return nil, httperr.Persist("waitlist_list_failed", err)
	}
	return domain.Active(entries), nil
}

// Position is 1-based; an entry that is no longer waiting sits after the queue.
func (m *Manager) Position(ctx context.Context, id uuid.UUID) (int, error) {
	active, err := m.ActiveEntries(ctx)
	if err != nil {
		return 0, err
	}
	return domain.Position(active, id), nil
}

func (m *Manager) EstimatedWaitMinutes(position int, durations []int) int {
	return domain.EstimatedWaitMinutes(position, durations)
}

// Board is the queue with positions and estimates, served from cache when
// possible.
func (m *Manager) Board(ctx context.Context) ([]BoardEntry, error) {
	var board []BoardEntry
	hit, err := m.cache.Get(ctx, boardKey, &board)
	if err != nil {
		m.log.Warn("waitlist board cache read failed", zap.Error(err))
	}
	if hit {
		return board, nil
	}

	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	active, err := m.ActiveEntries(ctx)
	if err != nil {
		return nil, err
	}

	durations, err := m.repo.ServiceDurations(ctx)
	if err != nil {
		return nil, httperr.Persist("waitlist_list_failed", err)
	}

	board = make([]BoardEntry, 0, len(active))
	for i, e := range active {
		pos := i + 1
		board = append(board, BoardEntry{
			ID:                   e.ID,
			ClientName:           e.ClientName,
			Position:             pos,
			EstimatedWaitMinutes: domain.EstimatedWaitMinutes(pos, durations),
		})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return board, nil
	}
	if err := m.cache.Set(ctx, boardKey, board); err != nil {
		m.log.Warn("waitlist board cache write failed", zap.Error(err))
	}
	return board, nil
}

// InvalidateBoard drops the cached board. Service catalog changes call it
// since the estimate depends on service durations.
func (m *Manager) InvalidateBoard(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	if err := m.cache.Delete(ctx, boardKey); err != nil {
		m.log.Warn("waitlist board cache invalidation failed", zap.Error(err))
	}
}

// ======================================================
// MUTATIONS
// ======================================================

func (m *Manager) AddEntry(ctx context.Context, name string, userID *uuid.UUID) (*models.WaitlistEntry, error) {
	e, err := domain.NewEntry(name, m.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := m.repo.Insert(ctx, e); err != nil {
		return nil, httperr.ErrPersistence("waitlist_entry_not_saved", err)
	}

	m.changed(ctx, userID, "waitlist_entry_added", e)
	return e, nil
}

func (m *Manager) MarkServed(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*models.WaitlistEntry, error) {
	return m.close(ctx, id, models.WaitlistStatusServed, userID)
}

func (m *Manager) Cancel(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*models.WaitlistEntry, error) {
	return m.close(ctx, id, models.WaitlistStatusCancelled, userID)
}

func (m *Manager) close(
	ctx context.Context,
	id uuid.UUID,
	status models.WaitlistStatus,
	userID *uuid.UUID,
) (*models.WaitlistEntry, error) {

	var entry *models.WaitlistEntry

	err := m.repo.Transaction(ctx, func(tx domain.Repository) error {
		e, err := tx.FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := domain.Close(e, status, m.clock.Now()); err != nil {
			return err
		}
		entry = e
		return tx.Update(ctx, e)
	})
	if err != nil {
		return nil, httperr.Persist("waitlist_entry_not_saved", err)
	}

	m.changed(ctx, userID, "waitlist_entry_"+string(status), entry)
	return entry, nil
}

// changed drops the cached board, tells connected screens and records the
// action.
func (m *Manager) changed(ctx context.Context, userID *uuid.UUID, action string, e *models.WaitlistEntry) {
	m.InvalidateBoard(ctx)

	if m.feed != nil {
		m.feed.Publish(EventWaitlistChanged, map[string]any{
			"action": action,
			"entry":  e,
		})
	}

	m.audit.Dispatch(audit.Event{
		UserID:   userID,
		Action:   action,
		Entity:   "waitlist_entry",
		EntityID: e.ID.String(),
	})
}
