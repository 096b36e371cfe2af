package waitlist

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
)

// FallbackAverageMinutes is used when no service duration is known.
const FallbackAverageMinutes = 30

// Active keeps waiting entries in FIFO order. Equal timestamps are ordered
// by id so the queue is deterministic.
func Active(entries []models.WaitlistEntry) []models.WaitlistEntry {
	out := make([]models.WaitlistEntry, 0, len(entries))
	for _, e := range entries {
		if e.Status == models.WaitlistStatusWaiting {
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Position is 1-based. An entry that is not waiting gets len(active)+1.
func Position(active []models.WaitlistEntry, id uuid.UUID) int {
	for i, e := range active {
		if e.ID == id {
			return i + 1
		}
	}
	return len(active) + 1
}

func EstimatedWaitMinutes(position int, durations []int) int {
	if position <= 0 {
		return 0
	}
	return int(math.Round(float64(position) * average(durations)))
}

func average(durations []int) float64 {
	if len(durations) == 0 {
		return FallbackAverageMinutes
	}
	total := 0
	for _, d := range durations {
		total += d
	}
	return float64(total) / float64(len(durations))
}

func NewEntry(name string, now time.Time) (*models.WaitlistEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, httperr.ErrValidation("invalid_name")
	}
	return &models.WaitlistEntry{
		ID:         uuid.New(),
		ClientName: name,
		CreatedAt:  now,
		Status:     models.WaitlistStatusWaiting,
	}, nil
}

// Close moves a waiting entry to served or cancelled. Closed entries stay closed.
func Close(e *models.WaitlistEntry, status models.WaitlistStatus, now time.Time) error {
	if e.Status != models.WaitlistStatusWaiting {
		return httperr.ErrConflict("waitlist_entry_closed")
	}
	e.Status = status
	e.ClosedAt = &now
	return nil
}
