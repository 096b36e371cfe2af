package waitlist

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barberbook/internal/models"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// ListWaiting returns waiting entries ordered by created_at, id.
	ListWaiting(ctx context.Context) ([]models.WaitlistEntry, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.WaitlistEntry, error)
	Insert(ctx context.Context, e *models.WaitlistEntry) error
	Update(ctx context.Context, e *models.WaitlistEntry) error

	// ServiceDurations feeds the wait estimate.
	ServiceDurations(ctx context.Context) ([]int, error)
}
