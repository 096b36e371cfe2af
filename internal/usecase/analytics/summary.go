package analytics

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barberbook/internal/clock"
	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
)

type Summary struct {
	TotalBookings     int     `json:"total_bookings"`
	UpcomingBookings  int     `json:"upcoming_bookings"`
	CompletedBookings int     `json:"completed_bookings"`
	Revenue           float64 `json:"revenue"`
	TopService        string  `json:"top_service"`
	TopClient         string  `json:"top_client"`
}

type Service struct {
	repo  domain.Repository
	clock clock.Clock
}

func New(repo domain.Repository, clk clock.Clock) *Service {
	return &Service{repo: repo, clock: clk}
}

// Summary counts over every booking. Revenue is the price of completed
// bookings that still reference a service.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	bookings, err := s.repo.ListBookings(ctx, domain.BookingFilter{})
	if err != nil {
		return nil, httperr.Persist("analytics_failed", err)
	}
	services, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, httperr.Persist("analytics_failed", err)
	}
	clients, err := s.repo.ListClients(ctx, domain.ClientFilter{OrderByVisits: true})
	if err != nil {
		return nil, httperr.Persist("analytics_failed", err)
	}

	now := s.clock.Now()
	out := &Summary{TotalBookings: len(bookings)}
	perService := map[uuid.UUID]int{}

	for _, b := range bookings {
		if !b.StartAt.Before(now) {
			out.UpcomingBookings++
		}
		if b.ServiceID != nil {
			perService[*b.ServiceID]++
		}
		if b.Status == models.BookingStatusCompleted {
			out.CompletedBookings++
			if b.Service != nil {
				out.Revenue += b.Service.Price
			}
		}
	}

	out.TopService = topService(services, perService)
	if len(clients) > 0 {
		out.TopClient = clients[0].Name
	}
	return out, nil
}

// topService picks the most booked service, ties going to the first by
// name. Without bookings it falls back to the first service.
func topService(services []models.Service, counts map[uuid.UUID]int) string {
	if len(services) == 0 {
		return ""
	}
	best, bestCount := services[0].Name, 0
	for _, svc := range services {
		if n := counts[svc.ID]; n > bestCount {
			best, bestCount = svc.Name, n
		}
	}
	return best
}
