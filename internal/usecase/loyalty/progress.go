package loyalty

import (
	"context"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/domain/loyalty"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
)

type ClientProgress struct {
	ClientID          uuid.UUID `json:"client_id"`
	Name              string    `json:"name"`
	Visits            int       `json:"visits"`
	VisitsUntilReward int       `json:"visits_until_reward"`
	Eligible          bool      `json:"eligible"`
}

type Service struct {
	repo domain.Repository
}

func New(repo domain.Repository) *Service {
	return &Service{repo: repo}
}

// Progress lists every client, most visits first.
func (s *Service) Progress(ctx context.Context) ([]ClientProgress, error) {
	clients, err := s.repo.ListClients(ctx, domain.ClientFilter{OrderByVisits: true})
	if err != nil {
		return nil, httperr.Persist("loyalty_list_failed", err)
	}

	out := make([]ClientProgress, 0, len(clients))
	for _, c := range clients {
		out = append(out, ClientProgress{
			ClientID:          c.ID,
			Name:              c.Name,
			Visits:            c.VisitsCount,
			VisitsUntilReward: loyalty.VisitsUntilReward(c.VisitsCount),
			Eligible:          loyalty.IsEligible(c.VisitsCount),
		})
	}
	return out, nil
}

func (s *Service) ForClient(ctx context.Context, id uuid.UUID) (*ClientProgress, error) {
	c, err := s.repo.FindClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ClientProgress{
		ClientID:          c.ID,
		Name:              c.Name,
		Visits:            c.VisitsCount,
		VisitsUntilReward: loyalty.VisitsUntilReward(c.VisitsCount),
		Eligible:          loyalty.IsEligible(c.VisitsCount),
	}, nil
}
