// Package seed loads a small demo shop into an empty database.
package seed

import (
	"context"
	"fmt"
	"time"

	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/models"
)

type Result struct {
	Skipped   bool
	Providers int
	Services  int
	Clients   int
	Bookings  int
}

var providers = []models.Provider{
	{Name: "Avery Fade", Bio: "Precision fades and beard sculpting", Active: true},
	{Name: "Sky Razor", Bio: "Razor-sharp shaves with classic vibes", Active: true},
}

var services = []models.Service{
	{Name: "Classic Cut", DurationMin: 30, Price: 30},
	{Name: "Skin Fade", DurationMin: 45, Price: 45},
	{Name: "Beard Trim", DurationMin: 15, Price: 20},
}

var clients = []models.Client{
	{Name: "Jordan Miles", Phone: "555-0101", Notes: "Prefers skin fades", VisitsCount: 2},
	{Name: "Riley Brooks", Phone: "555-0112", Notes: "Leave top long", VisitsCount: 5},
	{Name: "Taylor Reeves", Phone: "555-0123", Notes: "Add hard part", VisitsCount: 1},
	{Name: "Casey Vega", Phone: "555-0134", Notes: "Sensitive skin", VisitsCount: 3},
	{Name: "Morgan Hale", Phone: "555-0145", Notes: "Usually books Saturdays", VisitsCount: 4},
}

// Run inserts the demo data in one transaction. A database that already has
// providers is left alone.
func Run(ctx context.Context, repo domain.Repository, now time.Time) (Result, error) {
	existing, err := repo.ListProviders(ctx, false)
	if err != nil {
		return Result{}, fmt.Errorf("seed: list providers: %w", err)
	}
	if len(existing) > 0 {
		return Result{Skipped: true}, nil
	}

	var res Result
	err = repo.Transaction(ctx, func(tx domain.Repository) error {
		res = Result{}

		var firstProvider *models.Provider
		for i := range providers {
			p := providers[i]
			if err := tx.InsertProvider(ctx, &p); err != nil {
				return fmt.Errorf("seed: provider %s: %w", p.Name, err)
			}
			if firstProvider == nil {
				firstProvider = &p
			}
			res.Providers++
		}

		var firstService *models.Service
		for i := range services {
			s := services[i]
			if err := tx.InsertService(ctx, &s); err != nil {
				return fmt.Errorf("seed: service %s: %w", s.Name, err)
			}
			if firstService == nil {
				firstService = &s
			}
			res.Services++
		}

		var firstClient *models.Client
		for i := range clients {
			c := clients[i]
			if err := tx.InsertClient(ctx, &c); err != nil {
				return fmt.Errorf("seed: client %s: %w", c.Name, err)
			}
			if firstClient == nil {
				firstClient = &c
			}
			res.Clients++
		}

		// um horário na próxima hora
		b := domain.New(firstClient, firstProvider, firstService, now.Add(time.Hour).Truncate(time.Minute))
		if err := tx.InsertBooking(ctx, b); err != nil {
			return fmt.Errorf("seed: booking: %w", err)
		}
		res.Bookings++
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
