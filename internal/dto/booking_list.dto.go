package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/models"
)

type BookingListDTO struct {
	ID            uuid.UUID            `json:"id"`
	StartAt       time.Time            `json:"start_at"`
	EndAt         time.Time            `json:"end_at"`
	TimeLabel     string               `json:"time_label"`
	Status        models.BookingStatus `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	ClientName    string               `json:"client_name"`
	ProviderName  string               `json:"provider_name"`
	ServiceName   string               `json:"service_name"`
}

func BookingList(bookings []models.Booking) []BookingListDTO {
	out := make([]BookingListDTO, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]

		item := BookingListDTO{
			ID:            b.ID,
			StartAt:       b.StartAt,
			EndAt:         booking.End(b),
			TimeLabel:     b.TimeLabel,
			Status:        b.Status,
			PaymentStatus: b.PaymentStatus,
		}
		if b.Client != nil {
			item.ClientName = b.Client.Name
		}
		if b.Provider != nil {
			item.ProviderName = b.Provider.Name
		}
		if b.Service != nil {
			item.ServiceName = b.Service.Name
		}
		out = append(out, item)
	}
	return out
}
