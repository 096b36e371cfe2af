package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no-show"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Booking references are optional: a deleted Service detaches from its
// bookings, while deleting a Client or Provider removes them.
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ClientID *uuid.UUID `gorm:"type:uuid;index" json:"client_id"`
	Client   *Client    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"client,omitempty"`

	ProviderID *uuid.UUID `gorm:"type:uuid;index" json:"provider_id"`
	Provider   *Provider  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"provider,omitempty"`

	ServiceID *uuid.UUID `gorm:"type:uuid;index" json:"service_id"`
	Service   *Service   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service,omitempty"`

	StartAt   time.Time `gorm:"not null;index" json:"start_at"`
	TimeLabel string    `gorm:"size:20" json:"time_label"`

	Status        BookingStatus `gorm:"size:20;not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"size:20;not null" json:"payment_status"`

	ReminderID   string `gorm:"size:80;uniqueIndex" json:"reminder_id"`
	VisitCounted bool   `gorm:"not null;default:false" json:"visit_counted"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
