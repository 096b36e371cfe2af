package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WaitlistStatus string

const (
	WaitlistStatusWaiting   WaitlistStatus = "waiting"
	WaitlistStatusServed    WaitlistStatus = "served"
	WaitlistStatusCancelled WaitlistStatus = "cancelled"
)

// WaitlistEntry is a walk-in. ClientName is free text, not a Client reference.
type WaitlistEntry struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ClientName string         `gorm:"size:100;not null" json:"client_name"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"created_at"`
	Status     WaitlistStatus `gorm:"size:20;not null;index" json:"status"`
	ClosedAt   *time.Time     `json:"closed_at"`
}

func (e *WaitlistEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
