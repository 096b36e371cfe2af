package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Haircut is a visit record. PhotoRef is an opaque storage handle.
type Haircut struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ClientID *uuid.UUID `gorm:"type:uuid;index" json:"client_id"`
	Client   *Client    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	TakenAt  time.Time `gorm:"not null" json:"taken_at"`
	Notes    string    `gorm:"type:text" json:"notes"`
	PhotoRef string    `gorm:"size:255" json:"photo_ref"`

	CreatedAt time.Time `json:"created_at"`
}

func (h *Haircut) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
