package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cliente simples, sem login. VisitsCount só cresce, exceto por correção manual.
type Client struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;index" json:"name"`
	Phone       string    `gorm:"size:20" json:"phone"`
	Notes       string    `gorm:"type:text" json:"notes"`
	VisitsCount int       `gorm:"not null;default:0" json:"visits_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
