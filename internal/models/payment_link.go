package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentLink struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Label      string    `gorm:"size:100;not null" json:"label"`
	Platform   string    `gorm:"size:40;not null" json:"platform"`
	URL        string    `gorm:"size:500;not null" json:"url"`
	QRImageRef string    `gorm:"size:255" json:"qr_image_ref"`

	CreatedAt time.Time `json:"created_at"`
}

func (l *PaymentLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
