package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payment struct {
	ID           string  `gorm:"type:uuid;primaryKey"`
	UserID       string  `gorm:"type:uuid;not null;index"`
	User         User    `gorm:"foreignKey:UserID"`
	EnrollmentID *string `gorm:"type:uuid;index"`

	Amount   string        `gorm:"type:numeric(12,2);not null"`
	Currency string        `gorm:"size:3;not null;default:UZS"`
	Method   PaymentMethod `gorm:"size:50;not null"`
	Status   PaymentStatus `gorm:"size:50;not null;default:pending;index"`

	Description string `gorm:"type:text"`
	PaidAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
