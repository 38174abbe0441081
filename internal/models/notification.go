package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID     string `gorm:"type:uuid;primaryKey"`
	UserID string `gorm:"type:uuid;not null;index"`
	User   User   `gorm:"foreignKey:UserID"`

	Type    NotificationType `gorm:"size:50;not null;default:info"`
	Title   string           `gorm:"size:255;not null"`
	Message string           `gorm:"type:text;not null"`

	IsRead         bool `gorm:"not null;default:false;index"`
	SentToTelegram bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
