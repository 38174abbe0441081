package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Lesson struct {
	ID      string `gorm:"type:uuid;primaryKey"`
	GroupID string `gorm:"type:uuid;not null;index"`
	Group   Group  `gorm:"foreignKey:GroupID"`

	LessonNumber int    `gorm:"not null"`
	Title        string `gorm:"size:255;not null"`
	Description  string `gorm:"type:text"`

	Date      time.Time `gorm:"type:date;not null;index"`
	StartTime string    `gorm:"size:5;not null"` // HH:MM
	EndTime   string    `gorm:"size:5;not null"`

	Status   LessonStatus `gorm:"size:50;not null;default:scheduled;index"`
	Homework string       `gorm:"type:text"`
	Notes    string       `gorm:"type:text"`

	// Overrides the group teacher for a single lesson (substitutions).
	TeacherID *string `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// StartsAt combines the lesson date with its HH:MM start time.
func (l *Lesson) StartsAt() time.Time {
	t, err := time.Parse("15:04", l.StartTime)
	if err != nil {
		return l.Date
	}
	return time.Date(l.Date.Year(), l.Date.Month(), l.Date.Day(), t.Hour(), t.Minute(), 0, 0, l.Date.Location())
}
