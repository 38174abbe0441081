package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Course struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`

	DurationMonths        int `gorm:"not null;default:3"`
	LessonsPerWeek        int `gorm:"not null;default:3"`
	LessonDurationMinutes int `gorm:"not null;default:90"`

	// Stored as numeric strings to avoid float drift on money.
	Price         string `gorm:"type:numeric(12,2);not null;default:0"`
	DiscountPrice string `gorm:"type:numeric(12,2)"`

	Status CourseStatus `gorm:"size:50;not null;default:published;index"`

	Groups []Group `gorm:"foreignKey:CourseID"`
	Tests  []Test  `gorm:"foreignKey:CourseID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Group struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	CourseID  string `gorm:"type:uuid;not null;index"`
	Course    Course `gorm:"foreignKey:CourseID"`
	TeacherID string `gorm:"type:uuid;index"`
	Teacher   User   `gorm:"foreignKey:TeacherID"`

	Name string `gorm:"size:255;not null"`

	// Weekday names the group meets on, e.g. {monday,wednesday,friday}.
	Days      pq.StringArray `gorm:"type:text[]"`
	StartTime string         `gorm:"size:5"` // HH:MM
	Capacity  int            `gorm:"not null;default:15"`
	IsActive  bool           `gorm:"not null;default:true"`

	Enrollments []Enrollment `gorm:"foreignKey:GroupID"`
	Lessons     []Lesson     `gorm:"foreignKey:GroupID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

type Enrollment struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	StudentID string `gorm:"type:uuid;not null;index"`
	Student   User   `gorm:"foreignKey:StudentID"`
	GroupID   string `gorm:"type:uuid;not null;index"`
	Group     Group  `gorm:"foreignKey:GroupID"`

	Status      EnrollmentStatus `gorm:"size:50;not null;default:pending;index"`
	AgreedPrice string           `gorm:"type:numeric(12,2);not null"`
	PaidAmount  string           `gorm:"type:numeric(12,2);not null;default:0"`

	EnrolledAt  time.Time
	CompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
