package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Test is an exam definition together with its question tree. Definitions
// are treated as read-only by the attempt lifecycle; edits go through the
// authoring endpoints only.
type Test struct {
	ID       string  `gorm:"type:uuid;primaryKey"`
	CourseID *string `gorm:"type:uuid;index"` // nil for standalone/public tests
	Course   *Course `gorm:"foreignKey:CourseID"`

	TestType    TestType `gorm:"size:50;not null;default:course_test;index"`
	Title       string   `gorm:"size:255;not null"`
	Description string   `gorm:"type:text"`

	Duration     int  `gorm:"not null;default:30"` // minutes, 0 disables the deadline
	MaxScore     int  `gorm:"not null;default:100"`
	PassingScore int  `gorm:"not null;default:60"` // percentage threshold
	IsActive     bool `gorm:"not null;default:true"`

	AvailableFrom  *time.Time
	AvailableUntil *time.Time

	// Shared secret for gated tests (mock/entrance exams). Enforcement
	// lives in the access gate, not here.
	AccessKey string `gorm:"size:100;index"`

	ScoringModel string            `gorm:"size:50;not null;default:simple"`
	Config       datatypes.JSONMap `gorm:"type:jsonb"`

	Questions []TestQuestion `gorm:"foreignKey:TestID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (t *Test) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// AvailableAt reports whether the availability window, when set,
// contains the given instant.
func (t *Test) AvailableAt(now time.Time) bool {
	if t.AvailableFrom != nil && now.Before(*t.AvailableFrom) {
		return false
	}
	if t.AvailableUntil != nil && now.After(*t.AvailableUntil) {
		return false
	}
	return true
}

type TestQuestion struct {
	ID     string `gorm:"type:uuid;primaryKey"`
	TestID string `gorm:"type:uuid;not null;index"`

	QuestionText string       `gorm:"type:text;not null"`
	QuestionType QuestionType `gorm:"size:50;not null;default:single_choice"`
	OrderIndex   int          `gorm:"not null;default:0"`
	Points       int          `gorm:"not null;default:1"`

	Options []TestQuestionOption `gorm:"foreignKey:QuestionID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *TestQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// CorrectOptionIDs returns the ids of all options flagged correct.
func (q *TestQuestion) CorrectOptionIDs() []string {
	var ids []string
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

type TestQuestionOption struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	QuestionID string `gorm:"type:uuid;not null;index"`

	OptionText string `gorm:"type:text;not null"`
	IsCorrect  bool   `gorm:"not null;default:false"`
	OrderIndex int    `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o *TestQuestionOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
