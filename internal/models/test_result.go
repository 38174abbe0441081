package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TestResult is one user's attempt at a test. While CompletedAt is nil
// the attempt is open; once set it is terminal. At most one open attempt
// may exist per (test, user) pair, enforced by a partial unique index
// created in the database package.
type TestResult struct {
	ID     string `gorm:"type:uuid;primaryKey"`
	TestID string `gorm:"type:uuid;not null;index"`
	Test   Test   `gorm:"foreignKey:TestID"`
	UserID string `gorm:"type:uuid;not null;index"`
	User   User   `gorm:"foreignKey:UserID"`

	Score      float64 `gorm:"not null;default:0"`
	MaxScore   int     `gorm:"not null"` // snapshot of Test.MaxScore at start
	Percentage float64 `gorm:"not null;default:0"`
	IsPassed   bool    `gorm:"not null;default:false"`

	StartedAt   time.Time `gorm:"not null"`
	CompletedAt *time.Time

	// {question_id: [option ids, or the literal text for text questions]}
	Answers datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *TestResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// IsOpen reports whether the attempt can still accept answers.
func (r *TestResult) IsOpen() bool {
	return r.CompletedAt == nil
}

// AnswerMap decodes the stored answer set.
func (r *TestResult) AnswerMap() (map[string][]string, error) {
	answers := make(map[string][]string)
	if len(r.Answers) == 0 {
		return answers, nil
	}
	if err := json.Unmarshal(r.Answers, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// SetAnswers encodes and stores the answer set, replacing any previous one.
func (r *TestResult) SetAnswers(answers map[string][]string) error {
	if answers == nil {
		answers = make(map[string][]string)
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	r.Answers = datatypes.JSON(raw)
	return nil
}
