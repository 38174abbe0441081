package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Phone        string `gorm:"size:20;uniqueIndex;not null"`
	Email        string `gorm:"size:255;index"`
	PasswordHash string `gorm:"size:255"`

	FirstName  string `gorm:"size:100;not null"`
	LastName   string `gorm:"size:100;not null"`
	MiddleName string `gorm:"size:100"`

	Role       Role `gorm:"size:50;not null;default:student;index"`
	IsActive   bool `gorm:"not null;default:true"`
	IsVerified bool `gorm:"not null;default:false"`

	// Set once the user links their account through the chat bot.
	TelegramChatID int64 `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// SetPassword hashes and stores the given plaintext password. A cost
// outside bcrypt's valid range (including 0) falls back to the bcrypt
// default.
func (u *User) SetPassword(password string, cost int) error {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// FullName joins the user's first and last name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
