package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index;default:'USER'" json:"role"` // USER | ADMIN
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// AccountAgeDays is the basis for the age gate. Negative clock skew counts
// as a brand-new account.
func (u *User) AccountAgeDays(now time.Time) int {
	d := int(now.Sub(u.CreatedAt).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// Suspension is an explicit admin-issued block on rewarding (and acting).
// ExpiresAt nil means indefinite.
type Suspension struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Reason    string         `gorm:"size:255" json:"reason"`
	ExpiresAt *time.Time     `gorm:"index" json:"expires_at"`
	LiftedAt  *time.Time     `json:"lifted_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Suspension) TableName() string { return "suspensions" }

// ActiveAt reports whether the suspension is in force at t.
func (s *Suspension) ActiveAt(t time.Time) bool {
	if s.LiftedAt != nil {
		return false
	}
	if s.ExpiresAt != nil && !t.Before(*s.ExpiresAt) {
		return false
	}
	return true
}
