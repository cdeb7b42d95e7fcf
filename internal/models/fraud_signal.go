package models

import (
	"time"

	"gorm.io/gorm"
)

// FraudSignal flags a suspicious correlation for an actor. Severity runs
// 1 (informational) to 5 (certain abuse). Signals are resolved only by an
// admin, never automatically.
type FraudSignal struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ActorID    uint           `gorm:"not null;index" json:"actor_id"`
	SignalType string         `gorm:"size:32;not null;index" json:"signal_type"`
	Severity   int            `gorm:"not null" json:"severity"`
	Details    string         `gorm:"type:text" json:"details"`
	Source     string         `gorm:"size:64" json:"source"`
	IsResolved bool           `gorm:"not null;default:false;index" json:"is_resolved"`
	ResolvedBy *uint          `json:"resolved_by,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Actor User `gorm:"foreignKey:ActorID" json:"-"`
}

func (FraudSignal) TableName() string { return "fraud_signals" }

// DeviceRegistry maps a one-way device/IP hash to a user. Raw IPs are hashed
// on receipt and never stored. The same hash appearing under several users is
// the sybil correlation input.
type DeviceRegistry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DeviceHash string    `gorm:"size:80;not null;index:idx_device_user,unique" json:"device_hash"`
	UserID     uint      `gorm:"not null;index:idx_device_user,unique" json:"user_id"`
	UsageCount int64     `gorm:"not null;default:1" json:"usage_count"`
	LastSeen   time.Time `gorm:"index" json:"last_seen"`
	CreatedAt  time.Time `json:"created_at"`
}

func (DeviceRegistry) TableName() string { return "device_registry" }
