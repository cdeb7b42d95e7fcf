package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet holds a user's running coin balance. The balance is only ever moved
// by atomic increments paired with an appended WalletTransaction, so at all
// times balance == lifetime earned - lifetime withdrawn == sum of tx deltas.
type Wallet struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	BalanceCoins   int64          `gorm:"not null;default:0" json:"balance_coins"`
	LifetimeEarned int64          `gorm:"not null;default:0" json:"lifetime_earned"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Wallet) TableName() string { return "wallets" }

// WalletTransaction is the append-only ledger entry behind every balance
// move. Reference carries the idempotency key (the action UID for rewards);
// its unique index is what makes retried credits safe.
type WalletTransaction struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	AmountCoins  int64          `gorm:"not null" json:"amount_coins"` // positive = credit, negative = debit
	Type         string         `gorm:"size:30;not null;index" json:"type"`
	Reference    string         `gorm:"uniqueIndex;size:128" json:"reference"`
	QualityScore float64        `json:"quality_score"`
	Metadata     string         `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WalletTransaction) TableName() string { return "wallet_transactions" }
