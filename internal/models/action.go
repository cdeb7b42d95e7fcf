package models

import (
	"time"

	"gorm.io/gorm"
)

// Action is one reward-eligible event performed by a user. Rows are
// append-only: after the synchronous transition to SCORED or REJECTED nothing
// but Status is ever updated. Raw content is never persisted; the row keeps
// the canonical hash, length metrics, and the sorted unique-word fingerprint
// used for similarity checks.
type Action struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UID            string `gorm:"uniqueIndex;size:36;not null" json:"uid"` // public id, also the credit idempotency key
	IdempotencyKey string `gorm:"uniqueIndex;size:64" json:"-"`            // client-supplied replay key; set to UID when the client sends none
	ActorID        uint   `gorm:"not null;index:idx_actions_actor_type_created" json:"actor_id"`
	ActionType     string `gorm:"size:32;not null;index:idx_actions_actor_type_created" json:"action_type"`
	TargetID       string `gorm:"size:64" json:"target_id,omitempty"`
	ContentHash    string `gorm:"size:64;index" json:"content_hash"`
	// WordFingerprint holds the sorted unique canonical words; it feeds the
	// near-duplicate similarity check without retaining raw text.
	WordFingerprint string         `gorm:"type:text" json:"-"`
	ContentChars    int            `json:"content_chars"`
	ContentWords    int            `json:"content_words"`
	QualityScore    float64        `json:"quality_score"`
	RewardAmount    int64          `json:"reward_amount"`
	Reason          string         `gorm:"size:40" json:"reason,omitempty"`
	Status          string         `gorm:"size:16;not null;index" json:"status"`
	PolicyVersion   string         `gorm:"size:32" json:"policy_version"`
	PolicySnapshot  PolicySnapshot `gorm:"serializer:json;type:text" json:"policy_snapshot"`
	Metadata        string         `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt       time.Time      `gorm:"index:idx_actions_actor_type_created" json:"created_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Actor     User       `gorm:"foreignKey:ActorID" json:"-"`
	Evidences []Evidence `gorm:"foreignKey:ActionID" json:"evidences,omitempty"`
}

func (Action) TableName() string { return "actions" }

// Evidence is an append-only content fingerprint owned by exactly one
// Action; it is only ever removed by cascading deletion of its action, which
// normal operation never performs.
type Evidence struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ActionID     uint      `gorm:"not null;index;constraint:OnDelete:CASCADE" json:"action_id"`
	EvidenceType string    `gorm:"size:32;not null" json:"evidence_type"`
	ContentHash  string    `gorm:"size:64;not null" json:"content_hash"`
	URI          string    `gorm:"size:512" json:"uri,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Evidence) TableName() string { return "evidences" }
