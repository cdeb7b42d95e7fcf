package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Policy is one immutable version of the reward ruleset. Exactly one row is
// active at a time; a "change" is a new row plus an atomic active-flag flip.
type Policy struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Version    string         `gorm:"uniqueIndex;size:32;not null" json:"version"`
	PolicyHash string         `gorm:"size:64;not null" json:"policy_hash"`
	IsActive   bool           `gorm:"index;not null;default:false" json:"is_active"`
	Rules      PolicyRules    `gorm:"serializer:json;type:text" json:"rules"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Policy) TableName() string { return "policies" }

// PolicyRules is the full tunable ruleset: integrity thresholds, age bands,
// reward tiers, and per-action configs. It is stored as JSON on the policy
// row and seeded from YAML on first boot.
type PolicyRules struct {
	QualityFloor        float64                 `json:"quality_floor" yaml:"quality_floor"`
	DefaultQualityScore float64                 `json:"default_quality_score" yaml:"default_quality_score"`
	LengthTiers         []LengthTier            `json:"length_tiers" yaml:"length_tiers"`
	AgeBands            []AgeBand               `json:"age_bands" yaml:"age_bands"`
	Thresholds          IntegrityThresholds     `json:"thresholds" yaml:"thresholds"`
	Actions             map[string]ActionConfig `json:"actions" yaml:"actions"`
}

// QualityTier maps a minimum quality score to a base reward. Tiers are
// evaluated highest-first; the first tier whose MinScore is <= the score wins.
type QualityTier struct {
	MinScore float64 `json:"min_score" yaml:"min_score"`
	Base     int64   `json:"base" yaml:"base"`
}

// LengthTier raises the reward multiplier for longer content. Evaluated
// highest-first on character count of the canonical text.
type LengthTier struct {
	MinChars   int     `json:"min_chars" yaml:"min_chars"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// AgeBand maps account age to a gate level, reward multiplier and per-day
// action ceiling. Evaluated lowest MaxAgeDays first; MaxAgeDays 0 means
// "no upper bound" and must be the last band.
type AgeBand struct {
	MaxAgeDays       int     `json:"max_age_days" yaml:"max_age_days"`
	GateLevel        string  `json:"gate_level" yaml:"gate_level"`
	Multiplier       float64 `json:"multiplier" yaml:"multiplier"`
	MaxActionsPerDay int     `json:"max_actions_per_day" yaml:"max_actions_per_day"`
}

// IntegrityThresholds tunes the content integrity checker.
type IntegrityThresholds struct {
	SimilarityMax           float64 `json:"similarity_max" yaml:"similarity_max"`
	TemplateMinMatches      int     `json:"template_min_matches" yaml:"template_min_matches"`
	TemplateShortWordCount  int     `json:"template_short_word_count" yaml:"template_short_word_count"`
	TemplateShortMinMatches int     `json:"template_short_min_matches" yaml:"template_short_min_matches"`
	TemplateUniqueRatio     float64 `json:"template_unique_ratio" yaml:"template_unique_ratio"`
	DedupWindowDays         int     `json:"dedup_window_days" yaml:"dedup_window_days"`
}

// ActionConfig is the per-action-type ruleset.
type ActionConfig struct {
	BaseReward           int64         `json:"base_reward" yaml:"base_reward"`
	MaxDaily             int           `json:"max_daily" yaml:"max_daily"`
	CooldownSeconds      int           `json:"cooldown_seconds" yaml:"cooldown_seconds"`
	DiminishingThreshold int           `json:"diminishing_threshold" yaml:"diminishing_threshold"`
	DiminishingFactor    float64       `json:"diminishing_factor" yaml:"diminishing_factor"`
	MinQualityScore      float64       `json:"min_quality_score" yaml:"min_quality_score"`
	MinChars             int           `json:"min_chars" yaml:"min_chars"`
	MinAmount            int64         `json:"min_amount" yaml:"min_amount"`
	MaxAmount            int64         `json:"max_amount" yaml:"max_amount"`
	QualityTiers         []QualityTier `json:"quality_tiers" yaml:"quality_tiers"`
}

// Hash computes the tamper-evidence hash of a ruleset: SHA-256 over its
// canonical JSON encoding.
func (r PolicyRules) Hash() string {
	b, _ := json.Marshal(r)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// PolicySnapshot is the immutable sub-config an Action was scored under.
// It is copied onto the action row so that later policy changes never alter
// the meaning of historical scoring.
type PolicySnapshot struct {
	Version      string              `json:"version"`
	PolicyHash   string              `json:"policy_hash"`
	QualityFloor float64             `json:"quality_floor"`
	LengthTiers  []LengthTier        `json:"length_tiers"`
	Thresholds   IntegrityThresholds `json:"thresholds"`
	Action       ActionConfig        `json:"action"`
}

// Snapshot extracts the snapshot for one action type from a policy.
func (p *Policy) Snapshot(actionType string) (PolicySnapshot, bool) {
	cfg, ok := p.Rules.Actions[actionType]
	if !ok {
		return PolicySnapshot{}, false
	}
	return PolicySnapshot{
		Version:      p.Version,
		PolicyHash:   p.PolicyHash,
		QualityFloor: p.Rules.QualityFloor,
		LengthTiers:  p.Rules.LengthTiers,
		Thresholds:   p.Rules.Thresholds,
		Action:       cfg,
	}, true
}
