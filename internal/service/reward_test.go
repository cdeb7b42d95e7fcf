package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"merit/internal/models"
)

func journalSnapshot() models.PolicySnapshot {
	return models.PolicySnapshot{
		Version:      "v1",
		PolicyHash:   "test",
		QualityFloor: 0.4,
		LengthTiers: []models.LengthTier{
			{MinChars: 100, Multiplier: 1.1},
			{MinChars: 200, Multiplier: 1.3},
		},
		Action: models.ActionConfig{
			BaseReward:           3000,
			MaxDaily:             3,
			MinQualityScore:      0.4,
			MinChars:             50,
			MinAmount:            2000,
			MaxAmount:            9000,
			DiminishingThreshold: 2,
			DiminishingFactor:    0.5,
			QualityTiers: []models.QualityTier{
				{MinScore: 0.9, Base: 9000},
				{MinScore: 0.75, Base: 6000},
				{MinScore: 0.6, Base: 4000},
				{MinScore: 0.4, Base: 3000},
				{MinScore: 0.0, Base: 2000},
			},
		},
	}
}

func TestComputeReward_NewAccountJournalScenario(t *testing.T) {
	// High-quality 200-char journal from a gate=new account (multiplier 0.5):
	// base 9000 * length 1.3 * (0.4 + 0.95*0.6) = 11349, clamped to 9000,
	// halved by the risk multiplier.
	amount := ComputeReward(journalSnapshot(), RewardInput{
		QualityScore:   0.95,
		ContentChars:   200,
		RiskMultiplier: 0.5,
	})
	assert.Equal(t, int64(4500), amount)
}

func TestComputeReward_QualityMonotone(t *testing.T) {
	snap := journalSnapshot()
	prev := int64(-1)
	for q := 0.40; q <= 1.0; q += 0.01 {
		amount := ComputeReward(snap, RewardInput{
			QualityScore:   q,
			ContentChars:   150,
			RiskMultiplier: 1.0,
		})
		assert.GreaterOrEqual(t, amount, prev, "quality %.2f must not pay less than a lower score", q)
		prev = amount
	}
}

func TestComputeReward_ClampRange(t *testing.T) {
	snap := journalSnapshot()
	for q := 0.40; q <= 1.0; q += 0.05 {
		for _, chars := range []int{50, 150, 250, 1000} {
			amount := ComputeReward(snap, RewardInput{
				QualityScore:   q,
				ContentChars:   chars,
				RiskMultiplier: 1.0,
			})
			assert.GreaterOrEqual(t, amount, snap.Action.MinAmount)
			assert.LessOrEqual(t, amount, snap.Action.MaxAmount)
		}
	}
}

func TestComputeReward_HardZeroes(t *testing.T) {
	snap := journalSnapshot()

	assert.Zero(t, ComputeReward(snap, RewardInput{
		QualityScore: 0.95, ContentChars: 200, IsGreeting: true, RiskMultiplier: 1.0,
	}), "greeting/no-op must be 0, not merely small")

	assert.Zero(t, ComputeReward(snap, RewardInput{
		QualityScore: 0.2, ContentChars: 200, RiskMultiplier: 1.0,
	}), "below min_quality_score must be 0")

	assert.Zero(t, ComputeReward(snap, RewardInput{
		QualityScore: 0.95, ContentChars: 200, RiskMultiplier: 0,
	}), "frozen risk multiplier must suppress the reward entirely")
}

func TestComputeReward_RiskDampening(t *testing.T) {
	snap := journalSnapshot()
	full := ComputeReward(snap, RewardInput{QualityScore: 0.95, ContentChars: 200, RiskMultiplier: 1.0})
	monitored := ComputeReward(snap, RewardInput{QualityScore: 0.95, ContentChars: 200, RiskMultiplier: 0.5})
	assert.LessOrEqual(t, monitored*2, full+1, "monitored actor earns at most half")
}

func TestComputeReward_DiminishingReturns(t *testing.T) {
	snap := journalSnapshot()
	fresh := ComputeReward(snap, RewardInput{QualityScore: 0.8, ContentChars: 150, RiskMultiplier: 1.0})
	third := ComputeReward(snap, RewardInput{QualityScore: 0.8, ContentChars: 150, RewardedToday: 2, RiskMultiplier: 1.0})
	assert.Equal(t, fresh/2, third)
}

func TestComputeReward_Deterministic(t *testing.T) {
	snap := journalSnapshot()
	in := RewardInput{QualityScore: 0.77, ContentChars: 321, RewardedToday: 1, RiskMultiplier: 0.75}
	first := ComputeReward(snap, in)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, ComputeReward(snap, in))
	}
}

// Re-scoring a historical action from its stored snapshot must reproduce the
// original amount even after the live policy changed.
func TestComputeReward_SnapshotReproducibility(t *testing.T) {
	snap := journalSnapshot()
	in := RewardInput{QualityScore: 0.95, ContentChars: 200, RiskMultiplier: 0.5}
	original := ComputeReward(snap, in)

	// "Live" policy moves on with different tiers; the snapshot is immutable.
	changed := journalSnapshot()
	changed.Action.QualityTiers[0].Base = 1
	changed.Action.MaxAmount = 10

	assert.Equal(t, original, ComputeReward(snap, in))
	assert.NotEqual(t, original, ComputeReward(changed, in))
}

func TestComputeReward_FlatBaseWithoutTiers(t *testing.T) {
	snap := models.PolicySnapshot{
		QualityFloor: 1.0,
		Action: models.ActionConfig{
			BaseReward: 100,
			MinAmount:  100,
			MaxAmount:  100,
		},
	}
	assert.Equal(t, int64(100), ComputeReward(snap, RewardInput{QualityScore: 0.5, RiskMultiplier: 1.0}))
}
