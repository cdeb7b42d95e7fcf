package service

import (
	"math"

	"merit/internal/models"
)

// RewardInput is everything ComputeReward needs besides the policy
// snapshot. The function is pure: same snapshot, same input, same amount —
// that is what makes historical re-scoring reproducible.
type RewardInput struct {
	QualityScore   float64
	ContentChars   int
	IsGreeting     bool
	RewardedToday  int // prior rewarded count in the category, for diminishing returns
	RiskMultiplier float64
}

// ComputeReward maps quality score + content metrics + risk multiplier to a
// coin amount under one policy snapshot.
//
// raw = tierBase * lengthMultiplier * (floor + q*(1-floor)), clamped to the
// action's [min, max], diminished past the per-day threshold, then scaled by
// the risk multiplier and rounded.
func ComputeReward(snap models.PolicySnapshot, in RewardInput) int64 {
	cfg := snap.Action

	if in.IsGreeting {
		return 0
	}
	if in.QualityScore < cfg.MinQualityScore {
		return 0
	}
	if in.RiskMultiplier <= 0 {
		return 0
	}

	base := baseForScore(cfg, in.QualityScore)
	if base <= 0 {
		return 0
	}

	raw := float64(base) * lengthMultiplier(snap.LengthTiers, in.ContentChars)

	floor := snap.QualityFloor
	if floor < 0 {
		floor = 0
	}
	if floor > 1 {
		floor = 1
	}
	raw *= floor + in.QualityScore*(1-floor)

	if cfg.MaxAmount > 0 && raw > float64(cfg.MaxAmount) {
		raw = float64(cfg.MaxAmount)
	}
	if raw < float64(cfg.MinAmount) {
		raw = float64(cfg.MinAmount)
	}

	if cfg.DiminishingThreshold > 0 && in.RewardedToday >= cfg.DiminishingThreshold &&
		cfg.DiminishingFactor > 0 && cfg.DiminishingFactor < 1 {
		raw *= cfg.DiminishingFactor
	}

	return int64(math.Round(raw * in.RiskMultiplier))
}

// baseForScore picks the quality tier containing the score. Tiers are
// checked highest MinScore first; with no tiers the flat base applies.
func baseForScore(cfg models.ActionConfig, q float64) int64 {
	if len(cfg.QualityTiers) == 0 {
		return cfg.BaseReward
	}
	best := int64(0)
	bestMin := -1.0
	for _, t := range cfg.QualityTiers {
		if q >= t.MinScore && t.MinScore > bestMin {
			best = t.Base
			bestMin = t.MinScore
		}
	}
	if bestMin < 0 {
		return cfg.BaseReward
	}
	return best
}

func lengthMultiplier(tiers []models.LengthTier, chars int) float64 {
	mult := 1.0
	bestMin := -1
	for _, t := range tiers {
		if chars >= t.MinChars && t.MinChars > bestMin {
			mult = t.Multiplier
			bestMin = t.MinChars
		}
	}
	if mult <= 0 {
		return 1.0
	}
	return mult
}
