package service

import (
	"time"

	log "github.com/sirupsen/logrus"

	"merit/internal/domain"
	"merit/internal/models"
)

const (
	// Signals at or above this severity escalate risk.
	severeSignalThreshold = 3
	// How far back severe signals are counted.
	signalWindowDays = 30
	// Multiplier ceiling while under monitoring.
	monitoringCap = 0.5
	// Applied when the account record cannot be loaded: allow, but throttle.
	failSafeMultiplier = 0.75
)

// ActorStore is the slice of the user repository the risk gate reads.
type ActorStore interface {
	GetByID(id uint) (*models.User, error)
	ActiveSuspension(userID uint, now time.Time) (*models.Suspension, error)
}

// SignalStore is the slice of the fraud repository the risk gate reads.
type SignalStore interface {
	CountUnresolvedSevere(actorID uint, minSeverity int, since time.Time) (int64, error)
}

// RiskResult is the gate's verdict for one actor.
type RiskResult struct {
	Allowed          bool
	Multiplier       float64
	GateLevel        string
	RiskLevel        string
	Reason           string
	MaxActionsPerDay int
}

// RiskGate combines suspension state, account age and accumulated fraud
// signals into an allowed flag and a reward multiplier.
type RiskGate struct {
	actors  ActorStore
	signals SignalStore
}

func NewRiskGate(actors ActorStore, signals SignalStore) *RiskGate {
	return &RiskGate{actors: actors, signals: signals}
}

// Evaluate runs the gate at time now under the given ruleset.
func (g *RiskGate) Evaluate(actorID uint, rules models.PolicyRules, now time.Time) RiskResult {
	if susp, err := g.actors.ActiveSuspension(actorID, now); err == nil && susp != nil {
		return RiskResult{
			Allowed:    false,
			Multiplier: 0,
			GateLevel:  domain.GateNew,
			RiskLevel:  domain.RiskSuspended,
			Reason:     domain.ReasonSuspended,
		}
	} else if err != nil {
		log.WithError(err).Warnf("[risk] suspension lookup failed for actor %d", actorID)
	}

	res := RiskResult{RiskLevel: domain.RiskClear}
	actor, err := g.actors.GetByID(actorID)
	if err != nil {
		// Fail safe: never hard-fail the user's action on a lookup error,
		// but throttle and flag for monitoring.
		res.Multiplier = failSafeMultiplier
		res.GateLevel = domain.GateProbation
		res.RiskLevel = domain.RiskMonitoring
		log.WithError(err).Warnf("[risk] account lookup failed for actor %d", actorID)
	} else {
		band := ageBandFor(rules.AgeBands, actor.AccountAgeDays(now))
		res.Multiplier = band.Multiplier
		res.GateLevel = band.GateLevel
		res.MaxActionsPerDay = band.MaxActionsPerDay
	}

	since := now.AddDate(0, 0, -signalWindowDays)
	count, err := g.signals.CountUnresolvedSevere(actorID, severeSignalThreshold, since)
	if err != nil {
		log.WithError(err).Warnf("[risk] signal count failed for actor %d", actorID)
		count = 0
	}
	switch {
	case count >= 3:
		res.Multiplier = 0
		res.RiskLevel = domain.RiskFrozen
		res.Reason = domain.ReasonFrozenRisk
	case count >= 1:
		if res.Multiplier > monitoringCap {
			res.Multiplier = monitoringCap
		}
		res.RiskLevel = domain.RiskMonitoring
	}

	res.Allowed = res.Multiplier > 0
	return res
}

// ageBandFor picks the first band whose MaxAgeDays covers the account age;
// MaxAgeDays 0 is the open-ended band. With no bands configured every
// account is treated as verified.
func ageBandFor(bands []models.AgeBand, ageDays int) models.AgeBand {
	for _, b := range bands {
		if b.MaxAgeDays == 0 || ageDays <= b.MaxAgeDays {
			return b
		}
	}
	return models.AgeBand{GateLevel: domain.GateVerified, Multiplier: 1.0}
}
