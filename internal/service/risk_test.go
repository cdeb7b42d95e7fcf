package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"merit/internal/domain"
	"merit/internal/models"
)

type mockActorStore struct {
	user       *models.User
	userErr    error
	suspension *models.Suspension
}

func (m *mockActorStore) GetByID(id uint) (*models.User, error) {
	return m.user, m.userErr
}

func (m *mockActorStore) ActiveSuspension(userID uint, now time.Time) (*models.Suspension, error) {
	return m.suspension, nil
}

type mockSignalStore struct {
	count int64
	err   error
}

func (m *mockSignalStore) CountUnresolvedSevere(actorID uint, minSeverity int, since time.Time) (int64, error) {
	return m.count, m.err
}

var testAgeBands = []models.AgeBand{
	{MaxAgeDays: 7, GateLevel: domain.GateNew, Multiplier: 0.5, MaxActionsPerDay: 10},
	{MaxAgeDays: 30, GateLevel: domain.GateProbation, Multiplier: 0.75, MaxActionsPerDay: 20},
	{MaxAgeDays: 0, GateLevel: domain.GateVerified, Multiplier: 1.0, MaxActionsPerDay: 40},
}

func userAgedDays(days int, now time.Time) *models.User {
	return &models.User{ID: 1, CreatedAt: now.AddDate(0, 0, -days)}
}

func TestRiskGate_Suspended(t *testing.T) {
	now := time.Now()
	gate := NewRiskGate(
		&mockActorStore{suspension: &models.Suspension{UserID: 1}},
		&mockSignalStore{},
	)
	res := gate.Evaluate(1, models.PolicyRules{AgeBands: testAgeBands}, now)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Multiplier)
	assert.Equal(t, domain.RiskSuspended, res.RiskLevel)
	assert.Equal(t, domain.ReasonSuspended, res.Reason)
}

func TestRiskGate_AgeBands(t *testing.T) {
	now := time.Now()
	cases := []struct {
		days       int
		gate       string
		multiplier float64
	}{
		{0, domain.GateNew, 0.5},
		{7, domain.GateNew, 0.5},
		{8, domain.GateProbation, 0.75},
		{30, domain.GateProbation, 0.75},
		{365, domain.GateVerified, 1.0},
	}
	for _, tc := range cases {
		gate := NewRiskGate(
			&mockActorStore{user: userAgedDays(tc.days, now)},
			&mockSignalStore{},
		)
		res := gate.Evaluate(1, models.PolicyRules{AgeBands: testAgeBands}, now)
		assert.True(t, res.Allowed)
		assert.Equal(t, tc.gate, res.GateLevel, "age %d days", tc.days)
		assert.Equal(t, tc.multiplier, res.Multiplier, "age %d days", tc.days)
		assert.Equal(t, domain.RiskClear, res.RiskLevel)
	}
}

func TestRiskGate_AccountLookupFailureFailsSafe(t *testing.T) {
	now := time.Now()
	gate := NewRiskGate(
		&mockActorStore{userErr: errors.New("store unavailable")},
		&mockSignalStore{},
	)
	res := gate.Evaluate(1, models.PolicyRules{AgeBands: testAgeBands}, now)
	assert.True(t, res.Allowed, "lookup failure must not hard-fail the action")
	assert.Equal(t, 0.75, res.Multiplier)
	assert.Equal(t, domain.RiskMonitoring, res.RiskLevel)
}

func TestRiskGate_FrozenAtThreeSevereSignals(t *testing.T) {
	now := time.Now()
	gate := NewRiskGate(
		&mockActorStore{user: userAgedDays(365, now)},
		&mockSignalStore{count: 3},
	)
	res := gate.Evaluate(1, models.PolicyRules{AgeBands: testAgeBands}, now)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Multiplier)
	assert.Equal(t, domain.RiskFrozen, res.RiskLevel)
	assert.Equal(t, domain.ReasonFrozenRisk, res.Reason)
}

func TestRiskGate_MonitoringCapsMultiplier(t *testing.T) {
	now := time.Now()
	for _, count := range []int64{1, 2} {
		gate := NewRiskGate(
			&mockActorStore{user: userAgedDays(365, now)},
			&mockSignalStore{count: count},
		)
		res := gate.Evaluate(1, models.PolicyRules{AgeBands: testAgeBands}, now)
		assert.True(t, res.Allowed)
		assert.Equal(t, 0.5, res.Multiplier, "%d signals", count)
		assert.Equal(t, domain.RiskMonitoring, res.RiskLevel)
	}

	// Monitoring never raises a multiplier that is already lower.
	gate := NewRiskGate(
		&mockActorStore{user: userAgedDays(0, now)},
		&mockSignalStore{count: 1},
	)
	res := gate.Evaluate(1, models.PolicyRules{AgeBands: testAgeBands}, now)
	assert.Equal(t, 0.5, res.Multiplier)
}

func TestRiskGate_NoBandsDefaultsVerified(t *testing.T) {
	now := time.Now()
	gate := NewRiskGate(
		&mockActorStore{user: userAgedDays(1, now)},
		&mockSignalStore{},
	)
	res := gate.Evaluate(1, models.PolicyRules{}, now)
	assert.Equal(t, domain.GateVerified, res.GateLevel)
	assert.Equal(t, 1.0, res.Multiplier)
}
