package service

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"merit/internal/domain"
	"merit/internal/models"
	"merit/internal/repository"
)

// SybilService correlates device/IP hashes across accounts and emits
// FraudSignals when the same fingerprint shows up behind multiple actors.
// Everything here is best-effort: failures are logged and never surface to
// the submission flow.
type SybilService struct {
	devices *repository.DeviceRepository
	signals *repository.FraudRepository
}

func NewSybilService(devices *repository.DeviceRepository, signals *repository.FraudRepository) *SybilService {
	return &SybilService{devices: devices, signals: signals}
}

// RecordFingerprints upserts each hash into the device registry and flags
// the actor when a hash is shared with 2 or more other accounts. Hashes are
// already one-way; raw IPs never reach this layer.
func (s *SybilService) RecordFingerprints(actorID uint, hashes []string, now time.Time) {
	for _, h := range hashes {
		if h == "" {
			continue
		}
		if err := s.devices.Upsert(h, actorID, now); err != nil {
			log.WithError(err).Warnf("[sybil] registry upsert failed for actor %d", actorID)
			continue
		}
		others, err := s.devices.OtherUsers(h, actorID)
		if err != nil {
			log.WithError(err).Warnf("[sybil] correlation lookup failed for actor %d", actorID)
			continue
		}
		if len(others) < 2 {
			continue
		}
		recent, err := s.signals.HasRecentSybilSignal(actorID, now.Add(-24*time.Hour))
		if err != nil {
			log.WithError(err).Warnf("[sybil] signal lookup failed for actor %d", actorID)
			continue
		}
		if recent {
			continue
		}
		severity := 3
		if len(others) >= 4 {
			severity = 4
		}
		sig := &models.FraudSignal{
			ActorID:    actorID,
			SignalType: domain.SignalTypeSybil,
			Severity:   severity,
			Details:    fmt.Sprintf(`{"device_hash":%q,"shared_with":%d}`, h, len(others)),
			Source:     "device_correlation",
		}
		if err := s.signals.Create(sig); err != nil {
			log.WithError(err).Warnf("[sybil] failed to create signal for actor %d", actorID)
			continue
		}
		log.Warnf("[sybil] actor %d shares fingerprint with %d other accounts (severity %d)",
			actorID, len(others), severity)
	}
}
