// Package jobs runs background maintenance outside the submission hot path.
package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"merit/internal/domain"
	"merit/internal/repository"
)

const (
	deviceRetentionDays = 90
	dailyRetentionDays  = 60
)

// Scheduler owns the nightly maintenance cron: lifting expired suspensions
// and pruning stale device-registry and daily-tracking rows. None of this is
// load-bearing for correctness; the hot path reads are all window-scoped.
type Scheduler struct {
	cron     *cron.Cron
	users    *repository.UserRepository
	devices  *repository.DeviceRepository
	tracking *repository.DailyRepository
	loc      *time.Location
}

func NewScheduler(users *repository.UserRepository, devices *repository.DeviceRepository, tracking *repository.DailyRepository, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		users:    users,
		devices:  devices,
		tracking: tracking,
		loc:      loc,
	}
}

func (s *Scheduler) Start() {
	// Shortly after the reward-day boundary.
	s.cron.AddFunc("10 0 * * *", s.runNightly)
	s.cron.Start()
	log.Info("[jobs] maintenance scheduler started")
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("[jobs] maintenance scheduler stopped")
}

func (s *Scheduler) runNightly() {
	now := time.Now()
	if n, err := s.users.LiftExpiredSuspensions(now); err != nil {
		log.WithError(err).Error("[jobs] lifting expired suspensions failed")
	} else if n > 0 {
		log.Infof("[jobs] lifted %d expired suspensions", n)
	}
	if n, err := s.devices.PruneStale(now.AddDate(0, 0, -deviceRetentionDays)); err != nil {
		log.WithError(err).Error("[jobs] device registry prune failed")
	} else if n > 0 {
		log.Infof("[jobs] pruned %d stale device entries", n)
	}
	cutoff := domain.RewardDate(now.AddDate(0, 0, -dailyRetentionDays), s.loc)
	if n, err := s.tracking.PruneBefore(cutoff); err != nil {
		log.WithError(err).Error("[jobs] daily tracking prune failed")
	} else if n > 0 {
		log.Infof("[jobs] pruned %d old daily tracking rows", n)
	}
}
