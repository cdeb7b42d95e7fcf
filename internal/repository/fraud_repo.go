package repository

import (
	"time"

	"merit/internal/domain"
	"merit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FraudRepository struct {
	db *gorm.DB
}

func NewFraudRepository(db *gorm.DB) *FraudRepository {
	return &FraudRepository{db: db}
}

func (r *FraudRepository) Create(s *models.FraudSignal) error {
	return r.db.Create(s).Error
}

// CountUnresolvedSevere counts the actor's open signals at or above the
// given severity created since the window start. This drives risk
// escalation in the anti-sybil gate.
func (r *FraudRepository) CountUnresolvedSevere(actorID uint, minSeverity int, since time.Time) (int64, error) {
	var c int64
	err := r.db.Model(&models.FraudSignal{}).
		Where("actor_id = ? AND is_resolved = ? AND severity >= ? AND created_at >= ?",
			actorID, false, minSeverity, since).
		Count(&c).Error
	return c, err
}

func (r *FraudRepository) ListUnresolved(limit int) ([]models.FraudSignal, error) {
	var list []models.FraudSignal
	err := r.db.Where("is_resolved = ?", false).
		Order("severity DESC, created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *FraudRepository) Resolve(id uint, adminID uint) error {
	return r.db.Model(&models.FraudSignal{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_resolved": true, "resolved_by": adminID}).Error
}

// HasRecentSybilSignal reports whether the actor already has an open SYBIL
// signal newer than since, to avoid flooding the table on every submission
// from a flagged device.
func (r *FraudRepository) HasRecentSybilSignal(actorID uint, since time.Time) (bool, error) {
	var c int64
	err := r.db.Model(&models.FraudSignal{}).
		Where("actor_id = ? AND signal_type = ? AND is_resolved = ? AND created_at >= ?",
			actorID, domain.SignalTypeSybil, false, since).
		Count(&c).Error
	return c > 0, err
}

type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Upsert records one sighting of a device/IP hash for a user, bumping the
// usage count on conflict.
func (r *DeviceRepository) Upsert(deviceHash string, userID uint, seenAt time.Time) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "device_hash"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"last_seen":   seenAt,
		}),
	}).Create(&models.DeviceRegistry{
		DeviceHash: deviceHash,
		UserID:     userID,
		UsageCount: 1,
		LastSeen:   seenAt,
	}).Error
}

// OtherUsers returns the distinct other user ids seen behind the same hash.
func (r *DeviceRepository) OtherUsers(deviceHash string, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.DeviceRegistry{}).
		Where("device_hash = ? AND user_id <> ?", deviceHash, userID).
		Distinct().Pluck("user_id", &ids).Error
	return ids, err
}

// PruneStale deletes registry rows not seen since the cutoff. Maintenance
// only; correlation always works off live rows.
func (r *DeviceRepository) PruneStale(cutoff time.Time) (int64, error) {
	res := r.db.Where("last_seen < ?", cutoff).Delete(&models.DeviceRegistry{})
	return res.RowsAffected, res.Error
}
