package repository

import (
	"time"

	"merit/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ActiveSuspension returns the actor's suspension in force at now, or nil.
func (r *UserRepository) ActiveSuspension(userID uint, now time.Time) (*models.Suspension, error) {
	var list []models.Suspension
	err := r.db.Where("user_id = ? AND lifted_at IS NULL", userID).
		Order("created_at DESC").Find(&list).Error
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ActiveAt(now) {
			return &list[i], nil
		}
	}
	return nil, nil
}

func (r *UserRepository) Suspend(userID uint, reason string, expiresAt *time.Time) error {
	return r.db.Create(&models.Suspension{UserID: userID, Reason: reason, ExpiresAt: expiresAt}).Error
}

func (r *UserRepository) LiftSuspension(userID uint, at time.Time) error {
	return r.db.Model(&models.Suspension{}).
		Where("user_id = ? AND lifted_at IS NULL", userID).
		Update("lifted_at", at).Error
}

// LiftExpiredSuspensions marks suspensions past their expiry as lifted.
// Run by the maintenance job; the risk gate also honors expiry directly, so
// this is hygiene, not correctness.
func (r *UserRepository) LiftExpiredSuspensions(now time.Time) (int64, error) {
	res := r.db.Model(&models.Suspension{}).
		Where("lifted_at IS NULL AND expires_at IS NOT NULL AND expires_at <= ?", now).
		Update("lifted_at", now)
	return res.RowsAffected, res.Error
}
