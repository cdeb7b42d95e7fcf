package repository

import (
	"errors"
	"sync"
	"time"

	"merit/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNoActivePolicy   = errors.New("no active policy")
	ErrPolicyNotFound   = errors.New("policy not found")
	ErrVersionExists    = errors.New("policy version already exists")
	ErrUnknownActionCfg = errors.New("policy has no config for action type")
)

// PolicyRepository serves the single active, versioned ruleset. Reads are
// hot (every submission), writes are rare admin operations, so the active
// policy is cached with a short TTL and invalidated on activation.
type PolicyRepository struct {
	db  *gorm.DB
	ttl time.Duration

	mu       sync.RWMutex
	cached   *models.Policy
	cachedAt time.Time
}

func NewPolicyRepository(db *gorm.DB, cacheTTL time.Duration) *PolicyRepository {
	return &PolicyRepository{db: db, ttl: cacheTTL}
}

// Active returns the currently active policy, served from cache when fresh.
func (r *PolicyRepository) Active() (*models.Policy, error) {
	r.mu.RLock()
	if r.cached != nil && time.Since(r.cachedAt) < r.ttl {
		p := r.cached
		r.mu.RUnlock()
		return p, nil
	}
	r.mu.RUnlock()

	var p models.Policy
	err := r.db.Where("is_active = ?", true).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActivePolicy
	}
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.cached = &p
	r.cachedAt = time.Now()
	r.mu.Unlock()
	return &p, nil
}

func (r *PolicyRepository) GetByVersion(version string) (*models.Policy, error) {
	var p models.Policy
	err := r.db.Where("version = ?", version).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PolicyRepository) List(limit int) ([]models.Policy, error) {
	var list []models.Policy
	err := r.db.Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

// Create inserts a new inactive policy version. Rules are immutable once
// created; the hash is computed here and never updated.
func (r *PolicyRepository) Create(version string, rules models.PolicyRules) (*models.Policy, error) {
	p := &models.Policy{
		Version:    version,
		PolicyHash: rules.Hash(),
		IsActive:   false,
		Rules:      rules,
	}
	if err := r.db.Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrVersionExists
		}
		return nil, err
	}
	return p, nil
}

// Activate flips the single active flag to the given version: unset old,
// set new, inside one transaction so there is never zero or two active rows.
func (r *PolicyRepository) Activate(version string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var p models.Policy
		if err := tx.Where("version = ?", version).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPolicyNotFound
			}
			return err
		}
		if err := tx.Model(&models.Policy{}).Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&p).Update("is_active", true).Error
	})
	if err != nil {
		return err
	}
	r.invalidate()
	return nil
}

// SeedIfEmpty creates and activates version v1 from the given rules when the
// policies table has no rows (first boot).
func (r *PolicyRepository) SeedIfEmpty(rules models.PolicyRules) error {
	var count int64
	if err := r.db.Model(&models.Policy{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	p := &models.Policy{
		Version:    "v1",
		PolicyHash: rules.Hash(),
		IsActive:   true,
		Rules:      rules,
	}
	if err := r.db.Create(p).Error; err != nil {
		return err
	}
	r.invalidate()
	return nil
}

func (r *PolicyRepository) invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}
