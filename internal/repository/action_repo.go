package repository

import (
	"errors"
	"strings"
	"time"

	"merit/internal/models"

	"gorm.io/gorm"
)

var ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")

type ActionRepository struct {
	db *gorm.DB
}

func NewActionRepository(db *gorm.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// Create appends the action and its evidences in one transaction.
func (r *ActionRepository) Create(a *models.Action, evidences []models.Evidence) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateIdempotencyKey
			}
			return err
		}
		for i := range evidences {
			evidences[i].ActionID = a.ID
		}
		if len(evidences) > 0 {
			if err := tx.Create(&evidences).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ActionRepository) GetByUID(uid string) (*models.Action, error) {
	var a models.Action
	if err := r.db.Where("uid = ?", uid).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByIdempotencyKey returns the prior action for a replayed submission,
// or nil when the key is unseen.
func (r *ActionRepository) GetByIdempotencyKey(key string) (*models.Action, error) {
	if key == "" {
		return nil, nil
	}
	var a models.Action
	err := r.db.Where("idempotency_key = ?", key).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateStatus is the only mutation ever applied to a recorded action.
func (r *ActionRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Action{}).Where("id = ?", id).Update("status", status).Error
}

// ContentFingerprint is what the integrity checker needs from a past entry.
type ContentFingerprint struct {
	Hash  string
	Words []string
}

// RecentFingerprints returns content fingerprints of the actor's same-type
// actions since the given time, newest first, for duplicate and
// near-duplicate checks.
func (r *ActionRepository) RecentFingerprints(actorID uint, actionType string, since time.Time) ([]ContentFingerprint, error) {
	var rows []models.Action
	err := r.db.Select("content_hash", "word_fingerprint").
		Where("actor_id = ? AND action_type = ? AND created_at >= ? AND content_hash <> ''",
			actorID, actionType, since).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ContentFingerprint, 0, len(rows))
	for _, a := range rows {
		fp := ContentFingerprint{Hash: a.ContentHash}
		if a.WordFingerprint != "" {
			fp.Words = strings.Fields(a.WordFingerprint)
		}
		out = append(out, fp)
	}
	return out, nil
}

// LastOfType returns the creation time of the actor's most recent same-type
// action, for cooldown checks. Zero time when none exists.
func (r *ActionRepository) LastOfType(actorID uint, actionType string) (time.Time, error) {
	var a models.Action
	err := r.db.Select("created_at").
		Where("actor_id = ? AND action_type = ?", actorID, actionType).
		Order("created_at DESC").First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return a.CreatedAt, nil
}

func (r *ActionRepository) ListByActor(actorID uint, limit int) ([]models.Action, error) {
	var list []models.Action
	err := r.db.Where("actor_id = ?", actorID).
		Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}
