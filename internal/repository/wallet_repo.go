package repository

import (
	"errors"

	"merit/internal/models"

	"gorm.io/gorm"
)

var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrDuplicateReference  = errors.New("transaction reference already credited")
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetOrCreate(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("user_id = ?", userID).First(&w).Error
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = models.Wallet{UserID: userID}
	if err := r.db.Create(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// Credit appends a ledger transaction and moves the balance by an atomic
// in-database increment, as one unit. Reference is the idempotency key: a
// second credit with the same reference fails on the unique index and leaves
// the balance untouched, so retries are safe.
func (r *WalletRepository) Credit(userID uint, amount int64, txType, reference string, qualityScore float64, metadata string) error {
	if _, err := r.GetOrCreate(userID); err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		entry := models.WalletTransaction{
			UserID:       userID,
			AmountCoins:  amount,
			Type:         txType,
			Reference:    reference,
			QualityScore: qualityScore,
			Metadata:     metadata,
		}
		if err := tx.Create(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReference
			}
			return err
		}
		updates := map[string]interface{}{
			"balance_coins": gorm.Expr("balance_coins + ?", amount),
		}
		if amount > 0 {
			updates["lifetime_earned"] = gorm.Expr("lifetime_earned + ?", amount)
		}
		return tx.Model(&models.Wallet{}).Where("user_id = ?", userID).
			UpdateColumns(updates).Error
	})
}

// Debit withdraws coins, guarded in-database so the balance can never go
// negative under concurrent withdrawals.
func (r *WalletRepository) Debit(userID uint, amount int64, txType, reference string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Wallet{}).
			Where("user_id = ? AND balance_coins >= ?", userID, amount).
			UpdateColumn("balance_coins", gorm.Expr("balance_coins - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientBalance
		}
		entry := models.WalletTransaction{
			UserID:      userID,
			AmountCoins: -amount,
			Type:        txType,
			Reference:   reference,
		}
		if err := tx.Create(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReference
			}
			return err
		}
		return nil
	})
}

func (r *WalletRepository) ListTransactions(userID uint, limit int) ([]models.WalletTransaction, error) {
	var list []models.WalletTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

// SumTransactions returns the sum of all transaction deltas for a user.
// Used by the accounting self-check: it must always equal the balance.
func (r *WalletRepository) SumTransactions(userID uint) (int64, error) {
	var sum *int64
	err := r.db.Model(&models.WalletTransaction{}).
		Where("user_id = ?", userID).
		Select("SUM(amount_coins)").Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}
