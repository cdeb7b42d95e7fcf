package repository

import (
	"errors"

	"merit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUnknownCategory = errors.New("unknown daily cap category")

type DailyRepository struct {
	db *gorm.DB
}

func NewDailyRepository(db *gorm.DB) *DailyRepository {
	return &DailyRepository{db: db}
}

// GetOrCreate returns the counter row for (user, reward-day), creating an
// empty one on first use. Insert races resolve via the unique index.
func (r *DailyRepository) GetOrCreate(userID uint, date string) (*models.DailyTracking, error) {
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.DailyTracking{UserID: userID, Date: date}).Error; err != nil &&
		!errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}
	var d models.DailyTracking
	if err := r.db.Where("user_id = ? AND date = ?", userID, date).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ReserveResult reports the outcome of a cap reservation.
type ReserveResult struct {
	Granted    bool
	CountToday int // category counter after the reservation attempt
	Remaining  int // category slots left after the attempt
}

// TryReserve atomically takes one reward slot for the category, subject to
// the category cap and the actor's total-per-day ceiling. The check and the
// increment are one conditional UPDATE, so concurrent submissions from the
// same user can never both take the last slot.
func (r *DailyRepository) TryReserve(userID uint, date, category string, maxDaily, maxTotal int) (ReserveResult, error) {
	col, ok := models.CategoryColumn(category)
	if !ok {
		return ReserveResult{}, ErrUnknownCategory
	}
	if _, err := r.GetOrCreate(userID, date); err != nil {
		return ReserveResult{}, err
	}

	granted := false
	if maxDaily > 0 {
		q := r.db.Model(&models.DailyTracking{}).
			Where("user_id = ? AND date = ?", userID, date).
			Where(col+" < ?", maxDaily)
		if maxTotal > 0 {
			q = q.Where("total_rewarded < ?", maxTotal)
		}
		res := q.UpdateColumns(map[string]interface{}{
			col:              gorm.Expr(col + " + 1"),
			"total_rewarded": gorm.Expr("total_rewarded + 1"),
		})
		if res.Error != nil {
			return ReserveResult{}, res.Error
		}
		granted = res.RowsAffected == 1
	}

	d, err := r.GetOrCreate(userID, date)
	if err != nil {
		return ReserveResult{}, err
	}
	count := d.CategoryCount(category)
	remaining := maxDaily - count
	if remaining < 0 {
		remaining = 0
	}
	return ReserveResult{Granted: granted, CountToday: count, Remaining: remaining}, nil
}

// Release undoes a reservation whose credit could not be committed.
func (r *DailyRepository) Release(userID uint, date, category string) error {
	col, ok := models.CategoryColumn(category)
	if !ok {
		return ErrUnknownCategory
	}
	return r.db.Model(&models.DailyTracking{}).
		Where("user_id = ? AND date = ? AND "+col+" > 0", userID, date).
		UpdateColumns(map[string]interface{}{
			col:              gorm.Expr(col + " - 1"),
			"total_rewarded": gorm.Expr("total_rewarded - 1"),
		}).Error
}

// AddCoins accumulates the day's credited amount.
func (r *DailyRepository) AddCoins(userID uint, date string, amount int64) error {
	return r.db.Model(&models.DailyTracking{}).
		Where("user_id = ? AND date = ?", userID, date).
		UpdateColumn("total_coins_today", gorm.Expr("total_coins_today + ?", amount)).Error
}

// PruneBefore deletes tracking rows older than the cutoff date (YYYY-MM-DD).
func (r *DailyRepository) PruneBefore(date string) (int64, error) {
	res := r.db.Where("date < ?", date).Delete(&models.DailyTracking{})
	return res.RowsAffected, res.Error
}
