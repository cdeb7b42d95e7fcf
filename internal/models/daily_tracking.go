package models

import "time"

// DailyTracking is the per-(user, reward-day) counter row and the sole source
// of truth for daily caps. It is created lazily on the first action of the
// day and incremented with conditional UPDATEs, never read-modify-write.
type DailyTracking struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"not null;index:idx_daily_user_date,unique" json:"user_id"`
	Date              string    `gorm:"size:10;not null;index:idx_daily_user_date,unique" json:"date"` // reward-day, YYYY-MM-DD
	QuestionsRewarded int       `gorm:"not null;default:0" json:"questions_rewarded"`
	JournalsRewarded  int       `gorm:"not null;default:0" json:"journals_rewarded"`
	PostsRewarded     int       `gorm:"not null;default:0" json:"posts_rewarded"`
	CommentsRewarded  int       `gorm:"not null;default:0" json:"comments_rewarded"`
	SharesRewarded    int       `gorm:"not null;default:0" json:"shares_rewarded"`
	LoginsRewarded    int       `gorm:"not null;default:0" json:"logins_rewarded"`
	TotalRewarded     int       `gorm:"not null;default:0" json:"total_rewarded"`
	TotalCoinsToday   int64     `gorm:"not null;default:0" json:"total_coins_today"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (DailyTracking) TableName() string { return "daily_tracking" }

// CategoryColumn maps a cap category to its counter column. Kept next to the
// model so the column list and the category set cannot drift apart.
func CategoryColumn(category string) (string, bool) {
	cols := map[string]string{
		"questions": "questions_rewarded",
		"journals":  "journals_rewarded",
		"posts":     "posts_rewarded",
		"comments":  "comments_rewarded",
		"shares":    "shares_rewarded",
		"logins":    "logins_rewarded",
	}
	c, ok := cols[category]
	return c, ok
}

// CategoryCount returns the current counter value for a category.
func (d *DailyTracking) CategoryCount(category string) int {
	switch category {
	case "questions":
		return d.QuestionsRewarded
	case "journals":
		return d.JournalsRewarded
	case "posts":
		return d.PostsRewarded
	case "comments":
		return d.CommentsRewarded
	case "shares":
		return d.SharesRewarded
	case "logins":
		return d.LoginsRewarded
	}
	return 0
}
