package domain

import "time"

// RewardDate maps an instant to the reward-day it belongs to, in the
// service's canonical timezone. Every daily-cap decision goes through this
// one function so tests can pin "today".
func RewardDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
