package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/checkin_backend/config"
	"github.com/mmdatafocus/checkin_backend/utils"
)

func streakCacheKey(userId int) string {
	return "checkin:continuous:" + fmt.Sprint(userId)
}

// GetContinuousCheckinDays returns the current streak, cache-aside: the
// cached value is trusted for up to the configured TTL, writes to the
// history invalidate the key. Staleness inside the TTL is accepted.
func (s *CheckinService) GetContinuousCheckinDays(ctx context.Context, userId int) (int, error) {

	cacheKey := streakCacheKey(userId)
	var cachedDays int
	exists, err := config.GetRedisObject(cacheKey, &cachedDays)
	if err != nil {
		// a broken cache must not fail the read path
		config.LogError(config.GetLogger(), "models", "GetContinuousCheckinDays", "cache read", userId, err)
	}
	if exists {
		return cachedDays, nil
	}

	if err := validateUserExists(ctx, userId); err != nil {
		return 0, err
	}

	db := config.GetDB()
	var records []*CheckinRecord
	err = db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("checkin_time desc").
		Find(&records).Error
	if err != nil {
		return 0, utils.NewInternalError("failed to load check-ins", err)
	}

	dates := make([]time.Time, len(records))
	for i, r := range records {
		dates[i] = r.CheckinTime
	}
	days := continuousDays(dates, time.Now())

	if err := config.SetRedisObject(cacheKey, days, s.rules.StreakCacheTTL); err != nil {
		config.LogError(config.GetLogger(), "models", "GetContinuousCheckinDays", "cache write", userId, err)
	}

	return days, nil
}

// continuousDays walks check-in dates (most recent first) and counts the
// unbroken daily run ending at the most recent record.
//
// 0 means no history at all. When the most recent record is older than
// today the streak is 1: the run is broken, only the latest day counts.
func continuousDays(dates []time.Time, today time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	today = utils.DayOf(today)
	if !utils.SameDay(dates[0], today) {
		return 1
	}

	streak := 1
	for i := 1; i < len(dates); i++ {
		expected := today.AddDate(0, 0, -streak)
		if utils.SameDay(dates[i], expected) {
			streak++
		} else {
			break
		}
	}
	return streak
}

func clearStreakCache(userId int) error {
	return config.RemoveRedisKey(streakCacheKey(userId))
}
