package models

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/checkin_backend/config"
	"github.com/mmdatafocus/checkin_backend/utils"
)

// ReissueCheckin backfills a check-in for a past date. Window and quota come
// from the configured rules; the quota is spent by submission time, not by
// the day being fixed.
func (s *CheckinService) ReissueCheckin(ctx context.Context, userId int, date time.Time, reason string) (*CheckinRecord, error) {

	if err := validateUserExists(ctx, userId); err != nil {
		return nil, err
	}

	now := time.Now()
	today := utils.DayOf(now)
	date = utils.DayOf(date)

	if date.After(today) {
		return nil, utils.NewValidationError("cannot reissue a future date")
	}
	daysBack := utils.DaysBetween(date, today)
	if daysBack > s.rules.MaxReissueDays {
		return nil, utils.NewValidationError(fmt.Sprintf(
			"reissue window exceeded: only dates within %d days can be reissued (requested %d days back)",
			s.rules.MaxReissueDays, daysBack,
		))
	}

	// Serialize the quota check-then-insert per user. Advisory only: the
	// unique day index still guards the date itself.
	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "checkin:reissue:lock:"+fmt.Sprint(userId), 3*time.Second, &redislock.Options{
			RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 10),
		})
		if err == nil {
			defer lock.Release(ctx)
		}
	}

	checked, err := hasCheckedInOn(ctx, userId, date)
	if err != nil {
		return nil, err
	}
	if checked {
		return nil, utils.NewConflictError("already checked in on that date, no reissue needed")
	}

	used, err := countMonthlyReissues(ctx, userId, today)
	if err != nil {
		return nil, err
	}
	if used >= int64(s.rules.MaxReissueCount) {
		return nil, utils.NewConflictError(fmt.Sprintf(
			"monthly reissue quota exceeded (%d of %d used)", used, s.rules.MaxReissueCount,
		))
	}

	reason, err = validateReissueReason(reason)
	if err != nil {
		return nil, err
	}

	record := CheckinRecord{
		UserId:        userId,
		CheckinTime:   date, // start of the backfilled day
		CheckinDate:   date,
		Location:      "Reissue",
		Status:        CheckinStatusReissue,
		IsReissue:     utils.NewTrue(),
		ReissueTime:   &now,
		ReissueReason: reason,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, utils.NewConflictError("already checked in on that date, no reissue needed")
		}
		return nil, utils.NewInternalError("reissue failed, please try again", err)
	}

	if err := clearStreakCache(userId); err != nil {
		config.LogError(config.GetLogger(), "models", "ReissueCheckin", "clear streak cache", userId, err)
	}

	return &record, nil
}

// validateReissueReason trims and bounds the reason. The limit is 500
// characters, not bytes, so multibyte reasons are not shortchanged.
func validateReissueReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", utils.NewValidationError("reissue reason is required")
	}
	if utf8.RuneCountInString(reason) > 500 {
		return "", utils.NewValidationError("reissue reason must not exceed 500 characters")
	}
	return reason, nil
}

// countMonthlyReissues counts reissue records submitted in the calendar
// month containing ref.
func countMonthlyReissues(ctx context.Context, userId int, ref time.Time) (int64, error) {

	monthStart, nextMonth := utils.MonthRange(ref.Year(), ref.Month(), ref.Location())

	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&CheckinRecord{}).
		Where("user_id = ? AND is_reissue = ? AND reissue_time >= ? AND reissue_time < ?",
			userId, true, monthStart, nextMonth).
		Count(&count).Error
	if err != nil {
		return 0, utils.NewInternalError("failed to count reissues", err)
	}
	return count, nil
}
