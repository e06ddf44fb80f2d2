package models

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/go-sql-driver/mysql"
	"github.com/mmdatafocus/checkin_backend/config"
	"github.com/mmdatafocus/checkin_backend/utils"
	"gorm.io/gorm"
)

// CheckinRecord asserts a user was present on one calendar day. Records are
// created once and never updated or deleted by this backend.
//
// The composite unique index on (user_id, checkin_date) is the real
// one-check-in-per-day guard; the read-side "already checked in" probe is
// only a fast path for a friendly error.
type CheckinRecord struct {
	ID          int           `gorm:"primary_key" json:"id"`
	UserId      int           `gorm:"not null;uniqueIndex:uniq_user_checkin_day,priority:1" json:"user_id"`
	CheckinTime time.Time     `gorm:"not null;index" json:"checkin_time"`
	CheckinDate time.Time     `gorm:"type:date;not null;uniqueIndex:uniq_user_checkin_day,priority:2" json:"checkin_date"`
	Location    string        `gorm:"size:100" json:"location"`
	Latitude    *float64      `json:"latitude,omitempty"`
	Longitude   *float64      `json:"longitude,omitempty"`
	Status      CheckinStatus `gorm:"type:enum('Normal','Reissue');not null;default:'Normal'" json:"status"`
	IsReissue   *bool         `gorm:"not null;default:false" json:"is_reissue"`
	// ReissueTime is when the user asked for the backfill, not the day being
	// fixed. The monthly quota counts on this column.
	ReissueTime   *time.Time `json:"reissue_time,omitempty"`
	ReissueReason string     `gorm:"size:500" json:"reissue_reason,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

type NewCheckin struct {
	Location  string   `json:"location" binding:"required,max=100"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

/*
caches:
	checkin:continuous:$userId
*/

// CreateCheckin records today's check-in for userId. The duplicate-day probe
// runs first so concurrent callers usually see the Conflict before hitting
// the store, but the unique index has the final word: a duplicate-key insert
// is reported as the same Conflict, never as an internal failure.
func (s *CheckinService) CreateCheckin(ctx context.Context, userId int, input *NewCheckin) (*CheckinRecord, error) {

	location := input.Location
	if err := validateLocation(location); err != nil {
		return nil, err
	}

	if err := validateUserExists(ctx, userId); err != nil {
		return nil, err
	}

	now := time.Now()
	today := utils.DayOf(now)

	checked, err := hasCheckedInOn(ctx, userId, today)
	if err != nil {
		return nil, err
	}
	if checked {
		return nil, utils.NewConflictError("already checked in today")
	}

	if input.Latitude != nil && input.Longitude != nil {
		if err := s.ValidateCheckinLocation(*input.Latitude, *input.Longitude); err != nil {
			return nil, err
		}
	}

	record := CheckinRecord{
		UserId:      userId,
		CheckinTime: now, // server clock; never trusts caller-supplied time
		CheckinDate: today,
		Location:    location,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Status:      CheckinStatusNormal,
		IsReissue:   utils.NewFalse(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, utils.NewConflictError("already checked in today")
		}
		return nil, utils.NewInternalError("check-in failed, please try again", err)
	}

	if err := clearStreakCache(userId); err != nil {
		config.LogError(config.GetLogger(), "models", "CreateCheckin", "clear streak cache", userId, err)
	}

	return &record, nil
}

// GetUserCheckins returns the full history, most recent first.
func (s *CheckinService) GetUserCheckins(ctx context.Context, userId int) ([]*CheckinRecord, error) {

	if err := validateUserExists(ctx, userId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var records []*CheckinRecord
	err := db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("checkin_time desc").
		Find(&records).Error
	if err != nil {
		return nil, utils.NewInternalError("failed to load check-ins", err)
	}
	return records, nil
}

func (s *CheckinService) GetTodayCheckinStatus(ctx context.Context, userId int) (bool, error) {

	if err := validateUserExists(ctx, userId); err != nil {
		return false, err
	}
	return hasCheckedInOn(ctx, userId, utils.DayOf(time.Now()))
}

func (s *CheckinService) GetUserCheckinsByPage(ctx context.Context, userId, pageNum, pageSize int) (*CheckinPage, error) {

	if err := validateUserExists(ctx, userId); err != nil {
		return nil, err
	}

	pageNum = clampPageNum(pageNum)
	pageSize = clampPageSize(pageSize)

	db := config.GetDB()
	query := db.WithContext(ctx).Model(&CheckinRecord{}).Where("user_id = ?", userId)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, utils.NewInternalError("failed to load check-ins", err)
	}

	var records []*CheckinRecord
	err := query.
		Order("checkin_time desc").
		Offset((pageNum - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, utils.NewInternalError("failed to load check-ins", err)
	}

	return &CheckinPage{
		PageNum:  pageNum,
		PageSize: pageSize,
		Total:    total,
		Records:  records,
	}, nil
}

// validateLocation counts characters, not bytes, so multibyte location names
// get the full 100.
func validateLocation(location string) error {
	if location == "" {
		return utils.NewValidationError("check-in location is required")
	}
	if utf8.RuneCountInString(location) > 100 {
		return utils.NewValidationError("check-in location must not exceed 100 characters")
	}
	return nil
}

// hasCheckedInOn reports whether any record (normal or reissue) exists for
// the given calendar day.
func hasCheckedInOn(ctx context.Context, userId int, day time.Time) (bool, error) {

	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&CheckinRecord{}).
		Where("user_id = ? AND checkin_date = ?", userId, utils.DayOf(day)).
		Count(&count).Error
	if err != nil {
		return false, utils.NewInternalError("failed to check existing check-in", err)
	}
	return count > 0, nil
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return false
}
