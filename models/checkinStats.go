package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/checkin_backend/config"
	"github.com/mmdatafocus/checkin_backend/utils"
	"github.com/shopspring/decimal"
)

const dayKeyLayout = "2006-01-02"

// CheckinStats is the core per-user summary: lifetime distinct days, current
// streak, and this month's coverage.
type CheckinStats struct {
	UserId         int             `json:"user_id"`
	TotalDays      int             `json:"total_days"`
	ContinuousDays int             `json:"continuous_days"`
	MonthlyDays    int             `json:"monthly_days"`
	MonthlyRate    decimal.Decimal `json:"monthly_rate"`
	CurrentMonth   int             `json:"current_month"`
}

type MonthlyCheckinStats struct {
	Year         int              `json:"year"`
	Month        int              `json:"month"`
	TotalDays    int              `json:"total_days"`
	CheckinDays  int              `json:"checkin_days"`
	CheckinRate  string           `json:"checkin_rate"`
	CheckinDates []string         `json:"checkin_dates"`
	Records      []*CheckinRecord `json:"records"`
}

func (s *CheckinService) GetCheckinStats(ctx context.Context, userId int) (*CheckinStats, error) {

	if err := validateUserExists(ctx, userId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var records []*CheckinRecord
	err := db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("checkin_time asc").
		Find(&records).Error
	if err != nil {
		return nil, utils.NewInternalError("failed to load check-ins", err)
	}

	now := time.Now()
	monthStart, nextMonth := utils.MonthRange(now.Year(), now.Month(), now.Location())

	totalDays := len(distinctDays(records))

	var monthlyRecords []*CheckinRecord
	for _, r := range records {
		if !r.CheckinTime.Before(monthStart) && r.CheckinTime.Before(nextMonth) {
			monthlyRecords = append(monthlyRecords, r)
		}
	}
	monthlyDays := len(distinctDays(monthlyRecords))

	continuous, err := s.GetContinuousCheckinDays(ctx, userId)
	if err != nil {
		return nil, err
	}

	return &CheckinStats{
		UserId:         userId,
		TotalDays:      totalDays,
		ContinuousDays: continuous,
		MonthlyDays:    monthlyDays,
		MonthlyRate:    monthlyRate(monthlyDays, utils.DaysInMonth(now.Year(), now.Month())),
		CurrentMonth:   int(now.Month()),
	}, nil
}

func (s *CheckinService) GetMonthlyCheckinStats(ctx context.Context, userId, year, month int) (*MonthlyCheckinStats, error) {

	if year < 1970 || year > 9999 {
		return nil, utils.NewValidationError("year is out of range")
	}
	if month < 1 || month > 12 {
		return nil, utils.NewValidationError("month must be between 1 and 12")
	}
	if err := validateUserExists(ctx, userId); err != nil {
		return nil, err
	}

	monthStart, nextMonth := utils.MonthRange(year, time.Month(month), time.Local)
	totalDays := utils.DaysInMonth(year, time.Month(month))

	db := config.GetDB()
	var records []*CheckinRecord
	err := db.WithContext(ctx).
		Where("user_id = ? AND checkin_time >= ? AND checkin_time < ?", userId, monthStart, nextMonth).
		Order("checkin_time asc").
		Find(&records).Error
	if err != nil {
		return nil, utils.NewInternalError("failed to load check-ins", err)
	}

	dates := distinctDays(records)

	return &MonthlyCheckinStats{
		Year:         year,
		Month:        month,
		TotalDays:    totalDays,
		CheckinDays:  len(dates),
		CheckinRate:  monthlyRatePercent(len(dates), totalDays),
		CheckinDates: dates,
		Records:      records,
	}, nil
}

// GetUncheckedUsers lists every user with no record on the given calendar
// day. Credentials are redacted.
func (s *CheckinService) GetUncheckedUsers(ctx context.Context, date time.Time) ([]*User, error) {

	db := config.GetDB()

	var allUsers []*User
	if err := db.WithContext(ctx).Order("id").Find(&allUsers).Error; err != nil {
		return nil, utils.NewInternalError("failed to list users", err)
	}

	day := utils.DayOf(date)
	var checkedIds []int
	err := db.WithContext(ctx).Model(&CheckinRecord{}).
		Where("checkin_time >= ? AND checkin_time < ?", day, day.AddDate(0, 0, 1)).
		Distinct("user_id").
		Pluck("user_id", &checkedIds).Error
	if err != nil {
		return nil, utils.NewInternalError("failed to load check-ins", err)
	}

	checked := make(map[int]bool, len(checkedIds))
	for _, id := range checkedIds {
		checked[id] = true
	}

	unchecked := make([]*User, 0, len(allUsers))
	for _, u := range allUsers {
		if !checked[u.ID] {
			u.PrepareGive()
			unchecked = append(unchecked, u)
		}
	}
	return unchecked, nil
}

// distinctDays deduplicates records by calendar day; same-day duplicates
// count once. Returned keys are sorted because the input is time-ordered.
func distinctDays(records []*CheckinRecord) []string {
	seen := make(map[string]bool, len(records))
	days := make([]string, 0, len(records))
	for _, r := range records {
		key := r.CheckinTime.Format(dayKeyLayout)
		if !seen[key] {
			seen[key] = true
			days = append(days, key)
		}
	}
	return days
}

// monthlyRate is checked days over days-in-month as a fraction, 2 decimals.
func monthlyRate(checkinDays, totalDays int) decimal.Decimal {
	if totalDays == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(checkinDays)).
		Div(decimal.NewFromInt(int64(totalDays))).
		Round(2)
}

// monthlyRatePercent formats the same ratio as a percentage with 1 decimal,
// e.g. "83.9%".
func monthlyRatePercent(checkinDays, totalDays int) string {
	if totalDays == 0 {
		return "0.0%"
	}
	return decimal.NewFromInt(int64(checkinDays * 100)).
		Div(decimal.NewFromInt(int64(totalDays))).
		StringFixed(1) + "%"
}
