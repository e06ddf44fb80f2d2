package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// CheckinRules carries every operator-tunable rule of the check-in engine.
// Loaded once at startup and passed into the service constructor; never
// mutated afterwards.
type CheckinRules struct {
	// Geofence: check-ins carrying coordinates must fall inside this box.
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64

	// Reissue (backfill) policy.
	MaxReissueDays  int // how far back a reissue may reach, in days
	MaxReissueCount int // reissues allowed per user per calendar month

	// Lifetime of the cached continuous-day count.
	StreakCacheTTL time.Duration
}

// LoadCheckinRules reads the rules from env with the documented defaults:
// geofence open to the whole valid lat/lon range, 3-day reissue window,
// 1 reissue per month, 2h streak cache.
func LoadCheckinRules() CheckinRules {
	return CheckinRules{
		MinLatitude:     floatFromEnv("CHECKIN_MIN_LAT", -90),
		MaxLatitude:     floatFromEnv("CHECKIN_MAX_LAT", 90),
		MinLongitude:    floatFromEnv("CHECKIN_MIN_LON", -180),
		MaxLongitude:    floatFromEnv("CHECKIN_MAX_LON", 180),
		MaxReissueDays:  intFromEnv("CHECKIN_REISSUE_MAX_DAYS", 3),
		MaxReissueCount: intFromEnv("CHECKIN_REISSUE_MAX_COUNT", 1),
		StreakCacheTTL:  time.Duration(intFromEnv("CHECKIN_STREAK_CACHE_HOURS", 2)) * time.Hour,
	}
}

func floatFromEnv(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
