package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mmdatafocus/checkin_backend/config"
	"github.com/mmdatafocus/checkin_backend/models"
	"github.com/mmdatafocus/checkin_backend/utils"
	"github.com/shopspring/decimal"
)

// Check-in engine integration harness.
//
// Covers the properties that only hold against a real store:
// - the (user, day) unique index wins the concurrent double check-in race
// - reissue window/quota enforcement incl. month rollover of the quota
// - streak computation + cache population/invalidation through Redis
//
// Usage (requires Docker): INTEGRATION_TESTS=1 go test ./models -run CheckinEngine -v

func TestCheckinEngine_Integration(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "checkin_test")
	t.Setenv("CHECKIN_MIN_LAT", "30")
	t.Setenv("CHECKIN_MAX_LAT", "31")
	t.Setenv("CHECKIN_MIN_LON", "120")
	t.Setenv("CHECKIN_MAX_LON", "121")
	t.Setenv("CHECKIN_REISSUE_MAX_DAYS", "3")
	t.Setenv("CHECKIN_REISSUE_MAX_COUNT", "1")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()
	t.Cleanup(func() { _ = config.ClearRedis(ctx) })

	service := models.NewCheckinService(config.LoadCheckinRules())
	db := config.GetDB()

	newUser := func(name string) *models.User {
		t.Helper()
		u, err := models.CreateUser(ctx, &models.NewUser{
			Username: name,
			Name:     name,
			Password: "secret123",
		})
		if err != nil {
			t.Fatalf("CreateUser(%s): %v", name, err)
		}
		return u
	}

	seedCheckin := func(userId int, ts time.Time) {
		t.Helper()
		rec := models.CheckinRecord{
			UserId:      userId,
			CheckinTime: ts,
			CheckinDate: utils.DayOf(ts),
			Location:    "Office",
			Status:      models.CheckinStatusNormal,
			IsReissue:   utils.NewFalse(),
		}
		if err := db.WithContext(ctx).Create(&rec).Error; err != nil {
			t.Fatalf("seed check-in (%d @ %v): %v", userId, ts, err)
		}
	}

	now := time.Now()
	today := utils.DayOf(now)

	t.Run("SequentialDoubleCheckinConflicts", func(t *testing.T) {
		u := newUser("seq-user")

		first, err := service.CreateCheckin(ctx, u.ID, &models.NewCheckin{Location: "Office"})
		if err != nil {
			t.Fatalf("first check-in: %v", err)
		}
		if first.Status != models.CheckinStatusNormal || *first.IsReissue {
			t.Fatalf("unexpected record: %+v", first)
		}

		_, err = service.CreateCheckin(ctx, u.ID, &models.NewCheckin{Location: "Office"})
		if err == nil {
			t.Fatal("second same-day check-in must fail")
		}
		if utils.KindOf(err) != utils.ErrorKindConflict {
			t.Fatalf("expected Conflict, got %s (%v)", utils.KindOf(err), err)
		}

		checked, err := service.GetTodayCheckinStatus(ctx, u.ID)
		if err != nil || !checked {
			t.Fatalf("expected today status true, got %v err=%v", checked, err)
		}
	})

	t.Run("ConcurrentDoubleCheckinExactlyOneWins", func(t *testing.T) {
		u := newUser("race-user")

		const attempts = 8
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = service.CreateCheckin(context.Background(), u.ID, &models.NewCheckin{Location: "Office"})
			}(i)
		}
		wg.Wait()

		successes := 0
		for _, err := range errs {
			if err == nil {
				successes++
				continue
			}
			if utils.KindOf(err) != utils.ErrorKindConflict {
				t.Fatalf("loser must see Conflict, got %s (%v)", utils.KindOf(err), err)
			}
		}
		if successes != 1 {
			t.Fatalf("expected exactly 1 winner, got %d", successes)
		}

		var count int64
		if err := db.Model(&models.CheckinRecord{}).Where("user_id = ?", u.ID).Count(&count).Error; err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 1 {
			t.Fatalf("store must hold exactly 1 record, got %d", count)
		}
	})

	t.Run("CheckinForUnknownUserNotFound", func(t *testing.T) {
		_, err := service.CreateCheckin(ctx, 999999, &models.NewCheckin{Location: "Office"})
		if utils.KindOf(err) != utils.ErrorKindNotFound {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})

	t.Run("GeofencedCheckin", func(t *testing.T) {
		u := newUser("geo-user")
		lat, lon := 45.0, 120.5
		_, err := service.CreateCheckin(ctx, u.ID, &models.NewCheckin{Location: "Offsite", Latitude: &lat, Longitude: &lon})
		if utils.KindOf(err) != utils.ErrorKindValidation {
			t.Fatalf("expected Validation outside geofence, got %v", err)
		}

		lat = 30.5
		rec, err := service.CreateCheckin(ctx, u.ID, &models.NewCheckin{Location: "Office", Latitude: &lat, Longitude: &lon})
		if err != nil {
			t.Fatalf("in-bounds check-in: %v", err)
		}
		if rec.Latitude == nil || *rec.Latitude != 30.5 {
			t.Fatalf("latitude not persisted: %+v", rec)
		}
	})

	t.Run("ReissueWindowExceeded", func(t *testing.T) {
		u := newUser("window-user")
		_, err := service.ReissueCheckin(ctx, u.ID, today.AddDate(0, 0, -4), "sick")
		if utils.KindOf(err) != utils.ErrorKindValidation {
			t.Fatalf("expected Validation for today-4 with 3-day window, got %v", err)
		}

		_, err = service.ReissueCheckin(ctx, u.ID, today.AddDate(0, 0, 1), "time travel")
		if utils.KindOf(err) != utils.ErrorKindValidation {
			t.Fatalf("expected Validation for future date, got %v", err)
		}
	})

	t.Run("ReissueQuotaPerMonth", func(t *testing.T) {
		u := newUser("quota-user")

		rec, err := service.ReissueCheckin(ctx, u.ID, today.AddDate(0, 0, -1), "forgot my badge")
		if err != nil {
			t.Fatalf("first reissue: %v", err)
		}
		if rec.Status != models.CheckinStatusReissue || !*rec.IsReissue || rec.ReissueTime == nil {
			t.Fatalf("unexpected reissue record: %+v", rec)
		}

		_, err = service.ReissueCheckin(ctx, u.ID, today.AddDate(0, 0, -2), "forgot again")
		if utils.KindOf(err) != utils.ErrorKindConflict {
			t.Fatalf("expected Conflict once quota is spent, got %v", err)
		}
	})

	t.Run("QuotaSpentLastMonthDoesNotCount", func(t *testing.T) {
		u := newUser("rollover-user")

		// a reissue submitted last month must not consume this month's quota
		lastMonth := now.AddDate(0, 0, -40)
		old := models.CheckinRecord{
			UserId:        u.ID,
			CheckinTime:   utils.DayOf(lastMonth),
			CheckinDate:   utils.DayOf(lastMonth),
			Location:      "Reissue",
			Status:        models.CheckinStatusReissue,
			IsReissue:     utils.NewTrue(),
			ReissueTime:   &lastMonth,
			ReissueReason: "old one",
		}
		if err := db.WithContext(ctx).Create(&old).Error; err != nil {
			t.Fatalf("seed old reissue: %v", err)
		}

		if _, err := service.ReissueCheckin(ctx, u.ID, today.AddDate(0, 0, -1), "fresh month"); err != nil {
			t.Fatalf("reissue after month rollover should succeed: %v", err)
		}
	})

	t.Run("ReissueOnCheckedDayConflicts", func(t *testing.T) {
		u := newUser("dup-day-user")
		yesterday := today.AddDate(0, 0, -1)
		seedCheckin(u.ID, yesterday.Add(9*time.Hour))

		_, err := service.ReissueCheckin(ctx, u.ID, yesterday, "double dipping")
		if utils.KindOf(err) != utils.ErrorKindConflict {
			t.Fatalf("expected Conflict for already-checked day, got %v", err)
		}
	})

	t.Run("ReissueReasonValidation", func(t *testing.T) {
		u := newUser("reason-user")
		_, err := service.ReissueCheckin(ctx, u.ID, today.AddDate(0, 0, -1), "   ")
		if utils.KindOf(err) != utils.ErrorKindValidation {
			t.Fatalf("expected Validation for blank reason, got %v", err)
		}
		_, err = service.ReissueCheckin(ctx, u.ID, today.AddDate(0, 0, -1), strings.Repeat("x", 501))
		if utils.KindOf(err) != utils.ErrorKindValidation {
			t.Fatalf("expected Validation for oversized reason, got %v", err)
		}
	})

	t.Run("StreakComputedAndCached", func(t *testing.T) {
		u := newUser("streak-user")

		// four seeded days plus a live check-in today = 5 consecutive days
		for i := 4; i >= 1; i-- {
			seedCheckin(u.ID, today.AddDate(0, 0, -i).Add(9*time.Hour))
		}
		if _, err := service.CreateCheckin(ctx, u.ID, &models.NewCheckin{Location: "Office"}); err != nil {
			t.Fatalf("today's check-in: %v", err)
		}

		days, err := service.GetContinuousCheckinDays(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetContinuousCheckinDays: %v", err)
		}
		if days != 5 {
			t.Fatalf("expected streak 5, got %d", days)
		}

		var cached int
		exists, err := config.GetRedisObject(fmt.Sprintf("checkin:continuous:%d", u.ID), &cached)
		if err != nil {
			t.Fatalf("cache read: %v", err)
		}
		if !exists || cached != 5 {
			t.Fatalf("expected cached streak 5, exists=%v value=%d", exists, cached)
		}

		stats, err := service.GetCheckinStats(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetCheckinStats: %v", err)
		}
		if stats.TotalDays != 5 || stats.ContinuousDays != 5 {
			t.Fatalf("unexpected stats: %+v", stats)
		}
		if stats.CurrentMonth != int(now.Month()) {
			t.Fatalf("expected current month %d, got %d", int(now.Month()), stats.CurrentMonth)
		}

		// the 5-day run can straddle a month boundary; count what falls in
		// the current month and expect the 2-decimal fraction over its length
		monthDays := 0
		for i := 0; i < 5; i++ {
			d := today.AddDate(0, 0, -i)
			if d.Year() == now.Year() && d.Month() == now.Month() {
				monthDays++
			}
		}
		wantRate := decimal.NewFromInt(int64(monthDays)).
			Div(decimal.NewFromInt(int64(utils.DaysInMonth(now.Year(), now.Month())))).
			Round(2)
		if stats.MonthlyDays != monthDays {
			t.Fatalf("expected %d monthly days, got %d", monthDays, stats.MonthlyDays)
		}
		if !stats.MonthlyRate.Equal(wantRate) {
			t.Fatalf("expected monthly rate %s, got %s", wantRate, stats.MonthlyRate)
		}
	})

	t.Run("PagingClampsAndOrders", func(t *testing.T) {
		u := newUser("page-user")
		for i := 10; i >= 1; i-- {
			seedCheckin(u.ID, today.AddDate(0, 0, -i).Add(8*time.Hour))
		}

		page, err := service.GetUserCheckinsByPage(ctx, u.ID, 0, 1000)
		if err != nil {
			t.Fatalf("page: %v", err)
		}
		if page.PageNum != 1 || page.PageSize != 100 {
			t.Fatalf("expected clamped paging (1, 100), got (%d, %d)", page.PageNum, page.PageSize)
		}
		if page.Total != 10 || len(page.Records) != 10 {
			t.Fatalf("expected 10 records, got total=%d len=%d", page.Total, len(page.Records))
		}
		for i := 1; i < len(page.Records); i++ {
			if page.Records[i].CheckinTime.After(page.Records[i-1].CheckinTime) {
				t.Fatal("records must be ordered by checkin_time desc")
			}
		}
	})

	t.Run("UncheckedUsersRedacted", func(t *testing.T) {
		u := newUser("lazy-user")

		users, err := service.GetUncheckedUsers(ctx, now)
		if err != nil {
			t.Fatalf("GetUncheckedUsers: %v", err)
		}
		found := false
		for _, cand := range users {
			if cand.Password != "" {
				t.Fatalf("credentials must be redacted: %+v", cand)
			}
			if cand.ID == u.ID {
				found = true
			}
		}
		if !found {
			t.Fatal("user without a record today must be listed as unchecked")
		}
	})
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("checkin-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("checkin-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=checkin_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
