package models

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mmdatafocus/checkin_backend/config"
	"gopkg.in/gomail.v2"
)

// SendUncheckedReminders mails every user without a record on the given day.
// Users without an email address are skipped; a missing mail config makes
// the whole call a no-op. Returns how many mails went out.
func (s *CheckinService) SendUncheckedReminders(ctx context.Context, date time.Time) (int, error) {

	dialer := config.GetMailDialer()
	if dialer == nil {
		return 0, nil
	}

	users, err := s.GetUncheckedUsers(ctx, date)
	if err != nil {
		return 0, err
	}

	subject := os.Getenv("MAIL_SUBJECT")
	if subject == "" {
		subject = "Check-in reminder"
	}

	sent := 0
	for _, u := range users {
		if u.Email == nil || *u.Email == "" {
			continue
		}

		m := gomail.NewMessage()
		m.SetHeader("From", config.GetMailFrom())
		m.SetHeader("To", *u.Email)
		m.SetHeader("Subject", subject)
		m.SetBody("text/html", reminderBody(u, date))

		if err := dialer.DialAndSend(m); err != nil {
			config.LogError(config.GetLogger(), "models", "SendUncheckedReminders", "send mail", u.Username, err)
			continue
		}
		sent++
	}
	return sent, nil
}

func reminderBody(u *User, date time.Time) string {
	name := u.Name
	if name == "" {
		name = u.Username
	}
	return fmt.Sprintf(
		"<p>Hi %s,</p><p>You have no check-in recorded for %s. If you were present, please submit a reissue within the allowed window.</p>",
		name, date.Format("2006-01-02"),
	)
}
