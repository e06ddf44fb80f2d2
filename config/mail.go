package config

import (
	"crypto/tls"
	"log"
	"os"

	"gopkg.in/gomail.v2"
)

var mailDialer *gomail.Dialer

// GetMailDialer returns the shared SMTP dialer, or nil when mail is not
// configured. Callers must treat nil as "reminders disabled".
func GetMailDialer() *gomail.Dialer {
	return mailDialer
}

func GetMailFrom() string {
	return os.Getenv("MAIL_USER")
}

// ConnectMail builds the SMTP dialer from env. Unlike DB/Redis there is no
// retry loop: mail is fire-and-forget and a bad config only disables reminders.
func ConnectMail() {
	host := os.Getenv("MAIL_HOST")
	user := os.Getenv("MAIL_USER")
	pass := os.Getenv("MAIL_PASS")
	port := intFromEnv("MAIL_PORT", 587)

	if host == "" || user == "" {
		log.Printf("MAIL_HOST/MAIL_USER not set; mail reminders disabled")
		return
	}

	mailDialer = gomail.NewDialer(host, port, user, pass)
	if os.Getenv("MAIL_SKIP_TLS_VERIFY") == "true" {
		mailDialer.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	log.Printf("mail dialer configured (host=%s port=%d)", host, port)
}
