package utils

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"
)

// SMTP configuration via environment variables:
// SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD, SMTP_FROM

// SendMail sends an HTML email. Returns (false, err) on failure; callers
// treat delivery as fire-and-forget and log the error.
func SendMail(to string, subject string, html string) (bool, error) {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}

	if host == "" || port == "" {
		return false, fmt.Errorf("SMTP_HOST and SMTP_PORT are required")
	}
	if to == "" || !strings.Contains(to, "@") {
		return false, fmt.Errorf("invalid recipient address: %s", to)
	}

	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(html)

	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}

	addr := host + ":" + port
	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(msg.String())); err != nil {
		return false, err
	}

	return true, nil
}
