// Package notify provides outbound OTP delivery. The engine hands each
// notifier the plaintext code exactly once; nothing here stores it.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"
)

// SMTPConfig carries SMTP transport settings.
type SMTPConfig struct {
	Host               string
	Port               int
	From               string
	Username           string
	Password           string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool
	Subject            string
}

// SMTPSender delivers OTP codes over SMTP as multipart/alternative mail.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender returns a sender for the given transport settings. Subject
// defaults to "Your verification code".
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.TLSMode == "" {
		cfg.TLSMode = "auto"
	}
	if cfg.Subject == "" {
		cfg.Subject = "Your verification code"
	}
	return &SMTPSender{cfg: cfg}
}

// SendOTP delivers code to email. The context is checked before dialing;
// go-mail owns the connection after that.
func (s *SMTPSender) SendOTP(ctx context.Context, email, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", email)
	m.SetHeader("Subject", s.cfg.Subject)
	m.SetBody("text/plain", fmt.Sprintf("Your one-time code is %s. It expires shortly; do not share it.", code))
	m.AddAlternative("text/html", fmt.Sprintf(
		"<p>Your one-time code is <strong>%s</strong>.</p><p>It expires shortly; do not share it.</p>", code))

	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.InsecureSkipVerify,
	}

	switch s.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: s.cfg.InsecureSkipVerify}
	default:
		// "auto"/"starttls": the dialer negotiates STARTTLS when offered.
	}

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
