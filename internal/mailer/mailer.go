package mailer

import (
	"github.com/ideamentor-dev/ideamentor/internal/config"
	"gopkg.in/gomail.v2"
)

// Sender delivers a single plain-text message. The OTP service depends on
// this interface so tests can substitute a fake transport.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender submits mail over authenticated SMTP with TLS.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.EmailSender,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	d.SSL = s.port == 465

	return d.DialAndSend(m)
}
