package notifier

import (
	"fmt"
	"mime"
	"net/smtp"
	"time"
)

// SMTPConfig captures the settings for the outbound mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// Sender is the display name on the From header.
	Sender string
}

// SMTPSender delivers plain-text mail over SMTP with STARTTLS (handled by
// net/smtp when the server advertises it).
type SMTPSender struct {
	cfg  SMTPConfig
	auth smtp.Auth
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		cfg:  cfg,
		auth: smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	msg := s.buildMessage(to, subject, body)
	if err := smtp.SendMail(addr, s.auth, s.cfg.Username, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) buildMessage(to, subject, body string) []byte {
	encodedSubject := mime.QEncoding.Encode("utf-8", subject)
	encodedSender := mime.QEncoding.Encode("utf-8", s.cfg.Sender)

	return fmt.Appendf(nil,
		"Date: %s\r\n"+
			"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"utf-8\"\r\n"+
			"\r\n"+
			"%s",
		time.Now().Format(time.RFC1123Z), to, encodedSender, s.cfg.Username, encodedSubject, body,
	)
}
