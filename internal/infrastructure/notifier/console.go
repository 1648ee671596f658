package notifier

import "github.com/rs/zerolog"

// ConsoleSender logs outgoing mail instead of delivering it. Used in
// development, where no SMTP server is configured.
type ConsoleSender struct {
	log zerolog.Logger
}

func NewConsoleSender(log zerolog.Logger) *ConsoleSender {
	return &ConsoleSender{log: log}
}

func (s *ConsoleSender) Send(to, subject, body string) error {
	s.log.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("outgoing mail")
	return nil
}
