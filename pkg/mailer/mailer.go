package mailer

import (
	"context"

	"github.com/anonto42/webapps/backend/pkg/logger"
)

// Message is a single transactional email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Config selects the transport. SES wins when AWS credentials are present,
// then SMTP, otherwise messages are only logged.
type Config struct {
	From         string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
}

// New picks a Mailer for cfg. It never fails: a misconfigured SES client
// falls back to the next transport with a warning.
func New(ctx context.Context, cfg Config, log *logger.Logger) Mailer {
	if cfg.AWSRegion != "" && cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" {
		m, err := NewSESMailer(ctx, cfg)
		if err == nil {
			log.Info("mailer configured", "transport", "ses", "region", cfg.AWSRegion)
			return m
		}
		log.Warn("failed to initialize SES mailer", "error", err)
	}
	if cfg.SMTPHost != "" {
		log.Info("mailer configured", "transport", "smtp", "host", cfg.SMTPHost)
		return NewSMTPMailer(cfg)
	}
	log.Warn("email service not configured, messages will only be logged")
	return &LogMailer{log: log}
}

// LogMailer records what would have been sent.
type LogMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("email not sent (no transport)", "to", RedactEmail(msg.To), "subject", msg.Subject)
	return nil
}
