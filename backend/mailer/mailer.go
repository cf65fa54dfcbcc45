// Package mailer delivers transactional email through an SMTP relay or SendGrid.
package mailer

import (
	"context"
	"fmt"

	"coursehub/backend/config"
)

type Message struct {
	To      []string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the mailer selected by MAIL_PROVIDER.
func New(cfg *config.Config) (Mailer, error) {
	switch cfg.MailProvider {
	case "smtp":
		return NewSMTPMailer(cfg), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is required for the sendgrid mail provider")
		}
		return NewSendGridMailer(cfg), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}
