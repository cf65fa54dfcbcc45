package mailer

import (
	"context"
	"fmt"

	"coursehub/backend/config"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridMailer struct {
	client sendGridClient
	from   string
}

func NewSendGridMailer(cfg *config.Config) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   cfg.EmailFrom,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("sendgrid: no recipients")
	}

	email := mail.NewV3Mail()
	email.SetFrom(mail.NewEmail("", m.from))
	email.Subject = msg.Subject

	p := mail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(mail.NewEmail("", to))
	}
	email.AddPersonalizations(p)
	email.AddContent(mail.NewContent("text/html", msg.HTML))

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d", resp.StatusCode)
	}
	return nil
}
