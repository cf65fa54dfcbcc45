package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"coursehub/backend/config"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
	send     sendMailFunc
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.EmailHost,
		port:     cfg.EmailPort,
		user:     cfg.EmailUser,
		password: cfg.EmailPass,
		from:     cfg.EmailFrom,
		send:     smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("smtp: no recipients")
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}

	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	if err := m.send(addr, auth, m.from, msg.To, m.build(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", addr, err)
	}
	return nil
}

func (m *SMTPMailer) build(msg Message) []byte {
	var b strings.Builder
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ","))
	fmt.Fprintf(&b, "Subject: %s\r\n\r\n", msg.Subject)
	b.WriteString(msg.HTML)
	return []byte(b.String())
}
