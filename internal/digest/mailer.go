package digest

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/prodscout/prodscout/internal/config"
)

// SMTPMailer implements research.Mailer over SMTP with STARTTLS.
type SMTPMailer struct {
	cfg config.SMTP
	to  string
}

// NewSMTPMailer builds a mailer delivering to a fixed recipient.
func NewSMTPMailer(cfg config.SMTP, to string) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, to: to}
}

// Deliver sends one message with the given attachments. One attempt, no
// retry; retry policy belongs to the caller's schedule, not the
// transport.
func (m *SMTPMailer) Deliver(ctx context.Context, subject, body string, attachments []string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.User); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	for _, path := range attachments {
		msg.AttachFile(path)
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.User),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("build smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
