package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// MailerConfig configures the SMTP notifier.
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Subject  string
}

// Mailer sends one plain-text mail with all recipients on the message.
type Mailer struct {
	client  *mail.Client
	from    string
	subject string
}

// NewMailer creates an SMTP notifier. Credentials are optional; without
// a username the client connects unauthenticated.
func NewMailer(cfg MailerConfig) (*Mailer, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating mail client: %w", err)
	}
	return &Mailer{client: client, from: cfg.From, subject: cfg.Subject}, nil
}

func (m *Mailer) Send(ctx context.Context, message string, recipients []string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(recipients...); err != nil {
		return fmt.Errorf("setting recipients: %w", err)
	}
	msg.Subject(m.subject)
	msg.SetBodyString(mail.TypeTextPlain, message)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}
