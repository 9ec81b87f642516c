package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/Skotchmaster/storefront/internal/logging"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// New returns an SMTP mailer, or a LogMailer when no host is configured.
func New(cfg SMTPConfig, log *slog.Logger) Mailer {
	if cfg.Host == "" {
		return LogMailer{Log: log}
	}
	return &SMTPMailer{cfg: cfg, dial: newClient}
}

// sender is the part of *mail.Client the mailer uses.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type SMTPMailer struct {
	cfg  SMTPConfig
	dial func(cfg SMTPConfig) (sender, error)
}

// newClient builds one client per message; a client holds a single
// connection and concurrent registrations must not share it.
func newClient(cfg SMTPConfig) (sender, error) {
	opts := []mail.Option{mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}
	return mail.NewClient(cfg.Host, opts...)
}

func (m *SMTPMailer) message(to, subject, body string) (*mail.Msg, error) {
	if strings.ContainsAny(subject, "\r\n") {
		return nil, errors.New("mail: subject must not contain line breaks")
	}
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("mail: from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("mail: to: %w", err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg, err := m.message(to, subject, body)
	if err != nil {
		return err
	}
	client, err := m.dial(m.cfg)
	if err != nil {
		return fmt.Errorf("mail: client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}

// LogMailer only records what would have been sent.
type LogMailer struct {
	Log *slog.Logger
}

func (m LogMailer) Send(ctx context.Context, to, subject, _ string) error {
	l := m.Log
	if l == nil {
		l = logging.FromContext(ctx)
	}
	l.Info("mail_skipped", "reason", "smtp not configured", "to", to, "subject", subject)
	return nil
}
