package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/Skotchmaster/storefront/internal/logging"
)

type fakeSender struct {
	err  error
	sent []*mail.Msg
	wait bool
}

func (f *fakeSender) DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error {
	if f.wait {
		<-ctx.Done()
		return ctx.Err()
	}
	f.sent = append(f.sent, msgs...)
	return f.err
}

func newTestMailer(f *fakeSender, gotCfg *SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg: SMTPConfig{Host: "smtp.example.com", Port: 587, User: "u", Password: "p", From: "shop@example.com"},
		dial: func(cfg SMTPConfig) (sender, error) {
			if gotCfg != nil {
				*gotCfg = cfg
			}
			return f, nil
		},
	}
}

func TestNew_WithoutHostLogsOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	m := New(SMTPConfig{}, logging.NewWithWriter(&buf, "info"))
	require.IsType(t, LogMailer{}, m)

	require.NoError(t, m.Send(context.Background(), "a@example.com", "Welcome", "hi"))
	assert.Contains(t, buf.String(), "mail_skipped")
	assert.Contains(t, buf.String(), "a@example.com")
}

func TestNew_WithHostUsesSMTP(t *testing.T) {
	t.Parallel()

	m := New(SMTPConfig{Host: "smtp.example.com", Port: 2525, User: "u", Password: "p"}, nil)
	require.IsType(t, &SMTPMailer{}, m)

	c, err := newClient(SMTPConfig{Host: "smtp.example.com", Port: 2525, User: "u", Password: "p"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestSMTPMailer_Send(t *testing.T) {
	t.Parallel()

	f := &fakeSender{}
	var cfg SMTPConfig
	m := newTestMailer(f, &cfg)

	require.NoError(t, m.Send(context.Background(), "buyer@example.com", "Welcome to Our Store!", "Thank you for registering!"))
	assert.Equal(t, "smtp.example.com", cfg.Host)
	assert.Equal(t, 587, cfg.Port)
	require.Len(t, f.sent, 1)

	var raw bytes.Buffer
	_, err := f.sent[0].WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "Subject: Welcome to Our Store!")
	assert.Contains(t, raw.String(), "shop@example.com")
	assert.Contains(t, raw.String(), "buyer@example.com")
	assert.Contains(t, raw.String(), "Thank you for registering!")
}

func TestSMTPMailer_Errors(t *testing.T) {
	t.Parallel()

	failing := newTestMailer(&fakeSender{err: errors.New("refused")}, nil)
	err := failing.Send(context.Background(), "a@example.com", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")

	unused := &fakeSender{}
	m := newTestMailer(unused, nil)
	require.Error(t, m.Send(context.Background(), "a@example.com\r\nBcc: x@example.com", "s", "b"))
	require.Error(t, m.Send(context.Background(), "a@example.com", "s\r\nBcc: x@example.com", "b"))
	require.Error(t, m.Send(context.Background(), "not an address", "s", "b"))
	assert.Empty(t, unused.sent)

	slow := newTestMailer(&fakeSender{wait: true}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, slow.Send(ctx, "a@example.com", "s", "b"), context.DeadlineExceeded)
}
