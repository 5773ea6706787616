// Package email delivers the engine's outbound mail. The engine depends
// only on Sender; SMTP wiring stays here.
package email

import (
	"context"
	"errors"

	mail "github.com/go-mail/mail"
)

// Sender delivers one message. Implementations must be safe for concurrent
// use. Failures are logged by the caller and never abort the flow that
// triggered the mail.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Config configures SMTPSender.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends through an SMTP relay, dialing per message. Auth flows
// send rarely enough that connection reuse is not worth the idle handling.
type SMTPSender struct {
	dialer *mail.Dialer
	from   string
}

// NewSMTPSender builds a sender from cfg.
func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("email: host required")
	}
	if cfg.From == "" {
		return nil, errors.New("email: from address required")
	}
	return &SMTPSender{
		dialer: mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}, nil
}

// Send delivers a plain-text message. The context only gates the start of
// delivery; the SMTP dialer has no mid-flight cancellation.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return s.dialer.DialAndSend(m)
}

// NopSender discards everything. Used when mail is unconfigured so flows
// can skip delivery without branching.
type NopSender struct{}

func (NopSender) Send(ctx context.Context, to, subject, body string) error {
	return nil
}
