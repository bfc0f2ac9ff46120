package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/viralforge/brandhub/internal/domain"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	FrontendURL string
	Timeout     time.Duration
}

// SMTPMailer delivers account emails through one SMTP relay. Every failure
// is reported as domain.ErrEmailDeliveryFailed.
type SMTPMailer struct {
	cfg  SMTPConfig
	from string
	now  func() time.Time
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	from, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("parse smtp from address: %w", err)
	}
	return &SMTPMailer{cfg: cfg, from: from.Address, now: time.Now}, nil
}

func (m *SMTPMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	return m.send(ctx, "send_verification_code", verificationMessage(m.cfg.From, to, code))
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, rawToken string) error {
	return m.send(ctx, "send_password_reset", passwordResetMessage(m.cfg.From, to, m.cfg.FrontendURL, rawToken))
}

func (m *SMTPMailer) send(ctx context.Context, operation string, msg message) error {
	if err := m.deliver(ctx, msg); err != nil {
		slog.Default().ErrorContext(ctx, "email delivery failed",
			"module", "email",
			"layer", "adapter",
			"operation", operation,
			"outcome", "failure",
			"error", err,
		)
		return fmt.Errorf("%w: %v", domain.ErrEmailDeliveryFailed, err)
	}
	slog.Default().InfoContext(ctx, "email delivered",
		"module", "email",
		"layer", "adapter",
		"operation", operation,
		"outcome", "success",
	)
	return nil
}

func (m *SMTPMailer) deliver(ctx context.Context, msg message) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg.bytes(m.now())); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return client.Quit()
}
