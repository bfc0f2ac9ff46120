package email

import (
	"context"
	"log/slog"
)

// LoggingMailer stands in for SMTP in local setups. It logs the recipient
// and the reset link or code instead of sending anything.
type LoggingMailer struct {
	frontendURL string
	logger      *slog.Logger
}

func NewLoggingMailer(frontendURL string, logger *slog.Logger) *LoggingMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingMailer{frontendURL: frontendURL, logger: logger}
}

func (m *LoggingMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	m.logger.InfoContext(ctx, "verification email not sent, smtp disabled",
		"module", "email",
		"layer", "adapter",
		"operation", "send_verification_code",
		"outcome", "skipped",
		"to", to,
		"code", code,
	)
	return nil
}

func (m *LoggingMailer) SendPasswordReset(ctx context.Context, to, rawToken string) error {
	m.logger.InfoContext(ctx, "password reset email not sent, smtp disabled",
		"module", "email",
		"layer", "adapter",
		"operation", "send_password_reset",
		"outcome", "skipped",
		"to", to,
		"link", resetLink(m.frontendURL, rawToken),
	)
	return nil
}
