package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"

	"github.com/viralforge/brandhub/internal/domain"
)

// normalizeEmail canonicalizes and validates email format before persistence/comparison.
func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	return trimmed, nil
}

// hashToken stores one-way token fingerprints instead of raw secrets.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a cryptographically random hex token.
func randomHex(bytesLen int) (string, error) {
	raw := make([]byte, bytesLen)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// verificationCode returns a uniform six digit code in [100000, 999999].
func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%d", 100000+n.Int64()), nil
}

func (s *Service) newVerificationChallenge() (*domain.VerificationChallenge, error) {
	code, err := verificationCode()
	if err != nil {
		return nil, err
	}
	return &domain.VerificationChallenge{
		Code:      code,
		ExpiresAt: s.nowFn().Add(s.cfg.VerificationCodeTTL),
	}, nil
}

// enforceRateLimit fails open when the limiter backend is unavailable.
func (s *Service) enforceRateLimit(ctx context.Context, scope, key string, limit int) error {
	if s.rateLimiter == nil || limit <= 0 || s.cfg.RateLimitWindow <= 0 {
		return nil
	}
	if strings.TrimSpace(key) == "" {
		return nil
	}
	err := s.rateLimiter.Allow(ctx, scope, key, limit, s.cfg.RateLimitWindow)
	if err == nil || errors.Is(err, domain.ErrRateLimited) {
		return err
	}
	s.logWarn(ctx, "rate_limit", "rate-limit state unavailable", "scope", scope, "error", err)
	return nil
}

func (s *Service) logWarn(ctx context.Context, operation, msg string, attrs ...any) {
	base := []any{
		"service", s.cfg.ServiceName,
		"module", "application",
		"layer", "application",
		"operation", operation,
		"outcome", "warning",
	}
	slog.Default().WarnContext(ctx, msg, append(base, attrs...)...)
}

func (s *Service) logInfo(ctx context.Context, operation, msg string, attrs ...any) {
	base := []any{
		"service", s.cfg.ServiceName,
		"module", "application",
		"layer", "application",
		"operation", operation,
		"outcome", "success",
	}
	slog.Default().InfoContext(ctx, msg, append(base, attrs...)...)
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
