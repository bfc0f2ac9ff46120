package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viralforge/brandhub/internal/domain"
)

// VerifyEmail consumes a matching unexpired code and marks the email verified.
func (s *Service) VerifyEmail(ctx context.Context, req VerifyEmailRequest) error {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return err
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.ErrInvalidOrExpiredCode
	}
	account, err := s.accounts.ConsumeVerificationCode(ctx, email, code, s.nowFn())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidOrExpiredCode
		}
		return err
	}
	s.enqueueEvent(ctx, eventTypeAccountEmailVerified, account.ID.String(), map[string]any{
		"account_id": account.ID,
		"email":      account.Email,
	})
	return nil
}

// ResendVerificationCode overwrites the pending code and mails the new one.
func (s *Service) ResendVerificationCode(ctx context.Context, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if err := s.enforceRateLimit(ctx, "resend_verification", normalized, s.cfg.VerificationResendLimit); err != nil {
		return err
	}
	account, err := s.accounts.GetByEmail(ctx, normalized)
	if err != nil {
		return err
	}
	if account.EmailVerified {
		return domain.ErrAlreadyVerified
	}

	challenge, err := s.newVerificationChallenge()
	if err != nil {
		return err
	}
	if err := s.accounts.SetVerificationChallenge(ctx, account.ID, *challenge, s.nowFn()); err != nil {
		if errors.Is(err, domain.ErrAlreadyVerified) {
			return err
		}
		return fmt.Errorf("store verification code: %w", err)
	}
	if err := s.mailer.SendVerificationCode(ctx, account.Email, challenge.Code); err != nil {
		if errors.Is(err, domain.ErrEmailDeliveryFailed) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrEmailDeliveryFailed, err)
	}
	return nil
}
