package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viralforge/brandhub/internal/domain"
)

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return err
	}
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account.PasswordHash == "" || s.hasher.Compare(account.PasswordHash, req.CurrentPassword) != nil {
		return domain.ErrInvalidCredentials
	}
	if err := domain.ValidatePassword(req.NewPassword); err != nil {
		return err
	}
	passwordHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdatePasswordHash(ctx, account.ID, passwordHash, s.nowFn()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.enqueueEvent(ctx, eventTypeAccountPasswordChanged, account.ID.String(), map[string]any{
		"account_id": account.ID,
		"via":        "change",
	})
	return nil
}

// InitiatePasswordReset mails a one-time reset token. Only its sha256 is
// stored, and the challenge is withdrawn again when the mail cannot be sent.
func (s *Service) InitiatePasswordReset(ctx context.Context, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if err := s.enforceRateLimit(ctx, "forgot_password", normalized, s.cfg.PasswordResetRateLimit); err != nil {
		return err
	}
	account, err := s.accounts.GetByEmail(ctx, normalized)
	if err != nil {
		return err
	}

	rawToken, err := randomHex(32)
	if err != nil {
		return err
	}
	now := s.nowFn()
	challenge := domain.PasswordResetChallenge{
		TokenHash: hashToken(rawToken),
		ExpiresAt: now.Add(s.cfg.PasswordResetTTL),
	}
	if err := s.accounts.SetPasswordReset(ctx, account.ID, challenge, now); err != nil {
		return fmt.Errorf("store reset challenge: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, account.Email, rawToken); err != nil {
		clearErr := s.accounts.ClearPasswordReset(ctx, account.ID, challenge.TokenHash, s.nowFn())
		if clearErr != nil && !errors.Is(clearErr, domain.ErrAccountNotFound) {
			s.logWarn(ctx, "initiate_password_reset", "failed to withdraw reset challenge", "error", clearErr)
		}
		if errors.Is(err, domain.ErrEmailDeliveryFailed) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrEmailDeliveryFailed, err)
	}
	return nil
}

// ResetPassword consumes a reset token and replaces the password hash.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if strings.TrimSpace(req.Token) == "" {
		return domain.ErrInvalidOrExpiredToken
	}
	if err := domain.ValidatePassword(req.NewPassword); err != nil {
		return err
	}
	passwordHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	account, err := s.accounts.ConsumePasswordReset(ctx, hashToken(req.Token), s.nowFn(), passwordHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidOrExpiredToken
		}
		return err
	}
	s.enqueueEvent(ctx, eventTypeAccountPasswordChanged, account.ID.String(), map[string]any{
		"account_id": account.ID,
		"via":        "reset",
	})
	return nil
}
