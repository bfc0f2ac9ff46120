package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
)

// Register creates a BRAND_OWNER account, mails a verification code and opens
// a session straight away.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return AuthResult{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return AuthResult{}, err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return AuthResult{}, err
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return AuthResult{}, fmt.Errorf("lookup account: %w", err)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	challenge, err := s.newVerificationChallenge()
	if err != nil {
		return AuthResult{}, err
	}

	now := s.nowFn()
	account := domain.Account{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.DefaultRole,
		Status:       domain.AccountActive,
		Address:      strings.TrimSpace(req.Address),
		Verification: challenge,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	tokens, err := s.issueTokens(&account)
	if err != nil {
		return AuthResult{}, err
	}
	if account, err = s.accounts.Create(ctx, account); err != nil {
		return AuthResult{}, err
	}

	s.sendVerificationCode(ctx, "register", account.Email, challenge.Code)
	s.enqueueEvent(ctx, eventTypeAccountRegistered, account.ID.String(), map[string]any{
		"account_id": account.ID,
		"email":      account.Email,
		"role":       account.Role,
	})
	s.logInfo(ctx, "register", "account registered", "account_id", account.ID)

	return AuthResult{Account: account.Public(), AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

// Login checks credentials and records one login history entry per success.
// Unverified accounts still log in but get a fresh verification code.
func (s *Service) Login(ctx context.Context, req LoginRequest) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return AuthResult{}, domain.ErrInvalidCredentials
	}
	if err := s.enforceRateLimit(ctx, "login", email, s.cfg.LoginRateLimit); err != nil {
		return AuthResult{}, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return AuthResult{}, domain.ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("lookup account: %w", err)
	}
	if account.PasswordHash == "" {
		return AuthResult{}, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	now := s.nowFn()
	var resendCode string
	if !account.EmailVerified {
		challenge, err := s.newVerificationChallenge()
		if err != nil {
			return AuthResult{}, err
		}
		switch err := s.accounts.SetVerificationChallenge(ctx, account.ID, *challenge, now); {
		case err == nil:
			account.Verification = challenge
			resendCode = challenge.Code
		case errors.Is(err, domain.ErrAlreadyVerified):
			account.EmailVerified = true
			account.Verification = nil
		default:
			return AuthResult{}, fmt.Errorf("store verification code: %w", err)
		}
	}

	if err := s.loginHistory.Append(ctx, domain.LoginHistoryEntry{
		ID:        uuid.New(),
		AccountID: account.ID,
		LoginTime: now,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
	}); err != nil {
		return AuthResult{}, fmt.Errorf("append login history: %w", err)
	}

	tokens, err := s.issueTokens(&account)
	if err != nil {
		return AuthResult{}, err
	}
	if err := s.accounts.ReplaceRefreshTokenHash(ctx, account.ID, "", account.RefreshTokenHash, now); err != nil {
		return AuthResult{}, fmt.Errorf("store refresh token: %w", err)
	}
	account.UpdatedAt = now

	if resendCode != "" {
		s.sendVerificationCode(ctx, "login", account.Email, resendCode)
	}
	s.enqueueEvent(ctx, eventTypeAccountLoggedIn, account.ID.String(), map[string]any{
		"account_id": account.ID,
		"ip_address": req.IPAddress,
	})

	return AuthResult{Account: account.Public(), AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

// Refresh rotates both tokens. Only the most recently issued refresh token is accepted.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.tokenSigner.Parse(ports.RefreshToken, strings.TrimSpace(refreshToken))
	if err != nil {
		return TokenPair{}, domain.ErrUnauthorized
	}
	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return TokenPair{}, domain.ErrUnauthorized
		}
		return TokenPair{}, fmt.Errorf("lookup account: %w", err)
	}
	presented := hashToken(strings.TrimSpace(refreshToken))
	if account.RefreshTokenHash == "" || account.RefreshTokenHash != presented {
		return TokenPair{}, domain.ErrUnauthorized
	}

	tokens, err := s.issueTokens(&account)
	if err != nil {
		return TokenPair{}, err
	}
	// a concurrent refresh or logout wins; this token is then spent
	err = s.accounts.ReplaceRefreshTokenHash(ctx, account.ID, presented, account.RefreshTokenHash, s.nowFn())
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return TokenPair{}, domain.ErrUnauthorized
		}
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return tokens, nil
}

// Logout deny-lists the access token until it expires and drops the refresh token.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokenSigner.Parse(ports.AccessToken, strings.TrimSpace(accessToken))
	if err != nil {
		return domain.ErrUnauthorized
	}
	if s.revocations != nil && claims.TokenID != "" {
		if err := s.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
			return fmt.Errorf("revoke access token: %w", err)
		}
	}

	err = s.accounts.ReplaceRefreshTokenHash(ctx, claims.AccountID, "", "", s.nowFn())
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer access token to the calling actor. Every
// failure is reported as domain.ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (domain.Actor, error) {
	claims, err := s.tokenSigner.Parse(ports.AccessToken, strings.TrimSpace(accessToken))
	if err != nil {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	if s.revocations != nil && claims.TokenID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			s.logWarn(ctx, "authenticate", "revocation state unavailable", "error", err)
			return domain.Actor{}, domain.ErrUnauthorized
		}
		if revoked {
			return domain.Actor{}, domain.ErrUnauthorized
		}
	}
	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	return domain.Actor{AccountID: account.ID, Role: account.Role}, nil
}

// issueTokens signs a fresh pair and records the refresh token hash on account.
func (s *Service) issueTokens(account *domain.Account) (TokenPair, error) {
	now := s.nowFn()
	access, err := s.tokenSigner.Sign(ports.AccessToken, ports.TokenClaims{
		AccountID: account.ID,
		Role:      account.Role,
		TokenID:   uuid.NewString(),
		Kind:      ports.AccessToken,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	})
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.tokenSigner.Sign(ports.RefreshToken, ports.TokenClaims{
		AccountID: account.ID,
		Role:      account.Role,
		TokenID:   uuid.NewString(),
		Kind:      ports.RefreshToken,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
	})
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	account.RefreshTokenHash = hashToken(refresh)
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// sendVerificationCode does not fail the calling operation; the user can ask
// for another code.
func (s *Service) sendVerificationCode(ctx context.Context, operation, email, code string) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		s.logWarn(ctx, operation, "verification email not delivered", "error", err)
	}
}
