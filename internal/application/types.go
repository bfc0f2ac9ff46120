package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
)

type Config struct {
	ServiceName         string
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	VerificationCodeTTL time.Duration
	PasswordResetTTL    time.Duration

	LoginRateLimit          int
	PasswordResetRateLimit  int
	VerificationResendLimit int
	RateLimitWindow         time.Duration
}

// DefaultConfig holds the lifetimes the API documents.
func DefaultConfig() Config {
	return Config{
		ServiceName:             "brandhub",
		AccessTokenTTL:          24 * time.Hour,
		RefreshTokenTTL:         7 * 24 * time.Hour,
		VerificationCodeTTL:     24 * time.Hour,
		PasswordResetTTL:        time.Hour,
		LoginRateLimit:          10,
		PasswordResetRateLimit:  5,
		VerificationResendLimit: 5,
		RateLimitWindow:         15 * time.Minute,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// AuthResult is returned by every operation that opens a session.
type AuthResult struct {
	Account      domain.PublicAccount
	AccessToken  string
	RefreshToken string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type ChangePasswordRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ListUsersRequest struct {
	Role   string
	Search string
}

type ProductListRequest struct {
	Category string
	OwnerID  uuid.UUID
	Status   string
	Search   string
}
