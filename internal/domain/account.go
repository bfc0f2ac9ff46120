package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleBuyer        Role = "BUYER"
	RoleBrandOwner   Role = "BRAND_OWNER"
	RoleBrandManager Role = "BRAND_MANAGER"
)

// DefaultRole is assigned to self-registered accounts.
const DefaultRole = RoleBrandOwner

// ParseRole accepts the role names case-insensitively.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleBuyer:
		return RoleBuyer, nil
	case RoleBrandOwner:
		return RoleBrandOwner, nil
	case RoleBrandManager:
		return RoleBrandManager, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, raw)
	}
}

type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
)

// VerificationChallenge is a six digit code proving control of the account email.
type VerificationChallenge struct {
	Code      string
	ExpiresAt time.Time
}

// PasswordResetChallenge holds only the sha256 of the reset token handed to the user.
type PasswordResetChallenge struct {
	TokenHash string
	ExpiresAt time.Time
}

type Account struct {
	ID               uuid.UUID
	Name             string
	Email            string
	PasswordHash     string
	Role             Role
	Status           AccountStatus
	Address          string
	EmailVerified    bool
	Verification     *VerificationChallenge
	PasswordReset    *PasswordResetChallenge
	RefreshTokenHash string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PublicAccount is the only account shape that leaves the service layer.
type PublicAccount struct {
	ID              uuid.UUID     `json:"id"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Role            Role          `json:"role"`
	Status          AccountStatus `json:"status"`
	Address         string        `json:"address,omitempty"`
	IsEmailVerified bool          `json:"isEmailVerified"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

func (a Account) Public() PublicAccount {
	return PublicAccount{
		ID:              a.ID,
		Name:            a.Name,
		Email:           a.Email,
		Role:            a.Role,
		Status:          a.Status,
		Address:         a.Address,
		IsEmailVerified: a.EmailVerified,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// LoginHistoryEntry is written once per successful password check and never changed.
type LoginHistoryEntry struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"userId"`
	LoginTime time.Time `json:"loginTime"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
}

// Actor is the authenticated caller as seen by authorization checks.
type Actor struct {
	AccountID uuid.UUID
	Role      Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) Anonymous() bool {
	return a.AccountID == uuid.Nil
}
