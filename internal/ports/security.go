package ports

import (
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

type TokenClaims struct {
	AccountID uuid.UUID
	Role      domain.Role
	TokenID   string
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenSigner signs and verifies the two token kinds with separate keys.
type TokenSigner interface {
	Sign(kind TokenKind, claims TokenClaims) (string, error)
	Parse(kind TokenKind, token string) (TokenClaims, error)
}
