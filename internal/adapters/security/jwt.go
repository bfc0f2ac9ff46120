package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
)

const minSecretLength = 32

// JWTSigner signs HS256 tokens. Access and refresh tokens use different
// secrets, and the kind claim stops one being replayed as the other.
type JWTSigner struct {
	issuer  string
	secrets map[ports.TokenKind][]byte
	now     func() time.Time
}

func NewJWTSigner(issuer, accessSecret, refreshSecret string) (*JWTSigner, error) {
	if len(accessSecret) < minSecretLength || len(refreshSecret) < minSecretLength {
		return nil, fmt.Errorf("jwt secrets must be at least %d bytes", minSecretLength)
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	return &JWTSigner{
		issuer: issuer,
		secrets: map[ports.TokenKind][]byte{
			ports.AccessToken:  []byte(accessSecret),
			ports.RefreshToken: []byte(refreshSecret),
		},
		now: time.Now,
	}, nil
}

type brandhubClaims struct {
	AccountID string `json:"id"`
	Role      string `json:"role"`
	Kind      string `json:"kind"`
	jwt.RegisteredClaims
}

func (s *JWTSigner) Sign(kind ports.TokenKind, claims ports.TokenClaims) (string, error) {
	secret, ok := s.secrets[kind]
	if !ok {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, brandhubClaims{
		AccountID: claims.AccountID.String(),
		Role:      string(claims.Role),
		Kind:      string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.TokenID,
			Issuer:    s.issuer,
			Subject:   claims.AccountID.String(),
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	return token.SignedString(secret)
}

func (s *JWTSigner) Parse(kind ports.TokenKind, raw string) (ports.TokenClaims, error) {
	secret, ok := s.secrets[kind]
	if !ok {
		return ports.TokenClaims{}, fmt.Errorf("unknown token kind %q", kind)
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	parsed, err := jwt.ParseWithClaims(raw, &brandhubClaims{}, func(*jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return ports.TokenClaims{}, err
	}
	claims, ok := parsed.Claims.(*brandhubClaims)
	if !ok || !parsed.Valid {
		return ports.TokenClaims{}, errors.New("invalid token claims")
	}
	if claims.Kind != string(kind) {
		return ports.TokenClaims{}, fmt.Errorf("expected %s token, got %q", kind, claims.Kind)
	}
	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return ports.TokenClaims{}, fmt.Errorf("parse account id: %w", err)
	}

	out := ports.TokenClaims{
		AccountID: accountID,
		Role:      domain.Role(claims.Role),
		TokenID:   claims.ID,
		Kind:      kind,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return out, nil
}
