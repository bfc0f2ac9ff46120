package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessSecret  = "access-secret-access-secret-0123456789"
	testRefreshSecret = "refresh-secret-refresh-secret-0123456789"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("secret1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, minBcryptCost, cost)

	assert.NoError(t, h.Compare(hash, "secret1"))
	assert.Error(t, h.Compare(hash, "secret2"))
}

func newTestSigner(t *testing.T, now time.Time) *JWTSigner {
	t.Helper()
	s, err := NewJWTSigner("brandhub", testAccessSecret, testRefreshSecret)
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	return s
}

func TestJWTSignerRoundTrip(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSigner(t, now)
	claims := ports.TokenClaims{
		AccountID: uuid.New(),
		Role:      domain.RoleBrandManager,
		TokenID:   uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}

	token, err := s.Sign(ports.AccessToken, claims)
	require.NoError(t, err)

	got, err := s.Parse(ports.AccessToken, token)
	require.NoError(t, err)
	assert.Equal(t, claims.AccountID, got.AccountID)
	assert.Equal(t, claims.Role, got.Role)
	assert.Equal(t, claims.TokenID, got.TokenID)
	assert.Equal(t, ports.AccessToken, got.Kind)
	assert.True(t, got.ExpiresAt.Equal(claims.ExpiresAt))

	_, err = s.Parse(ports.RefreshToken, token)
	assert.Error(t, err, "access token must not parse as a refresh token")
}

func TestJWTSignerRejectsExpiredAndTampered(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSigner(t, now)
	token, err := s.Sign(ports.RefreshToken, ports.TokenClaims{
		AccountID: uuid.New(),
		Role:      domain.RoleBuyer,
		TokenID:   "jti",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Minute),
	})
	require.NoError(t, err)

	later := newTestSigner(t, now.Add(2*time.Minute))
	_, err = later.Parse(ports.RefreshToken, token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	_, err = s.Parse(ports.RefreshToken, forged)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": uuid.NewString(), "kind": "refresh", "exp": now.Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Parse(ports.RefreshToken, unsigned)
	assert.Error(t, err)
}

func TestNewJWTSignerValidatesSecrets(t *testing.T) {
	_, err := NewJWTSigner("brandhub", "short", testRefreshSecret)
	assert.Error(t, err)
	_, err = NewJWTSigner("brandhub", testAccessSecret, testAccessSecret)
	assert.Error(t, err)
}
