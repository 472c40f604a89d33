package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/saasforge/authcore/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestService(t *testing.T) *Service {
	svc, err := NewService(testutils.GetTestConfig(), nil)
	require.NoError(t, err)
	return svc
}

func TestNewService(t *testing.T) {
	t.Run("missing public key", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.JWT.PublicKeyPEM = ""

		_, err := NewService(cfg, nil)
		assert.ErrorIs(t, err, ErrMissingKeys)
	})

	t.Run("validate-only service has no private key", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.JWT.PrivateKeyPEM = ""

		svc, err := NewService(cfg, nil)
		require.NoError(t, err)

		_, err = svc.GenerateAccessToken("user-1", "tenant-1", "a@x.com", nil)
		assert.ErrorIs(t, err, ErrMissingKeys)
	})
}

func TestGenerateAccessToken(t *testing.T) {
	svc := setupTestService(t)

	token, err := svc.GenerateAccessToken("user-1", "tenant-1", "a@x.com", []string{"admin"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, []string{"admin"}, claims.Roles)
	assert.NotEmpty(t, claims.JTI)
	assert.Equal(t, claims.JTI, claims.ID)
	assert.Equal(t, "test-issuer", claims.Issuer)

	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, 14*time.Minute)
	assert.LessOrEqual(t, remaining, 15*time.Minute)
}

func TestGenerateAccessToken_UniqueJTI(t *testing.T) {
	svc := setupTestService(t)

	first, err := svc.GenerateAccessToken("user-1", "tenant-1", "a@x.com", nil)
	require.NoError(t, err)
	second, err := svc.GenerateAccessToken("user-1", "tenant-1", "a@x.com", nil)
	require.NoError(t, err)

	firstClaims, err := svc.ValidateToken(first)
	require.NoError(t, err)
	secondClaims, err := svc.ValidateToken(second)
	require.NoError(t, err)
	assert.NotEqual(t, firstClaims.JTI, secondClaims.JTI)
}

func TestValidateToken(t *testing.T) {
	svc := setupTestService(t)

	t.Run("expired token", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.JWT.AccessExpiry = -time.Minute
		expiredSvc, err := NewService(cfg, nil)
		require.NoError(t, err)

		token, err := expiredSvc.GenerateAccessToken("user-1", "tenant-1", "a@x.com", nil)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.jwt")
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("tampered signature", func(t *testing.T) {
		token, err := svc.GenerateAccessToken("user-1", "tenant-1", "a@x.com", nil)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		tampered := parts[0] + "." + parts[1] + "." + string(sig)

		_, err = svc.ValidateToken(tampered)
		require.Error(t, err)
	})

	t.Run("unsigned token rejected", func(t *testing.T) {
		// header {"alg":"none","typ":"JWT"} with an empty signature part
		unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
			"eyJ1c2VyX2lkIjoidXNlci0xIn0."

		_, err := svc.ValidateToken(unsigned)
		require.Error(t, err)
	})
}

type stubRevocation struct {
	revoked map[string]bool
}

func (s *stubRevocation) IsBlacklisted(jti string) (bool, error) {
	return s.revoked[jti], nil
}

func TestValidateToken_Revocation(t *testing.T) {
	svc := setupTestService(t)
	revocation := &stubRevocation{revoked: map[string]bool{}}
	svc.SetRevocationChecker(revocation)

	token, err := svc.GenerateAccessToken("user-1", "tenant-1", "a@x.com", nil)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	revocation.revoked[claims.JTI] = true

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
