package services

import (
	"testing"
	"time"

	"github.com/amirphl/dental-clinic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAdminSecret = "test-admin-secret-key-for-jwt-signing"
	testCRMSecret   = "test-crm-secret-key-for-jwt-signing-x"
)

func createTestTokenService(t *testing.T) *TokenServiceImpl {
	t.Helper()
	svc, err := NewTokenService(24*time.Hour, "test-issuer", testAdminSecret, testCRMSecret)
	require.NoError(t, err)
	return svc.(*TokenServiceImpl)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		ttl         time.Duration
		adminSecret string
		crmSecret   string
		expectError bool
	}{
		{name: "valid configuration", ttl: time.Hour, adminSecret: testAdminSecret, crmSecret: testCRMSecret},
		{name: "zero ttl falls back to default", ttl: 0, adminSecret: testAdminSecret, crmSecret: testCRMSecret},
		{name: "missing admin secret", ttl: time.Hour, adminSecret: "", crmSecret: testCRMSecret, expectError: true},
		{name: "missing crm secret", ttl: time.Hour, adminSecret: testAdminSecret, crmSecret: "", expectError: true},
		{name: "shared secret", ttl: time.Hour, adminSecret: testAdminSecret, crmSecret: testAdminSecret, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewTokenService(tt.ttl, "test-issuer", tt.adminSecret, tt.crmSecret)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			if tt.ttl == 0 {
				assert.Equal(t, utils.AccessTokenTTL, svc.TTL())
			} else {
				assert.Equal(t, tt.ttl, svc.TTL())
			}
		})
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	svc := createTestTokenService(t)

	token, expiresAt, err := svc.GenerateAdminToken(42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, utils.UTCNow().Add(24*time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateAdminToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.AdminID)
	assert.NotEmpty(t, claims.TokenID)
	assert.Equal(t, expiresAt, claims.ExpiresAt)
}

func TestCRMTokenRoundTrip(t *testing.T) {
	svc := createTestTokenService(t)

	token, _, err := svc.GenerateCRMToken(7)
	require.NoError(t, err)

	claims, err := svc.ValidateCRMToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.CRMUserID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	svc := createTestTokenService(t)

	adminToken, _, err := svc.GenerateAdminToken(1)
	require.NoError(t, err)
	crmToken, _, err := svc.GenerateCRMToken(1)
	require.NoError(t, err)

	_, err = svc.ValidateCRMToken(adminToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.ValidateAdminToken(crmToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateTokenFailures(t *testing.T) {
	svc := createTestTokenService(t)

	t.Run("malformed token", func(t *testing.T) {
		_, err := svc.ValidateAdminToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := svc.ValidateAdminToken("")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("signed by another issuer", func(t *testing.T) {
		other, err := NewTokenService(time.Hour, "other-issuer", testAdminSecret, testCRMSecret)
		require.NoError(t, err)
		token, _, err := other.GenerateAdminToken(1)
		require.NoError(t, err)

		_, err = svc.ValidateAdminToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		past := createTestTokenService(t)
		past.now = func() time.Time { return utils.UTCNow().Add(-48 * time.Hour) }
		token, _, err := past.GenerateAdminToken(1)
		require.NoError(t, err)

		_, err = svc.ValidateAdminToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}
