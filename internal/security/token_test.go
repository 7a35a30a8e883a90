package security_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langouL/meteopad/internal/security"
)

const testSecret = "unit-test-secret-unit-test-secret!!!"

func newManager(t *testing.T, password string, ttl time.Duration) security.TokenManager {
	t.Helper()
	hash, err := security.HashPassword(password)
	require.NoError(t, err)
	return security.NewTokenManager(testSecret, hash, ttl)
}

func TestTokenManager_Authenticate(t *testing.T) {
	mgr := newManager(t, "LANGOUL", 30*time.Minute)

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := mgr.Authenticate("guess")
		assert.ErrorIs(t, err, security.ErrBadCredentials)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		token, err := mgr.Authenticate("LANGOUL")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := mgr.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Subject)
		assert.Equal(t, "meteopad", claims.Issuer)
	})
}

func TestTokenManager_ValidateToken(t *testing.T) {
	mgr := newManager(t, "LANGOUL", 30*time.Minute)

	t.Run("Garbage", func(t *testing.T) {
		_, err := mgr.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := mgr.Authenticate("LANGOUL")
		require.NoError(t, err)

		hash, err := security.HashPassword("LANGOUL")
		require.NoError(t, err)
		other := security.NewTokenManager("another-secret-another-secret-!!!!!!", hash, 30*time.Minute)
		_, err = other.ValidateToken(token)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		shortLived := newManager(t, "LANGOUL", -time.Minute)
		token, err := shortLived.Authenticate("LANGOUL")
		require.NoError(t, err)

		_, err = shortLived.ValidateToken(token)
		assert.ErrorIs(t, err, security.ErrExpiredToken)
	})
}
