package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret-key", time.Hour)

	t.Run("GenerateToken creates valid token", func(t *testing.T) {
		token, err := m.GenerateToken(1, "Анна Оператор", []string{"operator"})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("ValidateToken returns claims", func(t *testing.T) {
		token, err := m.GenerateToken(7, "Борис Админ", []string{"admin", "okk"})
		require.NoError(t, err)

		claims, err := m.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), claims.EmployeeID)
		assert.Equal(t, "Борис Админ", claims.Name)
		assert.Equal(t, []string{"admin", "okk"}, claims.Roles)
	})

	t.Run("ValidateToken rejects garbage", func(t *testing.T) {
		_, err := m.ValidateToken("invalid.token.here")
		assert.Error(t, err)
	})

	t.Run("ValidateToken rejects wrong key", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		token, err := other.GenerateToken(1, "x", nil)
		require.NoError(t, err)
		_, err = m.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("ValidateToken rejects expired token", func(t *testing.T) {
		short := NewJWTManager("test-secret-key", -time.Minute)
		token, err := short.GenerateToken(1, "x", nil)
		require.NoError(t, err)
		_, err = short.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}
