package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happy2h/gomall/internal/config"
	"github.com/happy2h/gomall/internal/datamodels/user"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret"}

	token, err := GenerateToken(cfg, 42, "alice", user.RoleAdmin)
	require.NoError(t, err)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, user.RoleAdmin, claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(&config.JWTConfig{Secret: "secret-a"}, 1, "bob", user.RoleCustomer)
	require.NoError(t, err)

	_, err = ParseToken(&config.JWTConfig{Secret: "secret-b"}, token)
	require.Error(t, err)
}

func TestContextCanActOn(t *testing.T) {
	owner := Context{UserID: 7}
	assert.True(t, owner.CanActOn(7))
	assert.False(t, owner.CanActOn(8))

	admin := Context{UserID: 1, IsAdmin: true}
	assert.True(t, admin.CanActOn(7))
}

func TestConsistentHashRingStableMapping(t *testing.T) {
	ring := NewConsistentHashRing([]string{"n1", "n2", "n3"}, 50)

	first := ring.GetNode("some-token")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ring.GetNode("some-token"))
	}
	assert.Contains(t, []string{"n1", "n2", "n3"}, first)

	// 重复添加同名节点不改变映射
	ring.Add("n2")
	assert.Equal(t, first, ring.GetNode("some-token"))
}
