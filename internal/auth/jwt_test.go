package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: "user-1", Role: models.RoleTeacher}

	token, err := GenerateToken(user, "test-secret", time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	user := &models.User{ID: "user-1", Role: models.RoleStudent}

	token, err := GenerateToken(user, "test-secret", time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken(token, "other-secret")
	assert.Error(t, err)
}

func TestVerifyTokenExpired(t *testing.T) {
	user := &models.User{ID: "user-1", Role: models.RoleStudent}

	token, err := GenerateToken(user, "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(token, "test-secret")
	assert.Error(t, err)
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, err := VerifyToken("not-a-token", "test-secret")
	assert.Error(t, err)
}
