package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
	appErrors "github.com/husseinvr97/fasee7System-sub002/pkg/errors"
)

func TestValidateToken(t *testing.T) {
	svc := NewAuthService(AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "fasee7"})
	token, expiresAt, err := svc.IssueToken("u1", models.RoleTeacher, "teacher@example.com")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	assert.Equal(t, "fasee7", claims.Issuer)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewAuthService(AuthConfig{AccessTokenSecret: "other"})
	token, _, err := issuer.IssueToken("u1", models.RoleAdmin, "")
	require.NoError(t, err)

	_, err = NewAuthService(AuthConfig{AccessTokenSecret: "secret"}).ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestValidateTokenExpired(t *testing.T) {
	claims := &models.JWTClaims{
		UserID: "u1",
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewAuthService(AuthConfig{AccessTokenSecret: "secret"}).ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &models.JWTClaims{UserID: "u1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewAuthService(AuthConfig{AccessTokenSecret: "secret"}).ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
