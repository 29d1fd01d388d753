package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuthService_PasswordHashRoundtrip(t *testing.T) {
	svc := NewAuthService("test_secret", time.Hour)

	hash, err := svc.HashPassword("hunter2")
	assert.NoError(t, err)
	assert.True(t, svc.CheckPasswordHash("hunter2", hash))
	assert.False(t, svc.CheckPasswordHash("wrong", hash))
}

func TestAuthService_TokenRoundtrip(t *testing.T) {
	svc := NewAuthService("test_secret", time.Hour)

	token, err := svc.GenerateToken("operator")
	assert.NoError(t, err)

	sub, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "operator", sub)
}

func TestAuthService_RejectsForeignToken(t *testing.T) {
	issuer := NewAuthService("secret_a", time.Hour)
	verifier := NewAuthService("secret_b", time.Hour)

	token, err := issuer.GenerateToken("operator")
	assert.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestAuthService_RejectsExpiredToken(t *testing.T) {
	svc := NewAuthService("test_secret", -time.Minute)

	token, err := svc.GenerateToken("operator")
	assert.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
