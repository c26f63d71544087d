package dto_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roombooking/infras/jwt"
	"roombooking/internal/domains/auth/model/dto"
	"roombooking/shared/constant"
)

func TestLoginResponse_FromTokenPair(t *testing.T) {
	tokenPair := &jwt.TokenPair{
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
		TokenType:    "Bearer",
		ExpiresIn:    900,
	}

	var response dto.LoginResponse
	response.FromTokenPair(tokenPair)

	assert.Equal(t, tokenPair.AccessToken, response.AccessToken)
	assert.Equal(t, tokenPair.RefreshToken, response.RefreshToken)
	assert.Equal(t, "Bearer", response.TokenType)
	assert.Equal(t, int64(900), response.ExpiresIn)
}

func TestRefreshTokenResponse_FromTokenPair(t *testing.T) {
	tokenPair := &jwt.TokenPair{
		AccessToken:  "new-access-token",
		RefreshToken: "new-refresh-token",
	}

	var response dto.RefreshTokenResponse
	response.FromTokenPair(tokenPair)

	assert.Equal(t, tokenPair.AccessToken, response.AccessToken)
	assert.Equal(t, tokenPair.RefreshToken, response.RefreshToken)
}

func TestRegisterRequest_AlwaysPlainUser(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	req := dto.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"}

	user := req.ToUserModel(constant.ContextGuest, "hashed", now)

	assert.Equal(t, constant.RoleUser, user.Role)
	assert.Equal(t, "hashed", user.Password)
	assert.Equal(t, now, user.CreatedAt)
	assert.Equal(t, constant.ContextGuest, user.CreatedBy)
}
