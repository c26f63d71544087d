package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/config"
	"roombooking/infras/jwt"
	"roombooking/shared/constant"
)

func newService() jwt.JWT {
	cfg := &config.Config{}
	cfg.App.Name = "roombooking-test"
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessExpireMin = 15
	cfg.JWT.RefreshExpireMin = 60

	return jwt.New(cfg)
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newService()

	pair, err := svc.GenerateTokenPair(42, "jane@example.com", constant.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(15*60), pair.ExpiresIn)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := svc.ValidateToken(pair.AccessToken, jwt.AccessToken)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, constant.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.TokenID)
	assert.Equal(t, claims.TokenID, claims.ID)
}

func TestValidateToken_WrongType(t *testing.T) {
	svc := newService()

	pair, err := svc.GenerateTokenPair(1, "a@example.com", constant.RoleUser)
	require.NoError(t, err)

	// refresh token is signed with a different secret, so parsing it as access fails outright
	_, err = svc.ValidateToken(pair.RefreshToken, jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token", jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)

	_, err = svc.ValidateToken(pair.AccessToken, jwt.TokenType("other"))
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessExpireMin = -1
	cfg.JWT.RefreshExpireMin = 60

	svc := jwt.New(cfg)

	pair, err := svc.GenerateTokenPair(7, "late@example.com", constant.RoleUser)
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.AccessToken, jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrExpiredToken)
}

func TestRefreshTokens(t *testing.T) {
	svc := newService()

	pair, err := svc.GenerateTokenPair(9, "r@example.com", constant.RoleUser)
	require.NoError(t, err)

	refreshed, err := svc.RefreshTokens(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(refreshed.AccessToken, jwt.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)

	_, err = svc.RefreshTokens(pair.AccessToken)
	assert.Error(t, err)
}

func TestClaims_RemainingTTL(t *testing.T) {
	svc := newService()

	pair, err := svc.GenerateTokenPair(3, "ttl@example.com", constant.RoleUser)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(pair.AccessToken, jwt.AccessToken)
	require.NoError(t, err)

	ttl := claims.RemainingTTL(time.Now())
	assert.Greater(t, ttl, 14*time.Minute)
	assert.LessOrEqual(t, ttl, 15*time.Minute)

	assert.Equal(t, time.Duration(0), claims.RemainingTTL(time.Now().Add(time.Hour)))
	assert.Equal(t, time.Duration(0), (&jwt.Claims{}).RemainingTTL(time.Now()))
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "valid bearer", header: "Bearer abc.def", want: "abc.def"},
		{name: "empty header", header: "", wantErr: jwt.ErrMissingToken},
		{name: "wrong scheme", header: "Basic abc", wantErr: jwt.ErrTokenFormat},
		{name: "bearer without token", header: "Bearer ", wantErr: jwt.ErrTokenFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jwt.ExtractTokenFromHeader(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
