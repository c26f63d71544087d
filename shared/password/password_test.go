package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/shared/password"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "valid", input: "s3cret-pass"},
		{name: "unicode", input: "пароль123"},
		{name: "exactly 72 bytes", input: strings.Repeat("a", 72)},
		{name: "empty", input: "", wantErr: password.ErrEmptyPassword},
		{name: "too long", input: strings.Repeat("a", 73), wantErr: password.ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := password.Hash(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, hash)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, tt.input, hash)
			assert.NoError(t, password.Verify(tt.input, hash))
		})
	}
}

func TestVerify(t *testing.T) {
	hash, err := password.Hash("correct horse")
	require.NoError(t, err)

	assert.ErrorIs(t, password.Verify("wrong horse", hash), password.ErrInvalidPassword)
	assert.ErrorIs(t, password.Verify("", hash), password.ErrInvalidPassword)
	assert.ErrorIs(t, password.Verify("correct horse", ""), password.ErrInvalidPassword)
	assert.ErrorIs(t, password.Verify("correct horse", "not-a-bcrypt-hash"), password.ErrVerifyingPassword)
}
