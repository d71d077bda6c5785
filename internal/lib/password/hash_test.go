package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_Hash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "regular password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "password with special chars",
			password: "p@ssw0rd!@#$%^&*()",
			wantErr:  false,
		},
		{
			name:     "unicode password",
			password: "пароль-пароль",
			wantErr:  false,
		},
		{
			name:     "exactly 72 bytes",
			password: strings.Repeat("a", 72),
			wantErr:  false,
		},
		{
			name:     "longer than 72 bytes",
			password: strings.Repeat("a", 73),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotHash, err := h.Hash(tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrTooLong)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, gotHash)
			assert.NotEqual(t, tt.password, gotHash)
			assert.True(t, h.Verify(tt.password, gotHash))
		})
	}
}

func TestHasher_Verify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	correctHash, err := h.Hash("correct_password")
	require.NoError(t, err)

	anotherHash, err := h.Hash("another_password")
	require.NoError(t, err)

	tests := []struct {
		name        string
		hash        string
		password    string
		shouldMatch bool
	}{
		{
			name:        "matching password",
			hash:        correctHash,
			password:    "correct_password",
			shouldMatch: true,
		},
		{
			name:        "wrong password",
			hash:        correctHash,
			password:    "wrong_password",
			shouldMatch: false,
		},
		{
			name:        "correct prefix only",
			hash:        correctHash,
			password:    "correct_",
			shouldMatch: false,
		},
		{
			name:        "different hash same password",
			hash:        anotherHash,
			password:    "correct_password",
			shouldMatch: false,
		},
		{
			name:        "empty password",
			hash:        correctHash,
			password:    "",
			shouldMatch: false,
		},
		{
			name:        "malformed hash",
			hash:        "not-a-bcrypt-hash",
			password:    "correct_password",
			shouldMatch: false,
		},
		{
			name:        "empty hash",
			hash:        "",
			password:    "correct_password",
			shouldMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.shouldMatch, h.Verify(tt.password, tt.hash))
		})
	}
}

func TestHasher_SamePasswordDifferentSalt(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash1, err := h.Hash("password1")
	require.NoError(t, err)
	hash2, err := h.Hash("password1")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
	assert.True(t, h.Verify("password1", hash1))
	assert.True(t, h.Verify("password1", hash2))
}

func TestHasher_HashEmbedsCost(t *testing.T) {
	h := NewHasher(bcrypt.MinCost + 1)

	hashed, err := h.Hash("password1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

func TestNewHasher_CostOutOfRange(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).Cost())
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(bcrypt.MaxCost+1).Cost())
	assert.Equal(t, bcrypt.MinCost, NewHasher(bcrypt.MinCost).Cost())
}
