package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordStrength(t *testing.T) {
	cases := []struct {
		pw    string
		score int
		label string
	}{
		{"", 0, "약함"},
		{"abc", 0, "약함"},
		{"abcdefg", 1, "약함"},
		{"Abcdefg1", 3, "중간"},
		{"abcdefghijk", 2, "약함"},
		{"Abcdefghij1", 4, "강함"},
		{"Abcdefghij1!", 5, "강함"},
		{"short!", 1, "약함"},
	}
	for _, tc := range cases {
		t.Run(tc.pw, func(t *testing.T) {
			s := PasswordStrength(tc.pw)
			assert.Equal(t, tc.score, s)
			assert.Equal(t, tc.label, PasswordStrengthLabel(s))
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
}

func TestTemporaryPassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		pw, err := TemporaryPassword()
		require.NoError(t, err)
		assert.Len(t, pw, 10)
		for _, r := range pw {
			assert.True(t, strings.ContainsRune(temporaryPasswordChar, r), "unexpected rune %q", r)
		}
		seen[pw] = true
	}
	assert.Greater(t, len(seen), 1)
}
