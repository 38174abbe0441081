package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+998901234567"))
	assert.False(t, IsValidPhone("998901234567"))
	assert.False(t, IsValidPhone("+99890123456"))   // too short
	assert.False(t, IsValidPhone("+9989012345678")) // too long
	assert.False(t, IsValidPhone("+7 900 123-45-67"))
}

func TestIsComplexPassword(t *testing.T) {
	assert.True(t, IsComplexPassword("Str0ng!pass"))
	assert.False(t, IsComplexPassword("short1!"))
	assert.False(t, IsComplexPassword("alllowercase1!"))
	assert.False(t, IsComplexPassword("NoDigits!!"))
	assert.False(t, IsComplexPassword("NoSpecial123"))
}

func TestGenerateAccessKey(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		key, err := GenerateAccessKey()
		require.NoError(t, err)
		assert.Len(t, key, 8)
		for _, c := range key {
			assert.Contains(t, accessKeyAlphabet, string(c))
		}
		seen[key] = true
	}
	// 50 draws from a 36^8 space colliding would point at a broken RNG.
	assert.Greater(t, len(seen), 45)
}
