package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vrakshhq/vraksh/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "user@example.com", sanitizer.NormalizeEmail("  User@Example.COM "))
	assert.Equal(t, "user@example.com", sanitizer.NormalizeEmail("user@example..com"))
	assert.Equal(t, "not-an-email", sanitizer.NormalizeEmail(" Not-An-Email "))
}

func TestNormalizeUsername(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ram.dev", sanitizer.NormalizeUsername(" Ram.Dev "))
	assert.Equal(t, "user_42", sanitizer.NormalizeUsername("User 42!_"))
	assert.Equal(t, "", sanitizer.NormalizeUsername("@#$"))
}

func TestUsernameFromEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ram.dev", sanitizer.UsernameFromEmail("Ram.Dev@Example.com"))
	assert.Equal(t, "user42", sanitizer.UsernameFromEmail("user+42@example.com")) // plus stripped
	assert.Equal(t, "plain", sanitizer.UsernameFromEmail("plain"))
}
