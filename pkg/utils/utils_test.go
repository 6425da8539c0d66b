package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	password := "testpassword"
	hashedPassword, err := HashPassword(password)
	require.NoError(t, err)
	assert.NotEmpty(t, hashedPassword)
	assert.NotEqual(t, password, hashedPassword)

	cost, err := bcrypt.Cost([]byte(hashedPassword))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)
}

func TestCheckPasswordHash(t *testing.T) {
	old := PasswordCost
	PasswordCost = bcrypt.MinCost
	defer func() { PasswordCost = old }()

	password := "testpassword"
	hashedPassword, _ := HashPassword(password)

	// Test with correct password
	assert.True(t, CheckPasswordHash(password, hashedPassword))

	// Test with incorrect password
	assert.False(t, CheckPasswordHash("wrongpassword", hashedPassword))
	assert.False(t, CheckPasswordHash(password, ""))
}
